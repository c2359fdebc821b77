package pipeline

import (
	"image"

	"github.com/disintegration/imaging"

	"imgd/internal/media"
)

// AutoRotate applies the EXIF orientation to the pixel data and drops the
// orientation tag so pixels and metadata agree. Upright or untagged images
// pass through untouched, which also makes a second call a no-op.
func AutoRotate(m *media.Image) *media.Image {
	o := media.Orientation(m.EXIF)
	if o < 2 || o > 8 {
		return m
	}
	out := m.Map(func(bm image.Image) image.Image { return upright(bm, o) })
	out.EXIF = media.StripTags(m.EXIF, media.TagOrientation)
	return out
}

// upright undoes the capture transform recorded in EXIF orientation o.
func upright(bm image.Image, o int) image.Image {
	switch o {
	case 2:
		return imaging.FlipH(bm)
	case 3:
		return imaging.Rotate180(bm)
	case 4:
		return imaging.FlipV(bm)
	case 5:
		return imaging.Transpose(bm)
	case 6:
		return imaging.Rotate270(bm)
	case 7:
		return imaging.Transverse(bm)
	case 8:
		return imaging.Rotate90(bm)
	}
	return bm
}
