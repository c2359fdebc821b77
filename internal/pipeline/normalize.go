// Package pipeline turns uploaded bytes into canonical images and runs the
// service's transforms on them: auto-rotation, box fitting and avatar
// generation.
package pipeline

import (
	"image"
	"image/color"

	"github.com/disintegration/imaging"

	"imgd/internal/media"
)

// iconSide is the edge length icons are upscaled to, the largest avatar
// rendition.
const iconSide = 512

// Normalize converts detected content into the canonical frame sequence the
// transforms operate on. Vector documents are rasterized and letterboxed,
// icon containers are upscaled to working size; both leave as PNG. Raster
// content keeps its format and frames.
func Normalize(raw []byte, f media.Format) (*media.Image, error) {
	switch {
	case f == media.FormatSVG:
		return normalizeVector(raw)
	case f.IsIcon():
		return normalizeIcon(raw, f)
	}
	return media.Decode(raw, f)
}

func normalizeVector(raw []byte) (*media.Image, error) {
	bm, err := media.RasterizeSVG(raw)
	if err != nil {
		return nil, err
	}
	return media.NewStill(media.FormatPNG, squareCanvas(bm)), nil
}

// squareCanvas centers the bitmap on a transparent square whose side is the
// longer edge, so later square crops cannot cut vector content off.
func squareCanvas(bm image.Image) image.Image {
	b := bm.Bounds()
	if b.Dx() == b.Dy() {
		return bm
	}
	side := b.Dx()
	if b.Dy() > side {
		side = b.Dy()
	}
	return imaging.PasteCenter(imaging.New(side, side, color.Transparent), bm)
}

// Icon containers hold tiny renditions, so the decoded bitmap is stretched
// to working size with nearest-neighbor to keep pixel edges crisp.
func normalizeIcon(raw []byte, f media.Format) (*media.Image, error) {
	m, err := media.Decode(raw, f)
	if err != nil {
		return nil, err
	}
	scaled := imaging.Resize(m.Lead(), iconSide, iconSide, imaging.NearestNeighbor)
	return media.NewStill(media.FormatPNG, scaled), nil
}
