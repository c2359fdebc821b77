package pipeline

import (
	"bytes"
	"encoding/binary"
	"image"
	"image/color"
	"image/gif"
	"image/jpeg"
	"image/png"
	"testing"
	"time"

	"imgd/internal/media"
)

func drawRGBA(w, h int, c color.Color) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

func pixel(img image.Image, x, y int) color.RGBA {
	return color.RGBAModel.Convert(img.At(x, y)).(color.RGBA)
}

func pngBytes(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png fixture: %v", err)
	}
	return buf.Bytes()
}

func jpegBytes(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, nil); err != nil {
		t.Fatalf("encode jpeg fixture: %v", err)
	}
	return buf.Bytes()
}

func gifBytes(t *testing.T, frames ...*image.Paletted) []byte {
	t.Helper()
	g := &gif.GIF{Image: frames}
	for range frames {
		g.Delay = append(g.Delay, 4)
	}
	var buf bytes.Buffer
	if err := gif.EncodeAll(&buf, g); err != nil {
		t.Fatalf("encode gif fixture: %v", err)
	}
	return buf.Bytes()
}

func palettedFill(r image.Rectangle, c color.RGBA) *image.Paletted {
	p := image.NewPaletted(r, color.Palette{c})
	for i := range p.Pix {
		p.Pix[i] = 0
	}
	return p
}

// exifPayload builds a little-endian TIFF payload whose IFD0 carries an
// orientation tag and a GPS sub-IFD pointer. The GPS IFD itself holds a
// version entry so strict readers accept the pointer.
func exifPayload(orientation uint16) []byte {
	buf := make([]byte, 56)
	copy(buf[0:], "II")
	binary.LittleEndian.PutUint16(buf[2:], 42)
	binary.LittleEndian.PutUint32(buf[4:], 8)

	binary.LittleEndian.PutUint16(buf[8:], 2)

	entry := buf[10:]
	binary.LittleEndian.PutUint16(entry[0:], media.TagOrientation)
	binary.LittleEndian.PutUint16(entry[2:], 3)
	binary.LittleEndian.PutUint32(entry[4:], 1)
	binary.LittleEndian.PutUint16(entry[8:], orientation)

	entry = buf[22:]
	binary.LittleEndian.PutUint16(entry[0:], media.TagGPSInfo)
	binary.LittleEndian.PutUint16(entry[2:], 4)
	binary.LittleEndian.PutUint32(entry[4:], 1)
	binary.LittleEndian.PutUint32(entry[8:], 38)

	binary.LittleEndian.PutUint32(buf[34:], 0)

	binary.LittleEndian.PutUint16(buf[38:], 1)
	entry = buf[40:]
	binary.LittleEndian.PutUint16(entry[0:], 0x0000)
	binary.LittleEndian.PutUint16(entry[2:], 1)
	binary.LittleEndian.PutUint32(entry[4:], 4)
	entry[8] = 2
	entry[9] = 3
	binary.LittleEndian.PutUint32(buf[52:], 0)

	return buf
}

// ifd0Tags lists the tag IDs surviving in the payload's first IFD.
func ifd0Tags(t *testing.T, payload []byte) []uint16 {
	t.Helper()
	if len(payload) < 10 {
		t.Fatal("payload too short for an IFD")
	}
	offset := binary.LittleEndian.Uint32(payload[4:])
	count := binary.LittleEndian.Uint16(payload[offset:])
	var tags []uint16
	for i := 0; i < int(count); i++ {
		entry := payload[int(offset)+2+i*12:]
		if tag := binary.LittleEndian.Uint16(entry[0:]); tag != 0 {
			tags = append(tags, tag)
		}
	}
	return tags
}

func stillImage(f media.Format, w, h int, c color.Color) *media.Image {
	return media.NewStill(f, drawRGBA(w, h, c))
}

func animatedImage(f media.Format, w, h int) *media.Image {
	return &media.Image{
		Format: f,
		Frames: []media.Frame{
			{Bitmap: drawRGBA(w, h, color.RGBA{R: 255, A: 255}), Duration: 30 * time.Millisecond},
			{Bitmap: drawRGBA(w, h, color.RGBA{G: 255, A: 255}), Duration: 50 * time.Millisecond},
		},
		Animated: true,
	}
}
