package media

import (
	"bytes"
	"encoding/binary"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"testing"
)

// drawRGBA builds a solid-color bitmap for fixtures.
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

// tiffOrientationPayload hand-assembles a little-endian TIFF payload whose
// IFD0 carries an orientation entry and a GPSInfo pointer to a minimal GPS
// IFD, the smallest shape a real camera file has.
func tiffOrientationPayload(orientation uint16) []byte {
	le := binary.LittleEndian
	buf := make([]byte, 56)
	copy(buf[0:], "II")
	le.PutUint16(buf[2:], 42)
	le.PutUint32(buf[4:], 8)

	// IFD0 at 8: two entries.
	le.PutUint16(buf[8:], 2)

	// Orientation, SHORT, value packed inline.
	le.PutUint16(buf[10:], TagOrientation)
	le.PutUint16(buf[12:], 3)
	le.PutUint32(buf[14:], 1)
	le.PutUint32(buf[18:], uint32(orientation))

	// GPSInfo, LONG, absolute offset of the GPS IFD below.
	le.PutUint16(buf[22:], TagGPSInfo)
	le.PutUint16(buf[24:], 4)
	le.PutUint32(buf[26:], 1)
	le.PutUint32(buf[30:], 38)

	// Next-IFD offset: none.
	le.PutUint32(buf[34:], 0)

	// GPS IFD at 38: one GPSVersionID entry, four packed bytes.
	le.PutUint16(buf[38:], 1)
	le.PutUint16(buf[40:], 0x0000)
	le.PutUint16(buf[42:], 1)
	le.PutUint32(buf[44:], 4)
	buf[48], buf[49] = 2, 3
	le.PutUint32(buf[52:], 0)

	return buf
}
