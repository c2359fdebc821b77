package media

import (
	"bytes"
	"errors"
	"image/color"
	"image/gif"
	"testing"

	"golang.org/x/image/bmp"
)

func TestDetectCommonRasterFormats(t *testing.T) {
	img := drawRGBA(8, 8, color.RGBA{R: 255, A: 255})

	var gifBuf, bmpBuf bytes.Buffer
	if err := gif.Encode(&gifBuf, img, nil); err != nil {
		t.Fatalf("encode gif fixture: %v", err)
	}
	if err := bmp.Encode(&bmpBuf, img); err != nil {
		t.Fatalf("encode bmp fixture: %v", err)
	}

	cases := []struct {
		name string
		data []byte
		want Format
	}{
		{"png", pngBytes(t, img), FormatPNG},
		{"jpeg", jpegBytes(t, img), FormatJPEG},
		{"gif", gifBuf.Bytes(), FormatGIF},
		{"bmp", bmpBuf.Bytes(), FormatBMP},
	}
	for _, tc := range cases {
		got, err := Detect(tc.data)
		if err != nil {
			t.Errorf("Detect(%s): %v", tc.name, err)
			continue
		}
		if got != tc.want {
			t.Errorf("Detect(%s) = %s, want %s", tc.name, got, tc.want)
		}
	}
}

func TestDetectSVGDocument(t *testing.T) {
	doc := []byte(`<?xml version="1.0"?><svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 10 10"><rect width="10" height="10" fill="red"/></svg>`)
	got, err := Detect(doc)
	if err != nil {
		t.Fatalf("Detect(svg): %v", err)
	}
	if got != FormatSVG {
		t.Fatalf("Detect(svg) = %s, want svg", got)
	}
}

func TestDetectRejectsGarbage(t *testing.T) {
	if _, err := Detect([]byte("certainly not an image, not even close")); !errors.Is(err, ErrUnknownFormat) {
		t.Fatalf("garbage detection error = %v, want ErrUnknownFormat", err)
	}
	if _, err := Detect(nil); !errors.Is(err, ErrUnknownFormat) {
		t.Fatalf("empty detection error = %v, want ErrUnknownFormat", err)
	}
}

func TestDetectIgnoresDeclaredNameOrType(t *testing.T) {
	// A PNG payload stays a PNG no matter what the client called it; the
	// detector has no name parameter to be misled by.
	data := pngBytes(t, drawRGBA(4, 4, color.White))
	got, err := Detect(data)
	if err != nil || got != FormatPNG {
		t.Fatalf("Detect = %s, %v; want png", got, err)
	}
}
