package media

import (
	"errors"
	"image/color"
	"testing"
	"time"
)

func TestEncodeStillRoundTripsThroughDetect(t *testing.T) {
	bitmap := drawRGBA(10, 10, color.RGBA{B: 255, A: 255})
	for _, f := range All() {
		if !f.HasEncoder() {
			continue
		}
		out, err := EncodeStill(bitmap, f)
		if err != nil {
			t.Fatalf("EncodeStill(%s) failed: %v", f, err)
		}
		got, err := Detect(out)
		if err != nil {
			t.Fatalf("Detect on %s output failed: %v", f, err)
		}
		if got != f {
			t.Fatalf("Detect on %s output = %s", f, got)
		}
	}
}

func TestEncodeStillWithoutEncoder(t *testing.T) {
	bitmap := drawRGBA(4, 4, color.RGBA{A: 255})
	for _, f := range []Format{FormatPSD, FormatICO, FormatICNS, FormatAVIF, FormatSVG} {
		_, err := EncodeStill(bitmap, f)
		if !errors.Is(err, ErrNoEncoder) {
			t.Fatalf("EncodeStill(%s) error = %v, want ErrNoEncoder", f, err)
		}
	}
}

func TestEncodeAnimatedDispatch(t *testing.T) {
	m := &Image{
		Format: FormatGIF,
		Frames: []Frame{
			{Bitmap: drawRGBA(8, 8, color.RGBA{R: 255, A: 255}), Duration: 30 * time.Millisecond},
			{Bitmap: drawRGBA(8, 8, color.RGBA{G: 255, A: 255}), Duration: 30 * time.Millisecond},
		},
		Animated: true,
	}

	out, err := EncodeAnimated(m, FormatGIF)
	if err != nil {
		t.Fatalf("EncodeAnimated(gif) failed: %v", err)
	}
	back, err := decodeGIF(out)
	if err != nil {
		t.Fatalf("decode encoded gif: %v", err)
	}
	if got := back.FrameCount(); got != 2 {
		t.Fatalf("frame count = %d, want 2", got)
	}

	if _, err := EncodeAnimated(m, FormatWEBP); !errors.Is(err, ErrNoEncoder) {
		t.Fatalf("EncodeAnimated(webp) error = %v, want ErrNoEncoder", err)
	}
}
