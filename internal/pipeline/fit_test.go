package pipeline

import (
	"bytes"
	"errors"
	"image/color"
	"image/gif"
	"image/png"
	"testing"

	"imgd/internal/media"
)

func TestFitDownscalesPreservingAspect(t *testing.T) {
	src := stillImage(media.FormatPNG, 100, 50, colorRed)

	res, err := Fit(src, 40, false)
	if err != nil {
		t.Fatalf("Fit failed: %v", err)
	}
	if res.Width != 40 || res.Height != 20 {
		t.Fatalf("result = %dx%d, want 40x20", res.Width, res.Height)
	}
	if res.MIME != "image/png" {
		t.Fatalf("mime = %q, want image/png", res.MIME)
	}

	decoded, err := png.Decode(bytes.NewReader(res.Bytes))
	if err != nil {
		t.Fatalf("decode output: %v", err)
	}
	if b := decoded.Bounds(); b.Dx() != 40 || b.Dy() != 20 {
		t.Fatalf("encoded output = %dx%d, want 40x20", b.Dx(), b.Dy())
	}
}

func TestFitNeverUpscales(t *testing.T) {
	src := stillImage(media.FormatPNG, 10, 5, colorRed)

	res, err := Fit(src, 40, false)
	if err != nil {
		t.Fatalf("Fit failed: %v", err)
	}
	if res.Width != 10 || res.Height != 5 {
		t.Fatalf("result = %dx%d, want the untouched 10x5", res.Width, res.Height)
	}
}

func TestFitRejectsNonPositiveBox(t *testing.T) {
	src := stillImage(media.FormatPNG, 10, 10, colorRed)
	for _, box := range []int{0, -3} {
		_, err := Fit(src, box, false)
		var fe *FitError
		if !errors.As(err, &fe) {
			t.Fatalf("Fit(box=%d) error = %v, want *FitError", box, err)
		}
	}
}

func TestFitFailsWithoutEncoder(t *testing.T) {
	src := stillImage(media.FormatPSD, 50, 50, colorRed)

	_, err := Fit(src, 20, false)
	var fe *FitError
	if !errors.As(err, &fe) {
		t.Fatalf("error = %v, want *FitError", err)
	}
	if !errors.Is(err, media.ErrNoEncoder) {
		t.Fatalf("error = %v, want to wrap ErrNoEncoder", err)
	}
}

func TestFitAnimatedGIFKeepsTiming(t *testing.T) {
	src := animatedImage(media.FormatGIF, 64, 64)

	res, err := Fit(src, 8, true)
	if err != nil {
		t.Fatalf("Fit failed: %v", err)
	}
	if res.MIME != "image/gif" {
		t.Fatalf("mime = %q, want image/gif", res.MIME)
	}

	g, err := gif.DecodeAll(bytes.NewReader(res.Bytes))
	if err != nil {
		t.Fatalf("decode output: %v", err)
	}
	if len(g.Image) != 2 {
		t.Fatalf("frames = %d, want 2", len(g.Image))
	}
	if g.Delay[0] != 3 || g.Delay[1] != 5 {
		t.Fatalf("delays = %v, want [3 5] hundredths", g.Delay)
	}
	if b := g.Image[0].Bounds(); b.Dx() != 8 || b.Dy() != 8 {
		t.Fatalf("frame size = %dx%d, want 8x8", b.Dx(), b.Dy())
	}
}

func TestFitAnimatedWithoutEncoderFallsBackToStill(t *testing.T) {
	src := animatedImage(media.FormatWEBP, 30, 30)

	res, err := Fit(src, 10, true)
	if err != nil {
		t.Fatalf("Fit failed: %v", err)
	}
	out, err := media.Decode(res.Bytes, media.FormatWEBP)
	if err != nil {
		t.Fatalf("decode output: %v", err)
	}
	if out.Animated || out.FrameCount() != 1 {
		t.Fatalf("fallback output animated=%v frames=%d, want a single still frame",
			out.Animated, out.FrameCount())
	}
}

func TestFitAnimatedFlagOffEncodesStill(t *testing.T) {
	src := animatedImage(media.FormatGIF, 20, 20)

	res, err := Fit(src, 10, false)
	if err != nil {
		t.Fatalf("Fit failed: %v", err)
	}
	g, err := gif.DecodeAll(bytes.NewReader(res.Bytes))
	if err != nil {
		t.Fatalf("decode output: %v", err)
	}
	if len(g.Image) != 1 {
		t.Fatalf("frames = %d, want 1 when animation is not requested", len(g.Image))
	}
}

var colorRed = color.RGBA{R: 255, A: 255}
