package pipeline

import (
	"bytes"
	"image"
	"image/color"
	"testing"

	ico "github.com/biessek/golang-ico"

	"imgd/internal/media"
)

func TestNormalizeRasterKeepsFormatAndSize(t *testing.T) {
	data := pngBytes(t, drawRGBA(30, 18, color.RGBA{G: 255, A: 255}))

	m, err := Normalize(data, media.FormatPNG)
	if err != nil {
		t.Fatalf("Normalize failed: %v", err)
	}
	if m.Format != media.FormatPNG {
		t.Fatalf("format = %s, want png", m.Format)
	}
	if w, h := m.Width(), m.Height(); w != 30 || h != 18 {
		t.Fatalf("dimensions = %dx%d, want 30x18", w, h)
	}
	if m.Animated {
		t.Fatal("still image reported as animated")
	}
}

func TestNormalizeKeepsAnimation(t *testing.T) {
	data := gifBytes(t,
		palettedFill(image.Rect(0, 0, 10, 10), color.RGBA{R: 255, A: 255}),
		palettedFill(image.Rect(0, 0, 10, 10), color.RGBA{B: 255, A: 255}),
	)

	m, err := Normalize(data, media.FormatGIF)
	if err != nil {
		t.Fatalf("Normalize failed: %v", err)
	}
	if !m.Animated || m.FrameCount() != 2 {
		t.Fatalf("animated=%v frames=%d, want animated with 2 frames", m.Animated, m.FrameCount())
	}
	if m.Format != media.FormatGIF {
		t.Fatalf("format = %s, want gif", m.Format)
	}
}

func TestNormalizeVectorLetterboxesToSquare(t *testing.T) {
	doc := `<svg xmlns="http://www.w3.org/2000/svg" width="10" height="20" viewBox="0 0 10 20">
  <rect x="0" y="0" width="10" height="20" fill="#ff0000"/>
</svg>`

	m, err := Normalize([]byte(doc), media.FormatSVG)
	if err != nil {
		t.Fatalf("Normalize failed: %v", err)
	}
	if m.Format != media.FormatPNG {
		t.Fatalf("format = %s, want png", m.Format)
	}
	// 10x20 rasterized at 2x is 20x40, then squared up on the long edge.
	if w, h := m.Width(), m.Height(); w != 40 || h != 40 {
		t.Fatalf("dimensions = %dx%d, want 40x40", w, h)
	}

	bm := m.Lead()
	if got := pixel(bm, 20, 20); got.A == 0 || got.R < 200 {
		t.Fatalf("center = %v, want the red rect", got)
	}
	if got := pixel(bm, 2, 20); got.A != 0 {
		t.Fatalf("margin = %v, want transparent letterbox", got)
	}
}

func TestNormalizeIconUpscalesToWorkingSize(t *testing.T) {
	var buf bytes.Buffer
	if err := ico.Encode(&buf, drawRGBA(16, 16, color.RGBA{R: 255, A: 255})); err != nil {
		t.Fatalf("encode ico fixture: %v", err)
	}

	m, err := Normalize(buf.Bytes(), media.FormatICO)
	if err != nil {
		t.Fatalf("Normalize failed: %v", err)
	}
	if m.Format != media.FormatPNG {
		t.Fatalf("format = %s, want png", m.Format)
	}
	if w, h := m.Width(), m.Height(); w != iconSide || h != iconSide {
		t.Fatalf("dimensions = %dx%d, want %dx%d", w, h, iconSide, iconSide)
	}
	if got := pixel(m.Lead(), 256, 256); got != (color.RGBA{R: 255, A: 255}) {
		t.Fatalf("center = %v, want the solid red source", got)
	}
}

func TestNormalizeReportsDecodeFailure(t *testing.T) {
	if _, err := Normalize([]byte("not a png"), media.FormatPNG); err == nil {
		t.Fatal("expected error for undecodable content")
	}
}
