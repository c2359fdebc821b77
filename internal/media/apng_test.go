package media

import (
	"bytes"
	"image/color"
	"testing"
	"time"

	"github.com/kettek/apng"
)

func TestDecodePNGStatic(t *testing.T) {
	data := pngBytes(t, drawRGBA(10, 6, color.RGBA{G: 255, A: 255}))

	m, err := decodePNG(data)
	if err != nil {
		t.Fatalf("decodePNG failed: %v", err)
	}
	if m.Animated {
		t.Fatal("plain png reported as animated")
	}
	if got := m.FrameCount(); got != 1 {
		t.Fatalf("frame count = %d, want 1", got)
	}
	if w, h := m.Width(), m.Height(); w != 10 || h != 6 {
		t.Fatalf("dimensions = %dx%d, want 10x6", w, h)
	}
}

func TestDecodePNGAnimated(t *testing.T) {
	fixture := apng.APNG{
		Frames: []apng.Frame{
			{
				Image:            drawRGBA(16, 16, color.RGBA{R: 255, A: 255}),
				DelayNumerator:   1,
				DelayDenominator: 10,
			},
			{
				Image:            drawRGBA(16, 16, color.RGBA{B: 255, A: 255}),
				DelayNumerator:   1,
				DelayDenominator: 4,
			},
		},
		LoopCount: 5,
	}
	var buf bytes.Buffer
	if err := apng.Encode(&buf, fixture); err != nil {
		t.Fatalf("encode fixture: %v", err)
	}

	m, err := decodePNG(buf.Bytes())
	if err != nil {
		t.Fatalf("decodePNG failed: %v", err)
	}
	if !m.Animated {
		t.Fatal("two-frame apng not reported as animated")
	}
	if got := m.FrameCount(); got != 2 {
		t.Fatalf("frame count = %d, want 2", got)
	}
	if m.Loop != 5 {
		t.Fatalf("loop = %d, want 5", m.Loop)
	}
	if got := m.Frames[0].Duration; got != 100*time.Millisecond {
		t.Fatalf("frame 0 duration = %v, want 100ms", got)
	}
	if got := m.Frames[1].Duration; got != 250*time.Millisecond {
		t.Fatalf("frame 1 duration = %v, want 250ms", got)
	}
	if got := pixel(m.Frames[0].Bitmap, 3, 3); got != (color.RGBA{R: 255, A: 255}) {
		t.Fatalf("frame 0 = %v, want red", got)
	}
	if got := pixel(m.Frames[1].Bitmap, 3, 3); got != (color.RGBA{B: 255, A: 255}) {
		t.Fatalf("frame 1 = %v, want blue", got)
	}
}

// The default image is a fallback for viewers that cannot animate and is not
// part of the frame sequence.
func TestDecodePNGSkipsDefaultImage(t *testing.T) {
	fixture := apng.APNG{
		Frames: []apng.Frame{
			{Image: drawRGBA(16, 16, color.RGBA{R: 128, G: 128, B: 128, A: 255}), IsDefault: true},
			{Image: drawRGBA(16, 16, color.RGBA{R: 255, A: 255}), DelayNumerator: 1, DelayDenominator: 10},
			{Image: drawRGBA(16, 16, color.RGBA{B: 255, A: 255}), DelayNumerator: 1, DelayDenominator: 10},
		},
	}
	var buf bytes.Buffer
	if err := apng.Encode(&buf, fixture); err != nil {
		t.Fatalf("encode fixture: %v", err)
	}

	m, err := decodePNG(buf.Bytes())
	if err != nil {
		t.Fatalf("decodePNG failed: %v", err)
	}
	if got := m.FrameCount(); got != 2 {
		t.Fatalf("frame count = %d, want 2 rendered frames", got)
	}
	if got := pixel(m.Frames[0].Bitmap, 3, 3); got != (color.RGBA{R: 255, A: 255}) {
		t.Fatalf("frame 0 = %v, want red (default image must not leak into the sequence)", got)
	}
}

func TestDecodePNGCompositesOffsetFrames(t *testing.T) {
	fixture := apng.APNG{
		Frames: []apng.Frame{
			{
				Image:            drawRGBA(16, 16, color.RGBA{R: 255, A: 255}),
				DelayNumerator:   1,
				DelayDenominator: 10,
			},
			{
				Image:            drawRGBA(8, 8, color.RGBA{B: 255, A: 255}),
				XOffset:          4,
				YOffset:          4,
				DelayNumerator:   1,
				DelayDenominator: 10,
			},
		},
	}
	var buf bytes.Buffer
	if err := apng.Encode(&buf, fixture); err != nil {
		t.Fatalf("encode fixture: %v", err)
	}

	m, err := decodePNG(buf.Bytes())
	if err != nil {
		t.Fatalf("decodePNG failed: %v", err)
	}
	if got := m.FrameCount(); got != 2 {
		t.Fatalf("frame count = %d, want 2", got)
	}
	second := m.Frames[1].Bitmap
	if got := second.Bounds(); got.Dx() != 16 || got.Dy() != 16 {
		t.Fatalf("frame 1 bounds = %v, want full 16x16 canvas", got)
	}
	if got := pixel(second, 8, 8); got != (color.RGBA{B: 255, A: 255}) {
		t.Fatalf("patched region = %v, want blue", got)
	}
	if got := pixel(second, 1, 1); got != (color.RGBA{R: 255, A: 255}) {
		t.Fatalf("untouched region = %v, want red carried over from frame 0", got)
	}
}

func TestEncodeAPNGRoundTrip(t *testing.T) {
	m := &Image{
		Format: FormatPNG,
		Frames: []Frame{
			{Bitmap: drawRGBA(12, 12, color.RGBA{R: 255, A: 255}), Duration: 100 * time.Millisecond},
			{Bitmap: drawRGBA(12, 12, color.RGBA{G: 255, A: 255}), Duration: 50 * time.Millisecond},
		},
		Animated: true,
	}
	data, err := encodeAPNG(m)
	if err != nil {
		t.Fatalf("encodeAPNG failed: %v", err)
	}

	back, err := decodePNG(data)
	if err != nil {
		t.Fatalf("decodePNG failed: %v", err)
	}
	if !back.Animated {
		t.Fatal("round-tripped apng not animated")
	}
	if got := back.FrameCount(); got != 2 {
		t.Fatalf("frame count = %d, want 2", got)
	}
	if back.Loop != 0 {
		t.Fatalf("loop = %d, want 0 (forever)", back.Loop)
	}
	if got := back.Frames[0].Duration; got != 100*time.Millisecond {
		t.Fatalf("frame 0 duration = %v, want 100ms", got)
	}
	if got := back.Frames[1].Duration; got != 50*time.Millisecond {
		t.Fatalf("frame 1 duration = %v, want 50ms", got)
	}
}
