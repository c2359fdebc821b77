package media

import (
	"bytes"
	"image"
	"image/draw"
	"time"

	"github.com/kettek/apng"
)

func decodePNG(data []byte) (*Image, error) {
	a, err := apng.DecodeAll(bytes.NewReader(data))
	if err != nil {
		return nil, &DecodeError{Format: FormatPNG, cause: err}
	}
	if len(a.Frames) == 0 {
		return nil, &DecodeError{Format: FormatPNG, cause: errNoFrames}
	}

	// The default image is a fallback for viewers that cannot animate; it
	// is not part of the sequence and must not be scaled as a frame.
	rendered := make([]apng.Frame, 0, len(a.Frames))
	for _, fr := range a.Frames {
		if fr.IsDefault {
			continue
		}
		rendered = append(rendered, fr)
	}
	if len(rendered) == 0 {
		return NewStill(FormatPNG, a.Frames[0].Image), nil
	}
	if len(rendered) == 1 {
		still := NewStill(FormatPNG, rendered[0].Image)
		still.Loop = int(a.LoopCount)
		return still, nil
	}

	// The first animation frame always spans the full canvas; later frames
	// may be sub-regions composited at an offset.
	first := rendered[0]
	canvas := image.Rect(0, 0,
		first.XOffset+first.Image.Bounds().Dx(),
		first.YOffset+first.Image.Bounds().Dy())

	acc := image.NewRGBA(canvas)
	var saved *image.RGBA
	frames := make([]Frame, 0, len(rendered))
	for _, fr := range rendered {
		region := image.Rect(
			fr.XOffset, fr.YOffset,
			fr.XOffset+fr.Image.Bounds().Dx(),
			fr.YOffset+fr.Image.Bounds().Dy())

		if fr.DisposeOp == apng.DISPOSE_OP_PREVIOUS {
			saved = cloneRGBA(acc)
		}

		op := draw.Src
		if fr.BlendOp == apng.BLEND_OP_OVER {
			op = draw.Over
		}
		draw.Draw(acc, region, fr.Image, fr.Image.Bounds().Min, op)

		frames = append(frames, Frame{Bitmap: cloneRGBA(acc), Duration: apngDelay(fr)})

		switch fr.DisposeOp {
		case apng.DISPOSE_OP_BACKGROUND:
			draw.Draw(acc, region, image.Transparent, image.Point{}, draw.Src)
		case apng.DISPOSE_OP_PREVIOUS:
			if saved != nil {
				acc = saved
			}
		}
	}

	return &Image{
		Format:   FormatPNG,
		Frames:   frames,
		Animated: true,
		Loop:     int(a.LoopCount),
	}, nil
}

func apngDelay(fr apng.Frame) time.Duration {
	den := int64(fr.DelayDenominator)
	if den == 0 {
		den = 100
	}
	return time.Duration(int64(fr.DelayNumerator) * int64(time.Second) / den)
}

func cloneRGBA(src *image.RGBA) *image.RGBA {
	out := image.NewRGBA(src.Bounds())
	copy(out.Pix, src.Pix)
	return out
}

// encodeAPNG serializes every frame as an animated PNG carrying the source
// durations and loop count (0 loops forever).
func encodeAPNG(m *Image) ([]byte, error) {
	out := apng.APNG{LoopCount: uint(m.Loop)}
	for _, fr := range m.Frames {
		num, den := apngDelayFraction(fr.Duration)
		out.Frames = append(out.Frames, apng.Frame{
			Image:            fr.Bitmap,
			DelayNumerator:   num,
			DelayDenominator: den,
		})
	}
	var buf bytes.Buffer
	if err := apng.Encode(&buf, out); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func apngDelayFraction(d time.Duration) (num, den uint16) {
	ms := d.Milliseconds()
	if ms <= 0 {
		return 0, 1000
	}
	if ms > 0xFFFF {
		ms = 0xFFFF
	}
	return uint16(ms), 1000
}
