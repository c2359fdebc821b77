package media

import (
	"bytes"
	"image"
	"image/color/palette"
	"image/draw"
	"image/gif"
	"time"
)

// gifDelayUnit is the GIF timing granularity, hundredths of a second.
const gifDelayUnit = 10 * time.Millisecond

func decodeGIF(data []byte) (*Image, error) {
	g, err := gif.DecodeAll(bytes.NewReader(data))
	if err != nil {
		return nil, &DecodeError{Format: FormatGIF, cause: err}
	}
	if len(g.Image) == 0 {
		return nil, &DecodeError{Format: FormatGIF, cause: errNoFrames}
	}

	canvas := image.Rect(0, 0, g.Config.Width, g.Config.Height)
	if canvas.Empty() {
		canvas = g.Image[0].Bounds()
	}

	// Frames smaller than the logical canvas are deltas: each one paints
	// over what previous frames produced. Such sequences must be composed
	// before any scaling, otherwise every scaled frame after the first
	// shows only its own sliver.
	additive := false
	for _, fr := range g.Image {
		if fr.Bounds() != canvas {
			additive = true
			break
		}
	}

	frames := make([]Frame, 0, len(g.Image))
	if !additive {
		for i, fr := range g.Image {
			frames = append(frames, Frame{Bitmap: fr, Duration: gifDelay(g.Delay, i)})
		}
	} else {
		acc := image.NewRGBA(canvas)
		for i, fr := range g.Image {
			draw.Draw(acc, fr.Bounds(), fr, fr.Bounds().Min, draw.Over)
			snapshot := image.NewRGBA(canvas)
			copy(snapshot.Pix, acc.Pix)
			frames = append(frames, Frame{Bitmap: snapshot, Duration: gifDelay(g.Delay, i)})
		}
	}

	return &Image{
		Format:   FormatGIF,
		Frames:   frames,
		Animated: len(frames) > 1,
		Loop:     g.LoopCount,
	}, nil
}

func gifDelay(delays []int, i int) time.Duration {
	if i >= len(delays) {
		return 0
	}
	return time.Duration(delays[i]) * gifDelayUnit
}

// encodeGIF serializes every frame as an animated GIF, quantizing each
// bitmap and carrying the source delays and loop count.
func encodeGIF(m *Image) ([]byte, error) {
	out := &gif.GIF{LoopCount: m.Loop}
	for _, fr := range m.Frames {
		out.Image = append(out.Image, palettize(fr.Bitmap))
		out.Delay = append(out.Delay, int(fr.Duration/gifDelayUnit))
	}
	var buf bytes.Buffer
	if err := gif.EncodeAll(&buf, out); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func palettize(src image.Image) *image.Paletted {
	if p, ok := src.(*image.Paletted); ok {
		return p
	}
	b := src.Bounds()
	p := image.NewPaletted(image.Rect(0, 0, b.Dx(), b.Dy()), palette.Plan9)
	draw.FloydSteinberg.Draw(p, p.Bounds(), src, b.Min)
	return p
}
