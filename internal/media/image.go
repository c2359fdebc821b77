package media

import (
	"image"
	"time"
)

// Frame is one bitmap of a decoded sequence. Duration is zero for stills.
type Frame struct {
	Bitmap   image.Image
	Duration time.Duration
}

// Image is the canonical decoded form every transform consumes: an ordered
// frame list (always at least one), the detected format, and the raw EXIF
// TIFF payload when the source was a JPEG. Transforms return new values and
// never mutate the frames of an Image they were handed.
type Image struct {
	Format   Format
	Frames   []Frame
	Animated bool
	// Loop is the animation loop count, 0 meaning forever.
	Loop int
	EXIF []byte
}

// NewStill wraps a single bitmap as a canonical image.
func NewStill(f Format, bitmap image.Image) *Image {
	return &Image{
		Format: f,
		Frames: []Frame{{Bitmap: bitmap}},
	}
}

// Lead returns the first frame's bitmap, nil for a frameless image.
func (m *Image) Lead() image.Image {
	if len(m.Frames) == 0 {
		return nil
	}
	return m.Frames[0].Bitmap
}

// Width returns the lead frame width in pixels.
func (m *Image) Width() int {
	if bm := m.Lead(); bm != nil {
		return bm.Bounds().Dx()
	}
	return 0
}

// Height returns the lead frame height in pixels.
func (m *Image) Height() int {
	if bm := m.Lead(); bm != nil {
		return bm.Bounds().Dy()
	}
	return 0
}

// FrameCount returns the number of decoded frames.
func (m *Image) FrameCount() int {
	return len(m.Frames)
}

// Map returns a copy of the image with fn applied to every frame bitmap.
// Durations, loop count, format and EXIF carry over unchanged.
func (m *Image) Map(fn func(image.Image) image.Image) *Image {
	frames := make([]Frame, len(m.Frames))
	for i, fr := range m.Frames {
		frames[i] = Frame{Bitmap: fn(fr.Bitmap), Duration: fr.Duration}
	}
	out := *m
	out.Frames = frames
	return &out
}

// WithFormat returns a copy of the image reporting a different canonical
// format. Frames are shared, which is safe because they are never mutated.
func (m *Image) WithFormat(f Format) *Image {
	out := *m
	out.Format = f
	return &out
}
