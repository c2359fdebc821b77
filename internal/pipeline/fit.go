package pipeline

import (
	"errors"
	"fmt"
	"image"

	"github.com/disintegration/imaging"

	"imgd/internal/media"
)

// FitError reports a rescale that could not be carried out, whether the box
// was unusable or the canonical format has no encoder.
type FitError struct {
	Box   int
	cause error
}

func (e *FitError) Error() string {
	return fmt.Sprintf("fit into %d: %v", e.Box, e.cause)
}

func (e *FitError) Unwrap() error { return e.cause }

// FitResult is the rescaled payload in the image's own container format.
type FitResult struct {
	Bytes  []byte
	MIME   string
	Width  int
	Height int
}

// Fit scales the image down to fit a box×box bounding box, aspect ratio
// preserved, never upscaling. With animated set, multi-frame sources are
// re-encoded with their frame timing; formats without an animated encoder
// fall back to a static first-frame result.
func Fit(m *media.Image, box int, animated bool) (*FitResult, error) {
	if box <= 0 {
		return nil, &FitError{Box: box, cause: errors.New("box must be positive")}
	}

	fitted := m.Map(func(bm image.Image) image.Image {
		return imaging.Fit(bm, box, box, imaging.Lanczos)
	})

	if animated && fitted.Animated {
		if out, err := media.EncodeAnimated(fitted, fitted.Format); err == nil {
			return &FitResult{
				Bytes:  out,
				MIME:   fitted.Format.MIME(),
				Width:  fitted.Width(),
				Height: fitted.Height(),
			}, nil
		}
	}

	out, err := media.EncodeStill(fitted.Lead(), fitted.Format)
	if err != nil {
		return nil, &FitError{Box: box, cause: err}
	}
	return &FitResult{
		Bytes:  out,
		MIME:   fitted.Format.MIME(),
		Width:  fitted.Width(),
		Height: fitted.Height(),
	}, nil
}
