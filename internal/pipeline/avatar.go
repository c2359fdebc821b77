package pipeline

import (
	"fmt"
	"image"
	"strings"
	"sync"

	"github.com/disintegration/imaging"
	"golang.org/x/sync/errgroup"

	"imgd/internal/media"
)

// AvatarSize is one of the fixed square renditions the site serves.
type AvatarSize int

const (
	AvatarMini   AvatarSize = 24
	AvatarNormal AvatarSize = 48
	AvatarLarge  AvatarSize = 73
	AvatarXL     AvatarSize = 128
	AvatarXXL    AvatarSize = 256
	AvatarXXXL   AvatarSize = 512
)

// AvatarSizes returns every rendition in ascending order.
func AvatarSizes() []AvatarSize {
	return []AvatarSize{AvatarMini, AvatarNormal, AvatarLarge, AvatarXL, AvatarXXL, AvatarXXXL}
}

// Mandatory renditions are always produced, upscaling small sources if
// needed. The rest are only cut when the source covers them.
func (s AvatarSize) Mandatory() bool {
	return s == AvatarMini || s == AvatarNormal || s == AvatarLarge
}

// Label is the response key for this rendition.
func (s AvatarSize) Label() string {
	return fmt.Sprintf("avatar%d", int(s))
}

// SupportedSizesDesc lists the renditions for the endpoint's usage doc.
func SupportedSizesDesc() string {
	var parts []string
	for _, s := range AvatarSizes() {
		parts = append(parts, fmt.Sprintf("%dx%d", int(s), int(s)))
	}
	return strings.Join(parts, " / ")
}

// Avatar is one encoded rendition, always PNG.
type Avatar struct {
	Bytes []byte
}

// AvatarSet maps produced renditions by size.
type AvatarSet map[AvatarSize]Avatar

// AvatarError reports a rendition that could not be produced.
type AvatarError struct {
	Size  AvatarSize
	cause error
}

func (e *AvatarError) Error() string {
	return fmt.Sprintf("%s: %v", e.Size.Label(), e.cause)
}

func (e *AvatarError) Unwrap() error { return e.cause }

// ResizeAvatars cuts the avatar renditions from the image. The largest size
// is attempted first; when the source covers it, that result becomes the
// base every other size is cut from, so the full upload is resized once.
// With animated set, multi-frame sources come out as animated PNG looping
// forever. A conditional size that fails is dropped from the set, a
// mandatory one that fails fails the whole request.
func ResizeAvatars(m *media.Image, animated bool) (AvatarSet, error) {
	base := AutoRotate(m)
	if covers(base, AvatarXXXL) {
		base = coverCrop(base, AvatarXXXL)
	}

	animate := animated && base.Animated

	var (
		mu  sync.Mutex
		out = make(AvatarSet, len(AvatarSizes()))
	)
	var g errgroup.Group
	for _, size := range AvatarSizes() {
		if !size.Mandatory() && !covers(base, size) {
			continue
		}
		g.Go(func() error {
			data, err := encodeAvatar(coverCrop(base, size), animate)
			if err != nil {
				if size.Mandatory() {
					return &AvatarError{Size: size, cause: err}
				}
				return nil
			}
			mu.Lock()
			out[size] = Avatar{Bytes: data}
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func covers(m *media.Image, s AvatarSize) bool {
	return m.Width() >= int(s) && m.Height() >= int(s)
}

// coverCrop scales the shorter edge to the target and center-crops the
// longer one, yielding an exact s×s square per frame.
func coverCrop(m *media.Image, s AvatarSize) *media.Image {
	side := int(s)
	return m.Map(func(bm image.Image) image.Image {
		return imaging.Fill(bm, side, side, imaging.Center, imaging.Lanczos)
	})
}

func encodeAvatar(m *media.Image, animate bool) ([]byte, error) {
	if animate && m.FrameCount() > 1 {
		m.Loop = 0
		if out, err := media.EncodeAnimated(m, media.FormatPNG); err == nil {
			return out, nil
		}
	}
	return media.EncodeStill(m.Lead(), media.FormatPNG)
}
