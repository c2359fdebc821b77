package media

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"io"

	ico "github.com/biessek/golang-ico"
	"github.com/gen2brain/avif"
	"github.com/gen2brain/heic"
	"github.com/jackmordaunt/icns/v2"
	"github.com/oov/psd"
	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
)

// DecodeError reports a decoder failure for a detected format. The cause
// goes to logs; clients only ever see the generic message.
type DecodeError struct {
	Format Format
	cause  error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode %s: %v", e.Format, e.cause)
}

func (e *DecodeError) Unwrap() error {
	return e.cause
}

var errNoFrames = errors.New("no frames decoded")

// Decode extracts the ordered frame sequence of raster content that was
// detected as format f. Vector content goes through RasterizeSVG instead.
func Decode(data []byte, f Format) (*Image, error) {
	switch f {
	case FormatGIF:
		return decodeGIF(data)
	case FormatPNG:
		return decodePNG(data)
	case FormatWEBP:
		return decodeWebP(data)
	case FormatJPEG:
		return decodeJPEG(data)
	case FormatBMP:
		return decodeWith(f, data, bmp.Decode)
	case FormatTIFF:
		return decodeWith(f, data, tiff.Decode)
	case FormatICO, FormatICOUnofficial:
		return decodeWith(f, data, ico.Decode)
	case FormatICNS:
		return decodeWith(f, data, icns.Decode)
	case FormatPSD:
		return decodePSD(data)
	case FormatAVIF:
		return decodeWith(f, data, avif.Decode)
	case FormatHEIF, FormatHEIC:
		return decodeWith(f, data, heic.Decode)
	case FormatJPEG2000:
		return nil, &DecodeError{Format: f, cause: errors.New("no decoder wired")}
	case FormatSVG:
		return nil, &DecodeError{Format: f, cause: errors.New("vector content must be rasterized")}
	}
	return nil, &DecodeError{Format: f, cause: errors.New("unsupported format")}
}

func decodeWith(f Format, data []byte, fn func(io.Reader) (image.Image, error)) (*Image, error) {
	bm, err := fn(bytes.NewReader(data))
	if err != nil {
		return nil, &DecodeError{Format: f, cause: err}
	}
	return NewStill(f, bm), nil
}

func decodeJPEG(data []byte) (*Image, error) {
	bm, err := jpeg.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, &DecodeError{Format: FormatJPEG, cause: err}
	}
	out := NewStill(FormatJPEG, bm)
	out.EXIF = ExtractAPP1(data)
	return out, nil
}

func decodePSD(data []byte) (*Image, error) {
	doc, _, err := psd.Decode(bytes.NewReader(data), &psd.DecodeOptions{SkipLayerImage: true})
	if err != nil {
		return nil, &DecodeError{Format: FormatPSD, cause: err}
	}
	if doc.Picker == nil {
		return nil, &DecodeError{Format: FormatPSD, cause: errors.New("no merged image data")}
	}
	return NewStill(FormatPSD, doc.Picker), nil
}
