package media

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/gif"
	"image/jpeg"
	"image/png"

	"github.com/chai2010/webp"
	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
)

// ErrNoEncoder reports a format with no wired serializer. Callers treat it
// as a rescale failure, matching what the format can actually deliver.
var ErrNoEncoder = errors.New("no encoder wired for format")

// webpQuality is the lossy quality used when re-encoding WebP output.
const webpQuality = 90

// EncodeStill serializes a single bitmap in the given container format.
func EncodeStill(bitmap image.Image, f Format) ([]byte, error) {
	var buf bytes.Buffer
	var err error
	switch f {
	case FormatJPEG:
		err = jpeg.Encode(&buf, bitmap, nil)
	case FormatPNG:
		err = png.Encode(&buf, bitmap)
	case FormatGIF:
		err = gif.Encode(&buf, bitmap, nil)
	case FormatBMP:
		err = bmp.Encode(&buf, bitmap)
	case FormatTIFF:
		err = tiff.Encode(&buf, bitmap, nil)
	case FormatWEBP:
		err = webp.Encode(&buf, bitmap, &webp.Options{Quality: webpQuality})
	default:
		return nil, fmt.Errorf("%w: %s", ErrNoEncoder, f)
	}
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// EncodeAnimated serializes the full frame sequence with its durations and
// loop count. Only GIF and PNG have animated encoders wired.
func EncodeAnimated(m *Image, f Format) ([]byte, error) {
	switch f {
	case FormatGIF:
		return encodeGIF(m)
	case FormatPNG:
		return encodeAPNG(m)
	}
	return nil, fmt.Errorf("%w: animated %s", ErrNoEncoder, f)
}
