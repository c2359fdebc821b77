package media

import (
	"bytes"
	"errors"
	"image"
	"math"

	"github.com/srwiley/oksvg"
	"github.com/srwiley/rasterx"
)

// RasterScale is the density multiplier applied when rasterizing vector
// content, giving avatar crops a high-resolution source to work from.
const RasterScale = 2

// RasterizeSVG renders an SVG document into a transparent RGBA bitmap at
// RasterScale times its intrinsic size.
func RasterizeSVG(data []byte) (image.Image, error) {
	icon, err := oksvg.ReadIconStream(bytes.NewReader(data), oksvg.IgnoreErrorMode)
	if err != nil {
		return nil, &DecodeError{Format: FormatSVG, cause: err}
	}

	w, h := icon.ViewBox.W, icon.ViewBox.H
	if w <= 0 || h <= 0 {
		return nil, &DecodeError{Format: FormatSVG, cause: errors.New("document has no intrinsic size")}
	}

	outW := int(math.Round(w * RasterScale))
	outH := int(math.Round(h * RasterScale))

	rgba := image.NewRGBA(image.Rect(0, 0, outW, outH))
	scanner := rasterx.NewScannerGV(outW, outH, rgba, rgba.Bounds())
	raster := rasterx.NewDasher(outW, outH, scanner)
	icon.SetTarget(0, 0, float64(outW), float64(outH))
	icon.Draw(raster, 1.0)

	return rgba, nil
}
