package media

import (
	"bytes"
	"encoding/binary"
	"errors"
	"image"
	"image/draw"
	"time"

	"golang.org/x/image/webp"
)

var errNotWebP = errors.New("not a RIFF WEBP container")

// VP8X feature flags.
const (
	webpFlagAlpha     = 0x10
	webpFlagAnimation = 0x02
)

// ANMF frame flags.
const (
	anmfFlagDisposeBackground = 0x01
	anmfFlagNoBlend           = 0x02
)

type webpChunk struct {
	fourCC string
	data   []byte
}

func decodeWebP(data []byte) (*Image, error) {
	chunks, err := walkRIFF(data)
	if err != nil {
		return nil, &DecodeError{Format: FormatWEBP, cause: err}
	}

	var (
		animated         bool
		canvasW, canvasH int
		loop             int
		hasANMF          bool
	)
	for _, c := range chunks {
		switch c.fourCC {
		case "VP8X":
			if len(c.data) >= 10 {
				animated = c.data[0]&webpFlagAnimation != 0
				canvasW = int(readLE24(c.data[4:])) + 1
				canvasH = int(readLE24(c.data[7:])) + 1
			}
		case "ANIM":
			if len(c.data) >= 6 {
				loop = int(binary.LittleEndian.Uint16(c.data[4:6]))
			}
		case "ANMF":
			hasANMF = true
		}
	}

	if !animated || !hasANMF {
		bm, err := webp.Decode(bytes.NewReader(data))
		if err != nil {
			return nil, &DecodeError{Format: FormatWEBP, cause: err}
		}
		return NewStill(FormatWEBP, bm), nil
	}

	// Each ANMF payload is a frame bitstream; rewrap it as a standalone
	// file so the still decoder can handle it, then composite at the
	// frame's offset on the shared canvas.
	acc := image.NewRGBA(image.Rect(0, 0, canvasW, canvasH))
	var frames []Frame
	for _, c := range chunks {
		if c.fourCC != "ANMF" {
			continue
		}
		fr, err := decodeANMF(c.data)
		if err != nil {
			continue
		}
		region := image.Rect(fr.x, fr.y,
			fr.x+fr.bitmap.Bounds().Dx(),
			fr.y+fr.bitmap.Bounds().Dy())

		op := draw.Over
		if fr.noBlend {
			op = draw.Src
		}
		draw.Draw(acc, region, fr.bitmap, fr.bitmap.Bounds().Min, op)

		frames = append(frames, Frame{Bitmap: cloneRGBA(acc), Duration: fr.duration})

		if fr.disposeBackground {
			draw.Draw(acc, region, image.Transparent, image.Point{}, draw.Src)
		}
	}
	if len(frames) == 0 {
		return nil, &DecodeError{Format: FormatWEBP, cause: errNoFrames}
	}

	return &Image{
		Format:   FormatWEBP,
		Frames:   frames,
		Animated: len(frames) > 1,
		Loop:     loop,
	}, nil
}

type webpFrame struct {
	bitmap            image.Image
	x, y              int
	duration          time.Duration
	noBlend           bool
	disposeBackground bool
}

func decodeANMF(data []byte) (*webpFrame, error) {
	if len(data) < 16 {
		return nil, errors.New("short ANMF chunk")
	}
	x := int(readLE24(data[0:])) * 2
	y := int(readLE24(data[3:])) * 2
	w := int(readLE24(data[6:])) + 1
	h := int(readLE24(data[9:])) + 1
	durMS := int(readLE24(data[12:]))
	flags := data[15]

	sub := data[16:]
	hasAlpha := len(sub) >= 4 && string(sub[0:4]) == "ALPH"
	bm, err := webp.Decode(bytes.NewReader(wrapWebPBitstream(w, h, sub, hasAlpha)))
	if err != nil {
		return nil, err
	}

	return &webpFrame{
		bitmap:            bm,
		x:                 x,
		y:                 y,
		duration:          time.Duration(durMS) * time.Millisecond,
		noBlend:           flags&anmfFlagNoBlend != 0,
		disposeBackground: flags&anmfFlagDisposeBackground != 0,
	}, nil
}

// wrapWebPBitstream rebuilds a standalone WebP file around the chunk
// sequence extracted from one ANMF payload. Lossy frames with an alpha
// plane need a VP8X chunk in front so the decoder accepts the ALPH chunk.
func wrapWebPBitstream(w, h int, sub []byte, withVP8X bool) []byte {
	var body bytes.Buffer
	if withVP8X {
		var vp8x [10]byte
		vp8x[0] = webpFlagAlpha
		putLE24(vp8x[4:], uint32(w-1))
		putLE24(vp8x[7:], uint32(h-1))
		writeRIFFChunk(&body, "VP8X", vp8x[:])
	}
	body.Write(sub)

	out := make([]byte, 0, 12+body.Len())
	out = append(out, "RIFF"...)
	out = binary.LittleEndian.AppendUint32(out, uint32(4+body.Len()))
	out = append(out, "WEBP"...)
	return append(out, body.Bytes()...)
}

func walkRIFF(data []byte) ([]webpChunk, error) {
	if len(data) < 12 || string(data[0:4]) != "RIFF" || string(data[8:12]) != "WEBP" {
		return nil, errNotWebP
	}
	var chunks []webpChunk
	i := 12
	for i+8 <= len(data) {
		fourCC := string(data[i : i+4])
		size := int(binary.LittleEndian.Uint32(data[i+4 : i+8]))
		start := i + 8
		if size < 0 || start+size > len(data) {
			break
		}
		chunks = append(chunks, webpChunk{fourCC: fourCC, data: data[start : start+size]})
		i = start + size
		if size%2 == 1 {
			i++
		}
	}
	return chunks, nil
}

func writeRIFFChunk(buf *bytes.Buffer, fourCC string, payload []byte) {
	buf.WriteString(fourCC)
	var size [4]byte
	binary.LittleEndian.PutUint32(size[:], uint32(len(payload)))
	buf.Write(size[:])
	buf.Write(payload)
	if len(payload)%2 == 1 {
		buf.WriteByte(0)
	}
}

func readLE24(b []byte) uint32 {
	return uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16
}

func putLE24(b []byte, v uint32) {
	b[0] = byte(v)
	b[1] = byte(v >> 8)
	b[2] = byte(v >> 16)
}
