package media

import (
	"bytes"
	"encoding/binary"

	"github.com/rwcarlsen/goexif/exif"
)

// EXIF tags operated on by the pipeline. Both live in IFD0.
const (
	TagOrientation uint16 = 0x0112
	TagGPSInfo     uint16 = 0x8825
)

var exifHeader = []byte("Exif\x00\x00")

// ExtractAPP1 walks the JPEG segment stream and returns the raw TIFF
// payload of the first EXIF APP1 segment, or nil when there is none.
func ExtractAPP1(jpegData []byte) []byte {
	if len(jpegData) < 4 || jpegData[0] != 0xFF || jpegData[1] != 0xD8 {
		return nil
	}
	i := 2
	for i+4 <= len(jpegData) {
		if jpegData[i] != 0xFF {
			return nil
		}
		marker := jpegData[i+1]
		// Standalone markers carry no length.
		if marker == 0xD8 || marker == 0x01 || (marker >= 0xD0 && marker <= 0xD7) {
			i += 2
			continue
		}
		// Entropy-coded data follows SOS; APP1 cannot appear after it.
		if marker == 0xDA || marker == 0xD9 {
			return nil
		}
		length := int(binary.BigEndian.Uint16(jpegData[i+2:]))
		if length < 2 || i+2+length > len(jpegData) {
			return nil
		}
		if marker == 0xE1 {
			payload := jpegData[i+4 : i+2+length]
			if bytes.HasPrefix(payload, exifHeader) {
				return append([]byte(nil), payload[len(exifHeader):]...)
			}
		}
		i += 2 + length
	}
	return nil
}

// Orientation reads the EXIF orientation tag from a raw TIFF payload.
// Returns 0 when the payload is empty, malformed, or carries no tag.
func Orientation(payload []byte) int {
	if len(payload) == 0 {
		return 0
	}
	x, err := exif.Decode(bytes.NewReader(payload))
	if err != nil {
		return 0
	}
	tag, err := x.Get(exif.Orientation)
	if err != nil {
		return 0
	}
	v, err := tag.Int(0)
	if err != nil {
		return 0
	}
	return v
}

// StripTags removes the named entries from IFD0 of a raw TIFF payload and
// returns the result. The entry table is rewritten compactly and the freed
// bytes zeroed in place, so every absolute offset elsewhere in the payload
// stays valid. The input slice is never modified.
func StripTags(payload []byte, tags ...uint16) []byte {
	if len(payload) < 8 {
		return payload
	}
	out := append([]byte(nil), payload...)

	var order binary.ByteOrder
	switch {
	case out[0] == 'I' && out[1] == 'I':
		order = binary.LittleEndian
	case out[0] == 'M' && out[1] == 'M':
		order = binary.BigEndian
	default:
		return out
	}
	if order.Uint16(out[2:]) != 42 {
		return out
	}

	ifd := int(order.Uint32(out[4:]))
	if ifd < 8 || ifd+2 > len(out) {
		return out
	}
	count := int(order.Uint16(out[ifd:]))
	entries := ifd + 2
	if entries+count*12+4 > len(out) {
		return out
	}

	drop := func(tag uint16) bool {
		for _, t := range tags {
			if t == tag {
				return true
			}
		}
		return false
	}

	kept := 0
	for i := 0; i < count; i++ {
		src := entries + i*12
		if drop(order.Uint16(out[src:])) {
			continue
		}
		dst := entries + kept*12
		if dst != src {
			copy(out[dst:dst+12], out[src:src+12])
		}
		kept++
	}
	if kept == count {
		return out
	}

	next := order.Uint32(out[entries+count*12:])
	order.PutUint16(out[ifd:], uint16(kept))
	tail := entries + kept*12
	order.PutUint32(out[tail:], next)
	for i := tail + 4; i < entries+count*12+4; i++ {
		out[i] = 0
	}
	return out
}

// InsertAPP1 returns jpegData with an EXIF APP1 segment carrying payload
// spliced in directly after SOI. Intended for freshly encoded streams that
// carry no APP1 yet. Payloads too large for one segment are dropped rather
// than truncated.
func InsertAPP1(jpegData, payload []byte) []byte {
	if len(payload) == 0 {
		return jpegData
	}
	if len(jpegData) < 2 || jpegData[0] != 0xFF || jpegData[1] != 0xD8 {
		return jpegData
	}
	segLen := 2 + len(exifHeader) + len(payload)
	if segLen > 0xFFFF {
		return jpegData
	}
	out := make([]byte, 0, len(jpegData)+2+segLen)
	out = append(out, jpegData[:2]...)
	out = append(out, 0xFF, 0xE1, byte(segLen>>8), byte(segLen))
	out = append(out, exifHeader...)
	out = append(out, payload...)
	out = append(out, jpegData[2:]...)
	return out
}
