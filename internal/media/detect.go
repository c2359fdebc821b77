package media

import (
	"bytes"
	"errors"
	"image"

	"github.com/gabriel-vasile/mimetype"
)

// ErrUnknownFormat reports content whose format is outside the supported
// set. Handlers translate it into the client-facing 400 response.
var ErrUnknownFormat = errors.New("unable to determine the file type")

// Detect identifies the format of raw content from the bytes alone. File
// names and client-declared content types are never consulted.
//
// Two passes: a magic-byte sniff first, then letting the registered Go
// decoders self-identify the content. Both passes fold their answer into
// the closed Format set; when neither recognizes the content the caller
// gets ErrUnknownFormat, never a guess.
func Detect(data []byte) (Format, error) {
	if len(data) == 0 {
		return FormatUnknown, ErrUnknownFormat
	}

	mtype := mimetype.Detect(data)
	for _, f := range All() {
		for _, alias := range f.mimeAliases() {
			if mtype.Is(alias) {
				return f, nil
			}
		}
	}

	if _, name, err := image.DecodeConfig(bytes.NewReader(data)); err == nil {
		if f, ok := FromCodecName(name); ok {
			return f, nil
		}
	}

	return FormatUnknown, ErrUnknownFormat
}
