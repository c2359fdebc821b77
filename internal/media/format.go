package media

// Format is the closed set of image formats the service accepts. Every
// format the detector can report is listed here; MIME strings and codec
// names hang off the constant so there is no second table to drift.
type Format int

const (
	FormatUnknown Format = iota
	FormatBMP
	FormatGIF
	FormatTIFF
	FormatJPEG
	FormatPNG
	FormatJPEG2000
	FormatICNS
	FormatICO
	FormatICOUnofficial
	FormatPSD
	FormatWEBP
	FormatAVIF
	FormatHEIF
	FormatHEIC
	FormatSVG
)

// All returns every supported format in declaration order.
func All() []Format {
	return []Format{
		FormatBMP,
		FormatGIF,
		FormatTIFF,
		FormatJPEG,
		FormatPNG,
		FormatJPEG2000,
		FormatICNS,
		FormatICO,
		FormatICOUnofficial,
		FormatPSD,
		FormatWEBP,
		FormatAVIF,
		FormatHEIF,
		FormatHEIC,
		FormatSVG,
	}
}

func (f Format) String() string {
	switch f {
	case FormatBMP:
		return "bmp"
	case FormatGIF:
		return "gif"
	case FormatTIFF:
		return "tiff"
	case FormatJPEG:
		return "jpeg"
	case FormatPNG:
		return "png"
	case FormatJPEG2000:
		return "jp2"
	case FormatICNS:
		return "icns"
	case FormatICO:
		return "ico"
	case FormatICOUnofficial:
		return "ico_unofficial"
	case FormatPSD:
		return "psd"
	case FormatWEBP:
		return "webp"
	case FormatAVIF:
		return "avif"
	case FormatHEIF:
		return "heif"
	case FormatHEIC:
		return "heic"
	case FormatSVG:
		return "svg"
	}
	return "unknown"
}

// MIME returns the canonical MIME type reported to clients.
func (f Format) MIME() string {
	switch f {
	case FormatBMP:
		return "image/bmp"
	case FormatGIF:
		return "image/gif"
	case FormatTIFF:
		return "image/tiff"
	case FormatJPEG:
		return "image/jpeg"
	case FormatPNG:
		return "image/png"
	case FormatJPEG2000:
		return "image/jp2"
	case FormatICNS:
		return "image/icns"
	case FormatICO:
		return "image/x-icon"
	case FormatICOUnofficial:
		return "image/vnd.microsoft.icon"
	case FormatPSD:
		return "image/vnd.adobe.photoshop"
	case FormatWEBP:
		return "image/webp"
	case FormatAVIF:
		return "image/avif"
	case FormatHEIF:
		return "image/heif"
	case FormatHEIC:
		return "image/heic"
	case FormatSVG:
		return "image/svg+xml"
	}
	return ""
}

// mimeAliases returns every MIME string that folds into this format.
// image/bmp covers DIB payloads, and the two ICNS spellings are one format.
func (f Format) mimeAliases() []string {
	switch f {
	case FormatBMP:
		return []string{"image/bmp", "image/x-ms-bmp"}
	case FormatICNS:
		return []string{"image/icns", "image/x-icns"}
	case FormatPSD:
		return []string{"image/vnd.adobe.photoshop", "image/x-psd"}
	case FormatHEIF:
		return []string{"image/heif", "image/heif-sequence"}
	case FormatHEIC:
		return []string{"image/heic", "image/heic-sequence"}
	}
	return []string{f.MIME()}
}

// CodecName returns the name the Go image registry uses for this format's
// codec. Used to fold image.DecodeConfig self-identification back into the
// closed set; formats without a registered decoder keep a stable name anyway.
func (f Format) CodecName() string {
	switch f {
	case FormatICOUnofficial:
		return "ico"
	}
	return f.String()
}

// FromMIME folds a MIME string into the closed set.
func FromMIME(mime string) (Format, bool) {
	for _, f := range All() {
		for _, alias := range f.mimeAliases() {
			if alias == mime {
				return f, true
			}
		}
	}
	return FormatUnknown, false
}

// FromCodecName folds an image registry codec name into the closed set.
func FromCodecName(name string) (Format, bool) {
	for _, f := range All() {
		if f.CodecName() == name {
			return f, true
		}
	}
	return FormatUnknown, false
}

// AllMIMEs returns the canonical MIME of every supported format, in order.
func AllMIMEs() []string {
	formats := All()
	mimes := make([]string, 0, len(formats))
	for _, f := range formats {
		mimes = append(mimes, f.MIME())
	}
	return mimes
}

// IsIcon reports whether the format is one of the icon containers that get
// normalized to a fixed-size PNG before any other processing.
func (f Format) IsIcon() bool {
	switch f {
	case FormatICNS, FormatICO, FormatICOUnofficial:
		return true
	}
	return false
}

// HasEncoder reports whether a round-trip encoder is wired for the format.
func (f Format) HasEncoder() bool {
	switch f {
	case FormatJPEG, FormatPNG, FormatGIF, FormatBMP, FormatTIFF, FormatWEBP:
		return true
	}
	return false
}
