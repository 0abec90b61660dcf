package imgutil

import (
	"bytes"
	"errors"
)

// Kind identifies an image container by its magic bytes.
type Kind int

const (
	KindUnknown Kind = iota
	KindJPEG
	KindPNG
	KindTIFF
	KindGIF
	KindWebP
	KindBMP
)

func (k Kind) String() string {
	switch k {
	case KindJPEG:
		return "jpeg"
	case KindPNG:
		return "png"
	case KindTIFF:
		return "tiff"
	case KindGIF:
		return "gif"
	case KindWebP:
		return "webp"
	case KindBMP:
		return "bmp"
	default:
		return "unknown"
	}
}

// HasExif reports whether the container can carry an EXIF block readable
// by the EXIF scanner.
func (k Kind) HasExif() bool {
	return k == KindJPEG || k == KindTIFF
}

var (
	pngSig    = []byte{0x89, 0x50, 0x4e, 0x47, 0x0d, 0x0a, 0x1a, 0x0a}
	jpegSig   = []byte{0xff, 0xd8, 0xff}
	tiffSigLE = []byte{0x49, 0x49, 0x2a, 0x00}
	tiffSigBE = []byte{0x4d, 0x4d, 0x00, 0x2a}
	gif87Sig  = []byte("GIF87a")
	gif89Sig  = []byte("GIF89a")
	bmpSig    = []byte("BM")
	riffSig   = []byte("RIFF")
	webpSig   = []byte("WEBP")
)

// ErrShortHeader is returned when fewer than 8 bytes are available.
var ErrShortHeader = errors.New("header too short")

// DetectHeader inspects the leading bytes of a file for known signatures.
// At least 8 bytes are required; WebP needs 12.
func DetectHeader(header []byte) (Kind, error) {
	if len(header) < 8 {
		return KindUnknown, ErrShortHeader
	}

	switch {
	case bytes.HasPrefix(header, jpegSig):
		return KindJPEG, nil
	case bytes.HasPrefix(header, pngSig):
		return KindPNG, nil
	case bytes.HasPrefix(header, tiffSigLE), bytes.HasPrefix(header, tiffSigBE):
		return KindTIFF, nil
	case bytes.HasPrefix(header, gif87Sig), bytes.HasPrefix(header, gif89Sig):
		return KindGIF, nil
	case len(header) >= 12 && bytes.HasPrefix(header, riffSig) && bytes.Equal(header[8:12], webpSig):
		return KindWebP, nil
	case bytes.HasPrefix(header, bmpSig):
		return KindBMP, nil
	}

	return KindUnknown, nil
}
