package codec

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"io"
	"strings"

	exif "github.com/dsoprea/go-exif/v3"

	"squeeze/pkg/imgutil"
)

var pngSignature = []byte{0x89, 0x50, 0x4e, 0x47, 0x0d, 0x0a, 0x1a, 0x0a}

// hasMetadata reports whether the source carries metadata that a
// re-encode drops. Parse failures count as "no metadata".
func hasMetadata(data []byte, kind imgutil.Kind) bool {
	switch {
	case kind.HasExif():
		n, err := countExifTags(bytes.NewReader(data))
		return err == nil && n > 0
	case kind == imgutil.KindPNG:
		found, err := scanPNGMetadata(bytes.NewReader(data))
		return err == nil && found
	default:
		return false
	}
}

func countExifTags(rs io.ReadSeeker) (int, error) {
	tags, _, err := exif.GetFlatExifDataUniversalSearchWithReadSeeker(rs, nil, true)
	if err != nil {
		if isNoExif(err) {
			return 0, nil
		}
		return 0, err
	}
	return len(tags), nil
}

func isNoExif(err error) bool {
	return strings.Contains(strings.ToLower(err.Error()), "no exif")
}

// scanPNGMetadata walks the chunk list looking for text, time and EXIF
// chunks. It stops at IEND.
func scanPNGMetadata(r io.Reader) (bool, error) {
	br := bufio.NewReader(r)

	sig := make([]byte, len(pngSignature))
	if _, err := io.ReadFull(br, sig); err != nil {
		return false, err
	}
	if !bytes.Equal(sig, pngSignature) {
		return false, nil
	}

	header := make([]byte, 8)
	for {
		if _, err := io.ReadFull(br, header); err != nil {
			if err == io.EOF {
				return false, nil
			}
			return false, err
		}
		length := binary.BigEndian.Uint32(header[:4])

		switch string(header[4:8]) {
		case "tEXt", "zTXt", "iTXt", "tIME", "eXIf":
			return true, nil
		case "IEND":
			return false, nil
		}

		if _, err := io.CopyN(io.Discard, br, int64(length)+4); err != nil {
			return false, err
		}
	}
}
