// Package codec decodes source images, classifies them into an encoding
// bucket and re-encodes them at a given quality.
package codec

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"squeeze/pkg/imgutil"
)

// Image is a decoded source together with the color-mode facts the
// bucket classification needs.
type Image struct {
	Pixels image.Image
	// Mode is a short color-mode name: RGB, RGBA, L, LA, P, CMYK.
	Mode string
	// HasTransparency is set when a palette carries transparent entries or
	// an alpha-bearing image is not fully opaque.
	HasTransparency bool
	Kind            imgutil.Kind
	// Metadata is set when the source carries EXIF or PNG text/time chunks.
	// Re-encoding never copies them.
	Metadata bool
}

// DecodeError wraps a failure to read or decode a source image.
type DecodeError struct {
	Path string
	Err  error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode %s: %v", e.Path, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// EncodeError wraps a failure to encode at a given quality.
type EncodeError struct {
	Bucket  Bucket
	Quality int
	Err     error
}

func (e *EncodeError) Error() string {
	return fmt.Sprintf("encode %s at quality %d: %v", e.Bucket, e.Quality, e.Err)
}

func (e *EncodeError) Unwrap() error { return e.Err }

// Decode reads path and decodes it with whichever registered decoder
// matches its signature.
func Decode(path string) (Image, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Image{}, &DecodeError{Path: path, Err: err}
	}

	kind, _ := imgutil.DetectHeader(data)

	pixels, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return Image{}, &DecodeError{Path: path, Err: err}
	}

	mode, transparent := inspect(pixels)
	return Image{
		Pixels:          pixels,
		Mode:            mode,
		HasTransparency: transparent,
		Kind:            kind,
		Metadata:        hasMetadata(data, kind),
	}, nil
}
