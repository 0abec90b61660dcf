package codec

import (
	"fmt"
	"image"
	"image/png"
	"io"

	"github.com/gen2brain/jpegli"
)

const (
	MinQuality = 1
	MaxQuality = 100

	// progressiveLevel is jpegli's most progressive scan script.
	progressiveLevel = 2
)

// Encoder encodes canonical pixels for a bucket. The zero value is ready
// to use.
type Encoder struct{}

// Encode writes img to w in the bucket's format. LosslessAlpha output does
// not depend on quality; it is still range-checked so both buckets reject
// the same inputs.
func (Encoder) Encode(w io.Writer, img image.Image, bucket Bucket, quality int) error {
	if quality < MinQuality || quality > MaxQuality {
		return &EncodeError{
			Bucket:  bucket,
			Quality: quality,
			Err:     fmt.Errorf("quality must be in [%d, %d]", MinQuality, MaxQuality),
		}
	}

	var err error
	switch bucket {
	case LossyOpaque:
		err = jpegli.Encode(w, img, &jpegli.EncodingOptions{
			Quality:          quality,
			ProgressiveLevel: progressiveLevel,
			OptimizeCoding:   true,
		})
	case LosslessAlpha:
		enc := png.Encoder{CompressionLevel: png.BestCompression}
		err = enc.Encode(w, img)
	default:
		err = fmt.Errorf("unknown bucket %d", int(bucket))
	}
	if err != nil {
		return &EncodeError{Bucket: bucket, Quality: quality, Err: err}
	}
	return nil
}
