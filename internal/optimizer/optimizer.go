// Package optimizer searches a descending quality ladder for the smallest
// encoding of an image.
package optimizer

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"io"

	"squeeze/internal/codec"
	"squeeze/internal/logger"
)

// Step is the distance between two rungs of the quality ladder.
const Step = 5

// Encoder is the codec capability the search needs.
type Encoder interface {
	Encode(w io.Writer, img image.Image, bucket codec.Bucket, quality int) error
}

// Trial is one rung of the ladder that was attempted.
type Trial struct {
	Quality int
	Size    int64
	Err     error
}

// Result is the outcome of a search. Data holds the bytes to persist.
type Result struct {
	Data    []byte
	Quality int
	Trials  []Trial
}

// Ladder lists the qualities a search would try, highest first: start,
// start-Step, ... down to start-maxReduction, never below 1.
func Ladder(start, maxReduction int) []int {
	var qs []int
	floor := start - maxReduction
	for q := start; q >= floor && q > 0; q -= Step {
		qs = append(qs, q)
	}
	return qs
}

// Search walks the ladder, encoding each rung in memory, and stops at the
// first rung that is not strictly smaller than the best so far. An encode
// error ends the scan with the best rung found. When no rung succeeded the
// image is encoded once more at start, and a failure there is returned.
func Search(ctx context.Context, img image.Image, bucket codec.Bucket, start, maxReduction int, enc Encoder) (Result, error) {
	res := Result{Quality: start}
	var best []byte

	for _, q := range Ladder(start, maxReduction) {
		var buf bytes.Buffer
		if err := enc.Encode(&buf, img, bucket, q); err != nil {
			res.Trials = append(res.Trials, Trial{Quality: q, Err: err})
			logger.Debug(ctx, "trial encode failed", "bucket", bucket, "quality", q, "err", err)
			break
		}

		size := int64(buf.Len())
		res.Trials = append(res.Trials, Trial{Quality: q, Size: size})
		logger.Debug(ctx, "trial encode", "bucket", bucket, "quality", q, "size", size)

		if best != nil && size >= int64(len(best)) {
			break
		}
		best = buf.Bytes()
		res.Quality = q
	}

	if best != nil {
		res.Data = best
		return res, nil
	}

	var buf bytes.Buffer
	if err := enc.Encode(&buf, img, bucket, res.Quality); err != nil {
		return res, fmt.Errorf("final encode: %w", err)
	}
	res.Data = buf.Bytes()
	return res, nil
}

// Smallest returns the smallest successful trial size, or -1 when none
// succeeded.
func (r Result) Smallest() int64 {
	smallest := int64(-1)
	for _, t := range r.Trials {
		if t.Err != nil {
			continue
		}
		if smallest < 0 || t.Size < smallest {
			smallest = t.Size
		}
	}
	return smallest
}
