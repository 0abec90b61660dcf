package processor

import (
	"time"

	"squeeze/internal/codec"
	"squeeze/internal/optimizer"
)

// Options configures a batch run.
type Options struct {
	Input        string
	OutputDir    string
	Quality      int
	MaxReduction int
	Overwrite    bool
	Recurse      bool
	Pattern      string
	// DryRun runs the search without writing or checking destinations.
	DryRun bool
}

// Request describes one file to compress.
type Request struct {
	Source       string
	Destination  string
	Display      string
	Quality      int
	MaxReduction int
	Overwrite    bool
	DryRun       bool
}

// Status is the terminal state of one file.
type Status int

const (
	StatusProcessed Status = iota
	StatusSkipped
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusProcessed:
		return "processed"
	case StatusSkipped:
		return "skipped"
	case StatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Outcome is the per-file result of Process.
type Outcome struct {
	Source         string
	Destination    string
	Display        string
	Status         Status
	Bucket         codec.Bucket
	Quality        int
	OriginalSize   int64
	CompressedSize int64
	Trials         []optimizer.Trial
	// MetadataDropped is set when the source carried metadata the
	// re-encode did not keep.
	MetadataDropped bool
	Err             error
}

// Ratio is CompressedSize as a percentage of OriginalSize, or 0 when the
// original was empty.
func (o Outcome) Ratio() float64 {
	if o.OriginalSize == 0 {
		return 0
	}
	return float64(o.CompressedSize) / float64(o.OriginalSize) * 100
}

// RunStatistics tracks aggregate counters and byte totals across a batch
// run. Byte totals only include processed files.
type RunStatistics struct {
	Total           int
	Processed       int
	Skipped         int
	Failed          int
	MetadataDropped int
	OriginalBytes   int64
	CompressedBytes int64
	Started         time.Time
}

// Record counts o in exactly one of Processed, Skipped or Failed.
func (s *RunStatistics) Record(o Outcome) {
	switch o.Status {
	case StatusProcessed:
		s.Processed++
		s.OriginalBytes += o.OriginalSize
		s.CompressedBytes += o.CompressedSize
		if o.MetadataDropped {
			s.MetadataDropped++
		}
	case StatusSkipped:
		s.Skipped++
	default:
		s.Failed++
	}
}

// SpaceSaved returns the byte difference between inputs and outputs.
// Positive means outputs are smaller.
func (s RunStatistics) SpaceSaved() int64 {
	return s.OriginalBytes - s.CompressedBytes
}

// Ratio is the aggregate compressed/original percentage, 0 when nothing
// was measured.
func (s RunStatistics) Ratio() float64 {
	if s.OriginalBytes == 0 {
		return 0
	}
	return float64(s.CompressedBytes) / float64(s.OriginalBytes) * 100
}

func (s RunStatistics) Elapsed() time.Duration {
	return time.Since(s.Started)
}

// ProgressUpdate carries counter deltas to the progress view.
type ProgressUpdate struct {
	TotalDelta      int
	ProcessedDelta  int
	SkippedDelta    int
	FailedDelta     int
	BytesSavedDelta int64
	Current         string
}

func updateFor(o Outcome) ProgressUpdate {
	u := ProgressUpdate{Current: o.Display}
	switch o.Status {
	case StatusProcessed:
		u.ProcessedDelta = 1
		u.BytesSavedDelta = o.OriginalSize - o.CompressedSize
	case StatusSkipped:
		u.SkippedDelta = 1
	default:
		u.FailedDelta = 1
	}
	return u
}
