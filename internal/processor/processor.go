package processor

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"squeeze/internal/codec"
	"squeeze/internal/logger"
	"squeeze/internal/optimizer"
)

// encoder is swapped in tests.
var encoder optimizer.Encoder = codec.Encoder{}

// Process compresses one file. It never returns an error: failures are
// reported in the outcome and leave no destination file behind.
func Process(ctx context.Context, req Request) Outcome {
	out := Outcome{
		Source:      req.Source,
		Destination: req.Destination,
		Display:     req.Display,
		Quality:     req.Quality,
	}

	if !req.DryRun && !req.Overwrite {
		if _, err := os.Stat(req.Destination); err == nil {
			out.Status = StatusSkipped
			return out
		}
	}

	if err := compress(ctx, req, &out); err != nil {
		out.Status = StatusFailed
		out.Err = err
		return out
	}
	out.Status = StatusProcessed
	return out
}

func compress(ctx context.Context, req Request, out *Outcome) error {
	srcInfo, err := os.Stat(req.Source)
	if err != nil {
		return err
	}
	out.OriginalSize = srcInfo.Size()

	img, err := codec.Decode(req.Source)
	if err != nil {
		return err
	}
	out.MetadataDropped = img.Metadata

	bucket := codec.Classify(img)
	out.Bucket = bucket
	pixels := codec.Canonical(img.Pixels, bucket)

	res, err := optimizer.Search(ctx, pixels, bucket, req.Quality, req.MaxReduction, encoder)
	out.Trials = res.Trials
	if err != nil {
		return err
	}
	out.Quality = res.Quality

	if req.DryRun {
		out.CompressedSize = int64(len(res.Data))
		return nil
	}

	if err := writeFile(ctx, req.Destination, res.Data); err != nil {
		return err
	}

	outInfo, err := os.Stat(req.Destination)
	if err != nil {
		removeDestination(ctx, req.Destination)
		return err
	}
	out.CompressedSize = outInfo.Size()
	return nil
}

// writeFile materialises data at destPath through a temp file in the same
// directory, so a failed write never leaves a truncated destination.
func writeFile(ctx context.Context, destPath string, data []byte) error {
	destDir := filepath.Dir(destPath)
	tmpFile, err := os.CreateTemp(destDir, ".squeeze-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmpFile.Name()
	defer func() {
		if err := os.Remove(tmpName); err != nil && !errors.Is(err, fs.ErrNotExist) {
			logger.Warn(ctx, "failed to remove temp file", "path", tmpName, "err", err)
		}
	}()

	if _, err := tmpFile.Write(data); err != nil {
		_ = tmpFile.Close()
		return fmt.Errorf("write %s: %w", destPath, err)
	}
	if err := tmpFile.Chmod(0o644); err != nil {
		_ = tmpFile.Close()
		return err
	}
	if err := tmpFile.Sync(); err != nil {
		_ = tmpFile.Close()
		return err
	}
	if err := tmpFile.Close(); err != nil {
		return err
	}

	return replaceFile(tmpName, destPath)
}

func replaceFile(tmpPath, destPath string) error {
	if err := os.Rename(tmpPath, destPath); err == nil {
		return nil
	}
	if err := os.Remove(destPath); err != nil && !os.IsNotExist(err) {
		return err
	}
	return os.Rename(tmpPath, destPath)
}

func removeDestination(ctx context.Context, path string) {
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		logger.Warn(ctx, "failed to remove partial output", "path", path, "err", err)
	}
}
