package processor

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"squeeze/internal/logger"
)

var (
	ErrPathNotFound    = errors.New("input path does not exist")
	ErrNoMatchingFiles = errors.New("no files match pattern")
)

// Run resolves opts.Input into candidate files and processes them one at a
// time. ErrPathNotFound and ErrNoMatchingFiles end the run before any file
// is touched. Per-file failures are recorded in the statistics, not
// returned.
func Run(ctx context.Context, opts Options, updates chan<- ProgressUpdate) (RunStatistics, []Outcome, error) {
	stats := RunStatistics{Started: time.Now()}

	absInput, err := filepath.Abs(opts.Input)
	if err != nil {
		return stats, nil, err
	}

	info, err := os.Stat(absInput)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return stats, nil, fmt.Errorf("%w: %s", ErrPathNotFound, absInput)
		}
		return stats, nil, err
	}

	var absOutput string
	if !opts.DryRun {
		if absOutput, err = filepath.Abs(opts.OutputDir); err != nil {
			return stats, nil, err
		}
	}

	var jobs []Job
	if info.IsDir() {
		jobs, err = discover(absInput, nestedOutput(absInput, absOutput), opts.Pattern, opts.Recurse)
		if err != nil {
			return stats, nil, err
		}
	} else {
		name := filepath.Base(absInput)
		jobs = []Job{{Path: absInput, RelPath: name, Display: name}}
	}

	stats.Total = len(jobs)
	if stats.Total == 0 {
		return stats, nil, fmt.Errorf("%w %q in %s", ErrNoMatchingFiles, opts.Pattern, absInput)
	}
	if err := send(ctx, updates, ProgressUpdate{TotalDelta: stats.Total}); err != nil {
		return stats, nil, err
	}
	logger.Info(ctx, "candidates resolved", "input", absInput, "count", stats.Total)

	if !opts.DryRun {
		if err := os.MkdirAll(absOutput, 0o755); err != nil {
			return stats, nil, err
		}
	}

	outcomes := make([]Outcome, 0, len(jobs))
	for _, job := range jobs {
		if err := ctx.Err(); err != nil {
			return stats, outcomes, err
		}

		req := Request{
			Source:       job.Path,
			Display:      job.Display,
			Quality:      opts.Quality,
			MaxReduction: opts.MaxReduction,
			Overwrite:    opts.Overwrite,
			DryRun:       opts.DryRun,
		}
		if !opts.DryRun {
			req.Destination = filepath.Join(absOutput, job.RelPath)
			if err := os.MkdirAll(filepath.Dir(req.Destination), 0o755); err != nil {
				return stats, outcomes, err
			}
		}

		outcome := Process(ctx, req)
		stats.Record(outcome)
		outcomes = append(outcomes, outcome)
		if err := send(ctx, updates, updateFor(outcome)); err != nil {
			return stats, outcomes, err
		}
	}

	return stats, outcomes, nil
}

// send delivers u unless ctx ends first, so a closed progress view cannot
// stall the batch.
func send(ctx context.Context, updates chan<- ProgressUpdate, u ProgressUpdate) error {
	if updates == nil {
		return nil
	}
	select {
	case updates <- u:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// nestedOutput returns output when it lies strictly inside input, and ""
// otherwise. Only a nested output root has to be kept out of the walk.
func nestedOutput(input, output string) string {
	if output == "" || filepath.Clean(output) == filepath.Clean(input) {
		return ""
	}
	if !isWithin(output, input) {
		return ""
	}
	return output
}

// Job is a candidate file. RelPath is relative to the input root and is
// mirrored under the output root; Display is its slash form.
type Job struct {
	Path    string
	RelPath string
	Display string
}

// discover lists regular files under root whose path matches pattern, in
// lexical order. Hidden files are included; matching is case-sensitive.
// A non-empty skipDir (the output root) is never descended into.
func discover(root, skipDir, pattern string, recurse bool) ([]Job, error) {
	if _, err := path.Match(pattern, ""); err != nil {
		return nil, fmt.Errorf("pattern %q: %w", pattern, err)
	}
	nested := strings.Contains(pattern, "/")

	var jobs []Job
	err := fs.WalkDir(os.DirFS(root), ".", func(rel string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if d.IsDir() {
			if rel == "." {
				return nil
			}
			if skipDir != "" && isWithin(filepath.Join(root, rel), skipDir) {
				return fs.SkipDir
			}
			if !recurse && !nested {
				return fs.SkipDir
			}
			return nil
		}

		if !isRegular(root, rel, d) {
			return nil
		}
		if !matches(pattern, rel, recurse) {
			return nil
		}

		jobs = append(jobs, Job{
			Path:    filepath.Join(root, filepath.FromSlash(rel)),
			RelPath: filepath.FromSlash(rel),
			Display: rel,
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return jobs, nil
}

// matches applies pattern to rel. A pattern without a slash matches the
// file name; one with slashes matches the whole relative path, or with
// recurse any trailing run of path elements of the same length.
func matches(pattern, rel string, recurse bool) bool {
	if !strings.Contains(pattern, "/") {
		if !recurse && strings.Contains(rel, "/") {
			return false
		}
		ok, _ := path.Match(pattern, path.Base(rel))
		return ok
	}

	if !recurse {
		ok, _ := path.Match(pattern, rel)
		return ok
	}

	want := strings.Count(pattern, "/") + 1
	parts := strings.Split(rel, "/")
	if len(parts) < want {
		return false
	}
	ok, _ := path.Match(pattern, strings.Join(parts[len(parts)-want:], "/"))
	return ok
}

// isRegular accepts regular files and symlinks that resolve to one.
func isRegular(root, rel string, d fs.DirEntry) bool {
	if d.Type().IsRegular() {
		return true
	}
	if d.Type()&fs.ModeSymlink == 0 {
		return false
	}
	info, err := os.Stat(filepath.Join(root, filepath.FromSlash(rel)))
	return err == nil && info.Mode().IsRegular()
}

func isWithin(p string, root string) bool {
	rel, err := filepath.Rel(root, p)
	if err != nil {
		return false
	}
	if rel == "." {
		return true
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}
