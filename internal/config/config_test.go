package config

import (
	"os"
	"strings"
	"testing"

	"github.com/spf13/pflag"
)

// chdirTemp switches to a temp directory so a real .env is never loaded.
func chdirTemp(t *testing.T) string {
	t.Helper()
	origDir, err := os.Getwd()
	if err != nil {
		t.Fatalf("could not get working directory: %v", err)
	}
	tmpDir := t.TempDir()
	if err := os.Chdir(tmpDir); err != nil {
		t.Fatalf("could not chdir to temp dir: %v", err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(origDir); err != nil {
			t.Fatalf("could not chdir back to original dir: %v", err)
		}
	})
	return tmpDir
}

func newFlags(t *testing.T, probe bool, args ...string) *pflag.FlagSet {
	t.Helper()
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	RegisterFlags(fs, probe)
	if err := fs.Parse(args); err != nil {
		t.Fatalf("parse flags: %v", err)
	}
	return fs
}

func TestLoad_Defaults(t *testing.T) {
	chdirTemp(t)

	s, err := Load(newFlags(t, false, "-o", "out"), "in", false)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if s.Quality != DefaultQuality || s.MaxReduction != DefaultMaxReduction {
		t.Errorf("unexpected quality settings: %+v", s)
	}
	if s.Pattern != "*" || s.Recurse || s.Overwrite {
		t.Errorf("unexpected defaults: %+v", s)
	}
	if s.OutputDir != "out" || s.Input != "in" {
		t.Errorf("unexpected paths: %+v", s)
	}
	if s.LogLevel != "warn" {
		t.Errorf("expected warn log level, got %q", s.LogLevel)
	}
}

func TestLoad_Flags(t *testing.T) {
	chdirTemp(t)

	s, err := Load(newFlags(t, false,
		"--output", "dst", "-q", "90", "-m", "10", "-r", "--overwrite", "--pattern", "*.png",
	), "src", false)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if s.Quality != 90 || s.MaxReduction != 10 || !s.Recurse || !s.Overwrite || s.Pattern != "*.png" {
		t.Errorf("flags not applied: %+v", s)
	}
}

func TestLoad_EnvOverridesDefaultsNotFlags(t *testing.T) {
	chdirTemp(t)
	t.Setenv("SQUEEZE_QUALITY", "70")
	t.Setenv("SQUEEZE_MAX_REDUCTION", "5")

	s, err := Load(newFlags(t, false, "-o", "out", "-m", "15"), "in", false)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if s.Quality != 70 {
		t.Errorf("expected env quality 70, got %d", s.Quality)
	}
	if s.MaxReduction != 15 {
		t.Errorf("expected explicit flag to win, got %d", s.MaxReduction)
	}
}

func TestLoad_DotEnv(t *testing.T) {
	dir := chdirTemp(t)
	if err := os.WriteFile(dir+"/.env", []byte("SQUEEZE_PATTERN=*.jpg\n"), 0o644); err != nil {
		t.Fatalf("write .env: %v", err)
	}
	t.Cleanup(func() { os.Unsetenv("SQUEEZE_PATTERN") })

	s, err := Load(newFlags(t, false, "-o", "out"), "in", false)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if s.Pattern != "*.jpg" {
		t.Errorf("expected pattern from .env, got %q", s.Pattern)
	}
}

func TestLoad_Invalid(t *testing.T) {
	cases := []struct {
		name string
		args []string
		want string
	}{
		{"missing output", nil, "--output"},
		{"quality too low", []string{"-o", "out", "-q", "0"}, "--quality"},
		{"quality too high", []string{"-o", "out", "-q", "101"}, "--quality"},
		{"negative reduction", []string{"-o", "out", "-m", "-1"}, "--max-reduction"},
		{"empty pattern", []string{"-o", "out", "--pattern", ""}, "--pattern"},
		{"bad log level", []string{"-o", "out", "--log-level", "loud"}, "--log-level"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			chdirTemp(t)
			_, err := Load(newFlags(t, false, tc.args...), "in", false)
			if err == nil {
				t.Fatal("expected an error")
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("expected error to mention %s, got %v", tc.want, err)
			}
		})
	}
}

func TestLoad_ProbeNeedsNoOutput(t *testing.T) {
	chdirTemp(t)

	s, err := Load(newFlags(t, true, "-q", "80"), "in", true)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !s.DryRun || s.Quality != 80 {
		t.Errorf("unexpected probe settings: %+v", s)
	}
}
