// Package config resolves run settings from command-line flags, SQUEEZE_*
// environment variables and an optional .env file, in that order of
// precedence, and validates them.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	EnvPrefix = "SQUEEZE"

	DefaultQuality      = 85
	DefaultMaxReduction = 25
	DefaultPattern      = "*"
	DefaultLogLevel     = "warn"
)

// Flag names, shared by the commands and the env bindings.
const (
	FlagOutput       = "output"
	FlagQuality      = "quality"
	FlagMaxReduction = "max-reduction"
	FlagRecurse      = "recurse"
	FlagOverwrite    = "overwrite"
	FlagPattern      = "pattern"
	FlagNoProgress   = "no-progress"
	FlagLogLevel     = "log-level"
)

type Settings struct {
	Input        string `validate:"required"`
	OutputDir    string `validate:"required_unless=DryRun true"`
	Quality      int    `validate:"min=1,max=100"`
	MaxReduction int    `validate:"min=0"`
	Recurse      bool
	Overwrite    bool
	Pattern      string `validate:"required"`
	NoProgress   bool
	LogLevel     string `validate:"oneof=debug info warn error"`
	DryRun       bool
}

// RegisterFlags adds the compression flags to flags. Probe mode omits the
// output-related ones.
func RegisterFlags(flags *pflag.FlagSet, probe bool) {
	if !probe {
		flags.StringP(FlagOutput, "o", "", "output directory (required)")
		flags.Bool(FlagOverwrite, false, "replace existing output files")
		flags.Bool(FlagNoProgress, false, "disable the interactive progress view")
	}
	flags.IntP(FlagQuality, "q", DefaultQuality, "starting quality (1-95 recommended)")
	flags.IntP(FlagMaxReduction, "m", DefaultMaxReduction, "maximum quality reduction probed from the starting quality")
	flags.BoolP(FlagRecurse, "r", false, "recurse into subdirectories")
	flags.String(FlagPattern, DefaultPattern, "glob pattern for directory input, e.g. '*.jpg' or 'img_*.*'")
	flags.String(FlagLogLevel, DefaultLogLevel, "log level: debug, info, warn or error")
}

// Load merges flags, environment and .env into Settings. input is the
// positional path argument.
func Load(flags *pflag.FlagSet, input string, probe bool) (*Settings, error) {
	if err := godotenv.Load(".env"); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("config: read .env: %w", err)
	}

	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	if err := v.BindPFlags(flags); err != nil {
		return nil, fmt.Errorf("config: bind flags: %w", err)
	}

	s := &Settings{
		Input:        input,
		OutputDir:    v.GetString(FlagOutput),
		Quality:      v.GetInt(FlagQuality),
		MaxReduction: v.GetInt(FlagMaxReduction),
		Recurse:      v.GetBool(FlagRecurse),
		Overwrite:    v.GetBool(FlagOverwrite),
		Pattern:      v.GetString(FlagPattern),
		NoProgress:   v.GetBool(FlagNoProgress),
		LogLevel:     strings.ToLower(v.GetString(FlagLogLevel)),
		DryRun:       probe,
	}

	if err := validate.Struct(s); err != nil {
		return nil, describe(err)
	}
	return s, nil
}

var validate = validator.New()

// describe turns validator errors into flag-oriented messages.
func describe(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("config: %w", err)
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fmt.Sprintf("%s: failed %q (got %v)", flagName(fe.Field()), fe.Tag(), fe.Value()))
	}
	return fmt.Errorf("config: invalid settings: %s", strings.Join(msgs, "; "))
}

func flagName(field string) string {
	switch field {
	case "Input":
		return "input"
	case "OutputDir":
		return "--" + FlagOutput
	case "Quality":
		return "--" + FlagQuality
	case "MaxReduction":
		return "--" + FlagMaxReduction
	case "Pattern":
		return "--" + FlagPattern
	case "LogLevel":
		return "--" + FlagLogLevel
	default:
		return field
	}
}
