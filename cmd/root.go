package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"squeeze/internal/config"
	"squeeze/internal/logger"
	"squeeze/internal/processor"
	"squeeze/internal/report"
	"squeeze/internal/tui"
)

var rootCmd = &cobra.Command{
	Use:   "squeeze [flags] <input>",
	Short: "squeeze - batch-recompress images while probing for the smallest size",
	Long: `squeeze re-encodes every matched image at a descending quality ladder and
keeps the smallest result found before the size stops improving. Opaque
images are written as progressive JPEG, images with transparency as PNG.

Examples:
  squeeze path/to/image.jpg -o output/
  squeeze input_folder/ -o output_folder/ -r -q 90
  squeeze input_folder/ -o output_folder/ -r --overwrite --pattern "*.png"`,
	Args:          cobra.ExactArgs(1),
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		settings, err := config.Load(cmd.Flags(), args[0], false)
		if err != nil {
			return err
		}
		logger.Init(os.Stderr, settings.LogLevel)

		return compress(cmd.Context(), cmd.OutOrStdout(), settings)
	},
}

func compress(ctx context.Context, w io.Writer, settings *config.Settings) error {
	opts := processor.Options{
		Input:        settings.Input,
		OutputDir:    settings.OutputDir,
		Quality:      settings.Quality,
		MaxReduction: settings.MaxReduction,
		Overwrite:    settings.Overwrite,
		Recurse:      settings.Recurse,
		Pattern:      settings.Pattern,
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var (
		updates chan processor.ProgressUpdate
		uiDone  chan struct{}
	)
	if !settings.NoProgress {
		updates = make(chan processor.ProgressUpdate, 64)
		program := tea.NewProgram(tui.NewModel(updates, cancel), tea.WithOutput(w), tea.WithContext(ctx))
		uiDone = make(chan struct{})
		go func() {
			_, _ = program.Run()
			close(uiDone)
		}()
	}

	stats, outcomes, err := processor.Run(ctx, opts, updates)

	if updates != nil {
		close(updates)
		<-uiDone
	}

	if err != nil {
		if errors.Is(err, processor.ErrPathNotFound) || errors.Is(err, processor.ErrNoMatchingFiles) {
			fmt.Fprintln(w, err)
			return nil
		}
		if !errors.Is(err, context.Canceled) {
			return err
		}
	}

	fmt.Fprintf(w, "Found %d file(s) to process\n\n", stats.Total)
	for i, outcome := range outcomes {
		report.WriteOutcome(w, i+1, stats.Total, outcome)
	}
	fmt.Fprintln(w)
	report.Write(w, stats)

	if err != nil {
		fmt.Fprintf(w, "Interrupted after %d of %d file(s)\n", len(outcomes), stats.Total)
		return err
	}

	outPath := settings.OutputDir
	if abs, absErr := filepath.Abs(outPath); absErr == nil {
		outPath = abs
	}
	fmt.Fprintf(w, "Compressed files written to: %s\n", outPath)
	return nil
}

func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.SetHelpCommand(&cobra.Command{Hidden: true})
	config.RegisterFlags(rootCmd.Flags(), false)
}
