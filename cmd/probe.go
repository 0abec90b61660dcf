package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"squeeze/internal/config"
	"squeeze/internal/logger"
	"squeeze/internal/processor"
	"squeeze/internal/report"
	"squeeze/internal/tui"
)

var probeCmd = &cobra.Command{
	Use:   "probe [flags] <input>",
	Short: "Show the quality ladder each file would go through, without writing",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		settings, err := config.Load(cmd.Flags(), args[0], true)
		if err != nil {
			return err
		}
		logger.Init(os.Stderr, settings.LogLevel)

		stats, outcomes, err := processor.Run(cmd.Context(), processor.Options{
			Input:        settings.Input,
			Quality:      settings.Quality,
			MaxReduction: settings.MaxReduction,
			Recurse:      settings.Recurse,
			Pattern:      settings.Pattern,
			DryRun:       true,
		}, nil)
		if err != nil {
			if errors.Is(err, processor.ErrPathNotFound) || errors.Is(err, processor.ErrNoMatchingFiles) {
				fmt.Fprintln(cmd.OutOrStdout(), err)
				return nil
			}
			return err
		}

		w := cmd.OutOrStdout()
		for i, outcome := range outcomes {
			if i > 0 {
				fmt.Fprintln(w)
			}
			fmt.Fprintf(w, "%s %s\n", probeFileStyle.Render(outcome.Display), probeBucketStyle.Render("["+outcome.Bucket.String()+"]"))
			if outcome.Err != nil {
				fmt.Fprintf(w, "  %s\n", probeValueStyle.Render(outcome.Err.Error()))
				continue
			}
			report.WriteTrials(w, outcome)
			fmt.Fprintf(w, "  %s\n", probeValueStyle.Render(fmt.Sprintf("would keep quality %d (%.1f%% of original)", outcome.Quality, outcome.Ratio())))
		}

		fmt.Fprintln(w)
		report.Write(w, stats)
		return nil
	},
}

var (
	probeFileStyle   = lipgloss.NewStyle().Bold(true).Foreground(tui.ColorAccent)
	probeBucketStyle = lipgloss.NewStyle().Foreground(tui.ColorAccentAlt)
	probeValueStyle  = lipgloss.NewStyle().Foreground(tui.ColorInk)
)

func init() {
	config.RegisterFlags(probeCmd.Flags(), true)
	rootCmd.AddCommand(probeCmd)
}
