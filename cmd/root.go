package main

import (
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	var verbose bool

	cmd := &cobra.Command{
		Use:   "highlighter",
		Short: "Classify a researcher's author position across their publications",
		Long: `Highlighter reads a scholar profile page and reports, for every publication,
whether the profile owner is the first, second, co-first or last author.

Truncated author lists are expanded from the publication's detail page. Detail
page requests are paced and their results cached.`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			_ = godotenv.Load()

			level := slog.LevelInfo
			if verbose {
				level = slog.LevelDebug
			}
			slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
		},
	}

	cmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")

	cmd.AddCommand(newClassifyCmd())
	cmd.AddCommand(newMatchCmd())

	return cmd
}
