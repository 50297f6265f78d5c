package main

import (
	"fmt"
	"log/slog"

	"author_highlighter/internal/app"
	"author_highlighter/internal/config"

	"github.com/spf13/cobra"
)

func newClassifyCmd() *cobra.Command {
	var (
		configPath string
		profileURL string
		ownerName  string
		backend    string
		onlyHigh   bool
	)

	cmd := &cobra.Command{
		Use:   "classify",
		Short: "Classify every publication of a profile page",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig(configPath)
			if err != nil {
				return err
			}
			if profileURL != "" {
				cfg.Profile.URL = profileURL
			}
			if ownerName != "" {
				cfg.Profile.Name = ownerName
			}
			if backend != "" {
				cfg.Fetch.Backend = backend
			}
			if onlyHigh {
				cfg.Report.OnlyHighlighted = true
			}

			ctx := cmd.Context()
			a, err := app.NewHighlighterApp(ctx, cfg)
			if err != nil {
				return fmt.Errorf("init: %w", err)
			}
			defer func() {
				if err := a.Close(ctx); err != nil {
					slog.Warn("close failed", "error", err)
				}
			}()

			res, err := a.Run(ctx)
			if err != nil {
				return err
			}
			res.Print(cmd.OutOrStdout())
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "config.yaml", "Path to the configuration file")
	cmd.Flags().StringVarP(&profileURL, "profile", "p", "", "Profile page URL (overrides config)")
	cmd.Flags().StringVar(&ownerName, "name", "", "Owner name to match instead of the one shown on the page")
	cmd.Flags().StringVar(&backend, "backend", "", "Fetch backend: http or colly")
	cmd.Flags().BoolVar(&onlyHigh, "only-highlighted", false, "List only highlighted publications")

	return cmd
}
