package main

import (
	"errors"
	"fmt"

	"author_highlighter/internal/authorship"

	"github.com/spf13/cobra"
)

func newMatchCmd() *cobra.Command {
	var (
		profileName string
		authors     string
	)

	cmd := &cobra.Command{
		Use:     "match",
		Short:   "Match a profile name against a literal author list",
		Example: `  highlighter match --profile-name "Jane A. Smith" --authors "J. Smith, Bob Lee, Carol Diaz"`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if profileName == "" {
				return errors.New("--profile-name is required")
			}

			res, roles := authorship.NewMatcher(profileName).MatchAndClassify(authors)

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "entries:   %d\n", res.Len())
			fmt.Fprintf(out, "truncated: %t\n", res.Truncated)
			if res.Found() {
				fmt.Fprintf(out, "matched:   %q at %d (distance %d)\n", res.MatchedText, res.MatchedIndex, res.Distance)
			} else {
				fmt.Fprintln(out, "matched:   none")
			}
			fmt.Fprintf(out, "roles:     %s\n", roles)
			return nil
		},
	}

	cmd.Flags().StringVar(&profileName, "profile-name", "", "Profile owner's name")
	cmd.Flags().StringVar(&authors, "authors", "", "Comma-separated author list")

	return cmd
}
