package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func newQualityCommand(ctx *commandContext) *cobra.Command {
	var (
		year    int
		jsonOut bool
	)

	cmd := &cobra.Command{
		Use:   "quality <title>",
		Short: "Analyze a movie's ratings against the quality gate",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			title := strings.TrimSpace(strings.Join(args, " "))
			service, err := ctx.ensureService()
			if err != nil {
				return err
			}
			report, err := service.AnalyzeQuality(cmd.Context(), title, year)
			if err != nil {
				return err
			}
			if jsonOut {
				return writeJSON(cmd, report)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Title: %s\n", title)
			if report.InsufficientData {
				fmt.Fprintln(out, "Score: insufficient data")
			} else if report.Score != nil {
				fmt.Fprintf(out, "Score: %.1f/10 (%s)\n", *report.Score, report.TierLabel)
			}
			verdict := "FAIL"
			if report.Passed {
				verdict = "PASS"
			}
			fmt.Fprintf(out, "Gate:  %s (threshold %.1f)\n", verdict, report.Threshold)
			if report.Ratings != "" {
				fmt.Fprintf(out, "Ratings: %s\n", report.Ratings)
			}
			for _, strength := range report.Strengths {
				fmt.Fprintf(out, "  + %s\n", strength)
			}
			for _, flag := range report.RedFlags {
				fmt.Fprintf(out, "  - %s\n", flag)
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&year, "year", 0, "Release year, used to disambiguate lookups")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Emit JSON instead of text")

	return cmd
}
