package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"marquee/internal/api"
	"marquee/internal/discovery"
	"marquee/internal/syncer"
)

func newDiscoverCommand(ctx *commandContext) *cobra.Command {
	var (
		limit    int
		region   string
		jsonOut  bool
		syncFlag bool
		dryRun   bool
		force    bool
	)

	cmd := &cobra.Command{
		Use:   "discover [prompt]",
		Short: "Discover movies from a free-text request",
		Long: "Discover runs the agent pipeline for a free-text request, for example\n" +
			"'find 10 acclaimed new wide releases'. With --sync the results are\n" +
			"reconciled against Radarr through the quality gate.",
		Args: cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			prompt := strings.TrimSpace(strings.Join(args, " "))
			if prompt == "" {
				prompt = "find noteworthy new wide theatrical releases"
			}

			service, err := ctx.ensureService()
			if err != nil {
				return err
			}
			report, err := service.Discover(cmd.Context(), prompt, limit, region)
			if err != nil {
				return err
			}

			if syncFlag && len(report.Candidates) > 0 {
				candidates := make([]discovery.Candidate, 0, len(report.Candidates))
				for _, c := range report.Candidates {
					candidates = append(candidates, discovery.Candidate{
						Title:  c.Title,
						Year:   c.Year,
						TMDBID: c.TMDBID,
						IMDBID: c.IMDBID,
					})
				}
				syncReport, err := service.Sync(cmd.Context(), candidates, syncer.Options{DryRun: dryRun, Force: force})
				if err != nil {
					return err
				}
				if jsonOut {
					return writeJSON(cmd, map[string]any{"discovery": report, "sync": syncReport})
				}
				printDiscoveryReport(cmd, report)
				printSyncReport(cmd, syncReport)
				return nil
			}

			if jsonOut {
				return writeJSON(cmd, report)
			}
			printDiscoveryReport(cmd, report)
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 10, "Maximum candidates to return (1-50)")
	cmd.Flags().StringVar(&region, "region", "", "Region hint for localized results")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Emit JSON instead of a table")
	cmd.Flags().BoolVar(&syncFlag, "sync", false, "Sync discovered candidates to Radarr")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "With --sync, resolve and gate without adding")
	cmd.Flags().BoolVar(&force, "force", false, "With --sync, override quality rejections")

	return cmd
}

func printDiscoveryReport(cmd *cobra.Command, report api.DiscoveryReport) {
	out := cmd.OutOrStdout()
	if len(report.Candidates) == 0 {
		fmt.Fprintln(out, "No candidates found.")
		for _, diagnostic := range report.Diagnostics {
			fmt.Fprintf(out, "  - %s\n", diagnostic)
		}
		return
	}

	rows := make([][]string, 0, len(report.Candidates))
	for i, candidate := range report.Candidates {
		year := ""
		if candidate.Year > 0 {
			year = strconv.Itoa(candidate.Year)
		}
		rows = append(rows, []string{
			strconv.Itoa(i + 1),
			candidate.Title,
			year,
			strings.Join(candidate.Sources, ", "),
			truncateText(candidate.Overview, 60),
		})
	}
	fmt.Fprintln(out, renderTable(
		[]string{"#", "Title", "Year", "Sources", "Overview"},
		rows,
		[]columnAlignment{alignRight, alignLeft, alignRight, alignLeft, alignLeft},
	))
	if len(report.Diagnostics) > 0 {
		fmt.Fprintln(out, "Diagnostics:")
		for _, diagnostic := range report.Diagnostics {
			fmt.Fprintf(out, "  - %s\n", diagnostic)
		}
	}
}

func truncateText(s string, max int) string {
	if len(s) <= max {
		return s
	}
	if max <= 3 {
		return s[:max]
	}
	return s[:max-3] + "..."
}
