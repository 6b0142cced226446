package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"marquee/internal/api"
	"marquee/internal/discovery"
	"marquee/internal/syncer"
)

func newSyncCommand(ctx *commandContext) *cobra.Command {
	var (
		force   bool
		dryRun  bool
		jsonOut bool
	)

	cmd := &cobra.Command{
		Use:   "sync <file>",
		Short: "Sync a candidate list to Radarr",
		Long: "Sync reads a JSON array of candidates from a file (or stdin when the\n" +
			"argument is \"-\") and reconciles each against Radarr through the quality\n" +
			"gate. One candidate failing never stops the rest of the batch.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			candidates, err := readCandidates(cmd, args[0])
			if err != nil {
				return err
			}
			if len(candidates) == 0 {
				return fmt.Errorf("candidate list is empty")
			}

			service, err := ctx.ensureService()
			if err != nil {
				return err
			}
			report, err := service.Sync(cmd.Context(), candidates, syncer.Options{DryRun: dryRun, Force: force})
			if err != nil {
				return err
			}
			if jsonOut {
				return writeJSON(cmd, report)
			}
			printSyncReport(cmd, report)
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Add even when the quality gate rejects")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Resolve and gate without adding")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Emit JSON instead of text")

	return cmd
}

func readCandidates(cmd *cobra.Command, path string) ([]discovery.Candidate, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(cmd.InOrStdin())
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("read candidates: %w", err)
	}
	var candidates []discovery.Candidate
	if err := json.Unmarshal(data, &candidates); err != nil {
		return nil, fmt.Errorf("parse candidates: %w", err)
	}
	return candidates, nil
}

func printSyncReport(cmd *cobra.Command, report api.SyncReport) {
	out := cmd.OutOrStdout()
	for _, result := range report.Results {
		printSyncResult(cmd, result)
	}
	if report.DryRun {
		fmt.Fprintf(out, "Dry run: %s\n", report.Summary)
		return
	}
	fmt.Fprintln(out, report.Summary)
}

func printSyncResult(cmd *cobra.Command, result api.SyncResult) {
	out := cmd.OutOrStdout()
	marker := "✗"
	if result.Success {
		marker = "✓"
	}
	fmt.Fprintf(out, "%s %s: %s\n", marker, result.Title, result.Message)
	if result.Quality != nil && result.State == string(syncer.StateQualityRejected) {
		for _, flag := range result.Quality.RedFlags {
			fmt.Fprintf(out, "    red flag: %s\n", flag)
		}
	}
}
