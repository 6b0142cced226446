package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"marquee/internal/discovery"
	"marquee/internal/syncer"
)

func newAddCommand(ctx *commandContext) *cobra.Command {
	var (
		year        int
		tmdbID      int64
		imdbID      string
		force       bool
		dryRun      bool
		skipQuality bool
		jsonOut     bool
	)

	cmd := &cobra.Command{
		Use:   "add [title]",
		Short: "Add a movie to Radarr through the quality gate",
		Long: "Add resolves one movie against Radarr, checks its ratings against the\n" +
			"quality threshold, and adds it when the gate passes. An existing library\n" +
			"entry is reported as-is and never re-added.",
		Args: cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			candidate := discovery.Candidate{
				Title:  strings.TrimSpace(strings.Join(args, " ")),
				Year:   year,
				TMDBID: tmdbID,
				IMDBID: strings.TrimSpace(imdbID),
			}
			if candidate.Title == "" && !candidate.HasIdentifier() {
				return fmt.Errorf("a title, --tmdb-id, or --imdb-id is required")
			}

			service, err := ctx.ensureService()
			if err != nil {
				return err
			}
			result, err := service.AddMovie(cmd.Context(), candidate, syncer.Options{
				DryRun:      dryRun,
				Force:       force,
				SkipQuality: skipQuality,
			})
			if err != nil {
				return err
			}
			if jsonOut {
				return writeJSON(cmd, result)
			}
			printSyncResult(cmd, result)
			if !result.Success {
				return fmt.Errorf("%s", result.Message)
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&year, "year", 0, "Release year, used to disambiguate title lookups")
	cmd.Flags().Int64Var(&tmdbID, "tmdb-id", 0, "TMDB identifier, skips title resolution")
	cmd.Flags().StringVar(&imdbID, "imdb-id", "", "IMDb identifier, skips title resolution")
	cmd.Flags().BoolVar(&force, "force", false, "Add even when the quality gate rejects")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Resolve and gate without adding")
	cmd.Flags().BoolVar(&skipQuality, "skip-quality", false, "Bypass the quality gate entirely")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Emit JSON instead of text")

	return cmd
}
