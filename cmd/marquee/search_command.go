package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
)

func newSearchCommand(ctx *commandContext) *cobra.Command {
	var (
		limit   int
		jsonOut bool
	)

	cmd := &cobra.Command{
		Use:   "search <term>",
		Short: "Search Radarr for a movie",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			term := strings.TrimSpace(strings.Join(args, " "))
			service, err := ctx.ensureService()
			if err != nil {
				return err
			}
			results, err := service.Search(cmd.Context(), term, limit)
			if err != nil {
				return err
			}
			if jsonOut {
				return writeJSON(cmd, results)
			}

			out := cmd.OutOrStdout()
			if len(results) == 0 {
				fmt.Fprintf(out, "No results for %q.\n", term)
				return nil
			}
			rows := make([][]string, 0, len(results))
			for _, movie := range results {
				inLibrary := ""
				if movie.InLibrary {
					inLibrary = "yes"
				}
				year := ""
				if movie.Year > 0 {
					year = strconv.Itoa(movie.Year)
				}
				tmdb := ""
				if movie.TMDBID > 0 {
					tmdb = strconv.FormatInt(movie.TMDBID, 10)
				}
				rows = append(rows, []string{movie.Title, year, tmdb, inLibrary, movie.Ratings})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"Title", "Year", "TMDB", "In Library", "Ratings"},
				rows,
				[]columnAlignment{alignLeft, alignRight, alignRight, alignLeft, alignLeft},
			))
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 10, "Maximum results to show")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Emit JSON instead of a table")

	return cmd
}
