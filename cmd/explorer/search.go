package main

import (
	"fmt"
	"strings"

	"github.com/Sternrassler/catalog-explorer/pkg/catalog"
	"github.com/spf13/cobra"
)

func (a *app) newSearchCmd() *cobra.Command {
	var page int
	cmd := &cobra.Command{
		Use:   "search QUERY",
		Short: "Search characters, locations and episodes by name",
		Long: `Runs the three list queries concurrently with the same name filter.
A kind whose query fails is shown as empty; the other sections still load.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			query := strings.Join(args, " ")
			results := a.explorer.Search(cmd.Context(), query, page)

			if a.jsonOut {
				return printJSON(cmd, results)
			}

			cmd.Println(titleStyle.Render(fmt.Sprintf("Search results for %q: %d matches, page %d of %d",
				results.Query, results.TotalCount(), results.Page, results.TotalPages())))

			failed := make(map[catalog.Kind]bool, len(results.Failed))
			for _, k := range results.Failed {
				failed[k] = true
			}

			searchSection(cmd, catalog.KindCharacter, failed, results.Characters, characterLine)
			searchSection(cmd, catalog.KindLocation, failed, results.Locations, locationLine)
			searchSection(cmd, catalog.KindEpisode, failed, results.Episodes, episodeLine)
			return nil
		},
	}
	cmd.Flags().IntVarP(&page, "page", "p", 1, "page number (1-based)")
	return cmd
}

func searchSection[T any](cmd *cobra.Command, kind catalog.Kind, failed map[catalog.Kind]bool, page *catalog.Page[T], line func(T) string) {
	cmd.Println()
	cmd.Println(titleStyle.Render(fmt.Sprintf("%s (%d)", capitalize(kind.Plural()), page.Info.Count)))
	if failed[kind] {
		cmd.Println("  " + errorStyle.Render(fmt.Sprintf("failed to load %s", kind.Plural())))
		return
	}
	printLines(cmd, page.Results, kind.Plural(), line)
}
