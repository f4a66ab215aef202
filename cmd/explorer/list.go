package main

import (
	"context"
	"fmt"

	"github.com/Sternrassler/catalog-explorer/pkg/batch"
	"github.com/Sternrassler/catalog-explorer/pkg/catalog"
	"github.com/spf13/cobra"
)

type listFlags struct {
	page int
	name string
	all  bool
}

func (f *listFlags) register(cmd *cobra.Command) {
	cmd.Flags().IntVarP(&f.page, "page", "p", 1, "page number (1-based)")
	cmd.Flags().StringVarP(&f.name, "name", "n", "", "case-insensitive name filter")
	cmd.Flags().BoolVar(&f.all, "all", false, "fetch every page")
}

// runList loads one page, or every page with --all, and renders it with
// line. A failure is reported as a load failure with no partial output.
func runList[T any](cmd *cobra.Command, a *app, kind catalog.Kind, f *listFlags,
	list func(ctx context.Context, page int, name string) (*catalog.Page[T], error),
	line func(T) string,
) error {
	ctx := cmd.Context()
	plural := kind.Plural()

	if f.all {
		records, err := batch.FetchAllPages[T](ctx, func(ctx context.Context, page int) (*catalog.Page[T], error) {
			return list(ctx, page, f.name)
		}, batch.DefaultPagerConfig())
		if err != nil {
			return loadFailed(cmd, plural, err)
		}
		if a.jsonOut {
			return printJSON(cmd, records)
		}
		cmd.Println(titleStyle.Render(fmt.Sprintf("%s (%d total)", capitalize(plural), len(records))))
		printLines(cmd, records, plural, line)
		return nil
	}

	page, err := list(ctx, f.page, f.name)
	if err != nil {
		return loadFailed(cmd, plural, err)
	}
	if a.jsonOut {
		return printJSON(cmd, page)
	}

	cmd.Println(titleStyle.Render(fmt.Sprintf("%s (page %d of %d, %d total)",
		capitalize(plural), catalog.NormalizePage(f.page), page.Info.Pages, page.Info.Count)))
	printLines(cmd, page.Results, plural, line)
	if page.Info.Next != nil {
		cmd.Println(mutedStyle.Render(fmt.Sprintf("Next: --page %d", catalog.NormalizePage(f.page)+1)))
	}
	return nil
}

func printLines[T any](cmd *cobra.Command, records []T, plural string, line func(T) string) {
	if len(records) == 0 {
		cmd.Printf("No %s found.\n", plural)
		return
	}
	for _, r := range records {
		cmd.Println("  " + line(r))
	}
}

func (a *app) newCharactersCmd() *cobra.Command {
	f := &listFlags{}
	cmd := &cobra.Command{
		Use:   "characters",
		Short: "List characters",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runList(cmd, a, catalog.KindCharacter, f, a.api.ListCharacters, characterLine)
		},
	}
	f.register(cmd)
	return cmd
}

func (a *app) newLocationsCmd() *cobra.Command {
	f := &listFlags{}
	cmd := &cobra.Command{
		Use:   "locations",
		Short: "List locations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runList(cmd, a, catalog.KindLocation, f, a.api.ListLocations, locationLine)
		},
	}
	f.register(cmd)
	return cmd
}

func (a *app) newEpisodesCmd() *cobra.Command {
	f := &listFlags{}
	var characterID int
	cmd := &cobra.Command{
		Use:   "episodes",
		Short: "List episodes",
		Long: `Lists episodes page by page. With --character ID it lists every
episode the character appears in instead.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if characterID > 0 {
				return a.runCharacterEpisodes(cmd, characterID)
			}
			return runList(cmd, a, catalog.KindEpisode, f, a.api.ListEpisodes, episodeLine)
		},
	}
	f.register(cmd)
	cmd.Flags().IntVar(&characterID, "character", 0, "list every episode of this character")
	return cmd
}

func (a *app) runCharacterEpisodes(cmd *cobra.Command, id int) error {
	character, episodes, err := a.explorer.CharacterEpisodes(cmd.Context(), id)
	if err != nil {
		return loadFailed(cmd, "character", err)
	}
	if a.jsonOut {
		return printJSON(cmd, episodes)
	}

	cmd.Println(titleStyle.Render(fmt.Sprintf("Episodes with %s (%d of %d)",
		character.Name, len(episodes), len(character.Episode))))
	printLines(cmd, episodes, "episodes", episodeLine)
	return nil
}
