package main

import (
	"fmt"

	"github.com/Sternrassler/catalog-explorer/pkg/catalog"
	"github.com/spf13/cobra"
)

func (a *app) newCharacterCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "character ID",
		Short: "Show a character and its first episodes",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			detail, err := a.explorer.CharacterDetail(cmd.Context(), id)
			if err != nil {
				return loadFailed(cmd, "character", err)
			}

			if a.jsonOut {
				view := struct {
					Character     *catalog.Character `json:"character"`
					Episodes      []catalog.Episode  `json:"episodes"`
					EpisodesError string             `json:"episodes_error,omitempty"`
					TotalEpisodes int                `json:"total_episodes"`
					HasMore       bool               `json:"has_more"`
				}{detail.Character, detail.Episodes, "", detail.TotalEpisodes, detail.HasMore}
				if detail.EpisodesErr != nil {
					view.EpisodesError = detail.EpisodesErr.Error()
				}
				return printJSON(cmd, view)
			}

			c := detail.Character
			cmd.Println(titleStyle.Render(c.Name))
			cmd.Printf("  %s - %s\n", statusBadge(c.Status), c.Species)
			field(cmd, "Gender", c.Gender)
			field(cmd, "Type", c.Type)
			field(cmd, "Origin", c.Origin.Name)
			field(cmd, "Last known location", c.Location.Name)

			cmd.Println()
			cmd.Println(titleStyle.Render("Episodes"))
			switch {
			case detail.EpisodesErr != nil:
				cmd.Println("  " + errorStyle.Render("episodes could not be loaded"))
			default:
				printLines(cmd, detail.Episodes, "episodes", episodeLine)
			}
			if detail.HasMore {
				cmd.Println(mutedStyle.Render(fmt.Sprintf("View all %d episodes: explorer episodes --character %d",
					detail.TotalEpisodes, c.ID)))
			}
			return nil
		},
	}
}

func (a *app) newLocationCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "location ID",
		Short: "Show a location and its residents",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			detail, err := a.explorer.LocationDetail(cmd.Context(), id)
			if err != nil {
				return loadFailed(cmd, "location", err)
			}
			if a.jsonOut {
				return printJSON(cmd, detail)
			}

			l := detail.Location
			cmd.Println(titleStyle.Render(l.Name))
			field(cmd, "Type", l.Type)
			field(cmd, "Dimension", l.Dimension)

			cmd.Println()
			cmd.Println(titleStyle.Render(fmt.Sprintf("Residents (%d of %d)", len(detail.Residents), len(l.Residents))))
			printLines(cmd, detail.Residents, "residents", characterLine)
			return nil
		},
	}
}

func (a *app) newEpisodeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "episode ID",
		Short: "Show an episode and its characters",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			detail, err := a.explorer.EpisodeDetail(cmd.Context(), id)
			if err != nil {
				return loadFailed(cmd, "episode", err)
			}
			if a.jsonOut {
				return printJSON(cmd, detail)
			}

			e := detail.Episode
			cmd.Println(titleStyle.Render(e.Name))
			field(cmd, "Code", e.Code)
			if detail.HasNumber {
				cmd.Printf("  Season %d, Episode %d\n", detail.Number.Season, detail.Number.Episode)
			}
			field(cmd, "Air date", e.AirDate)

			cmd.Println()
			cmd.Println(titleStyle.Render(fmt.Sprintf("Characters (%d of %d)", len(detail.Characters), len(e.Characters))))
			printLines(cmd, detail.Characters, "characters", characterLine)
			return nil
		},
	}
}
