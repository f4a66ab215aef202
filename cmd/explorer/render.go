package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/Sternrassler/catalog-explorer/pkg/catalog"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7C3AED"))
	mutedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#6C7086"))
	errorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#F38BA8"))

	statusStyles = map[catalog.Status]lipgloss.Style{
		catalog.StatusAlive: lipgloss.NewStyle().Foreground(lipgloss.Color("#A6E3A1")),
		catalog.StatusDead:  lipgloss.NewStyle().Foreground(lipgloss.Color("#F38BA8")),
	}
)

// statusBadge renders a status dot and label. Anything other than Alive or
// Dead is shown as unknown.
func statusBadge(s catalog.Status) string {
	style, ok := statusStyles[s]
	if !ok {
		style = mutedStyle
	}
	return style.Render("● " + string(s))
}

func characterLine(c catalog.Character) string {
	return fmt.Sprintf("#%-4d %s  %s - %s", c.ID, c.Name, statusBadge(c.Status), c.Species)
}

func locationLine(l catalog.Location) string {
	return fmt.Sprintf("#%-4d %s  %s", l.ID, l.Name, mutedStyle.Render(l.Type+" / "+l.Dimension))
}

func episodeLine(e catalog.Episode) string {
	return fmt.Sprintf("#%-4d %s  %s  %s", e.ID, e.Code, e.Name, mutedStyle.Render(e.AirDate))
}

func field(cmd *cobra.Command, label, value string) {
	if value == "" {
		return
	}
	cmd.Printf("  %s: %s\n", mutedStyle.Render(label), value)
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func printJSON(cmd *cobra.Command, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

// loadFailed prints the user-facing load failure and returns err so the
// process exits non-zero.
func loadFailed(cmd *cobra.Command, what string, err error) error {
	cmd.PrintErrln(errorStyle.Render(fmt.Sprintf("failed to load %s, try again later", what)))
	return err
}
