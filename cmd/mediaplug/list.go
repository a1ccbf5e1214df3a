package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/thesyncim/mediaplug"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("86"))
	cellStyle   = lipgloss.NewStyle().PaddingRight(2)
	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
)

func newListCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List available backends",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var backends []mediaplug.Backend
			for _, name := range a.registry.AvailableBackends() {
				if b, ok := a.registry.Backend(name); ok {
					backends = append(backends, b)
				}
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderBackends(backends, a.registry.SearchDirectories()))
			return nil
		},
	}
}

func renderBackends(backends []mediaplug.Backend, dirs []string) string {
	if len(backends) == 0 {
		msg := "No backends available."
		if len(dirs) > 0 {
			msg += " Searched: " + strings.Join(dirs, ", ")
		}
		return dimStyle.Render(msg)
	}

	columns := [][]string{
		{"NAME"}, {"VERSION"}, {"LICENSE"}, {"GRAPHICS"}, {"DESCRIPTION"},
	}
	for _, b := range backends {
		md := b.Metadata()
		row := []string{b.Name(), orDash(b.Version()), md.License.String(), orDash(md.Graphics.String()), orDash(md.Description)}
		for i, cell := range row {
			columns[i] = append(columns[i], cell)
		}
	}

	rendered := make([]string, len(columns))
	for i, col := range columns {
		cells := make([]string, len(col))
		cells[0] = headerStyle.Render(col[0])
		for j := 1; j < len(col); j++ {
			cells[j] = col[j]
		}
		rendered[i] = cellStyle.Render(lipgloss.JoinVertical(lipgloss.Left, cells...))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, rendered...)
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
