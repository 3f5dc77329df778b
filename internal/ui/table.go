package ui

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"cytodash/internal/theme"
)

// RenderTable renders headers and rows as a bordered table for terminal output
func RenderTable(headers []string, rows [][]string) string {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(theme.TableBorderStyle).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return theme.TableHeaderStyle
			}
			return theme.TableCellStyle
		}).
		Headers(headers...).
		Rows(rows...)

	return t.String()
}

// RenderKeyValues renders ordered key/value pairs as a two column block
func RenderKeyValues(pairs [][2]string) string {
	lines := make([]string, 0, len(pairs))
	for _, p := range pairs {
		lines = append(lines, lipgloss.JoinHorizontal(lipgloss.Top,
			theme.DetailKeyStyle.Render(p[0]),
			theme.DetailValueStyle.Render(p[1]),
		))
	}
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}
