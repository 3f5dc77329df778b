package theme

import (
	"github.com/charmbracelet/lipgloss"

	"cytodash/internal/domain"
)

// Main UI styles
var (
	HelpLabelStyle = lipgloss.NewStyle().
			Foreground(ColorSubtle)

	HelpShortcutStyle = lipgloss.NewStyle().
				Foreground(ColorHighlight).
				Bold(true)

	HelpStyle = lipgloss.NewStyle().
			Foreground(ColorMuted).
			Padding(1, 0)

	NormalStyle = lipgloss.NewStyle().
			Foreground(ColorNormal)

	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorPrimary).
			Padding(1, 0)
)

// Header styles
var (
	AppNameStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorPrimary)

	SubtitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorSecondary)

	TaglineStyle = lipgloss.NewStyle().
			Foreground(ColorNormal)

	VersionStyle = lipgloss.NewStyle().
			Foreground(ColorVersion)
)

// Table styles
var (
	TableBorderStyle = lipgloss.NewStyle().
				Foreground(ColorBorder)

	TableCellStyle = lipgloss.NewStyle().
			Foreground(ColorNormal).
			Padding(0, 1)

	TableHeaderStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(ColorSecondary).
				Padding(0, 1)

	TableSelectedStyle = lipgloss.NewStyle().
				Foreground(ColorHighlight).
				Background(ColorSelected).
				Bold(true)
)

// Detail pane styles
var (
	DetailBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorMuted).
			Padding(0, 1)

	DetailKeyStyle = lipgloss.NewStyle().
			Foreground(ColorSubtle).
			Width(28)

	DetailValueStyle = lipgloss.NewStyle().
				Foreground(ColorHighlight)
)

// Message styles
var (
	ErrorStyle = lipgloss.NewStyle().
			Foreground(ColorError).
			Bold(true)

	SuccessStyle = lipgloss.NewStyle().
			Foreground(ColorResponder)

	WarningStyle = lipgloss.NewStyle().
			Foreground(ColorWarning)
)

// Analysis styles
var (
	NotApplicableStyle = lipgloss.NewStyle().
				Foreground(ColorNotApplicable).
				Italic(true)

	SignificantStyle = lipgloss.NewStyle().
				Foreground(ColorSignificant).
				Bold(true)
)

// ResponseStyle returns the style used to render a response value
func ResponseStyle(response string) lipgloss.Style {
	switch response {
	case domain.ResponseResponder:
		return lipgloss.NewStyle().Foreground(ColorResponder)
	case domain.ResponseNonResponder:
		return lipgloss.NewStyle().Foreground(ColorNonResponder)
	}
	return lipgloss.NewStyle().Foreground(ColorUnknown)
}
