package theme

import "github.com/charmbracelet/lipgloss"

// Color is an alias for lipgloss.Color for convenience
type Color = lipgloss.Color

// Brand colors
const (
	ColorPrimary   Color = "99" // Purple - app name, titles
	ColorSecondary Color = "86" // Cyan - subtitles, table headers
)

// Response colors
const (
	ColorNonResponder Color = "1" // Red
	ColorResponder    Color = "2" // Green
	ColorUnknown      Color = "8" // Gray - response not recorded
)

// UI semantic colors
const (
	ColorError     Color = "196" // Bright red
	ColorHighlight Color = "255" // White - emphasis
	ColorMuted     Color = "241" // Gray - secondary text
	ColorNormal    Color = "250" // Default text
	ColorSubtle    Color = "245" // Light gray - labels
	ColorVersion   Color = "240" // Dark gray
	ColorWarning   Color = "214" // Orange
)

// Table colors
const (
	ColorBorder   Color = "238"
	ColorSelected Color = "57" // Purple background for the selected browser row
)

// Significance colors
const (
	ColorNotApplicable Color = "8"   // Gray - N/A comparisons
	ColorSignificant   Color = "226" // Yellow
)
