// Package styles is the console's lipgloss theme: the palette and
// reusable styles the renderer composes frames from.
package styles

import "github.com/charmbracelet/lipgloss"

// Palette, carried over from the teacher's theme in spirit but trimmed
// to the hues this console actually uses.
var (
	Primary = lipgloss.Color("#7C3AED")
	Accent  = lipgloss.Color("#F59E0B")

	TextPrimary   = lipgloss.Color("#F9FAFB")
	TextSecondary = lipgloss.Color("#9CA3AF")
	TextMuted     = lipgloss.Color("#6B7280")

	BgOverlay    = lipgloss.Color("#1F2937")
	BorderActive = lipgloss.Color("#7C3AED")
)

var (
	SearchBar = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(BorderActive).
			Padding(0, 1)

	SelectedRow = lipgloss.NewStyle().
			Bold(true).
			Foreground(TextPrimary).
			Background(lipgloss.Color("#312E81"))

	NormalRow = lipgloss.NewStyle().
			Foreground(TextSecondary)

	Snippet = lipgloss.NewStyle().
		Foreground(TextMuted)

	Highlight = lipgloss.NewStyle().
			Bold(true).
			Foreground(Accent)

	StatusBar = lipgloss.NewStyle().
			Foreground(TextMuted)

	Overlay = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(BorderActive).
		Background(BgOverlay).
		Padding(1, 2)

	AgentGlyph = lipgloss.NewStyle().Foreground(Primary)
)
