package render

import (
	"github.com/charmbracelet/lipgloss"
)

// Theme defines the map colours.
type Theme struct {
	// Aisle colours shelving.
	Aisle lipgloss.Color

	// Path colours the walking route.
	Path lipgloss.Color

	// Entrance colours the entrance marker.
	Entrance lipgloss.Color

	// Target colours numbered shelf stops.
	Target lipgloss.Color

	// Border is the frame colour.
	Border lipgloss.Color

	// Muted is for the legend.
	Muted lipgloss.Color
}

// DefaultTheme returns the default map colours.
func DefaultTheme() *Theme {
	return &Theme{
		Aisle:    lipgloss.Color("#06B6D4"), // Cyan
		Path:     lipgloss.Color("#F9E2AF"), // Yellow
		Entrance: lipgloss.Color("#A6E3A1"), // Green
		Target:   lipgloss.Color("#F38BA8"), // Red
		Border:   lipgloss.Color("#45475A"), // Border gray
		Muted:    lipgloss.Color("#6C7086"), // Medium gray
	}
}

// styles holds the per-kind lipgloss styles for a theme.
type styles struct {
	cell   map[CellKind]lipgloss.Style
	frame  lipgloss.Style
	legend lipgloss.Style
}

func newStyles(theme *Theme) *styles {
	if theme == nil {
		theme = DefaultTheme()
	}
	return &styles{
		cell: map[CellKind]lipgloss.Style{
			CellEmpty:    lipgloss.NewStyle(),
			CellAisle:    lipgloss.NewStyle().Foreground(theme.Aisle),
			CellPath:     lipgloss.NewStyle().Foreground(theme.Path),
			CellEntrance: lipgloss.NewStyle().Bold(true).Foreground(theme.Entrance),
			CellTarget:   lipgloss.NewStyle().Bold(true).Foreground(theme.Target),
		},
		frame: lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(theme.Border),
		legend: lipgloss.NewStyle().Foreground(theme.Muted),
	}
}
