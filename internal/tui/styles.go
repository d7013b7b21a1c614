package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/javiermolinar/coursegrid/internal/tui/theme"
)

// Default grid column width - recalculated on resize.
const defaultColWidth = 10

// Styles holds all lipgloss styles for the TUI, derived from a theme.
type Styles struct {
	palette *theme.Palette

	TitleStyle lipgloss.Style

	// Course list
	ListStyle         lipgloss.Style
	ListFocusedStyle  lipgloss.Style
	ListItemStyle     lipgloss.Style
	ListSelectedStyle lipgloss.Style
	ListAddedStyle    lipgloss.Style
	ListConflictStyle lipgloss.Style
	ListMetaStyle     lipgloss.Style

	// Grid
	GridStyle         lipgloss.Style
	GridFocusedStyle  lipgloss.Style
	DayHeaderStyle    lipgloss.Style
	PeriodStyle       lipgloss.Style
	EmptyCellStyle    lipgloss.Style
	BreakCellStyle    lipgloss.Style
	CursorStyle       lipgloss.Style
	CourseCellStyle   lipgloss.Style
	SearchStyle       lipgloss.Style
	SearchActiveStyle lipgloss.Style

	// Footer
	StatusStyle  lipgloss.Style
	WarningStyle lipgloss.Style
	CreditsStyle lipgloss.Style
	HelpStyle    lipgloss.Style
}

// NewStyles creates a new Styles instance from a theme.
func NewStyles(t *theme.Theme) *Styles {
	p := theme.NewPalette(t)
	s := &Styles{palette: p}

	s.TitleStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(p.Accent)

	pane := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(p.BgSelection).
		Padding(0, 1)

	s.ListStyle = pane
	s.ListFocusedStyle = pane.BorderForeground(p.Accent)
	s.ListItemStyle = lipgloss.NewStyle().Foreground(p.Fg)
	s.ListSelectedStyle = lipgloss.NewStyle().
		Foreground(p.Fg).
		Background(p.BgHighlight).
		Bold(true)
	s.ListAddedStyle = lipgloss.NewStyle().Foreground(p.Success)
	s.ListConflictStyle = lipgloss.NewStyle().Foreground(p.FgMuted).Strikethrough(true)
	s.ListMetaStyle = lipgloss.NewStyle().Foreground(p.FgMuted)

	s.GridStyle = pane
	s.GridFocusedStyle = pane.BorderForeground(p.Accent)
	s.DayHeaderStyle = lipgloss.NewStyle().
		Bold(true).
		Align(lipgloss.Center).
		Foreground(p.Fg).
		Width(defaultColWidth)
	s.PeriodStyle = lipgloss.NewStyle().
		Foreground(p.FgMuted).
		Align(lipgloss.Right).
		Width(3)
	s.EmptyCellStyle = lipgloss.NewStyle().
		Foreground(p.FgMuted).
		Width(defaultColWidth)
	s.BreakCellStyle = s.EmptyCellStyle.Background(p.Break)
	s.CursorStyle = lipgloss.NewStyle().
		Foreground(p.TextOnAccent).
		Background(p.Accent).
		Width(defaultColWidth)
	s.CourseCellStyle = lipgloss.NewStyle().Width(defaultColWidth)

	s.SearchStyle = lipgloss.NewStyle().Foreground(p.FgMuted)
	s.SearchActiveStyle = lipgloss.NewStyle().Foreground(p.Accent)

	s.StatusStyle = lipgloss.NewStyle().Foreground(p.Success)
	s.WarningStyle = lipgloss.NewStyle().
		Foreground(p.TextOnWarning).
		Background(p.Warning).
		Padding(0, 1)
	s.CreditsStyle = lipgloss.NewStyle().Foreground(p.Accent).Bold(true)
	s.HelpStyle = lipgloss.NewStyle().Foreground(p.FgMuted)

	return s
}

// CourseCell returns the cell style for a course color, sized to width.
func (s *Styles) CourseCell(hex string, width int) lipgloss.Style {
	return s.CourseCellStyle.
		Width(width).
		Background(s.palette.CourseBg(hex)).
		Foreground(s.palette.CourseFg(hex))
}

// CourseMarker returns a foreground-only style in the course color, used for
// the list bullet.
func (s *Styles) CourseMarker(hex string) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(s.palette.CourseBg(hex))
}
