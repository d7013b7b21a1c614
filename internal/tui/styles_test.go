package tui

import (
	"testing"

	"github.com/charmbracelet/lipgloss"

	"github.com/javiermolinar/coursegrid/internal/tui/theme"
)

func TestStylesFromTheme(t *testing.T) {
	th := &theme.Theme{
		Bg:          "#101010",
		BgHighlight: "#202020",
		BgSelection: "#303030",
		Fg:          "#ffffff",
		FgMuted:     "#aaaaaa",
		Accent:      "#ff0000",
		Success:     "#00ff00",
		Warning:     "#ff00ff",
		Break:       "#080808",
	}
	styles := NewStyles(th)

	assertBg := func(t *testing.T, name string, style lipgloss.Style, want string) {
		t.Helper()
		bg, ok := style.GetBackground().(lipgloss.Color)
		if !ok {
			t.Fatalf("%s background type = %T, want lipgloss.Color", name, style.GetBackground())
		}
		if bg != lipgloss.Color(want) {
			t.Fatalf("%s background = %q, want %q", name, bg, want)
		}
	}

	assertBg(t, "BreakCellStyle", styles.BreakCellStyle, th.Break)
	assertBg(t, "CursorStyle", styles.CursorStyle, th.Accent)
	assertBg(t, "WarningStyle", styles.WarningStyle, th.Warning)
	assertBg(t, "ListSelectedStyle", styles.ListSelectedStyle, th.BgHighlight)
}

func TestCourseCellWidth(t *testing.T) {
	t.Parallel()

	th, _ := theme.Load("mocha")
	styles := NewStyles(th)
	cell := styles.CourseCell("#d7f5e1", 12)

	if cell.GetWidth() != 12 {
		t.Errorf("width = %d, want 12", cell.GetWidth())
	}
	if _, ok := cell.GetBackground().(lipgloss.Color); !ok {
		t.Error("course cell should have a background")
	}
}
