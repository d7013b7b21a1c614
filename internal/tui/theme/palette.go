package theme

import (
	"github.com/charmbracelet/lipgloss"
	colorful "github.com/lucasb-eyer/go-colorful"
)

// Palette holds lipgloss colors derived from a Theme.
type Palette struct {
	Bg          lipgloss.Color
	BgHighlight lipgloss.Color
	BgSelection lipgloss.Color
	Fg          lipgloss.Color
	FgMuted     lipgloss.Color
	Accent      lipgloss.Color
	Success     lipgloss.Color
	Warning     lipgloss.Color
	Break       lipgloss.Color

	TextOnAccent  lipgloss.Color
	TextOnWarning lipgloss.Color

	light bool
	dark  string // darkest of Bg/Fg, used as text on pastel course cells
	pale  string
}

// NewPalette derives a Palette from the provided Theme.
func NewPalette(t *Theme) *Palette {
	if t == nil {
		t, _ = Load("mocha")
	}
	light := IsLight(t.Bg)
	dark, pale := t.Bg, t.Fg
	if light {
		dark, pale = t.Fg, t.Bg
	}

	return &Palette{
		Bg:          lipgloss.Color(t.Bg),
		BgHighlight: lipgloss.Color(t.BgHighlight),
		BgSelection: lipgloss.Color(t.BgSelection),
		Fg:          lipgloss.Color(t.Fg),
		FgMuted:     lipgloss.Color(t.FgMuted),
		Accent:      lipgloss.Color(t.Accent),
		Success:     lipgloss.Color(t.Success),
		Warning:     lipgloss.Color(t.Warning),
		Break:       lipgloss.Color(t.Break),

		TextOnAccent:  lipgloss.Color(ChooseText(t.Accent, pale, dark)),
		TextOnWarning: lipgloss.Color(ChooseText(t.Warning, pale, dark)),

		light: light,
		dark:  dark,
		pale:  pale,
	}
}

// CourseBg adapts a pastel course color to the theme. Light themes use it
// as is; dark themes darken it so cells do not glare.
func (p *Palette) CourseBg(hex string) lipgloss.Color {
	if p.light {
		return lipgloss.Color(hex)
	}
	c, err := colorful.Hex(hex)
	if err != nil {
		return lipgloss.Color(hex)
	}
	h, s, l := c.Hsl()
	return lipgloss.Color(colorful.Hsl(h, s*0.6, l*0.45).Clamped().Hex())
}

// CourseFg returns readable text for a course cell.
func (p *Palette) CourseFg(hex string) lipgloss.Color {
	return lipgloss.Color(ChooseText(string(p.CourseBg(hex)), p.pale, p.dark))
}

// IsLight reports whether a background color is light.
func IsLight(bg string) bool {
	return luminance(bg) > 0.55
}

// ChooseText picks whichever of two text colors contrasts more with bg.
func ChooseText(bg, lightText, darkText string) string {
	if contrastRatio(bg, lightText) >= contrastRatio(bg, darkText) {
		return lightText
	}
	return darkText
}

func contrastRatio(a, b string) float64 {
	l1, l2 := luminance(a), luminance(b)
	if l1 < l2 {
		l1, l2 = l2, l1
	}
	return (l1 + 0.05) / (l2 + 0.05)
}

// luminance returns relative luminance, or 0 for an unparsable color.
func luminance(hex string) float64 {
	c, err := colorful.Hex(hex)
	if err != nil {
		return 0
	}
	r, g, b := c.LinearRgb()
	return 0.2126*r + 0.7152*g + 0.0722*b
}
