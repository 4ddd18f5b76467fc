package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// BgStyle paints status-bar text on one background. Lipgloss resets the
// background after each styled run, so words and gaps are painted
// separately.
type BgStyle struct {
	fill lipgloss.Style
}

// NewBgStyle returns a BgStyle for color.
func NewBgStyle(color string) BgStyle {
	return BgStyle{fill: lipgloss.NewStyle().Background(lipgloss.Color(color))}
}

// Render paints text in style, keeping the background under every space.
func (b BgStyle) Render(text string, style lipgloss.Style) string {
	style = style.Background(b.fill.GetBackground())
	var out strings.Builder
	for i, word := range strings.Split(text, " ") {
		if i > 0 {
			out.WriteString(b.Gap(1))
		}
		if word != "" {
			out.WriteString(style.Render(word))
		}
	}
	return out.String()
}

// Gap returns n painted spaces.
func (b BgStyle) Gap(n int) string {
	return b.Paint(strings.Repeat(" ", n))
}

// Paint renders s with only the background applied.
func (b BgStyle) Paint(s string) string {
	return b.fill.Render(s)
}

// Join joins parts with a painted separator.
func (b BgStyle) Join(parts []string, sep string) string {
	return strings.Join(parts, b.Paint(sep))
}
