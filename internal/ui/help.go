package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// renderHelp renders the help overlay.
func (m Model) renderHelp() string {
	styles := m.theme.Styles()

	sections := []helpSection{
		{
			title: "Navigation",
			items: []helpItem{
				{"tab", "Switch files/report pane"},
				{"j/k", "Move up/down"},
				{"g/G", "Go to top/bottom"},
				{"ctrl+d/u", "Half page down/up"},
			},
		},
		{
			title: "Files",
			items: []helpItem{
				{"enter", "Open/close report"},
				{"m", "Mark file"},
				{"a", "Mark all/none"},
				{"x", "Export report"},
				{"X", "Export marked"},
				{"d", "Delete marked/current"},
				{"u", "Upload audio"},
				{"r", "Reload file list"},
			},
		},
		{
			title: "Report",
			items: []helpItem{
				{"n/N", "Next/prev detection"},
				{"space/p", "Play/stop clip"},
			},
		},
		{
			title: "General",
			items: []helpItem{
				{"R", "Reset session"},
				{"T", "Cycle theme"},
				{"h/?", "Toggle help"},
				{"q/ctrl+c", "Quit"},
			},
		},
	}

	var b strings.Builder

	b.WriteString(styles.Text.Bold(true).Render("Keyboard Shortcuts"))
	b.WriteString("\n")
	b.WriteString(styles.FaintText.Render(strings.Repeat("─", 30)))
	b.WriteString("\n\n")

	keyStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color(m.theme.Warning)).
		Width(12)

	for i, section := range sections {
		b.WriteString(styles.AccentText.Bold(true).Render(section.title))
		b.WriteString("\n")

		for _, item := range section.items {
			b.WriteString(keyStyle.Render(item.key))
			b.WriteString(styles.Text.Render(item.desc))
			b.WriteString("\n")
		}

		if i < len(sections)-1 {
			b.WriteString("\n")
		}
	}

	if m.logPath != "" {
		b.WriteString("\n")
		b.WriteString(styles.FaintText.Render("logs " + truncateMiddle(m.logPath, 30)))
	}

	return placeModal(m.theme, m.width, m.height, 44, b.String())
}

type helpSection struct {
	title string
	items []helpItem
}

type helpItem struct {
	key  string
	desc string
}
