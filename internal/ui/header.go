package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
)

type flashLevel int

const (
	flashInfo flashLevel = iota
	flashWarn
	flashError
)

// flash is a transient footer message.
type flash struct {
	text  string
	level flashLevel
	at    time.Time
}

func (m *Model) setFlash(level flashLevel, text string) {
	m.flash = flash{text: text, level: level, at: m.now()}
}

// renderHeader renders the status bar: connection, queue progress and
// session start.
func (m Model) renderHeader() string {
	styles := m.theme.Styles().WithBackground(m.theme.Surface)
	bg := NewBgStyle(m.theme.Surface)
	compact := m.width < LayoutCompactWidth
	queue := m.snapshot.Queue

	parts := []string{bg.Render("auqa", styles.Logo)}

	switch {
	case queue.IsOffline():
		parts = append(parts, bg.Render("● OFFLINE", styles.DangerText))
	case !queue.HasStatus:
		parts = append(parts, bg.Render("Connecting...", styles.WarningText.Bold(true)))
	default:
		parts = append(parts, bg.Render("● ON", styles.SuccessText))
	}

	if queue.HasStatus {
		parts = append(parts, m.renderQueueProgress(styles, bg, compact))
	}

	if m.anchor > 0 {
		parts = append(parts,
			bg.Render("Session:", styles.MutedText)+bg.Gap(1)+
				bg.Render(time.Unix(m.anchor, 0).Format("Jan 2 15:04"), styles.Text))
	}

	if !compact && m.apiURL != "" {
		parts = append(parts, bg.Render(truncateMiddle(m.apiURL, 40), styles.FaintText))
	}

	return styles.Header.Width(m.width).Render(bg.Join(parts, "  "))
}

// renderQueueProgress renders the session's job counts with a completion
// bar.
func (m Model) renderQueueProgress(styles Styles, bg BgStyle, compact bool) string {
	status := m.snapshot.Queue.Status
	if status.Total == 0 {
		return bg.Render("No jobs in queue", styles.MutedText)
	}

	percent := status.Percent() * 100
	out := bg.Render("Queue:", styles.MutedText) + bg.Gap(1) +
		m.renderProgressBar(percent, queueBarWidth, styles, bg) + bg.Gap(1) +
		bg.Render(fmt.Sprintf("%.0f%%", percent), styles.Text)

	if !compact {
		out += bg.Gap(1) + bg.Render(fmt.Sprintf("%d/%d done", status.Completed, status.Total), styles.MutedText)
		if status.InProgress > 0 {
			out += bg.Gap(2) + bg.Render(fmt.Sprintf("%d running", status.InProgress), styles.InfoText)
		}
		if status.Queued > 0 {
			out += bg.Gap(2) + bg.Render(fmt.Sprintf("%d queued", status.Queued), styles.WarningText)
		}
	}
	return out
}

// renderProgressBar renders a text-based progress bar without percentage text.
func (m Model) renderProgressBar(percent float64, width int, styles Styles, bg BgStyle) string {
	percent = min(max(percent, 0), 100)
	filled := min(int(float64(width)*percent/100), width)
	bar := strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
	return bg.Render(bar, styles.AccentText)
}

// renderCommandBar renders key hints for the focused pane.
func (m Model) renderCommandBar() string {
	styles := m.theme.Styles().WithBackground(m.theme.Surface)
	bg := NewBgStyle(m.theme.Surface)

	type cmd struct{ key, desc string }
	var commands []cmd

	switch m.focused {
	case paneReport:
		commands = []cmd{
			{"n/N", "Detection"},
			{"Space", "Play"},
			{"x", "Export"},
			{"Tab", "Files"},
			{"?", "More"},
		}
	default:
		commands = []cmd{
			{"Enter", "Open"},
			{"m", "Mark"},
			{"x/X", "Export"},
			{"d", "Delete"},
			{"u", "Upload"},
			{"R", "Reset"},
			{"Tab", "Report"},
			{"?", "More"},
		}
	}

	colon := bg.Paint(":")
	segments := make([]string, 0, len(commands)+1)
	for _, c := range commands {
		segments = append(segments,
			bg.Render(c.key, styles.AccentText)+colon+bg.Render(c.desc, styles.MutedText))
	}

	segments = append(segments,
		bg.Render("T", styles.AccentText)+colon+bg.Render(m.theme.Name, styles.FaintText))

	return styles.Header.Width(m.width).Render(strings.Join(segments, bg.Gap(2)))
}

// renderFooter shows the running action, the last action result, or the
// freshness of the data.
func (m Model) renderFooter() string {
	styles := m.theme.Styles().WithBackground(m.theme.Surface)
	bg := NewBgStyle(m.theme.Surface)
	limit := max(m.width-2, 1)

	var content string
	switch {
	case m.busy != "":
		content = bg.Render(truncate(m.busy+"...", limit), styles.WarningText.Bold(true))
	case m.flash.text != "":
		style := styles.SuccessText
		switch m.flash.level {
		case flashWarn:
			style = styles.WarningText
		case flashError:
			style = styles.DangerText
		}
		content = bg.Render(truncate(m.flash.text, limit), style)
	case m.snapshot.Files.LastError != nil && m.snapshot.Files.Loaded:
		content = bg.Render(truncate("File list may be stale: "+m.snapshot.Files.LastError.Error(), limit), styles.WarningText)
	case !m.lastUpdated.IsZero():
		content = bg.Render("Updated "+m.lastUpdated.Format("15:04:05"), styles.FaintText)
	}

	return styles.Footer.Width(m.width).Render(content)
}

// renderTitledBox draws a bordered pane with the title set into the top
// border.
func (m Model) renderTitledBox(title, content string, width, height int, focused bool) string {
	var borderColorStr, bgColorStr string
	if focused {
		borderColorStr = m.theme.BorderFocus
		bgColorStr = m.theme.FocusBg
	} else {
		borderColorStr = m.theme.Border
		bgColorStr = m.theme.SurfaceAlt
	}
	bg := NewBgStyle(bgColorStr)
	borderStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(borderColorStr))
	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(m.theme.Text))

	innerWidth := max(width-2, 0)
	title = truncate(title, max(innerWidth-4, 0))
	titleLen := lipgloss.Width(title)
	leftPad := max((innerWidth-titleLen-2)/2, 0)
	rightPad := max(innerWidth-titleLen-2-leftPad, 0)

	topBorder := bg.Render("┌", borderStyle) +
		bg.Render(strings.Repeat("─", leftPad), borderStyle) +
		bg.Render(" "+title+" ", titleStyle) +
		bg.Render(strings.Repeat("─", rightPad), borderStyle) +
		bg.Render("┐", borderStyle)

	bottomBorder := bg.Render("└", borderStyle) +
		bg.Render(strings.Repeat("─", innerWidth), borderStyle) +
		bg.Render("┘", borderStyle)

	contentStyle := lipgloss.NewStyle().Width(innerWidth).MaxWidth(innerWidth).Background(lipgloss.Color(bgColorStr))

	contentLines := strings.Split(content, "\n")
	boxHeight := max(height-2, 0)

	lines := make([]string, 0, boxHeight)
	for i := 0; i < boxHeight; i++ {
		var line string
		if i < len(contentLines) {
			line = contentLines[i]
		}
		lines = append(lines,
			bg.Render("│", borderStyle)+
				contentStyle.Render(line)+
				bg.Render("│", borderStyle))
	}

	return topBorder + "\n" + strings.Join(lines, "\n") + "\n" + bottomBorder
}

// paneBg is the background color of a pane given its focus.
func (m Model) paneBg(focused bool) string {
	if focused {
		return m.theme.FocusBg
	}
	return m.theme.SurfaceAlt
}
