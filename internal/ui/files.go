package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/five82/auqa/internal/auqa"
)

// renderContent renders the file list and report panes.
func (m Model) renderContent() string {
	height := m.contentHeight()
	filesWidth, reportWidth := m.paneWidths()

	filesFocused := m.focused == paneFiles
	filesContent := m.renderFileList(max(filesWidth-2, 0), max(height-2, 0), m.paneBg(filesFocused))
	filesPane := m.renderTitledBox(m.filesTitle(), filesContent, filesWidth, height, filesFocused)

	reportFocused := m.focused == paneReport
	reportPane := m.renderTitledBox(m.reportTitle(), m.reportViewport.View(), reportWidth, height, reportFocused)

	if m.width < LayoutCompactWidth {
		if reportFocused {
			return reportPane
		}
		return filesPane
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, filesPane, reportPane)
}

func (m Model) filesTitle() string {
	title := fmt.Sprintf("Files (%d)", len(m.snapshot.Files.Files))
	if n := len(m.marked); n > 0 {
		title += fmt.Sprintf(" · %d marked", n)
	}
	return title
}

// renderFileList renders the rows that fit around the cursor.
func (m Model) renderFileList(width, height int, bgColor string) string {
	styles := m.theme.Styles()
	view := m.snapshot.Files
	muted := styles.MutedText.Background(lipgloss.Color(bgColor))

	switch {
	case !view.Loaded && view.LastError != nil:
		return strings.Join([]string{
			styles.DangerText.Background(lipgloss.Color(bgColor)).Render(" Could not load files"),
			muted.Render(" " + truncate(view.LastError.Error(), max(width-2, 0))),
			"",
			muted.Render(" Press r to retry"),
		}, "\n")
	case !view.Loaded:
		return muted.Render(" Loading files...")
	case len(view.Files) == 0:
		return muted.Render(" No processed files. Press u to upload.")
	}

	start, end := visibleRange(len(view.Files), m.cursor, height)
	lines := make([]string, 0, end-start)
	for i := start; i < end; i++ {
		f := view.Files[i]
		if i == m.cursor {
			content := m.formatFileRow(f, width, m.theme.SelectionBg, true)
			lines = append(lines, lipgloss.NewStyle().
				Background(lipgloss.Color(m.theme.SelectionBg)).
				Width(width).
				Render(content))
			continue
		}
		content := m.formatFileRow(f, width, bgColor, false)
		lines = append(lines, lipgloss.NewStyle().
			Background(lipgloss.Color(bgColor)).
			Width(width).
			Render(content))
	}
	return strings.Join(lines, "\n")
}

// visibleRange returns the window of rows to draw so the cursor stays on
// screen.
func visibleRange(count, cursor, height int) (int, int) {
	if height <= 0 || count <= height {
		return 0, count
	}
	start := min(max(cursor-height/2, 0), count-height)
	return start, start + height
}

// formatFileRow formats one file as "● ▶ name  3 issues  2 hours ago".
// When selected is true, uses SelectionText color for all text to ensure contrast.
func (m Model) formatFileRow(f auqa.ProcessedFile, width int, bgColor string, selected bool) string {
	styles := m.theme.Styles()
	bg := NewBgStyle(bgColor)

	textStyle := styles.Text
	mutedStyle := styles.MutedText
	issueStyle := styles.WarningText
	if f.IssueCount == 0 {
		issueStyle = styles.SuccessText
	}
	if selected {
		sel := lipgloss.NewStyle().Foreground(lipgloss.Color(m.theme.SelectionText))
		textStyle, mutedStyle, issueStyle = sel, sel, sel.Bold(true)
	}

	mark := " "
	if m.marked[f.ID] {
		mark = "●"
	}
	open := " "
	if m.snapshot.Selection.FileID == f.ID {
		open = "▶"
	}

	issues := "clean"
	if f.IssueCount > 0 {
		issues = fmt.Sprintf("%d %s", f.IssueCount, plural(f.IssueCount, "issue"))
	}

	when := ""
	if width >= LayoutDateWidth {
		if t := f.ParsedProcessedDate(); !t.IsZero() {
			when = humanize.RelTime(t, m.now(), "ago", "from now")
		}
	}

	// mark, open, three separators
	used := 2 + 3 + len([]rune(issues))
	if when != "" {
		used += 2 + len([]rune(when))
	}
	nameWidth := max(width-used, 4)
	name := padRight(truncateMiddle(f.Name, nameWidth), nameWidth)

	row := bg.Render(mark, styles.AccentText) +
		bg.Render(open, styles.AccentText) + bg.Gap(1) +
		bg.Render(name, textStyle) + bg.Gap(1) +
		bg.Render(issues, issueStyle)
	if when != "" {
		row += bg.Gap(2) + bg.Render(when, mutedStyle)
	}
	return row
}
