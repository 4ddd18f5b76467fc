package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/five82/auqa/internal/playback"
	"github.com/five82/auqa/internal/report"
)

// detectionRow is one selectable detection line in the report pane.
type detectionRow struct {
	key     playback.Key
	hasClip bool
	line    int
}

// reportIdentity tells whether the shown report changed between snapshots.
type reportIdentity struct {
	fileID     string
	generation uint64
	loaded     bool
}

func (m Model) reportTitle() string {
	sel := m.snapshot.Selection
	if sel.FileID == "" {
		return "Report"
	}
	if sel.Report != nil && sel.Report.IssueCount() > 0 {
		return fmt.Sprintf("Report · %d %s", sel.Report.IssueCount(), plural(sel.Report.IssueCount(), "issue"))
	}
	return "Report"
}

// resizeReport fits the viewport inside the report pane borders.
func (m *Model) resizeReport() {
	_, reportWidth := m.paneWidths()
	m.reportViewport.Width = max(reportWidth-2, 1)
	m.reportViewport.Height = max(m.contentHeight()-2, 1)
}

// refreshReport re-renders the report pane. The detection cursor resets when
// a different report is shown.
func (m *Model) refreshReport() {
	if !m.ready {
		return
	}
	sel := m.snapshot.Selection
	id := reportIdentity{fileID: sel.FileID, generation: sel.Generation, loaded: sel.Report != nil}
	changed := id != m.shownReport
	m.shownReport = id
	if changed {
		m.rowCursor = 0
	}

	width := max(m.reportViewport.Width-2, 10)
	content, rows := m.renderReport(width)
	if last := max(len(rows)-1, 0); m.rowCursor > last {
		m.rowCursor = last
		content, rows = m.renderReport(width)
	}
	m.rows = rows
	m.reportViewport.SetContent(content)

	if changed {
		m.reportViewport.GotoTop()
	}
}

// moveRow moves the detection cursor and keeps it visible.
func (m *Model) moveRow(delta int) {
	if len(m.rows) == 0 {
		return
	}
	m.rowCursor = min(max(m.rowCursor+delta, 0), len(m.rows)-1)
	m.refreshReport()
	m.scrollToRow()
}

func (m *Model) scrollToRow() {
	if m.rowCursor >= len(m.rows) {
		return
	}
	line := m.rows[m.rowCursor].line
	switch {
	case line < m.reportViewport.YOffset:
		m.reportViewport.SetYOffset(line)
	case line >= m.reportViewport.YOffset+m.reportViewport.Height:
		m.reportViewport.SetYOffset(line - m.reportViewport.Height + 1)
	}
}

// renderReport builds the report pane text and the line of each detection.
func (m Model) renderReport(width int) (string, []detectionRow) {
	styles := m.theme.Styles()
	sel := m.snapshot.Selection

	switch {
	case sel.FileID == "":
		return styles.MutedText.Render(" Select a file and press enter to view its report"), nil
	case sel.Loading:
		return styles.MutedText.Render(" Loading report..."), nil
	case sel.Report == nil:
		return styles.MutedText.Render(" Report unavailable"), nil
	}

	c := sel.Report
	var lines []string
	var rows []detectionRow
	add := func(s string) { lines = append(lines, " "+s) }

	name := c.DisplayName()
	if name == "" {
		name = m.fileName(sel.FileID)
	}
	add(styles.Text.Bold(true).Render(truncate(name, width)))
	if c.Title != "" && c.File != "" {
		add(styles.MutedText.Render(truncate("File: "+c.File, width)))
	}
	for _, line := range report.MetadataLines(c.Metadata) {
		add(styles.MutedText.Render(line))
	}

	if len(c.OverallResults) > 0 {
		add("")
		add(styles.AccentText.Bold(true).Render("Overall Results"))
		for _, r := range c.OverallResults {
			add("  " + styles.Text.Render(r.Type+": ") + styles.InfoText.Render(report.FormatResult(r.Result)))
			for _, p := range report.FormatParams(r.Params) {
				add("    " + styles.FaintText.Render(truncate(p, width-4)))
			}
		}
	}

	add("")
	if len(c.Groups) == 0 {
		add(styles.SuccessText.Render("No issues detected. Audio quality is good."))
		return strings.Join(lines, "\n"), nil
	}

	count := c.IssueCount()
	add(styles.AccentText.Bold(true).Render(fmt.Sprintf("Detections (%d)", count)))
	wrap := lipgloss.NewStyle().Width(max(width-2, 10))

	for _, g := range c.Groups {
		add("")
		label := typeLabel(g.Type)
		add(styles.IssueStyle(g.Type).Render(label) + " " +
			styles.MutedText.Render(fmt.Sprintf("%d %s", len(g.Instances), plural(len(g.Instances), "issue"))))
		if g.SharedDetails != "" {
			for _, l := range strings.Split(wrap.Render(g.SharedDetails), "\n") {
				add("  " + styles.Text.Render(strings.TrimRight(l, " ")))
			}
		}
		for _, p := range report.FormatParams(g.SharedParams) {
			add("  " + styles.FaintText.Render(truncate(p, width-2)))
		}

		for i, d := range g.Instances {
			key := playback.Key{Type: g.Type, ID: string(d.ID)}
			rows = append(rows, detectionRow{key: key, hasClip: d.HasClip(), line: len(lines)})
			add(m.formatDetectionLine(i, d, key, len(rows)-1 == m.rowCursor, width))
			if g.SharedDetails == "" && strings.TrimSpace(d.Details) != "" {
				add("      " + styles.MutedText.Render(truncate(d.Details, width-6)))
			}
		}
	}

	return strings.Join(lines, "\n"), rows
}

// formatDetectionLine renders "› 1. 00:01 - 00:02 ♪" with the cursor and
// playback state.
func (m Model) formatDetectionLine(i int, d report.Detection, key playback.Key, current bool, width int) string {
	styles := m.theme.Styles()

	cursor := "  "
	if current && m.focused == paneReport {
		cursor = "› "
	}

	clip := ""
	switch {
	case m.isPlaying && m.playing == key:
		clip = " " + styles.SuccessText.Render("▶ playing")
	case d.HasClip():
		clip = " " + styles.FaintText.Render("♪")
	}

	text := truncate(fmt.Sprintf("%d. %s", i+1, d.TimeRange()), max(width-14, 8))
	if current {
		text = styles.Selected.Render(text)
	} else {
		text = styles.Text.Render(text)
	}
	return styles.AccentText.Render(cursor) + text + clip
}

func typeLabel(typ string) string {
	if strings.TrimSpace(typ) == "" {
		return "(untyped)"
	}
	return typ
}
