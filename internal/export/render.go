package export

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/five82/auqa/internal/report"
)

// GeneratedLayout formats the generation timestamp in rendered reports.
const GeneratedLayout = "2006-01-02 15:04:05"

// Render produces the text document for one report. Output depends only on
// c and generated.
func Render(c report.Canonical, generated time.Time) string {
	var b strings.Builder

	b.WriteString("Audio Quality Assurance Report\n")
	b.WriteString("================================\n\n")
	if c.Title != "" {
		fmt.Fprintf(&b, "Title: %s\n", c.Title)
	}
	fmt.Fprintf(&b, "File: %s\n", c.File)
	fmt.Fprintf(&b, "Generated: %s\n", generated.Format(GeneratedLayout))
	for _, line := range report.MetadataLines(c.Metadata) {
		b.WriteString(line)
		b.WriteByte('\n')
	}
	b.WriteByte('\n')

	if len(c.OverallResults) > 0 {
		section(&b, "Overall Results")
		for _, r := range c.OverallResults {
			fmt.Fprintf(&b, "  %s: %s\n", r.Type, report.FormatResult(r.Result))
			for _, p := range report.FormatParams(r.Params) {
				fmt.Fprintf(&b, "      %s\n", p)
			}
		}
		b.WriteByte('\n')
	}

	if len(c.Groups) == 0 {
		b.WriteString("No issues detected. Audio quality is good.\n")
		return b.String()
	}

	fmt.Fprintf(&b, "Total Issues Detected: %d\n\n", c.IssueCount())

	section(&b, "Summary by Issue Type")
	for _, g := range c.Groups {
		fmt.Fprintf(&b, "  %s: %d issue(s)\n", groupLabel(g.Type), len(g.Instances))
	}
	b.WriteByte('\n')

	section(&b, "Detailed Issue List")
	for _, g := range c.Groups {
		fmt.Fprintf(&b, "%s (%d)\n", groupLabel(g.Type), len(g.Instances))
		if g.SharedDetails != "" {
			fmt.Fprintf(&b, "  Details: %s\n", g.SharedDetails)
		}
		if params := report.FormatParams(g.SharedParams); len(params) > 0 {
			b.WriteString("  Parameters:\n")
			for _, p := range params {
				fmt.Fprintf(&b, "    %s\n", p)
			}
		}
		for i, d := range g.Instances {
			fmt.Fprintf(&b, "  %d. Time: %s\n", i+1, d.TimeRange())
			if g.SharedDetails == "" && strings.TrimSpace(d.Details) != "" {
				fmt.Fprintf(&b, "     Details: %s\n", d.Details)
			}
		}
		b.WriteByte('\n')
	}
	return b.String()
}

// RenderBatch renders one document per report, in input order.
func RenderBatch(cs []report.Canonical, generated time.Time) []string {
	out := make([]string, len(cs))
	for i, c := range cs {
		out[i] = Render(c, generated)
	}
	return out
}

// FileName derives the export file name from an audio file name:
// "take.wav" becomes "take_report.txt".
func FileName(name string) string {
	base := filepath.Base(strings.TrimSpace(name))
	if base == "." || base == string(filepath.Separator) {
		base = "report"
	}
	if ext := filepath.Ext(base); ext != "" && ext != base {
		base = strings.TrimSuffix(base, ext)
	}
	return base + "_report.txt"
}

func section(b *strings.Builder, title string) {
	b.WriteString(title + ":\n")
	b.WriteString(strings.Repeat("-", len(title)+1) + "\n")
}

func groupLabel(typ string) string {
	if typ == "" {
		return "(untyped)"
	}
	return typ
}
