package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"gadgetbench/internal/summary"
)

// RunSummary is what the run command prints once the report is saved.
type RunSummary struct {
	Report     string
	Sheet      string
	ExtraFlags string
	Benchmarks []string
	Failures   []string
	Averages   summary.Averages
}

// RenderSummary draws the average deltas table with each cell coloured by
// its classification.
func RenderSummary(avg summary.Averages) string {
	formatted := avg.Formatted()

	rows := make([][]string, len(formatted))
	for i, r := range formatted {
		rows[i] = append([]string{avg.Variants[i]}, r...)
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(borderStyle).
		Headers(append([]string{"Variant"}, avg.Categories...)...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return headerStyle
			case col == 0:
				return cellStyle.Bold(true)
			default:
				return styleFor(avg.Class(row, col-1)).Align(lipgloss.Right)
			}
		})

	return t.Render()
}

// Render formats the full end-of-run summary.
func (s RunSummary) Render() string {
	var sb strings.Builder

	sb.WriteString(titleStyle.Render(fmt.Sprintf("Sheet %q written to %s", s.Sheet, s.Report)))
	sb.WriteString("\n\n")

	flags := s.ExtraFlags
	if flags == "" {
		flags = "None"
	}
	fmt.Fprintf(&sb, "Benchmarks:  %s\n", strings.Join(s.Benchmarks, ", "))
	fmt.Fprintf(&sb, "Extra Flags: %s\n", flags)
	if len(s.Failures) > 0 {
		sb.WriteString(noticeStyle.Render(fmt.Sprintf("Skipped:     %s", strings.Join(s.Failures, ", "))))
		sb.WriteString("\n")
	}
	sb.WriteString("\n")
	sb.WriteString(RenderSummary(s.Averages))
	sb.WriteString("\n")

	improved, regressed, neutral := s.Averages.Tally()
	fmt.Fprintf(&sb, "%d improved, %d regressed, %d neutral\n", improved, regressed, neutral)
	return sb.String()
}
