package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"

	"gadgetbench/internal/db"
)

const timeLayout = "2006-01-02 15:04:05"

// HistoryMarkdown lists runs as a markdown table, newest first.
func HistoryMarkdown(runs []db.Run) string {
	var sb strings.Builder
	sb.WriteString("# Run history\n\n")
	if len(runs) == 0 {
		sb.WriteString("No runs recorded yet.\n")
		return sb.String()
	}

	sb.WriteString("| ID | Created | Sheet | Benchmarks | Failed | Extra Flags |\n")
	sb.WriteString("|---|---|---|---|---|---|\n")
	for _, r := range runs {
		fmt.Fprintf(&sb, "| %s | %s | %s | %s | %s | %s |\n",
			shortID(r.ID),
			r.CreatedAt.Local().Format(timeLayout),
			escape(r.Sheet),
			escape(strings.Join(r.Benchmarks, ", ")),
			escape(orDash(strings.Join(r.Failures, ", "))),
			escape(orDash(r.ExtraFlags)),
		)
	}
	return sb.String()
}

// RunMarkdown describes one run and its average deltas.
func RunMarkdown(r db.Run) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "# Run %s\n\n", r.ID)
	fmt.Fprintf(&sb, "- **Created:** %s\n", r.CreatedAt.Local().Format(timeLayout))
	fmt.Fprintf(&sb, "- **Report:** %s, sheet `%s`\n", r.Report, r.Sheet)
	fmt.Fprintf(&sb, "- **Benchmarks:** %s\n", strings.Join(r.Benchmarks, ", "))
	if len(r.Failures) > 0 {
		fmt.Fprintf(&sb, "- **Failed:** %s\n", strings.Join(r.Failures, ", "))
	}
	if r.ExtraFlags != "" {
		fmt.Fprintf(&sb, "- **Extra Flags:** `%s`\n", r.ExtraFlags)
	} else {
		sb.WriteString("- **Extra Flags:** None\n")
	}

	sb.WriteString("\n## Average Δ\n\n")
	sb.WriteString("| Variant |")
	for _, c := range r.Categories {
		fmt.Fprintf(&sb, " %s |", escape(c))
	}
	sb.WriteString("\n|---|")
	for range r.Categories {
		sb.WriteString("---:|")
	}
	sb.WriteString("\n")
	for i, v := range r.Variants {
		fmt.Fprintf(&sb, "| %s |", escape(v))
		if i < len(r.Averages) {
			for _, cell := range r.Averages[i] {
				fmt.Fprintf(&sb, " %s |", cell)
			}
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

// RenderMarkdown renders markdown for the terminal. With colour disabled
// the notty style is used.
func RenderMarkdown(md string) (string, error) {
	style := glamour.WithAutoStyle()
	if plain {
		style = glamour.WithStandardStyle("notty")
	}
	renderer, err := glamour.NewTermRenderer(style, glamour.WithWordWrap(120))
	if err != nil {
		return "", fmt.Errorf("failed to create markdown renderer: %w", err)
	}
	out, err := renderer.Render(md)
	if err != nil {
		return "", fmt.Errorf("failed to render markdown: %w", err)
	}
	return out, nil
}

// RenderHistory renders the run list.
func RenderHistory(runs []db.Run) (string, error) {
	return RenderMarkdown(HistoryMarkdown(runs))
}

// RenderRun renders a single run.
func RenderRun(r db.Run) (string, error) {
	return RenderMarkdown(RunMarkdown(r))
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func escape(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}
