package ui

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"gadgetbench/internal/gadget"
)

var (
	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFF")).
			Background(lipgloss.Color("#7D56F4")).
			Bold(true).
			Padding(0, 1)

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Padding(0, 1).
			Align(lipgloss.Center)

	cellStyle = lipgloss.NewStyle().Padding(0, 1)

	borderStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("63"))

	noticeStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))

	// Same palette as the spreadsheet highlighting.
	classStyles = map[gadget.Class]lipgloss.Style{
		gadget.Improvement: cellStyle.Foreground(lipgloss.Color("#006100")).Background(lipgloss.Color("#C6EFCE")),
		gadget.Regression:  cellStyle.Foreground(lipgloss.Color("#9C0006")).Background(lipgloss.Color("#FFC7CE")),
		gadget.Neutral:     cellStyle.Foreground(lipgloss.Color("#9C5700")).Background(lipgloss.Color("#FFEB9C")),
	}
)

// plain is set once colour is disabled; glamour is told separately.
var plain bool

// DisableColor forces plain ASCII output for every renderer in the package.
func DisableColor() {
	lipgloss.SetColorProfile(termenv.Ascii)
	plain = true
}

func styleFor(c gadget.Class) lipgloss.Style {
	if s, ok := classStyles[c]; ok {
		return s
	}
	return cellStyle
}
