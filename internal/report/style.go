package report

import (
	"fmt"

	"gadgetbench/internal/gadget"

	"github.com/xuri/excelize/v2"
)

// Fill colours follow the spreadsheet "Good", "Bad" and "Neutral" presets.
var classColors = map[gadget.Class]struct{ fill, font string }{
	gadget.Improvement: {fill: "C6EFCE", font: "006100"},
	gadget.Regression:  {fill: "FFC7CE", font: "9C0006"},
	gadget.Neutral:     {fill: "FFEB9C", font: "9C5700"},
}

type styles struct {
	header   int
	centered int
	classes  map[gadget.Class]int
}

func newStyles(f *excelize.File) (*styles, error) {
	st := &styles{classes: make(map[gadget.Class]int)}
	center := &excelize.Alignment{Horizontal: "center", Vertical: "center"}

	var err error
	if st.header, err = f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true},
		Alignment: center,
	}); err != nil {
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}
	if st.centered, err = f.NewStyle(&excelize.Style{Alignment: center}); err != nil {
		return nil, fmt.Errorf("failed to create alignment style: %w", err)
	}

	for class, c := range classColors {
		id, err := f.NewStyle(&excelize.Style{
			Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{c.fill}},
			Font: &excelize.Font{Color: c.font},
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create %s style: %w", class, err)
		}
		st.classes[class] = id
	}
	return st, nil
}

// highlight styles a single metric cell according to its class. Cells of
// class None keep the default style.
func (s *Sheet) highlight(cell string, class gadget.Class) error {
	id, ok := s.doc.styles.classes[class]
	if !ok {
		return nil
	}
	return s.doc.file.SetCellStyle(s.name, cell, cell, id)
}
