package report

import (
	"fmt"

	"gadgetbench/internal/dataset"
	"gadgetbench/internal/gadget"
	"gadgetbench/internal/summary"

	"github.com/xuri/excelize/v2"
)

const (
	benchmarkHeader   = "Benchmark"
	variantHeader     = "Variant"
	extraFlagsLabel   = "Extra Flags"
	noExtraFlags      = "None"
	averageLabel      = "Average Δ"
	firstMetricColumn = 3
)

// Sheet is the sheet of the current run.
type Sheet struct {
	doc        *Document
	name       string
	categories []string
	lastRow    int
}

// Name returns the sheet name.
func (s *Sheet) Name() string {
	return s.name
}

// WriteTable writes the header row and one merged block per benchmark.
// blocks must come from dataset.Group over the same table.
func (s *Sheet) WriteTable(t dataset.Table, blocks []dataset.Block) error {
	f := s.doc.file
	s.categories = append([]string{}, t.Categories...)

	vh := t.VariantHeader
	if vh == "" {
		vh = variantHeader
	}
	header := append([]any{benchmarkHeader, vh}, toAny(t.Categories)...)
	if err := f.SetSheetRow(s.name, "A1", &header); err != nil {
		return fmt.Errorf("failed to write header row: %w", err)
	}
	if err := f.SetCellStyle(s.name, "A1", s.cell(len(header), 1), s.doc.styles.header); err != nil {
		return err
	}

	row := 2
	for _, b := range blocks {
		start := row
		for _, r := range b.Rows {
			values := []any{r.Benchmark, r.Variant}
			for _, c := range r.Cells {
				values = append(values, cellText(c))
			}
			if err := f.SetSheetRow(s.name, s.cell(1, row), &values); err != nil {
				return fmt.Errorf("failed to write row %d: %w", row, err)
			}
			if err := s.highlightRow(row, r.Cells); err != nil {
				return err
			}
			row++
		}
		if err := s.mergeLabel(start, row-1); err != nil {
			return fmt.Errorf("failed to merge block of %s: %w", b.Benchmark, err)
		}
	}
	s.lastRow = row - 1

	if err := f.SetColWidth(s.name, "A", "B", 18); err != nil {
		return err
	}
	lastCol, err := excelize.ColumnNumberToName(s.lastColumn())
	if err != nil {
		return err
	}
	return f.SetColWidth(s.name, "C", lastCol, 24)
}

func (s *Sheet) highlightRow(row int, cells []gadget.Cell) error {
	for j, c := range cells {
		class, err := gadget.Classify(s.categories[j], cellText(c))
		if err != nil {
			return err
		}
		if err := s.highlight(s.cell(firstMetricColumn+j, row), class); err != nil {
			return err
		}
	}
	return nil
}

// AppendSummary writes the Extra Flags row and the merged block of average
// deltas two rows below the data.
func (s *Sheet) AppendSummary(avg summary.Averages, extraFlags string) error {
	f := s.doc.file
	if len(s.categories) == 0 {
		s.categories = append([]string{}, avg.Categories...)
	}
	lastCol := s.lastColumn()

	row := s.lastRow + 2
	if extraFlags == "" {
		extraFlags = noExtraFlags
	}
	if err := f.SetCellValue(s.name, s.cell(1, row), extraFlagsLabel); err != nil {
		return err
	}
	if err := f.MergeCell(s.name, s.cell(1, row), s.cell(2, row)); err != nil {
		return err
	}
	if err := f.SetCellValue(s.name, s.cell(firstMetricColumn, row), extraFlags); err != nil {
		return err
	}
	if err := f.MergeCell(s.name, s.cell(firstMetricColumn, row), s.cell(lastCol, row)); err != nil {
		return err
	}
	if err := f.SetCellStyle(s.name, s.cell(1, row), s.cell(lastCol, row), s.doc.styles.centered); err != nil {
		return err
	}

	start := row + 1
	formatted := avg.Formatted()
	for i, variant := range avg.Variants {
		r := start + i
		values := []any{variant}
		for _, v := range formatted[i] {
			values = append(values, v)
		}
		if err := f.SetSheetRow(s.name, s.cell(2, r), &values); err != nil {
			return fmt.Errorf("failed to write average row %d: %w", r, err)
		}
		for j := range formatted[i] {
			if err := s.highlight(s.cell(firstMetricColumn+j, r), avg.Class(i, j)); err != nil {
				return err
			}
		}
	}
	if err := f.SetCellValue(s.name, s.cell(1, start), averageLabel); err != nil {
		return err
	}
	end := start + len(avg.Variants) - 1
	if err := s.mergeLabel(start, end); err != nil {
		return fmt.Errorf("failed to merge average label: %w", err)
	}
	s.lastRow = end
	return nil
}

func (s *Sheet) mergeLabel(start, end int) error {
	f := s.doc.file
	if end > start {
		if err := f.MergeCell(s.name, s.cell(1, start), s.cell(1, end)); err != nil {
			return err
		}
	}
	return f.SetCellStyle(s.name, s.cell(1, start), s.cell(1, start), s.doc.styles.centered)
}

func (s *Sheet) lastColumn() int {
	return firstMetricColumn + len(s.categories) - 1
}

func (s *Sheet) cell(col, row int) string {
	name, _ := excelize.CoordinatesToCellName(col, row)
	return name
}

// cellText keeps the comparator's own text for data cells.
func cellText(c gadget.Cell) string {
	if c.Raw != "" {
		return c.Raw
	}
	return c.String()
}

func toAny(in []string) []any {
	out := make([]any, len(in))
	for i, s := range in {
		out[i] = s
	}
	return out
}
