// Package summary computes cross-benchmark average deltas.
package summary

import (
	"fmt"
	"strconv"

	"gadgetbench/internal/dataset"
	"gadgetbench/internal/gadget"
)

// Averages holds the mean delta per variant (row) and metric category
// (column). Values must not be modified after Average returns.
type Averages struct {
	Variants   []string
	Categories []string
	Values     [][]float64
}

// Average folds the grouped table into per-(variant, category) means. Every
// metric cell must carry a parsable delta; anything else would silently
// corrupt the mean and is reported instead.
func Average(blocks []dataset.Block, variants, categories []string) (Averages, error) {
	if len(blocks) == 0 {
		return Averages{}, fmt.Errorf("no benchmarks to average")
	}

	sums := make([][]float64, len(variants))
	for i := range sums {
		sums[i] = make([]float64, len(categories))
	}

	for _, b := range blocks {
		if len(b.Rows) != len(variants) {
			return Averages{}, &dataset.ShapeError{
				Benchmark: b.Benchmark,
				Reason:    fmt.Sprintf("block has %d rows, want %d", len(b.Rows), len(variants)),
			}
		}
		for i, r := range b.Rows {
			if r.Variant != variants[i] {
				return Averages{}, &dataset.ShapeError{
					Benchmark: b.Benchmark,
					Reason:    fmt.Sprintf("row %d is variant %q, want %q", i+1, r.Variant, variants[i]),
				}
			}
			if len(r.Cells) != len(categories) {
				return Averages{}, &dataset.ShapeError{
					Benchmark: b.Benchmark,
					Reason:    fmt.Sprintf("variant %q has %d cells, want %d", r.Variant, len(r.Cells), len(categories)),
				}
			}
			for j, c := range r.Cells {
				if !c.HasDelta {
					return Averages{}, fmt.Errorf("%s/%s/%s: %w: no delta in %q",
						b.Benchmark, r.Variant, categories[j], gadget.ErrMalformedDelta, c.Raw)
				}
				sums[i][j] += c.Delta
			}
		}
	}

	n := float64(len(blocks))
	for i := range sums {
		for j := range sums[i] {
			sums[i][j] /= n
		}
	}

	return Averages{
		Variants:   append([]string{}, variants...),
		Categories: append([]string{}, categories...),
		Values:     sums,
	}, nil
}

// Formatted renders every average with the signed three-decimal rule used
// for metric deltas.
func (a Averages) Formatted() [][]string {
	out := make([][]string, len(a.Values))
	for i, row := range a.Values {
		out[i] = make([]string, len(row))
		for j, v := range row {
			out[i][j] = gadget.FormatDelta(v)
		}
	}
	return out
}

// Class returns the highlight class of one average cell, judged on its
// formatted text so a mean that rounds to zero is neutral.
func (a Averages) Class(variant, category int) gadget.Class {
	rounded, err := strconv.ParseFloat(gadget.FormatDelta(a.Values[variant][category]), 64)
	if err != nil {
		return gadget.Neutral
	}
	return gadget.ClassifyDelta(gadget.PolarityOf(a.Categories[category]), rounded)
}

// Tally counts improvement, regression and neutral cells.
func (a Averages) Tally() (improved, regressed, neutral int) {
	for i := range a.Values {
		for j := range a.Values[i] {
			switch a.Class(i, j) {
			case gadget.Improvement:
				improved++
			case gadget.Regression:
				regressed++
			case gadget.Neutral:
				neutral++
			}
		}
	}
	return improved, regressed, neutral
}
