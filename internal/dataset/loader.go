// Package dataset loads the per-benchmark comparison files and combines them
// into one table.
package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"gadgetbench/internal/gadget"
)

// Loader reads comparison datasets. Variants is the expected number of rows
// per dataset; Categories the expected number of metric columns.
type Loader struct {
	Variants   int
	Categories int
}

// NewLoader returns a loader for the given number of variants and the fixed
// number of metric categories.
func NewLoader(variants int) *Loader {
	return &Loader{Variants: variants, Categories: CategoryCount}
}

// Load reads the dataset file of one benchmark.
func (l *Loader) Load(benchmark, path string) (Fragment, error) {
	f, err := os.Open(path)
	if err != nil {
		return Fragment{}, fmt.Errorf("failed to open dataset for %s: %w", benchmark, err)
	}
	defer f.Close()

	return l.Read(benchmark, f)
}

// Read parses a dataset from r and tags every row with the benchmark name.
func (l *Loader) Read(benchmark string, r io.Reader) (Fragment, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return Fragment{}, &ShapeError{Benchmark: benchmark, Reason: "dataset is empty"}
		}
		return Fragment{}, fmt.Errorf("failed to read dataset header for %s: %w", benchmark, err)
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}
	if len(header) != l.Categories+1 {
		return Fragment{}, &ShapeError{
			Benchmark: benchmark,
			Reason:    fmt.Sprintf("expected %d metric columns, got %d", l.Categories, len(header)-1),
		}
	}

	frag := Fragment{
		Benchmark:     benchmark,
		VariantHeader: strings.TrimSpace(header[0]),
		Headers:       trimAll(header[1:]),
	}

	line := 1
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			return Fragment{}, fmt.Errorf("failed to read dataset for %s: %w", benchmark, err)
		}
		if len(record) != len(header) {
			return Fragment{}, &ShapeError{
				Benchmark: benchmark,
				Reason:    fmt.Sprintf("line %d has %d fields, want %d", line, len(record), len(header)),
			}
		}

		row := Row{
			Benchmark: benchmark,
			Variant:   strings.TrimSpace(record[0]),
			Cells:     make([]gadget.Cell, 0, l.Categories),
		}
		for _, field := range record[1:] {
			cell, err := gadget.ParseCell(field)
			if err != nil {
				return Fragment{}, fmt.Errorf("dataset for %s, line %d: %w", benchmark, line, err)
			}
			row.Cells = append(row.Cells, cell)
		}
		frag.Rows = append(frag.Rows, row)
	}

	if len(frag.Rows) != l.Variants {
		return Fragment{}, &ShapeError{
			Benchmark: benchmark,
			Reason:    fmt.Sprintf("expected %d variant rows, got %d", l.Variants, len(frag.Rows)),
		}
	}

	return frag, nil
}

func trimAll(in []string) []string {
	out := make([]string, len(in))
	for i, s := range in {
		out[i] = strings.TrimSpace(s)
	}
	return out
}
