package dataset

import (
	"fmt"

	"gadgetbench/internal/gadget"
)

// CategoryCount is the number of metric categories reported per variant.
const CategoryCount = 6

// Row is one variant's metrics for one benchmark.
type Row struct {
	Benchmark string
	Variant   string
	Cells     []gadget.Cell
}

// Fragment is the dataset loaded for a single benchmark.
type Fragment struct {
	Benchmark     string
	VariantHeader string
	Headers       []string
	Rows          []Row
}

// Table is the concatenation of all fragments of a run.
type Table struct {
	VariantHeader string
	Categories    []string
	Rows          []Row
}

// Block is the contiguous run of rows that belongs to one benchmark.
type Block struct {
	Benchmark string
	Rows      []Row
}

// Benchmarks returns the benchmark names of a table in block order.
func (t Table) Benchmarks() []string {
	var names []string
	for i, r := range t.Rows {
		if i == 0 || t.Rows[i-1].Benchmark != r.Benchmark {
			names = append(names, r.Benchmark)
		}
	}
	return names
}

// ShapeError reports a dataset that does not have the expected rows or
// columns. It is never recoverable at the aggregation stage.
type ShapeError struct {
	Benchmark string
	Reason    string
}

func (e *ShapeError) Error() string {
	if e.Benchmark == "" {
		return fmt.Sprintf("dataset shape: %s", e.Reason)
	}
	return fmt.Sprintf("dataset shape (%s): %s", e.Benchmark, e.Reason)
}
