package report

import (
	"fmt"
	"testing"

	"gadgetbench/internal/dataset"
	"gadgetbench/internal/gadget"
	"gadgetbench/internal/summary"

	"github.com/stretchr/testify/require"
)

var (
	testVariants   = []string{"Pre-RA", "Post-RA", "Both"}
	testCategories = []string{
		"Number of Gadgets", "Gadget Quality",
		"Number of JOP Gadgets", "JOP Gadget Quality",
		"Number of COP Gadgets", "COP Gadget Quality",
	}
)

func fragment(benchmark string, delta float64) dataset.Fragment {
	frag := dataset.Fragment{
		Benchmark:     benchmark,
		VariantHeader: "Package Variant",
		Headers:       testCategories,
	}
	for i, v := range testVariants {
		row := dataset.Row{Benchmark: benchmark, Variant: v}
		for j := range testCategories {
			row.Cells = append(row.Cells, gadget.Cell{
				Raw:       fmt.Sprintf("%d.000 (%s)", i+j, gadget.FormatDelta(delta)),
				Magnitude: float64(i + j),
				Delta:     delta,
				HasDelta:  true,
			})
		}
		frag.Rows = append(frag.Rows, row)
	}
	return frag
}

type fixture struct {
	table  dataset.Table
	blocks []dataset.Block
	avg    summary.Averages
}

func newFixture(t *testing.T, frags ...dataset.Fragment) fixture {
	t.Helper()
	table, err := dataset.Combine(frags)
	require.NoError(t, err)
	blocks, err := dataset.Group(table, testVariants)
	require.NoError(t, err)
	avg, err := summary.Average(blocks, testVariants, table.Categories)
	require.NoError(t, err)
	return fixture{table: table, blocks: blocks, avg: avg}
}
