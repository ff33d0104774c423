package dataset

import (
	"fmt"
	"slices"
)

// Combine concatenates fragments in the order given. Rows keep their order;
// nothing is sorted or deduplicated.
func Combine(fragments []Fragment) (Table, error) {
	var t Table
	for i, f := range fragments {
		if i == 0 {
			t.VariantHeader = f.VariantHeader
			t.Categories = append([]string{}, f.Headers...)
		} else if !slices.Equal(t.Categories, f.Headers) {
			return Table{}, &ShapeError{
				Benchmark: f.Benchmark,
				Reason:    fmt.Sprintf("metric columns %q differ from %q", f.Headers, t.Categories),
			}
		}
		t.Rows = append(t.Rows, f.Rows...)
	}
	return t, nil
}

// Group partitions the table by its benchmark tag. Every group must be
// contiguous and list exactly the given variants, in that order.
func Group(t Table, variants []string) ([]Block, error) {
	if len(variants) == 0 {
		return nil, fmt.Errorf("no variants to group by")
	}
	variantCount := len(variants)

	var blocks []Block
	seen := make(map[string]bool)
	for _, r := range t.Rows {
		if n := len(blocks); n > 0 && blocks[n-1].Benchmark == r.Benchmark {
			blocks[n-1].Rows = append(blocks[n-1].Rows, r)
			continue
		}
		if seen[r.Benchmark] {
			return nil, &ShapeError{Benchmark: r.Benchmark, Reason: "rows are not contiguous"}
		}
		seen[r.Benchmark] = true
		blocks = append(blocks, Block{Benchmark: r.Benchmark, Rows: []Row{r}})
	}

	for _, b := range blocks {
		if len(b.Rows) != variantCount {
			return nil, &ShapeError{
				Benchmark: b.Benchmark,
				Reason:    fmt.Sprintf("block has %d rows, want %d", len(b.Rows), variantCount),
			}
		}
		for i, r := range b.Rows {
			if r.Variant != variants[i] {
				return nil, &ShapeError{
					Benchmark: b.Benchmark,
					Reason:    fmt.Sprintf("row %d is variant %q, want %q", i+1, r.Variant, variants[i]),
				}
			}
			if len(r.Cells) != len(t.Categories) {
				return nil, &ShapeError{
					Benchmark: b.Benchmark,
					Reason:    fmt.Sprintf("variant %q has %d cells, want %d", r.Variant, len(r.Cells), len(t.Categories)),
				}
			}
		}
	}
	return blocks, nil
}
