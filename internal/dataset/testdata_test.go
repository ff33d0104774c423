package dataset

import (
	"fmt"
	"strings"
)

var testCategories = []string{
	"Number of Gadgets",
	"Gadget Quality",
	"Number of JOP Gadgets",
	"JOP Gadget Quality",
	"Number of COP Gadgets",
	"COP Gadget Quality",
}

// csvFor renders a dataset with the given variants where every cell carries delta.
func csvFor(variants []string, delta string) string {
	var sb strings.Builder
	sb.WriteString("Package Variant," + strings.Join(testCategories, ",") + "\n")
	for i, v := range variants {
		sb.WriteString(v)
		for j := range testCategories {
			fmt.Fprintf(&sb, ",%d.000 (%s)", i*10+j, delta)
		}
		sb.WriteString("\n")
	}
	return sb.String()
}
