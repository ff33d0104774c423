package benchmark

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// ParseSelection turns the comma-separated --benchmarks value into names.
// "all" and the empty string select everything.
func ParseSelection(s string) []string {
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, "all") {
		return nil
	}
	var names []string
	for _, part := range strings.Split(s, ",") {
		if name := strings.TrimSpace(part); name != "" {
			names = append(names, name)
		}
	}
	return names
}

// Discover lists the benchmark repositories under samplesDir sorted by name.
// When selection is non-empty only those benchmarks are returned.
func Discover(samplesDir string, selection []string) ([]Benchmark, error) {
	entries, err := os.ReadDir(samplesDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read benchmarks directory %s: %w", samplesDir, err)
	}

	var all []Benchmark
	for _, e := range entries {
		if !e.IsDir() || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		all = append(all, Benchmark{Name: e.Name(), Dir: filepath.Join(samplesDir, e.Name())})
	}
	sort.Slice(all, func(i, j int) bool { return all[i].Name < all[j].Name })

	if len(selection) == 0 {
		return all, nil
	}

	wanted := make(map[string]bool, len(selection))
	for _, name := range selection {
		wanted[name] = true
	}
	var selected []Benchmark
	for _, b := range all {
		if wanted[b.Name] {
			selected = append(selected, b)
			delete(wanted, b.Name)
		}
	}
	if len(wanted) > 0 {
		var missing []string
		for name := range wanted {
			missing = append(missing, name)
		}
		sort.Strings(missing)
		return nil, fmt.Errorf("%w: %s", ErrUnknownBenchmark, strings.Join(missing, ", "))
	}
	return selected, nil
}
