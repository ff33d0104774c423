package benchmark

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// fakeRunner records commands and runs an optional side effect per action.
type fakeRunner struct {
	mu       sync.Mutex
	commands []Command
	onRun    func(Command) error
}

func (f *fakeRunner) Run(_ context.Context, c Command) error {
	f.mu.Lock()
	f.commands = append(f.commands, c)
	f.mu.Unlock()
	if f.onRun != nil {
		return f.onRun(c)
	}
	return nil
}

func (f *fakeRunner) actions() []string {
	var out []string
	for _, c := range f.commands {
		out = append(out, c.Action)
	}
	return out
}

func envValue(env []string, key string) string {
	for _, kv := range env {
		if strings.HasPrefix(kv, key+"=") {
			return strings.TrimPrefix(kv, key+"=")
		}
	}
	return ""
}

// datasetCSV is a minimal comparator output for three variants.
func datasetCSV(delta string) string {
	var sb strings.Builder
	sb.WriteString("Package Variant,Number of Gadgets,Gadget Quality,Number of JOP Gadgets,JOP Gadget Quality,Number of COP Gadgets,COP Gadget Quality\n")
	for _, v := range []string{"Pre-RA", "Post-RA", "Both"} {
		sb.WriteString(v)
		for j := 0; j < 6; j++ {
			fmt.Fprintf(&sb, ",%d.000 (%s)", j, delta)
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

func writeDataset(resultsDir, benchmark, delta string) error {
	path := DatasetPath(resultsDir, benchmark)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	return os.WriteFile(path, []byte(datasetCSV(delta)), 0644)
}
