package main

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"gadgetbench/internal/benchmark"
	"gadgetbench/internal/config"
	"gadgetbench/internal/notify"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2026, 10, 19, 14, 30, 5, 0, time.Local)

// executeCommand executes a cobra command and returns its stdout and stderr.
func executeCommand(root *cobra.Command, args ...string) (string, string, error) {
	resetFlags(root)
	viper.Reset()
	cfgFile = ""

	root.SetArgs(args)
	out, errOut := new(bytes.Buffer), new(bytes.Buffer)
	root.SetOut(out)
	root.SetErr(errOut)
	root.SetIn(bytes.NewBufferString(""))
	err := root.Execute()
	return out.String(), errOut.String(), err
}

// resetFlags resets all flags to their default values.
func resetFlags(cmd *cobra.Command) {
	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		if f.Changed {
			f.Value.Set(f.DefValue)
			f.Changed = false
		}
	})
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}

// workspace is a temporary project directory laid out like the defaults:
// samples/, results/, binaries/ and the report next to them.
type workspace struct {
	dir    string
	runner *toolRunner
}

func newWorkspace(t *testing.T, benches ...string) *workspace {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)
	for _, b := range benches {
		require.NoError(t, os.MkdirAll(filepath.Join(dir, "samples", b), 0755))
	}

	w := &workspace{dir: dir, runner: &toolRunner{deltas: map[string]string{}}}

	origRunner, origNow, origNotifier, origAsk := runnerFactory, now, notifierFactory, askOne
	runnerFactory = func(io.Writer) benchmark.Runner { return w.runner }
	now = func() time.Time { return fixedNow }
	t.Cleanup(func() {
		runnerFactory, now, notifierFactory, askOne = origRunner, origNow, origNotifier, origAsk
		viper.Reset()
	})
	return w
}

func (w *workspace) path(parts ...string) string {
	return filepath.Join(append([]string{w.dir}, parts...)...)
}

// writeDataset places a comparator result for bench as if GadgetSetAnalyzer
// had already run.
func (w *workspace) writeDataset(t *testing.T, bench, delta string) {
	t.Helper()
	path := benchmark.DatasetPath(w.path("results"), bench)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(datasetCSV(delta)), 0644))
}

func datasetCSV(delta string) string {
	var sb strings.Builder
	sb.WriteString("Package Variant,Number of Gadgets,Gadget Quality,Number of JOP Gadgets,JOP Gadget Quality,Number of COP Gadgets,COP Gadget Quality\n")
	for _, v := range []string{"Pre-RA", "Post-RA", "Both"} {
		sb.WriteString(v)
		for j := 0; j < 6; j++ {
			fmt.Fprintf(&sb, ",%d.000 (%s)", 10+j, delta)
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

// toolRunner stands in for cmake and GadgetSetAnalyzer. BUILD drops the
// configured target into the build directory, COMPARE writes a dataset
// with the benchmark's delta. Benchmarks listed in fail break at BUILD.
type toolRunner struct {
	mu       sync.Mutex
	actions  []string
	deltas   map[string]string
	failures map[string]bool
}

func (r *toolRunner) Run(_ context.Context, c benchmark.Command) error {
	r.mu.Lock()
	r.actions = append(r.actions, c.Action)
	r.mu.Unlock()

	switch c.Action {
	case "BUILD":
		buildDir := c.Args[1]
		bench := filepath.Base(filepath.Dir(filepath.Dir(buildDir)))
		if r.failures[bench] {
			return fmt.Errorf("make: *** [all] Error 2")
		}
		target := filepath.Join(buildDir, config.DefaultTargets[bench])
		if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
			return err
		}
		return os.WriteFile(target, []byte(bench+" "+filepath.Base(buildDir)), 0755)
	case "COMPARE":
		bench := c.Args[len(c.Args)-1]
		baseline := c.Args[1]
		if !filepath.IsAbs(baseline) {
			baseline = filepath.Join(c.Dir, baseline)
		}
		if _, err := os.Stat(baseline); err != nil {
			return fmt.Errorf("GSA: %w", err)
		}
		delta, ok := r.deltas[bench]
		if !ok {
			delta = "+1.000"
		}
		path := benchmark.DatasetPath(filepath.Join(c.Dir, "results"), bench)
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return err
		}
		return os.WriteFile(path, []byte(datasetCSV(delta)), 0644)
	}
	return nil
}

func (r *toolRunner) count(action string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, a := range r.actions {
		if a == action {
			n++
		}
	}
	return n
}

type capturingNotifier struct {
	digests []notify.Digest
	err     error
}

func (c *capturingNotifier) Notify(_ context.Context, d notify.Digest) error {
	c.digests = append(c.digests, d)
	return c.err
}
