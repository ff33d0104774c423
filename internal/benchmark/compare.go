package benchmark

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// Comparator turns the artifacts of one benchmark into a dataset file.
type Comparator interface {
	Compare(ctx context.Context, b Benchmark, artifacts []Artifact) (string, error)
}

// GSAComparator runs GadgetSetAnalyzer with the baseline artifact against
// every variant.
type GSAComparator struct {
	Python     string
	GSADir     string
	ResultsDir string
	// WorkDir is where GSA is run from; it writes into WorkDir/results.
	WorkDir string
	Runner  Runner
}

func (g *GSAComparator) Compare(ctx context.Context, b Benchmark, artifacts []Artifact) (string, error) {
	if len(artifacts) < 2 {
		return "", fmt.Errorf("%s: need a baseline and at least one variant, got %d artifacts", b.Name, len(artifacts))
	}

	old := filepath.Join(g.ResultsDir, b.Name)
	if err := os.RemoveAll(old); err != nil {
		return "", fmt.Errorf("failed to remove old results of %s: %w", b.Name, err)
	}

	// GSA runs from WorkDir, so every path handed to it must be absolute.
	script, err := filepath.Abs(filepath.Join(g.GSADir, "src", "GSA.py"))
	if err != nil {
		return "", fmt.Errorf("failed to resolve GadgetSetAnalyzer path: %w", err)
	}
	paths := make([]string, len(artifacts))
	for i, a := range artifacts {
		if paths[i], err = filepath.Abs(a.Path); err != nil {
			return "", fmt.Errorf("failed to resolve artifact %s: %w", a.Path, err)
		}
	}

	args := []string{script, paths[0], "--variants"}
	for i, a := range artifacts[1:] {
		args = append(args, a.Config+"="+paths[i+1])
	}
	args = append(args, "--output_metrics", "--result_folder_name", b.Name)

	python := g.Python
	if python == "" {
		python = "python3"
	}
	cmd := Command{Action: "COMPARE", Name: python, Args: args, Dir: g.WorkDir}
	if err := g.Runner.Run(ctx, cmd); err != nil {
		return "", fmt.Errorf("%s: %w", b.Name, err)
	}

	path := DatasetPath(g.ResultsDir, b.Name)
	if _, err := os.Stat(path); err != nil {
		return "", fmt.Errorf("%s: comparator produced no dataset: %w", b.Name, err)
	}
	return path, nil
}
