package benchmark

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"gadgetbench/internal/dataset"
	"gadgetbench/internal/matrix"
)

// Phase names used for timing.
const (
	PhaseBuild   = "build"
	PhaseCompare = "compare"
	PhaseLoad    = "load"
)

// Recorder receives per-benchmark outcomes and phase timings.
type Recorder interface {
	BenchmarkDone(status string)
	ObservePhase(phase string, d time.Duration)
}

type nopRecorder struct{}

func (nopRecorder) BenchmarkDone(string)               {}
func (nopRecorder) ObservePhase(string, time.Duration) {}

// Failure is a benchmark excluded from the report.
type Failure struct {
	Benchmark string
	Err       error
}

// Outcome is what the pipeline hands to the report stage.
type Outcome struct {
	Fragments []dataset.Fragment
	Failures  []Failure
}

// Pipeline builds, compares and loads benchmarks one at a time. A failing
// benchmark is reported and skipped; the others still make the report.
type Pipeline struct {
	Matrix     *matrix.Matrix
	Builder    Builder
	Comparator Comparator
	Loader     *dataset.Loader
	// SkipCompare reuses the datasets already in ResultsDir.
	SkipCompare bool
	ResultsDir  string
	Recorder    Recorder
	// Notices receives the one-line failure notices. Defaults to stderr.
	Notices io.Writer
}

// Run processes benchmarks sequentially in the given order. The error is
// non-nil only when ctx is cancelled.
func (p *Pipeline) Run(ctx context.Context, benchmarks []Benchmark) (Outcome, error) {
	var out Outcome
	for _, b := range benchmarks {
		if err := ctx.Err(); err != nil {
			return out, err
		}

		slog.Info("processing benchmark", "benchmark", b.Name)
		frag, err := p.runOne(ctx, b)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return out, ctxErr
			}
			p.fail(&out, b, err)
			continue
		}
		p.recorder().BenchmarkDone("ok")
		out.Fragments = append(out.Fragments, frag)
	}
	return out, nil
}

func (p *Pipeline) runOne(ctx context.Context, b Benchmark) (dataset.Fragment, error) {
	var path string
	if p.SkipCompare {
		path = DatasetPath(p.ResultsDir, b.Name)
	} else {
		start := time.Now()
		artifacts, err := p.Builder.Build(ctx, b, p.Matrix)
		p.recorder().ObservePhase(PhaseBuild, time.Since(start))
		if err != nil {
			return dataset.Fragment{}, fmt.Errorf("build: %w", err)
		}

		start = time.Now()
		path, err = p.Comparator.Compare(ctx, b, artifacts)
		p.recorder().ObservePhase(PhaseCompare, time.Since(start))
		if err != nil {
			return dataset.Fragment{}, fmt.Errorf("compare: %w", err)
		}
	}

	start := time.Now()
	frag, err := p.Loader.Load(b.Name, path)
	p.recorder().ObservePhase(PhaseLoad, time.Since(start))
	if err != nil {
		return dataset.Fragment{}, fmt.Errorf("load: %w", err)
	}
	return frag, nil
}

func (p *Pipeline) fail(out *Outcome, b Benchmark, err error) {
	slog.Error("benchmark failed", "benchmark", b.Name, "error", err)
	fmt.Fprintf(p.notices(), "Benchmark %s failed, skipping: %s\n", b.Name, firstLine(err.Error()))
	p.recorder().BenchmarkDone("failed")
	out.Failures = append(out.Failures, Failure{Benchmark: b.Name, Err: err})
}

func (p *Pipeline) recorder() Recorder {
	if p.Recorder == nil {
		return nopRecorder{}
	}
	return p.Recorder
}

func (p *Pipeline) notices() io.Writer {
	if p.Notices == nil {
		return os.Stderr
	}
	return p.Notices
}

func firstLine(s string) string {
	for i, r := range s {
		if r == '\n' {
			return s[:i]
		}
	}
	return s
}
