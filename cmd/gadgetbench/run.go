package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"gadgetbench/internal/benchmark"
	"gadgetbench/internal/config"
	"gadgetbench/internal/dataset"
	"gadgetbench/internal/db"
	"gadgetbench/internal/matrix"
	"gadgetbench/internal/notify"
	"gadgetbench/internal/report"
	"gadgetbench/internal/summary"
	"gadgetbench/internal/telemetry"
	"gadgetbench/internal/ui"

	"github.com/AlecAivazis/survey/v2"
	"github.com/spf13/cobra"
)

var askOne = survey.AskOne

// Factories are package variables so tests can swap the external pieces.
var (
	runnerFactory = func(output io.Writer) benchmark.Runner {
		return benchmark.NewExecRunner(output)
	}
	storeFactory = func(s config.Settings) (db.Store, error) {
		return db.NewStore(db.StoreConfig{Type: s.HistoryType, ConnectionString: s.HistoryDSN})
	}
	notifierFactory = func(webhookURL string) notify.Notifier {
		return notify.NewSlackNotifier(webhookURL)
	}
	now = time.Now
)

type runOptions struct {
	benchmarks  string
	extraFlags  string
	skipBuild   bool
	skipCompare bool
	pick        bool
	noColor     bool
}

func newRunCmd() *cobra.Command {
	opts := &runOptions{}
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Build, compare and append a report sheet",
		Long: `Runs the full pipeline for the selected benchmarks: build every
configuration of the scheduling matrix, compare each variant against the
baseline and append a sheet with the per-benchmark results and their averages
to the report. A benchmark that fails is skipped; the rest still make the
report.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReport(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.benchmarks, "benchmarks", "all", "Comma-separated benchmarks to run, or all")
	cmd.Flags().StringVar(&opts.extraFlags, "flags", "", "Extra compiler flags added to every configuration")
	cmd.Flags().BoolVar(&opts.skipBuild, "skip-build", false, "Reuse the verified artifacts recorded in the build manifest")
	cmd.Flags().BoolVar(&opts.skipCompare, "skip-compare", false, "Reuse the datasets already in the results directory (implies --skip-build)")
	cmd.Flags().BoolVar(&opts.pick, "pick", false, "Choose benchmarks interactively")
	cmd.Flags().String("report", "", "Report document (overrides paths.report)")
	cmd.Flags().BoolVar(&opts.noColor, "no-color", false, "Disable colour output")
	return cmd
}

func runReport(cmd *cobra.Command, opts *runOptions) error {
	ctx := cmd.Context()
	at := now()
	s := config.Current()
	if opts.noColor {
		ui.DisableColor()
	}

	benches, err := benchmark.Discover(s.SamplesDir, benchmark.ParseSelection(opts.benchmarks))
	if err != nil {
		return err
	}
	if opts.pick {
		if benches, err = pickBenchmarks(benches); err != nil {
			return err
		}
	}
	if len(benches) == 0 {
		return fmt.Errorf("no benchmarks found in %s", s.SamplesDir)
	}

	m := matrix.Default(s.BaseFlags, opts.extraFlags)
	metrics := telemetry.NewMetrics()

	pipeline, err := newPipeline(cmd, s, m, opts, metrics)
	if err != nil {
		return err
	}
	outcome, err := pipeline.Run(ctx, benches)
	if err != nil {
		return err
	}
	if len(outcome.Fragments) == 0 {
		return fmt.Errorf("all %d benchmark(s) failed, nothing to report", len(benches))
	}

	table, err := dataset.Combine(outcome.Fragments)
	if err != nil {
		return err
	}
	blocks, err := dataset.Group(table, m.Variants())
	if err != nil {
		return err
	}
	avg, err := summary.Average(blocks, m.Variants(), table.Categories)
	if err != nil {
		return err
	}

	sheet, err := writeReport(s.ReportPath, at, table, blocks, avg, opts.extraFlags)
	if err != nil {
		return err
	}

	run := &db.Run{
		CreatedAt:  at,
		Report:     s.ReportPath,
		Sheet:      sheet,
		ExtraFlags: opts.extraFlags,
		Benchmarks: table.Benchmarks(),
		Failures:   failureNames(outcome.Failures),
		Variants:   avg.Variants,
		Categories: avg.Categories,
		Averages:   avg.Formatted(),
	}
	recordHistory(ctx, cmd, s, run)
	sendDigest(ctx, s, run, avg)

	metrics.SetLastRun(now())
	if err := metrics.WriteTextfile(s.MetricsTextfile); err != nil {
		telemetry.LogError("failed to write metrics", err)
	}

	fmt.Fprint(cmd.OutOrStdout(), ui.RunSummary{
		Report:     s.ReportPath,
		Sheet:      sheet,
		ExtraFlags: opts.extraFlags,
		Benchmarks: run.Benchmarks,
		Failures:   run.Failures,
		Averages:   avg,
	}.Render())
	return nil
}

func newPipeline(cmd *cobra.Command, s config.Settings, m *matrix.Matrix, opts *runOptions, rec benchmark.Recorder) (*benchmark.Pipeline, error) {
	var output io.Writer
	if s.Verbose {
		output = cmd.ErrOrStderr()
	}
	runner := runnerFactory(output)

	manifest, err := benchmark.NewManifestStore(s.ManifestPath)
	if err != nil {
		return nil, err
	}

	var builder benchmark.Builder
	if opts.skipBuild {
		builder = &benchmark.PrebuiltSource{Manifest: manifest}
	} else {
		builder = &benchmark.CMakeBuilder{
			CMake:       s.CMake,
			Clang:       s.Clang,
			BinariesDir: s.BinariesDir,
			Targets:     s.Targets,
			Runner:      runner,
			Manifest:    manifest,
		}
	}

	return &benchmark.Pipeline{
		Matrix:  m,
		Builder: builder,
		Comparator: &benchmark.GSAComparator{
			Python:     s.Python,
			GSADir:     s.GSA,
			ResultsDir: s.ResultsDir,
			// GadgetSetAnalyzer writes into ./results of its working directory.
			WorkDir: filepath.Dir(filepath.Clean(s.ResultsDir)),
			Runner:  runner,
		},
		Loader:      dataset.NewLoader(m.VariantCount()),
		SkipCompare: opts.skipCompare,
		ResultsDir:  s.ResultsDir,
		Recorder:    rec,
		Notices:     cmd.ErrOrStderr(),
	}, nil
}

// writeReport appends the run sheet and commits the document. Nothing is
// written to disk unless every step succeeds.
func writeReport(path string, at time.Time, table dataset.Table, blocks []dataset.Block, avg summary.Averages, extraFlags string) (string, error) {
	doc, err := report.Open(path)
	if err != nil {
		return "", err
	}
	defer doc.Close()

	sheet, err := doc.AddRunSheet(at)
	if err != nil {
		return "", err
	}
	if err := sheet.WriteTable(table, blocks); err != nil {
		return "", fmt.Errorf("failed to write results table: %w", err)
	}
	if err := sheet.AppendSummary(avg, extraFlags); err != nil {
		return "", fmt.Errorf("failed to write summary: %w", err)
	}
	if err := doc.Save(); err != nil {
		return "", err
	}
	return sheet.Name(), nil
}

func pickBenchmarks(benches []benchmark.Benchmark) ([]benchmark.Benchmark, error) {
	names := make([]string, len(benches))
	for i, b := range benches {
		names[i] = b.Name
	}

	var chosen []string
	prompt := &survey.MultiSelect{
		Message: "Benchmarks to run:",
		Options: names,
		Default: names,
	}
	if err := askOne(prompt, &chosen); err != nil {
		return nil, fmt.Errorf("benchmark selection cancelled: %w", err)
	}
	if len(chosen) == 0 {
		return nil, errors.New("no benchmarks selected")
	}

	picked := make(map[string]bool, len(chosen))
	for _, name := range chosen {
		picked[name] = true
	}
	var out []benchmark.Benchmark
	for _, b := range benches {
		if picked[b.Name] {
			out = append(out, b)
		}
	}
	return out, nil
}

// recordHistory stores the run. The report is already committed, so a
// failure here is only reported.
func recordHistory(ctx context.Context, cmd *cobra.Command, s config.Settings, run *db.Run) {
	if s.HistoryType == "none" {
		return
	}
	store, err := storeFactory(s)
	if err != nil {
		telemetry.LogError("failed to open run history", err)
		fmt.Fprintf(cmd.ErrOrStderr(), "Warning: run history not recorded: %v\n", err)
		return
	}
	defer store.Close()

	if err := store.SaveRun(ctx, run); err != nil {
		telemetry.LogError("failed to record run", err)
		fmt.Fprintf(cmd.ErrOrStderr(), "Warning: run history not recorded: %v\n", err)
		return
	}
	telemetry.LogInfo("run recorded", "id", run.ID, "sheet", run.Sheet)
}

func sendDigest(ctx context.Context, s config.Settings, run *db.Run, avg summary.Averages) {
	if s.SlackWebhookURL == "" {
		return
	}
	improved, regressed, neutral := avg.Tally()
	digest := notify.Digest{
		RunID:      run.ID,
		Report:     run.Report,
		Sheet:      run.Sheet,
		ExtraFlags: run.ExtraFlags,
		Benchmarks: run.Benchmarks,
		Failures:   run.Failures,
		Improved:   improved,
		Regressed:  regressed,
		Neutral:    neutral,
	}
	if err := notifierFactory(s.SlackWebhookURL).Notify(ctx, digest); err != nil {
		telemetry.LogError("failed to send notification", err)
	}
}

func failureNames(failures []benchmark.Failure) []string {
	var names []string
	for _, f := range failures {
		names = append(names, f.Benchmark)
	}
	return names
}
