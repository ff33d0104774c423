package main

import (
	"context"
	"os"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"gadgetbench/internal/config"
	"gadgetbench/internal/db"
	"gadgetbench/internal/notify"
	"gadgetbench/internal/report"

	"github.com/AlecAivazis/survey/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func openReport(t *testing.T, path string) *excelize.File {
	t.Helper()
	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	t.Cleanup(func() { f.Close() })
	return f
}

func cellValue(t *testing.T, f *excelize.File, sheet, cell string) string {
	t.Helper()
	v, err := f.GetCellValue(sheet, cell)
	require.NoError(t, err)
	return v
}

func TestRun_SkipCompareWritesReport(t *testing.T) {
	w := newWorkspace(t, "chocolate-doom", "zlib")
	w.writeDataset(t, "chocolate-doom", "+1.000")
	w.writeDataset(t, "zlib", "+1.000")

	out, _, err := executeCommand(rootCmd, "run", "--skip-compare", "--no-color")
	require.NoError(t, err)

	sheet := fixedNow.Format(report.SheetNameLayout)
	assert.Contains(t, out, sheet)
	assert.Contains(t, out, "+1.000")
	assert.Equal(t, 0, w.runner.count("BUILD"), "skip-compare implies skip-build")
	assert.Equal(t, 0, w.runner.count("COMPARE"))

	f := openReport(t, w.path("results.xlsx"))
	assert.Equal(t, []string{sheet}, f.GetSheetList())

	// header, 2 benchmarks x 3 variants, blank, Extra Flags, 3 average rows
	assert.Equal(t, "Benchmark", cellValue(t, f, sheet, "A1"))
	assert.Equal(t, "chocolate-doom", cellValue(t, f, sheet, "A2"))
	assert.Equal(t, "zlib", cellValue(t, f, sheet, "A5"))
	assert.Equal(t, "Extra Flags", cellValue(t, f, sheet, "A9"))
	assert.Equal(t, "None", cellValue(t, f, sheet, "C9"))
	assert.Equal(t, "Average Δ", cellValue(t, f, sheet, "A10"))
	for row := 10; row <= 12; row++ {
		for _, col := range []string{"C", "D", "E", "F", "G", "H"} {
			assert.Equal(t, "+1.000", cellValue(t, f, sheet, col+strconv.Itoa(row)))
		}
	}

	// count metrics regress on +1, quality metrics improve
	countStyle, err := f.GetCellStyle(sheet, "C10")
	require.NoError(t, err)
	qualityStyle, err := f.GetCellStyle(sheet, "D10")
	require.NoError(t, err)
	assert.NotEqual(t, countStyle, qualityStyle)
	nextCount, err := f.GetCellStyle(sheet, "E10")
	require.NoError(t, err)
	assert.Equal(t, countStyle, nextCount)
}

func TestRun_FullPipelineAndManifestReuse(t *testing.T) {
	w := newWorkspace(t, "mimalloc", "zlib")
	w.runner.deltas["zlib"] = "-0.500"

	_, _, err := executeCommand(rootCmd, "run", "--flags", "-fno-inline")
	require.NoError(t, err)
	assert.Equal(t, 8, w.runner.count("BUILD"), "2 benchmarks x 4 configurations")
	assert.Equal(t, 2, w.runner.count("COMPARE"))

	_, err = os.Stat(w.path("binaries", "zlib.Both"))
	require.NoError(t, err)
	_, err = os.Stat(w.path("binaries", "manifest.json"))
	require.NoError(t, err)

	_, _, err = executeCommand(rootCmd, "run", "--flags", "-fno-inline", "--skip-build")
	require.NoError(t, err)
	assert.Equal(t, 8, w.runner.count("BUILD"), "artifacts reused from the manifest")
	assert.Equal(t, 4, w.runner.count("COMPARE"))

	f := openReport(t, w.path("results.xlsx"))
	sheet := fixedNow.Format(report.SheetNameLayout)
	assert.Equal(t, []string{sheet, sheet + " (2)"}, f.GetSheetList())
	assert.Equal(t, "-fno-inline", cellValue(t, f, sheet+" (2)", "C9"))
	// mean of +1.000 and -0.500
	assert.Equal(t, "+0.250", cellValue(t, f, sheet+" (2)", "C10"))
}

func TestRun_NestedResultsDir(t *testing.T) {
	w := newWorkspace(t, "zlib")
	t.Setenv("GADGETBENCH_PATHS_RESULTS", filepath.Join("out", "results"))

	_, errOut, err := executeCommand(rootCmd, "run")
	require.NoError(t, err, errOut)
	assert.Equal(t, 1, w.runner.count("COMPARE"))

	_, err = os.Stat(w.path("out", "results", "zlib", "Gadget Quality.csv"))
	require.NoError(t, err)
	f := openReport(t, w.path("results.xlsx"))
	assert.Equal(t, "zlib", cellValue(t, f, fixedNow.Format(report.SheetNameLayout), "A2"))
}

func TestRun_SheetNamedAfterStartTime(t *testing.T) {
	w := newWorkspace(t, "zlib")
	clock := fixedNow
	now = func() time.Time {
		at := clock
		clock = clock.Add(time.Minute)
		return at
	}

	_, _, err := executeCommand(rootCmd, "run")
	require.NoError(t, err)

	f := openReport(t, w.path("results.xlsx"))
	assert.Equal(t, []string{fixedNow.Format(report.SheetNameLayout)}, f.GetSheetList())
}

func TestRun_SkipBuildRejectsDifferentMatrix(t *testing.T) {
	w := newWorkspace(t, "zlib")

	_, _, err := executeCommand(rootCmd, "run")
	require.NoError(t, err)

	_, errOut, err := executeCommand(rootCmd, "run", "--skip-build", "--flags", "-O3")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "nothing to report")
	assert.Contains(t, errOut, "Benchmark zlib failed, skipping")
	assert.Equal(t, 1, w.runner.count("COMPARE"))
}

func TestRun_FailedBenchmarkIsSkipped(t *testing.T) {
	w := newWorkspace(t, "chocolate-doom", "mimalloc", "zlib")
	w.runner.failures = map[string]bool{"mimalloc": true}

	out, errOut, err := executeCommand(rootCmd, "run")
	require.NoError(t, err)

	assert.Contains(t, errOut, "Benchmark mimalloc failed, skipping")
	assert.Contains(t, out, "Skipped:")

	f := openReport(t, w.path("results.xlsx"))
	sheet := fixedNow.Format(report.SheetNameLayout)
	assert.Equal(t, "chocolate-doom", cellValue(t, f, sheet, "A2"))
	assert.Equal(t, "zlib", cellValue(t, f, sheet, "A5"))
}

func TestRun_AllFailedLeavesReportUntouched(t *testing.T) {
	w := newWorkspace(t, "zlib")

	_, errOut, err := executeCommand(rootCmd, "run", "--skip-compare")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "nothing to report")
	assert.Contains(t, errOut, "Benchmark zlib failed, skipping")

	_, statErr := os.Stat(w.path("results.xlsx"))
	assert.True(t, os.IsNotExist(statErr))
}

func TestRun_UnknownBenchmark(t *testing.T) {
	newWorkspace(t, "zlib")

	_, _, err := executeCommand(rootCmd, "run", "--benchmarks", "zlib,nginx")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "nginx")
}

func TestRun_Pick(t *testing.T) {
	w := newWorkspace(t, "chocolate-doom", "zlib")
	w.writeDataset(t, "chocolate-doom", "+1.000")
	w.writeDataset(t, "zlib", "+1.000")

	var offered []string
	askOne = func(p survey.Prompt, response interface{}, opts ...survey.AskOpt) error {
		offered = p.(*survey.MultiSelect).Options
		*response.(*[]string) = []string{"zlib"}
		return nil
	}

	_, _, err := executeCommand(rootCmd, "run", "--skip-compare", "--pick")
	require.NoError(t, err)
	assert.Equal(t, []string{"chocolate-doom", "zlib"}, offered)

	f := openReport(t, w.path("results.xlsx"))
	sheet := fixedNow.Format(report.SheetNameLayout)
	assert.Equal(t, "zlib", cellValue(t, f, sheet, "A2"))
	assert.Equal(t, "Extra Flags", cellValue(t, f, sheet, "A6"))
}

func TestRun_PickNothing(t *testing.T) {
	newWorkspace(t, "zlib")
	askOne = func(p survey.Prompt, response interface{}, opts ...survey.AskOpt) error {
		return nil
	}

	_, _, err := executeCommand(rootCmd, "run", "--pick")
	assert.EqualError(t, err, "no benchmarks selected")
}

func TestRun_ReportFlagOverridesConfig(t *testing.T) {
	w := newWorkspace(t, "zlib")
	w.writeDataset(t, "zlib", "0.000")

	_, _, err := executeCommand(rootCmd, "run", "--skip-compare", "--report", "out/gadgets.xlsx")
	require.NoError(t, err)

	_, err = os.Stat(w.path("out", "gadgets.xlsx"))
	assert.NoError(t, err)
}

func TestRun_HistoryNotifyAndMetrics(t *testing.T) {
	w := newWorkspace(t, "zlib")
	w.writeDataset(t, "zlib", "+1.000")
	t.Setenv("GADGETBENCH_NOTIFICATIONS_SLACK_WEBHOOK_URL", "https://hooks.example.com/services/T/B/X")
	t.Setenv("GADGETBENCH_METRICS_TEXTFILE", "gadgetbench.prom")

	notifier := &capturingNotifier{err: assert.AnError}
	notifierFactory = func(string) notify.Notifier { return notifier }

	_, _, err := executeCommand(rootCmd, "run", "--skip-compare")
	require.NoError(t, err, "notification errors are not fatal")

	require.Len(t, notifier.digests, 1)
	d := notifier.digests[0]
	assert.Equal(t, []string{"zlib"}, d.Benchmarks)
	assert.Equal(t, 9, d.Improved)
	assert.Equal(t, 9, d.Regressed)
	assert.NotEmpty(t, d.RunID)

	metrics, err := os.ReadFile(w.path("gadgetbench.prom"))
	require.NoError(t, err)
	assert.Contains(t, string(metrics), `gadgetbench_benchmarks_total{status="ok"} 1`)

	store, err := db.NewStore(db.StoreConfig{Type: "sqlite", ConnectionString: w.path(db.DefaultSQLitePath)})
	require.NoError(t, err)
	defer store.Close()
	run, err := store.GetRun(context.Background(), d.RunID)
	require.NoError(t, err)
	assert.Equal(t, fixedNow.Format(report.SheetNameLayout), run.Sheet)
	assert.Equal(t, "+1.000", run.Averages[0][0])
}

func TestRun_HistoryFailureIsNotFatal(t *testing.T) {
	w := newWorkspace(t, "zlib")
	w.writeDataset(t, "zlib", "+1.000")

	orig := storeFactory
	storeFactory = func(config.Settings) (db.Store, error) { return nil, assert.AnError }
	t.Cleanup(func() { storeFactory = orig })

	_, errOut, err := executeCommand(rootCmd, "run", "--skip-compare")
	require.NoError(t, err)
	assert.Contains(t, errOut, "Warning: run history not recorded")

	_, err = os.Stat(w.path("results.xlsx"))
	assert.NoError(t, err)
}
