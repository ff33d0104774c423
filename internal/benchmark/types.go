package benchmark

import (
	"errors"
	"path/filepath"
	"time"
)

var (
	// ErrUnknownBenchmark is returned when a selected benchmark does not exist.
	ErrUnknownBenchmark = errors.New("unknown benchmark")
	// ErrArtifactMismatch is returned when a recorded artifact no longer matches
	// what was built.
	ErrArtifactMismatch = errors.New("artifact does not match manifest")
)

// DatasetFile is the comparator output the report is built from.
const DatasetFile = "Gadget Quality.csv"

// Benchmark is one evaluated project.
type Benchmark struct {
	Name string `json:"name"`
	Dir  string `json:"dir"`
}

// Artifact is the binary built for one configuration.
type Artifact struct {
	Config string `json:"config"`
	Path   string `json:"path"`
	SHA256 string `json:"sha256"`
}

// Build records the artifacts of one benchmark, in matrix order.
type Build struct {
	Benchmark   string     `json:"benchmark"`
	Fingerprint string     `json:"fingerprint"`
	BuiltAt     time.Time  `json:"built_at"`
	Artifacts   []Artifact `json:"artifacts"`
}

// DatasetPath is where the comparator leaves the dataset of a benchmark.
func DatasetPath(resultsDir, benchmark string) string {
	return filepath.Join(resultsDir, benchmark, DatasetFile)
}
