package benchmark

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
)

// ManifestStore keeps the most recent build of every benchmark in a JSON file.
type ManifestStore struct {
	path string
}

func NewManifestStore(path string) (*ManifestStore, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory %s: %w", dir, err)
	}
	return &ManifestStore{path: path}, nil
}

// Save records a build, replacing any earlier build of the same benchmark.
func (s *ManifestStore) Save(build Build) error {
	builds, err := s.LoadAll()
	if err != nil {
		return err
	}

	replaced := false
	for i := range builds {
		if builds[i].Benchmark == build.Benchmark {
			builds[i] = build
			replaced = true
		}
	}
	if !replaced {
		builds = append(builds, build)
	}
	sort.Slice(builds, func(i, j int) bool {
		return builds[i].Benchmark < builds[j].Benchmark
	})

	data, err := json.MarshalIndent(builds, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal manifest: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return err
	}
	return os.Rename(tmp, s.path)
}

func (s *ManifestStore) LoadAll() ([]Build, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []Build{}, nil
		}
		return nil, err
	}
	if len(data) == 0 {
		return []Build{}, nil
	}

	var builds []Build
	if err := json.Unmarshal(data, &builds); err != nil {
		return nil, fmt.Errorf("failed to unmarshal manifest: %w", err)
	}
	return builds, nil
}

// Load returns the recorded build of one benchmark.
func (s *ManifestStore) Load(benchmark string) (*Build, error) {
	builds, err := s.LoadAll()
	if err != nil {
		return nil, err
	}
	for i := range builds {
		if builds[i].Benchmark == benchmark {
			return &builds[i], nil
		}
	}
	return nil, fmt.Errorf("%w: no recorded build of %s", ErrArtifactMismatch, benchmark)
}
