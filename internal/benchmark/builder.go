package benchmark

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"gadgetbench/internal/matrix"
)

// Builder produces one artifact per configuration, in matrix order.
type Builder interface {
	Build(ctx context.Context, b Benchmark, m *matrix.Matrix) ([]Artifact, error)
}

// CMakeBuilder configures and builds a benchmark with CMake once per
// configuration, using clang with the configuration's flags.
type CMakeBuilder struct {
	CMake       string
	Clang       string
	BinariesDir string
	// Targets maps a benchmark to its build output, relative to the build
	// directory.
	Targets map[string]string
	Runner  Runner
	// Manifest, when set, records every successful build.
	Manifest *ManifestStore
	// Environ returns the base environment. Defaults to os.Environ.
	Environ func() []string
	Now     func() time.Time
}

func (c *CMakeBuilder) Build(ctx context.Context, b Benchmark, m *matrix.Matrix) ([]Artifact, error) {
	target, ok := c.Targets[b.Name]
	if !ok || target == "" {
		return nil, fmt.Errorf("no build target configured for %s", b.Name)
	}
	if err := os.MkdirAll(c.BinariesDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create binaries directory: %w", err)
	}

	var artifacts []Artifact
	for _, cfg := range m.Configurations() {
		buildDir := filepath.Join(b.Dir, "build", cfg.Name)
		if err := os.MkdirAll(buildDir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create build directory: %w", err)
		}

		env := c.environ(cfg.FlagString())
		steps := []Command{
			{Action: "CMAKE", Name: c.cmake(), Args: []string{"-S", b.Dir, "-B", buildDir}, Env: env},
			{Action: "BUILD", Name: c.cmake(), Args: []string{"--build", buildDir}, Env: env},
		}
		for _, step := range steps {
			if err := c.Runner.Run(ctx, step); err != nil {
				return nil, fmt.Errorf("%s/%s: %w", b.Name, cfg.Name, err)
			}
		}

		dest := filepath.Join(c.BinariesDir, b.Name+"."+cfg.Name)
		sum, err := copyFile(filepath.Join(buildDir, target), dest)
		if err != nil {
			return nil, fmt.Errorf("%s/%s: failed to collect artifact: %w", b.Name, cfg.Name, err)
		}
		artifacts = append(artifacts, Artifact{Config: cfg.Name, Path: dest, SHA256: sum})
	}

	if c.Manifest != nil {
		now := time.Now
		if c.Now != nil {
			now = c.Now
		}
		build := Build{
			Benchmark:   b.Name,
			Fingerprint: m.Fingerprint(),
			BuiltAt:     now(),
			Artifacts:   artifacts,
		}
		if err := c.Manifest.Save(build); err != nil {
			return nil, fmt.Errorf("failed to record build of %s: %w", b.Name, err)
		}
	}
	return artifacts, nil
}

func (c *CMakeBuilder) cmake() string {
	if c.CMake == "" {
		return "cmake"
	}
	return c.CMake
}

func (c *CMakeBuilder) environ(flags string) []string {
	base := os.Environ
	if c.Environ != nil {
		base = c.Environ
	}
	env := append([]string{}, base()...)
	return append(env,
		"CC="+c.Clang,
		"CXX="+c.Clang,
		"CFLAGS="+flags,
		"CXXFLAGS="+flags,
	)
}

// PrebuiltSource serves artifacts of an earlier build from the manifest
// instead of building. Every artifact is verified before use.
type PrebuiltSource struct {
	Manifest *ManifestStore
}

func (p *PrebuiltSource) Build(_ context.Context, b Benchmark, m *matrix.Matrix) ([]Artifact, error) {
	build, err := p.Manifest.Load(b.Name)
	if err != nil {
		return nil, err
	}
	if err := Verify(build, m); err != nil {
		return nil, err
	}
	return build.Artifacts, nil
}

// Verify checks that a recorded build was made with the same matrix and that
// its artifacts are still on disk unchanged.
func Verify(build *Build, m *matrix.Matrix) error {
	if build.Fingerprint != m.Fingerprint() {
		return fmt.Errorf("%w: %s was built with a different configuration matrix", ErrArtifactMismatch, build.Benchmark)
	}
	names := m.Names()
	if len(build.Artifacts) != len(names) {
		return fmt.Errorf("%w: %s has %d artifacts, want %d", ErrArtifactMismatch, build.Benchmark, len(build.Artifacts), len(names))
	}
	for i, a := range build.Artifacts {
		if a.Config != names[i] {
			return fmt.Errorf("%w: %s artifact %d is %q, want %q", ErrArtifactMismatch, build.Benchmark, i, a.Config, names[i])
		}
		sum, err := hashFile(a.Path)
		if err != nil {
			return fmt.Errorf("%w: %s: %v", ErrArtifactMismatch, a.Path, err)
		}
		if sum != a.SHA256 {
			return fmt.Errorf("%w: %s changed since it was built", ErrArtifactMismatch, a.Path)
		}
	}
	return nil
}

func copyFile(src, dst string) (string, error) {
	in, err := os.Open(src)
	if err != nil {
		return "", err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0755)
	if err != nil {
		return "", err
	}

	h := sha256.New()
	if _, err := io.Copy(io.MultiWriter(out, h), in); err != nil {
		out.Close()
		return "", err
	}
	if err := out.Close(); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

func hashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
