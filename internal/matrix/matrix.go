// Package matrix holds the fixed set of scheduler configurations every
// benchmark is built with. The first configuration is the baseline.
package matrix

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
)

// DefaultBaseFlags are the compiler flags shared by every configuration.
const DefaultBaseFlags = "-O2 -mllvm -enable-misched=true"

// Configuration is one named toolchain setup.
type Configuration struct {
	Name  string
	Flags []string
}

// FlagString joins the flags the way CFLAGS expects them.
func (c Configuration) FlagString() string {
	return strings.Join(c.Flags, " ")
}

// Matrix is an ordered, immutable list of configurations.
type Matrix struct {
	configs []Configuration
}

type scheduler struct {
	name   string
	preRA  string
	postRA bool
}

var schedulers = []scheduler{
	{name: "Original", preRA: "default", postRA: false},
	{name: "Pre-RA", preRA: "ropsched", postRA: false},
	{name: "Post-RA", preRA: "default", postRA: true},
	{name: "Both", preRA: "ropsched", postRA: true},
}

// Default builds the scheduler matrix. baseFlags and extraFlags are appended
// to every configuration ahead of its scheduler selection.
func Default(baseFlags, extraFlags string) *Matrix {
	common := append(strings.Fields(baseFlags), strings.Fields(extraFlags)...)

	configs := make([]Configuration, 0, len(schedulers))
	for _, s := range schedulers {
		flags := append([]string{}, common...)
		flags = append(flags,
			"-mllvm", "-misched="+s.preRA,
			"-mllvm", fmt.Sprintf("-misched-postra=%t", s.postRA),
		)
		configs = append(configs, Configuration{Name: s.name, Flags: flags})
	}
	return &Matrix{configs: configs}
}

// New builds a matrix from explicit configurations, baseline first.
func New(configs ...Configuration) (*Matrix, error) {
	if len(configs) < 2 {
		return nil, fmt.Errorf("matrix needs a baseline and at least one variant, got %d configurations", len(configs))
	}
	seen := make(map[string]bool, len(configs))
	for _, c := range configs {
		if c.Name == "" {
			return nil, fmt.Errorf("configuration name must not be empty")
		}
		if seen[c.Name] {
			return nil, fmt.Errorf("duplicate configuration %q", c.Name)
		}
		seen[c.Name] = true
	}
	cp := make([]Configuration, len(configs))
	for i, c := range configs {
		cp[i] = Configuration{Name: c.Name, Flags: append([]string{}, c.Flags...)}
	}
	return &Matrix{configs: cp}, nil
}

// Configurations returns a copy of all configurations in matrix order.
func (m *Matrix) Configurations() []Configuration {
	out := make([]Configuration, len(m.configs))
	copy(out, m.configs)
	return out
}

// Names returns configuration names in matrix order.
func (m *Matrix) Names() []string {
	names := make([]string, len(m.configs))
	for i, c := range m.configs {
		names[i] = c.Name
	}
	return names
}

// Baseline returns the reference configuration.
func (m *Matrix) Baseline() Configuration {
	return m.configs[0]
}

// Variants returns every non-baseline configuration name, in order.
func (m *Matrix) Variants() []string {
	return m.Names()[1:]
}

func (m *Matrix) VariantCount() int {
	return len(m.configs) - 1
}

// Flags returns the flag string of the named configuration.
func (m *Matrix) Flags(name string) (string, bool) {
	for _, c := range m.configs {
		if c.Name == name {
			return c.FlagString(), true
		}
	}
	return "", false
}

// Fingerprint identifies the matrix contents. Artifacts built under one
// fingerprint are not valid for another.
func (m *Matrix) Fingerprint() string {
	h := sha256.New()
	for _, c := range m.configs {
		fmt.Fprintf(h, "%s\x00%s\x00", c.Name, c.FlagString())
	}
	return hex.EncodeToString(h.Sum(nil))
}
