package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ErrRunNotFound is returned by GetRun when no run matches the id.
var ErrRunNotFound = errors.New("run not found")

// ErrAmbiguousRunID is returned by GetRun when an id prefix matches more than one run.
var ErrAmbiguousRunID = errors.New("run id prefix is ambiguous")

// Run is one recorded report run.
type Run struct {
	ID         string    `json:"id"`
	CreatedAt  time.Time `json:"created_at"`
	Report     string    `json:"report"`
	Sheet      string    `json:"sheet"`
	ExtraFlags string    `json:"extra_flags"`
	Benchmarks []string  `json:"benchmarks"`
	Failures   []string  `json:"failures,omitempty"`
	Variants   []string  `json:"variants"`
	Categories []string  `json:"categories"`
	// Averages holds the formatted summary cells, one row per variant.
	Averages [][]string `json:"averages"`
}

// NewRunID returns a fresh run identifier.
func NewRunID() string {
	return uuid.NewString()
}

// Store interface defines the methods for persistent run history
type Store interface {
	Close() error
	SaveRun(ctx context.Context, run *Run) error
	ListRuns(ctx context.Context, limit int) ([]Run, error)
	// GetRun accepts a full id or a unique prefix of one.
	GetRun(ctx context.Context, id string) (Run, error)
}

// runPayload is the part of a Run stored as a JSON blob.
type runPayload struct {
	Benchmarks []string   `json:"benchmarks"`
	Failures   []string   `json:"failures,omitempty"`
	Variants   []string   `json:"variants"`
	Categories []string   `json:"categories"`
	Averages   [][]string `json:"averages"`
}

func prepareRun(run *Run) (string, error) {
	if run.ID == "" {
		run.ID = NewRunID()
	} else if _, err := uuid.Parse(run.ID); err != nil {
		return "", fmt.Errorf("invalid run id %q: %w", run.ID, err)
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now()
	}
	payload, err := json.Marshal(runPayload{
		Benchmarks: run.Benchmarks,
		Failures:   run.Failures,
		Variants:   run.Variants,
		Categories: run.Categories,
		Averages:   run.Averages,
	})
	if err != nil {
		return "", fmt.Errorf("failed to encode run: %w", err)
	}
	return string(payload), nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (Run, error) {
	var (
		run     Run
		created int64
		payload string
	)
	if err := row.Scan(&run.ID, &created, &run.Report, &run.Sheet, &run.ExtraFlags, &payload); err != nil {
		return Run{}, err
	}
	run.CreatedAt = time.Unix(0, created)

	var p runPayload
	if err := json.Unmarshal([]byte(payload), &p); err != nil {
		return Run{}, fmt.Errorf("failed to decode run %s: %w", run.ID, err)
	}
	run.Benchmarks = p.Benchmarks
	run.Failures = p.Failures
	run.Variants = p.Variants
	run.Categories = p.Categories
	run.Averages = p.Averages
	return run, nil
}

func scanRuns(rows *sql.Rows) ([]Run, error) {
	defer rows.Close()

	var results []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, run)
	}
	return results, rows.Err()
}

// pickOne resolves the result of a prefix lookup.
func pickOne(runs []Run, id string) (Run, error) {
	switch len(runs) {
	case 0:
		return Run{}, fmt.Errorf("%w: %s", ErrRunNotFound, id)
	case 1:
		return runs[0], nil
	default:
		for _, r := range runs {
			if r.ID == id {
				return r, nil
			}
		}
		return Run{}, fmt.Errorf("%w: %s matches %d runs", ErrAmbiguousRunID, id, len(runs))
	}
}

const runColumns = `id, created_at, report, sheet, extra_flags, payload`
