// Package report writes run results into the spreadsheet document. Each run
// appends one sheet; earlier sheets are never touched.
package report

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/xuri/excelize/v2"
)

// SheetNameLayout formats run timestamps into sheet names. Excel rejects
// ':' in sheet names.
const SheetNameLayout = "2006-01-02 15.04.05"

const defaultSheet = "Sheet1"

// ErrAlreadySaved is returned when a document is saved twice.
var ErrAlreadySaved = errors.New("document already saved")

// Document is an open report workbook. It is acquired once per run with Open,
// mutated in memory and committed with a single Save.
type Document struct {
	path    string
	file    *excelize.File
	created bool
	saved   bool
	styles  *styles
}

// Open opens the document at path, or starts a new one when it does not exist.
func Open(path string) (*Document, error) {
	doc := &Document{path: path}

	f, err := excelize.OpenFile(path)
	switch {
	case err == nil:
		doc.file = f
	case errors.Is(err, os.ErrNotExist):
		doc.file = excelize.NewFile()
		doc.created = true
	default:
		return nil, fmt.Errorf("failed to open report %s: %w", path, err)
	}

	st, err := newStyles(doc.file)
	if err != nil {
		doc.file.Close()
		return nil, err
	}
	doc.styles = st
	return doc, nil
}

// Path returns the destination of the document.
func (d *Document) Path() string {
	return d.path
}

// SheetNames lists the sheets in workbook order.
func (d *Document) SheetNames() []string {
	return d.file.GetSheetList()
}

// AddRunSheet creates the sheet for a run started at the given time. The
// active tab is left alone since selecting one rewrites every sheet's view.
func (d *Document) AddRunSheet(at time.Time) (*Sheet, error) {
	name := d.uniqueName(at.Format(SheetNameLayout))

	if d.created && len(d.file.GetSheetList()) == 1 && d.file.GetSheetList()[0] == defaultSheet {
		if err := d.file.SetSheetName(defaultSheet, name); err != nil {
			return nil, fmt.Errorf("failed to name sheet %q: %w", name, err)
		}
	} else if _, err := d.file.NewSheet(name); err != nil {
		return nil, fmt.Errorf("failed to add sheet %q: %w", name, err)
	}

	return &Sheet{doc: d, name: name}, nil
}

func (d *Document) uniqueName(base string) string {
	name := base
	for n := 2; ; n++ {
		idx, err := d.file.GetSheetIndex(name)
		if err != nil || idx == -1 {
			return name
		}
		name = fmt.Sprintf("%s (%d)", base, n)
	}
}

// Save commits the document. The workbook is written to a temporary file in
// the destination directory and renamed over the destination, so a failed
// run leaves the previous version in place.
func (d *Document) Save() error {
	if d.saved {
		return ErrAlreadySaved
	}

	dir := filepath.Dir(d.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(d.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temporary report: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if err := d.file.Write(tmp); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write report: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to sync report: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temporary report: %w", err)
	}
	if err := os.Rename(tmpName, d.path); err != nil {
		return fmt.Errorf("failed to replace report %s: %w", d.path, err)
	}

	d.saved = true
	return nil
}

// Close releases the workbook. Unsaved changes are discarded.
func (d *Document) Close() error {
	return d.file.Close()
}
