// Package anonymizer applies the second anonymization pass: patient fields
// are overwritten and selected tag values are replaced by their digest.
package anonymizer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/suyashkumar/dicom/pkg/tag"

	dcm "dicom-deid/internal/dicom"
)

// Stats holds processing statistics
type Stats struct {
	Files   int
	Hashed  int
	Missing int
	Skipped int
}

// Add accumulates other into s.
func (s *Stats) Add(other Stats) {
	s.Files += other.Files
	s.Hashed += other.Hashed
	s.Missing += other.Missing
	s.Skipped += other.Skipped
}

// FileRecorder receives the outcome of every edited file.
type FileRecorder interface {
	MarkFile(path string, err error)
}

// Editor rewrites files according to a Directive.
type Editor struct {
	directive Directive
	logger    *slog.Logger
	recorder  FileRecorder
}

// NewEditor creates an editor. recorder may be nil.
func NewEditor(d Directive, logger *slog.Logger, recorder FileRecorder) *Editor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Editor{directive: d, logger: logger, recorder: recorder}
}

// EditDirectory edits every regular file in dir in name order. The first
// failing file stops the loop; files edited before it stay rewritten.
func (e *Editor) EditDirectory(ctx context.Context, dir string) (Stats, error) {
	var stats Stats

	files, err := dcm.ListRegularFiles(dir)
	if err != nil {
		return stats, err
	}

	for _, path := range files {
		if err := ctx.Err(); err != nil {
			return stats, err
		}

		fileStats, err := e.EditFile(path)
		if e.recorder != nil {
			e.recorder.MarkFile(path, err)
		}
		if err != nil {
			return stats, err
		}
		stats.Add(fileStats)
	}

	return stats, nil
}

// EditFile decodes path, applies the directive and writes it back in place.
func (e *Editor) EditFile(path string) (Stats, error) {
	ds, err := dcm.ReadDicom(path)
	if err != nil {
		return Stats{}, err
	}

	stats, err := e.Apply(ds)
	if err != nil {
		return stats, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}

	if err := ds.SaveInPlace(); err != nil {
		return stats, err
	}
	stats.Files = 1
	return stats, nil
}

// Apply mutates ds in memory.
func (e *Editor) Apply(ds *dcm.Dataset) (Stats, error) {
	var stats Stats
	d := e.directive

	if d.PatientName != "" {
		if err := ds.SetString(tag.PatientName, d.PatientName); err != nil {
			return stats, err
		}
		if err := ds.SetString(tag.PatientID, d.PatientName); err != nil {
			return stats, err
		}
	}

	if d.PatientAge != "" {
		if err := ds.SetString(tag.PatientAge, d.PatientAge); err != nil {
			return stats, err
		}
	}

	for _, id := range d.HashTags {
		hashed, err := e.hashTag(ds, id)
		switch {
		case errors.Is(err, dcm.ErrTagNotFound):
			stats.Missing++
			e.logger.Info(fmt.Sprintf("%s not in the dataset", id), "file", ds.FilePath)
		case errors.Is(err, dcm.ErrNotString):
			stats.Skipped++
			e.logger.Warn(fmt.Sprintf("%s is not a string value, not hashed", id), "file", ds.FilePath)
		case err != nil:
			return stats, err
		case hashed:
			stats.Hashed++
		}
	}

	return stats, nil
}

// hashTag replaces the value of the tag named by id with its digest.
func (e *Editor) hashTag(ds *dcm.Dataset, id string) (bool, error) {
	t, err := dcm.ResolveTag(id)
	if err != nil {
		// an unknown keyword cannot be present in the dataset
		return false, fmt.Errorf("%v: %w", err, dcm.ErrTagNotFound)
	}

	if !ds.HasTag(t) {
		return false, fmt.Errorf("%s: %w", t, dcm.ErrTagNotFound)
	}

	current, err := ds.LookupString(t)
	if err != nil {
		return false, err
	}

	if err := ds.SetString(t, HashValue(current)); err != nil {
		return false, err
	}
	return true, nil
}
