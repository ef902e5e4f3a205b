// Package repository persists the canonical ledger as a markdown table file.
package repository

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/okian/trainsync/internal/domain/model"
	"github.com/okian/trainsync/pkg/logger"
)

// Store provides read/write access to ledger state. The ledger is read in
// full, mutated in memory, and written back in full; there is no partial or
// streaming update.
type Store interface {
	// Load reads every ledger row, applying the load-time normalization of
	// previously corrupted sport-type values. Returns ErrLedgerUnavailable
	// when the backing file is missing or unreadable.
	Load(ctx context.Context) ([]model.LedgerRow, error)

	// Save rewrites the full ledger sorted by date descending. The write is
	// atomic: content goes to a temp file first, then renames over the
	// ledger, so an aborted run never leaves a half-written file.
	Save(ctx context.Context, rows []model.LedgerRow) error
}

// FileStore implements Store on a markdown table file.
type FileStore struct {
	path  string
	title string
	log   logger.Logger
}

// NewFileStore creates a file-backed ledger store.
func NewFileStore(path string, opts ...Option) *FileStore {
	s := &FileStore{
		path:  path,
		title: "# Training Log",
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Load reads and parses the ledger file. Malformed rows are skipped with a
// logged reason; a missing or unreadable file is a run-level failure.
func (s *FileStore) Load(ctx context.Context) ([]model.LedgerRow, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrLedgerUnavailable, s.path, err)
	}

	rows, skipped := unmarshalRows(string(data))
	if s.log != nil {
		for _, sk := range skipped {
			s.log.Warn(ctx, "skipping malformed ledger row",
				logger.String("path", s.path),
				logger.Int("line", sk.line),
				logger.String("reason", sk.reason))
		}
	}

	// One-time normalization of structured sport-type values that earlier
	// versions serialized straight into the workout columns.
	for i := range rows {
		if repaired, ok := repairSportValue(rows[i].ActualWorkout); ok {
			if s.log != nil {
				s.log.Warn(ctx, "repaired structured sport value",
					logger.String("date", rows[i].Day()),
					logger.String("was", rows[i].ActualWorkout))
			}
			rows[i].ActualWorkout = repaired
		}
	}
	return rows, nil
}

// Save serializes rows sorted by date descending and writes them atomically.
func (s *FileStore) Save(ctx context.Context, rows []model.LedgerRow) error {
	sorted := make([]model.LedgerRow, len(rows))
	copy(sorted, rows)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Date.After(sorted[j].Date)
	})

	content := marshalRows(s.title, sorted)

	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, ".ledger-*.md")
	if err != nil {
		return fmt.Errorf("%w: create temp: %v", ErrLedgerUnavailable, err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.WriteString(content); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("%w: write temp: %v", ErrLedgerUnavailable, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("%w: close temp: %v", ErrLedgerUnavailable, err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("%w: rename: %v", ErrLedgerUnavailable, err)
	}

	if s.log != nil {
		s.log.Debug(ctx, "ledger saved",
			logger.String("path", s.path),
			logger.Int("rows", len(sorted)))
	}
	return nil
}
