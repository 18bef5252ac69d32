package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"budget/internal/core"
	applog "budget/internal/log"
	"budget/internal/metrics"
)

// ErrCorrupt marks a backing file that could not be read or parsed. It is
// reported through Snapshot.Warning, never returned as a hard error.
var ErrCorrupt = errors.New("expense store unreadable")

// Snapshot is the result of a Load.
type Snapshot struct {
	Expenses []core.Expense
	// Warning is non-nil when the backing file was unreadable and has been
	// reset to an empty list. It wraps ErrCorrupt.
	Warning error
	// Dropped counts array elements that were not records at all. The other
	// records are kept.
	Dropped int
}

// FileInfo describes the backing file.
type FileInfo struct {
	Path   string
	Exists bool
	Size   int64
}

// Store persists the expense list as a single JSON array. Every Load reads
// the whole file, every Save replaces it. There is no in-memory copy.
//
// mu serialises file access within the process, so the write-back done by
// Load never interleaves with a Save.
type Store struct {
	path   string
	logger *applog.Logger
	rename renameFunc
	mu     sync.Mutex
}

// NewStore returns a Store backed by the file at path.
func NewStore(path string, logger *applog.Logger) *Store {
	if logger == nil {
		logger = applog.New(applog.DefaultConfig())
	}
	return &Store{
		path:   path,
		logger: logger.WithComponent(applog.ComponentStore),
		rename: os.Rename,
	}
}

// Path returns the backing file location.
func (s *Store) Path() string {
	return s.path
}

// Load reads the backing file. A missing, blank or unparseable file yields an
// empty list; the last case also sets Snapshot.Warning. The list is written
// back before returning so the file is always well-formed afterwards. Only a
// failure of that write is returned as an error.
func (s *Store) Load(ctx context.Context) (Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return Snapshot{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	start := time.Now()
	expenses, dropped, warning := s.read()
	metrics.ObserveStoreOp(applog.OpLoad, time.Since(start), nil)

	if dropped > 0 {
		s.logger.WarnContext(ctx, "Dropped entries that are not expense records",
			applog.NewFields().
				WithFile(s.path).
				WithCount(dropped).
				WithOperation(applog.OpLoad).
				ToSlice()...)
	}

	if warning != nil {
		metrics.StoreResets.Inc()
		s.logger.WarnContext(ctx, "Expense store unreadable, resetting to empty",
			applog.NewFields().
				WithFile(s.path).
				WithError(warning).
				WithOperation(applog.OpLoad).
				ToSlice()...)
	}

	if err := s.save(ctx, expenses); err != nil {
		return Snapshot{}, fmt.Errorf("persist after load: %w", err)
	}

	return Snapshot{Expenses: expenses, Warning: warning, Dropped: dropped}, nil
}

// read decodes the file record by record. Only a file that is not a JSON
// array is corrupt; odd values inside a record are kept as they are.
func (s *Store) read() ([]core.Expense, int, error) {
	empty := []core.Expense{}

	b, exists, err := readFile(s.path)
	if err != nil {
		return empty, 0, fmt.Errorf("%w: %w", ErrCorrupt, err)
	}
	if !exists {
		return empty, 0, nil
	}

	b = bytes.TrimSpace(b)
	if len(b) == 0 {
		return empty, 0, nil
	}

	var records []json.RawMessage
	if err := json.Unmarshal(b, &records); err != nil {
		return empty, 0, fmt.Errorf("%w: %w", ErrCorrupt, err)
	}

	expenses := make([]core.Expense, 0, len(records))
	dropped := 0
	for _, rec := range records {
		var e core.Expense
		if err := json.Unmarshal(rec, &e); err != nil {
			dropped++
			continue
		}
		expenses = append(expenses, e)
	}
	return expenses, dropped, nil
}

// Save replaces the backing file with expenses. The write goes through a
// temp file in the same directory and a rename, so on failure the previous
// content is left untouched.
func (s *Store) Save(ctx context.Context, expenses []core.Expense) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.save(ctx, expenses)
}

func (s *Store) save(ctx context.Context, expenses []core.Expense) error {
	if expenses == nil {
		expenses = []core.Expense{}
	}

	start := time.Now()
	err := s.write(expenses)
	metrics.ObserveStoreOp(applog.OpSave, time.Since(start), err)

	fields := applog.NewFields().
		WithFile(s.path).
		WithCount(len(expenses)).
		WithOperation(applog.OpSave)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to save expense store", fields.WithError(err).ToSlice()...)
		return fmt.Errorf("save expenses: %w", err)
	}

	s.logger.DebugContext(ctx, "Expense store saved", fields.ToSlice()...)
	return nil
}

func (s *Store) write(expenses []core.Expense) error {
	b, err := json.MarshalIndent(expenses, "", "    ")
	if err != nil {
		return err
	}
	b = append(b, '\n')
	return writeFileAtomic(s.path, b, fileMode, s.rename)
}

// Stat reports whether the backing file exists and its size.
func (s *Store) Stat() (FileInfo, error) {
	info := FileInfo{Path: s.path}
	fi, err := os.Stat(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return info, nil
	}
	if err != nil {
		return info, err
	}
	info.Exists = true
	info.Size = fi.Size()
	return info, nil
}

// Contents returns the raw backing file as stored, for inspection.
func (s *Store) Contents() (string, error) {
	b, exists, err := readFile(s.path)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", s.path, err)
	}
	if !exists {
		return "", fmt.Errorf("read %s: %w", s.path, os.ErrNotExist)
	}
	return string(b), nil
}
