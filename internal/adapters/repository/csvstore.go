package repository

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gofrs/flock"

	"github.com/okian/pacematch/internal/domain/model"
	"github.com/okian/pacematch/pkg/metrics"
)

const defaultLockRetry = 20 * time.Millisecond

// CSVStore appends matches to a comma-delimited file with a header row.
// Appends within a process are serialized by mu; appends from separate
// processes by an advisory file lock.
type CSVStore struct {
	mu        sync.Mutex
	path      string
	lockPath  string
	lockRetry time.Duration
	lock      *flock.Flock
	closed    atomic.Bool
}

// NewCSVStore creates a store writing to path. The file is created on first append.
func NewCSVStore(path string, opts ...CSVOption) *CSVStore {
	s := &CSVStore{
		path:      path,
		lockPath:  path + ".lock",
		lockRetry: defaultLockRetry,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.lock = flock.New(s.lockPath)
	return s
}

// Path returns the accumulation file path.
func (s *CSVStore) Path() string { return s.path }

// Append writes matches to the end of the file, adding the header if the file is new.
func (s *CSVStore) Append(ctx context.Context, matches []model.Match) (err error) {
	if s.closed.Load() {
		return ErrClosed
	}
	if len(matches) == 0 {
		return nil
	}
	start := time.Now()

	// A *flock.Flock reports success when it already holds the lock.
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create store dir: %w", err)
	}
	ok, err := s.lock.TryLockContext(ctx, s.lockRetry)
	if err != nil {
		return fmt.Errorf("acquire store lock: %w", err)
	}
	if !ok {
		return fmt.Errorf("acquire store lock: %s", s.lockPath)
	}
	defer func() { _ = s.lock.Unlock() }()

	f, err := os.OpenFile(s.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close store: %w", cerr)
		}
	}()

	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("stat store: %w", err)
	}

	w := csv.NewWriter(f)
	if info.Size() == 0 {
		if err := w.Write(model.MatchColumns); err != nil {
			return fmt.Errorf("write header: %w", err)
		}
	}
	for _, m := range matches {
		if err := w.Write(toRecord(m)); err != nil {
			return fmt.Errorf("write match: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("flush store: %w", err)
	}

	metrics.RecordRepositoryUpdateLatency(float64(time.Since(start).Milliseconds()))
	return nil
}

// Load reads every stored match. A missing file is an empty store.
func (s *CSVStore) Load(ctx context.Context) ([]model.Match, error) {
	if s.closed.Load() {
		return nil, ErrClosed
	}
	start := time.Now()
	defer func() {
		metrics.RecordRepositoryQueryLatency(float64(time.Since(start).Milliseconds()))
	}()

	f, err := os.Open(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("open store: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = len(model.MatchColumns)
	if _, err := r.Read(); err != nil {
		if err == io.EOF {
			return nil, nil
		}
		return nil, fmt.Errorf("read header: %w", err)
	}

	var out []model.Match
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
		}
		m, err := fromRecord(rec)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, nil
}

// Count returns the number of stored matches.
func (s *CSVStore) Count(ctx context.Context) (int, error) {
	rows, err := s.Load(ctx)
	if err != nil {
		return 0, err
	}
	return len(rows), nil
}

// Close marks the store closed. It is safe to call more than once.
func (s *CSVStore) Close() error {
	s.closed.Store(true)
	return nil
}
