// Package filestore keeps the operation queue and execution log as a pair of
// JSON documents in the storage directory.
package filestore

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"gitdelayed/internal/domain"
	"gitdelayed/internal/ports"
)

const (
	ScheduledFile = "scheduled.json"
	LogsFile      = "logs.json"
)

var _ ports.Store = (*Store)(nil)

type Store struct {
	Dir       string
	Scheduled string
	Logs      string

	lockAttempts int
	lockBackoff  time.Duration
}

type Option func(*Store)

// WithLockPolicy sets how many times a lock is tried and the first wait.
func WithLockPolicy(attempts int, initial time.Duration) Option {
	return func(s *Store) {
		s.lockAttempts = attempts
		s.lockBackoff = initial
	}
}

func New(dir string, opts ...Option) *Store {
	s := &Store{
		Dir:          dir,
		Scheduled:    filepath.Join(dir, ScheduledFile),
		Logs:         filepath.Join(dir, LogsFile),
		lockAttempts: 3,
		lockBackoff:  200 * time.Millisecond,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) Ensure() error {
	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return fmt.Errorf("%w: create storage directory: %w", domain.ErrStorage, err)
	}
	return nil
}

type scheduledDoc struct {
	Operations []domain.Operation `json:"operations"`
}

type logsDoc struct {
	Entries []domain.LogEntry `json:"entries"`
}

func (s *Store) Add(ctx context.Context, op domain.Operation) error {
	return s.mutateQueue(ctx, func(ops []domain.Operation) ([]domain.Operation, bool) {
		return append(ops, op), true
	})
}

func (s *Store) Remove(ctx context.Context, id string) (bool, error) {
	var removed bool
	err := s.mutateQueue(ctx, func(ops []domain.Operation) ([]domain.Operation, bool) {
		kept := make([]domain.Operation, 0, len(ops))
		for _, op := range ops {
			if op.ID == id {
				removed = true
				continue
			}
			kept = append(kept, op)
		}
		return kept, removed
	})
	return removed, err
}

func (s *Store) Load(ctx context.Context) ([]domain.Operation, error) {
	var doc scheduledDoc
	if err := s.read(s.Scheduled, &doc); err != nil {
		return nil, err
	}
	if doc.Operations == nil {
		return []domain.Operation{}, nil
	}
	for i := range doc.Operations {
		if doc.Operations[i].State == "" {
			doc.Operations[i].State = domain.StatePending
		}
	}
	return doc.Operations, nil
}

func (s *Store) Get(ctx context.Context, id string) (domain.Operation, error) {
	ops, err := s.Load(ctx)
	if err != nil {
		return domain.Operation{}, err
	}
	for _, op := range ops {
		if op.ID == id {
			return op, nil
		}
	}
	return domain.Operation{}, fmt.Errorf("%w: %s", domain.ErrOperationNotFound, id)
}

func (s *Store) Due(ctx context.Context, now time.Time) ([]domain.Operation, error) {
	ops, err := s.Load(ctx)
	if err != nil {
		return nil, err
	}
	due := make([]domain.Operation, 0, len(ops))
	for _, op := range ops {
		if op.IsDue(now) {
			due = append(due, op)
		}
	}
	sort.SliceStable(due, func(i, j int) bool {
		return due[i].ScheduledTime.Before(due[j].ScheduledTime)
	})
	return due, nil
}

func (s *Store) AppendLog(ctx context.Context, entry domain.LogEntry) error {
	if err := s.Ensure(); err != nil {
		return err
	}
	return s.withLock(ctx, s.Logs, func() error {
		var doc logsDoc
		if err := s.read(s.Logs, &doc); err != nil {
			return err
		}
		doc.Entries = append(doc.Entries, entry)
		return s.write(s.Logs, doc)
	})
}

func (s *Store) LoadLogs(ctx context.Context) ([]domain.LogEntry, error) {
	var doc logsDoc
	if err := s.read(s.Logs, &doc); err != nil {
		return nil, err
	}
	if doc.Entries == nil {
		return []domain.LogEntry{}, nil
	}
	return doc.Entries, nil
}

// mutateQueue re-reads the queue under the lock, applies fn and writes the
// result back when fn reports a change.
func (s *Store) mutateQueue(ctx context.Context, fn func([]domain.Operation) ([]domain.Operation, bool)) error {
	if err := s.Ensure(); err != nil {
		return err
	}
	return s.withLock(ctx, s.Scheduled, func() error {
		var doc scheduledDoc
		if err := s.read(s.Scheduled, &doc); err != nil {
			return err
		}
		ops, changed := fn(doc.Operations)
		if !changed {
			return nil
		}
		if ops == nil {
			ops = []domain.Operation{}
		}
		return s.write(s.Scheduled, scheduledDoc{Operations: ops})
	})
}

// read decodes path into v. A missing or blank file leaves v untouched.
func (s *Store) read(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("%w: read %s: %w", domain.ErrStorage, filepath.Base(path), err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("%w: %w: parse %s: %w", domain.ErrStorage, domain.ErrCorruptStore, filepath.Base(path), err)
	}
	return nil
}

func (s *Store) write(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: encode %s: %w", domain.ErrStorage, filepath.Base(path), err)
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("%w: write %s: %w", domain.ErrStorage, filepath.Base(path), err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("%w: write %s: %w", domain.ErrStorage, filepath.Base(path), err)
	}
	return nil
}
