package storage

import (
	"context"
	"errors"
	"log/slog"
)

// MultiStore writes records to multiple backends.
type MultiStore struct {
	backends []RunStore
	logger   *slog.Logger
}

// NewMultiStore creates a store that fans out to multiple backends.
func NewMultiStore(backends []RunStore, logger *slog.Logger) *MultiStore {
	return &MultiStore{
		backends: backends,
		logger:   logger.With("component", "multi_history"),
	}
}

func (s *MultiStore) Name() string { return "multi" }

// Save writes to every backend and returns the first error.
func (s *MultiStore) Save(ctx context.Context, rec RunRecord) error {
	var firstErr error
	for _, backend := range s.backends {
		if err := backend.Save(ctx, rec); err != nil {
			s.logger.Error("backend save failed", "backend", backend.Name(), "error", err)
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}

// Recent reads from the first backend that answers.
func (s *MultiStore) Recent(ctx context.Context, limit int) ([]RunRecord, error) {
	var errs []error
	for _, backend := range s.backends {
		recs, err := backend.Recent(ctx, limit)
		if err == nil {
			return recs, nil
		}
		errs = append(errs, err)
	}
	return nil, errors.Join(errs...)
}

func (s *MultiStore) Close() error {
	var firstErr error
	for _, backend := range s.backends {
		if err := backend.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
