package service

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"

	"github.com/couchcryptid/wildfire-map-service/internal/domain"
)

// FireStore holds the latest fire state. Readers get an immutable snapshot;
// writers replace it whole. It implements pipeline.BatchLoader.
type FireStore struct {
	state  atomic.Pointer[domain.FireState]
	logger *slog.Logger
}

// NewFireStore returns an empty store.
func NewFireStore(logger *slog.Logger) *FireStore {
	return &FireStore{logger: logger}
}

// Load returns the current snapshot and whether one has been set.
func (s *FireStore) Load() (domain.FireState, bool) {
	p := s.state.Load()
	if p == nil {
		return domain.FireState{}, false
	}
	return *p, true
}

// Set stores state unless the store already holds a newer one. It reports
// whether the state was stored.
func (s *FireStore) Set(state domain.FireState) bool {
	next := &state
	for {
		cur := s.state.Load()
		if cur != nil && state.UpdatedAt.Before(cur.UpdatedAt) {
			return false
		}
		if s.state.CompareAndSwap(cur, next) {
			return true
		}
	}
}

// LoadBatch applies a batch of updates. Updates older than the stored state
// are dropped.
func (s *FireStore) LoadBatch(_ context.Context, states []domain.FireState) error {
	for _, st := range states {
		if !s.Set(st) {
			s.logger.Debug("dropping stale fire state", "updated_at", st.UpdatedAt)
		}
	}
	return nil
}

// CheckReadiness reports an error until a fire state has been loaded.
func (s *FireStore) CheckReadiness(_ context.Context) error {
	if s.state.Load() == nil {
		return errors.New("no fire state loaded yet")
	}
	return nil
}
