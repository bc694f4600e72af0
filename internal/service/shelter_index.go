package service

import (
	"context"
	"sort"
	"sync"

	"github.com/couchcryptid/wildfire-map-service/internal/domain"
)

// ShelterIndex stores the shelter list and answers proximity queries.
type ShelterIndex interface {
	// Replace swaps the whole indexed set.
	Replace(ctx context.Context, shelters []domain.Shelter) error
	// Nearest returns up to limit shelters nearest first, with distance
	// fields set. A limit of zero means no limit.
	Nearest(ctx context.Context, here domain.LatLng, limit int) ([]domain.Shelter, error)
	// All returns every shelter ordered by ID.
	All(ctx context.Context) ([]domain.Shelter, error)
}

// MemoryShelterIndex is a ShelterIndex kept in process memory.
type MemoryShelterIndex struct {
	mu       sync.RWMutex
	shelters []domain.Shelter
}

// NewMemoryShelterIndex returns an empty in-memory index.
func NewMemoryShelterIndex() *MemoryShelterIndex {
	return &MemoryShelterIndex{}
}

func (m *MemoryShelterIndex) Replace(_ context.Context, shelters []domain.Shelter) error {
	sorted := make([]domain.Shelter, len(shelters))
	copy(sorted, shelters)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].ID < sorted[j].ID })

	m.mu.Lock()
	m.shelters = sorted
	m.mu.Unlock()
	return nil
}

func (m *MemoryShelterIndex) Nearest(_ context.Context, here domain.LatLng, limit int) ([]domain.Shelter, error) {
	m.mu.RLock()
	out := domain.SortByDistance(m.shelters, here)
	m.mu.RUnlock()

	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *MemoryShelterIndex) All(_ context.Context) ([]domain.Shelter, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]domain.Shelter, len(m.shelters))
	copy(out, m.shelters)
	return out, nil
}
