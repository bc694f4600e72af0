package service

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/couchcryptid/wildfire-map-service/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func stateAt(ts time.Time, rows ...int) domain.FireState {
	st := domain.FireState{UpdatedAt: ts}
	for _, r := range rows {
		st.Current = append(st.Current, domain.FireCell{Row: r})
	}
	return st
}

func TestFireStore_EmptyUntilSet(t *testing.T) {
	store := NewFireStore(discardLogger())

	_, ok := store.Load()
	assert.False(t, ok)
	require.Error(t, store.CheckReadiness(context.Background()))

	ts := time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC)
	assert.True(t, store.Set(stateAt(ts, 1)))

	got, ok := store.Load()
	require.True(t, ok)
	assert.Equal(t, ts, got.UpdatedAt)
	assert.NoError(t, store.CheckReadiness(context.Background()))
}

func TestFireStore_KeepsNewest(t *testing.T) {
	store := NewFireStore(discardLogger())
	t0 := time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC)

	require.True(t, store.Set(stateAt(t0.Add(time.Hour), 2)))
	assert.False(t, store.Set(stateAt(t0, 1)), "older state is rejected")
	assert.True(t, store.Set(stateAt(t0.Add(time.Hour), 3)), "same timestamp replaces")

	got, _ := store.Load()
	assert.Equal(t, 3, got.Current[0].Row)
}

func TestFireStore_LoadBatch(t *testing.T) {
	store := NewFireStore(discardLogger())
	t0 := time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC)

	err := store.LoadBatch(context.Background(), []domain.FireState{
		stateAt(t0.Add(2*time.Hour), 2),
		stateAt(t0, 1),
		stateAt(t0.Add(3*time.Hour), 3),
	})

	require.NoError(t, err)
	got, _ := store.Load()
	assert.Equal(t, t0.Add(3*time.Hour), got.UpdatedAt)
}
