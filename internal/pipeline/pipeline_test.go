package pipeline_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/wildfire-map-service/internal/domain"
	"github.com/couchcryptid/wildfire-map-service/internal/observability"
	"github.com/couchcryptid/wildfire-map-service/internal/pipeline"
)

// --- mocks ---

type mockExtractor struct {
	batches [][]domain.RawEvent
	index   atomic.Int64
}

func (m *mockExtractor) ExtractBatch(ctx context.Context, _ int) ([]domain.RawEvent, error) {
	i := int(m.index.Add(1) - 1)
	if i >= len(m.batches) {
		// block until cancelled, as a reader with no new messages does
		<-ctx.Done()
		return nil, ctx.Err()
	}
	return m.batches[i], nil
}

type mockLoader struct {
	mu     sync.Mutex
	loaded []domain.FireState
	err    error
}

func (m *mockLoader) LoadBatch(_ context.Context, states []domain.FireState) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.loaded = append(m.loaded, states...)
	return nil
}

func (m *mockLoader) states() []domain.FireState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domain.FireState(nil), m.loaded...)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

const firePayload = `{"initial_state": [
  {"row": 1, "col": 2, "bounds": {"top_left": [36.02, 129.30], "top_right": [36.02, 129.31],
    "bottom_left": [36.01, 129.30], "bottom_right": [36.01, 129.31]}}
], "next_day_fires": []}`

func rawEvent(offset int64, value string, committed *atomic.Int64) domain.RawEvent {
	return domain.RawEvent{
		Key:       []byte("fire"),
		Value:     []byte(value),
		Topic:     "fire-state-updates",
		Offset:    offset,
		Timestamp: time.Date(2025, 4, 1, 9, 0, 0, 0, time.UTC).Add(time.Duration(offset) * time.Minute),
		Commit: func(_ context.Context) error {
			committed.Add(1)
			return nil
		},
	}
}

func runFor(t *testing.T, p *pipeline.Pipeline, d time.Duration) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), d)
	defer cancel()
	require.NoError(t, p.Run(ctx))
}

// --- tests ---

func TestPipeline_Run_HappyPath(t *testing.T) {
	var committed atomic.Int64
	ext := &mockExtractor{batches: [][]domain.RawEvent{{
		rawEvent(0, firePayload, &committed),
		rawEvent(1, firePayload, &committed),
	}}}
	ldr := &mockLoader{}
	metrics := observability.NewMetricsForTesting()

	runFor(t, pipeline.New(ext, pipeline.NewTransformer(), ldr, discardLogger(), metrics, 10), 300*time.Millisecond)

	states := ldr.states()
	require.Len(t, states, 2)
	assert.Equal(t, 1, states[0].Current[0].Row)
	assert.Equal(t, time.Date(2025, 4, 1, 9, 1, 0, 0, time.UTC), states[1].UpdatedAt)
	assert.Equal(t, int64(2), committed.Load())
	assert.Equal(t, 2.0, testutil.ToFloat64(metrics.FireUpdatesConsumed))
	assert.Equal(t, 2.0, testutil.ToFloat64(metrics.FireUpdatesApplied))
	assert.Equal(t, 0.0, testutil.ToFloat64(metrics.PipelineRunning), "gauge resets on stop")
}

func TestPipeline_Run_ContextCancellation(t *testing.T) {
	ldr := &mockLoader{}
	p := pipeline.New(&mockExtractor{}, pipeline.NewTransformer(), ldr, discardLogger(), observability.NewMetricsForTesting(), 10)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	require.NoError(t, p.Run(ctx))
	assert.Empty(t, ldr.states())
}

func TestPipeline_Run_BadMessageSkippedAndCommitted(t *testing.T) {
	var committed atomic.Int64
	ext := &mockExtractor{batches: [][]domain.RawEvent{{
		rawEvent(0, `{not json`, &committed),
		rawEvent(1, firePayload, &committed),
	}}}
	ldr := &mockLoader{}
	metrics := observability.NewMetricsForTesting()

	runFor(t, pipeline.New(ext, pipeline.NewTransformer(), ldr, discardLogger(), metrics, 10), 300*time.Millisecond)

	assert.Len(t, ldr.states(), 1)
	assert.Equal(t, int64(2), committed.Load())
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.FireUpdateErrors))
}

func TestPipeline_Run_LoadFailureLeavesOffsetsUncommitted(t *testing.T) {
	var committed atomic.Int64
	ext := &mockExtractor{batches: [][]domain.RawEvent{{rawEvent(0, firePayload, &committed)}}}
	ldr := &mockLoader{err: errors.New("sink unavailable")}
	metrics := observability.NewMetricsForTesting()

	runFor(t, pipeline.New(ext, pipeline.NewTransformer(), ldr, discardLogger(), metrics, 10), 300*time.Millisecond)

	assert.Zero(t, committed.Load())
	assert.Zero(t, testutil.ToFloat64(metrics.FireUpdatesApplied))
}

func TestFireTransformer_Transform(t *testing.T) {
	raw := domain.RawEvent{
		Value:     []byte(firePayload),
		Timestamp: time.Date(2025, 4, 1, 9, 0, 0, 0, time.UTC),
	}

	state, err := pipeline.NewTransformer().Transform(context.Background(), raw)

	require.NoError(t, err)
	want := []domain.FireCell{{
		Row: 1, Col: 2,
		Bounds: domain.CellBounds{
			TopLeft:     [2]float64{36.02, 129.30},
			TopRight:    [2]float64{36.02, 129.31},
			BottomLeft:  [2]float64{36.01, 129.30},
			BottomRight: [2]float64{36.01, 129.31},
		},
	}}
	if diff := cmp.Diff(want, state.Current); diff != "" {
		t.Errorf("current cells mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, raw.Timestamp, state.UpdatedAt)
}

func TestFireTransformer_InvalidPayload(t *testing.T) {
	_, err := pipeline.NewTransformer().Transform(context.Background(), domain.RawEvent{Value: []byte(`[`)})

	assert.ErrorIs(t, err, domain.ErrInvalidFireState)
}

func TestMultiLoader(t *testing.T) {
	first := &mockLoader{}
	failing := &mockLoader{err: errors.New("boom")}
	last := &mockLoader{}
	states := []domain.FireState{{UpdatedAt: time.Unix(1, 0)}}

	err := pipeline.MultiLoader{first, failing, last}.LoadBatch(context.Background(), states)

	require.ErrorContains(t, err, "boom")
	assert.Len(t, first.states(), 1)
	assert.Len(t, last.states(), 1, "later loaders still run")
}
