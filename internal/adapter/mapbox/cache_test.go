package mapbox

import (
	"context"
	"errors"
	"testing"

	"github.com/couchcryptid/wildfire-map-service/internal/domain"
	"github.com/couchcryptid/wildfire-map-service/internal/observability"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- mock for cache tests ---

type countingGeocoder struct {
	reverseCalls int
	result       domain.GeocodingResult
	err          error
}

func (m *countingGeocoder) ReverseGeocode(_ context.Context, _, _ float64) (domain.GeocodingResult, error) {
	m.reverseCalls++
	return m.result, m.err
}

// --- CachedGeocoder tests ---

func TestCachedGeocoder_CacheHit(t *testing.T) {
	inner := &countingGeocoder{
		result: domain.GeocodingResult{FormattedAddress: "Pohang, South Korea"},
	}
	metrics := observability.NewMetricsForTesting()
	cached := NewCachedGeocoder(inner, 10, metrics)

	r1, err := cached.ReverseGeocode(context.Background(), 36.019, 129.343)
	require.NoError(t, err)
	r2, err := cached.ReverseGeocode(context.Background(), 36.019, 129.343)
	require.NoError(t, err)

	assert.Equal(t, r1, r2)
	assert.Equal(t, 1, inner.reverseCalls, "should only call inner once")
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.CacheLookups.WithLabelValues("geocode", "hit")))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.CacheLookups.WithLabelValues("geocode", "miss")))
}

func TestCachedGeocoder_DifferentKeysMiss(t *testing.T) {
	inner := &countingGeocoder{
		result: domain.GeocodingResult{FormattedAddress: "Place"},
	}
	cached := NewCachedGeocoder(inner, 10, observability.NewMetricsForTesting())

	_, _ = cached.ReverseGeocode(context.Background(), 36.019, 129.343)
	_, _ = cached.ReverseGeocode(context.Background(), 36.020, 129.343)

	assert.Equal(t, 2, inner.reverseCalls)
}

func TestCachedGeocoder_EmptyResultsAreRetried(t *testing.T) {
	inner := &countingGeocoder{}
	cached := NewCachedGeocoder(inner, 10, observability.NewMetricsForTesting())

	_, _ = cached.ReverseGeocode(context.Background(), 36.019, 129.343)
	_, _ = cached.ReverseGeocode(context.Background(), 36.019, 129.343)

	assert.Equal(t, 2, inner.reverseCalls)
}

func TestCachedGeocoder_ErrorsAreNotCached(t *testing.T) {
	inner := &countingGeocoder{err: errors.New("timeout")}
	cached := NewCachedGeocoder(inner, 10, observability.NewMetricsForTesting())

	_, err := cached.ReverseGeocode(context.Background(), 36.019, 129.343)
	require.Error(t, err)

	inner.err = nil
	inner.result = domain.GeocodingResult{FormattedAddress: "Pohang"}
	result, err := cached.ReverseGeocode(context.Background(), 36.019, 129.343)
	require.NoError(t, err)
	assert.Equal(t, "Pohang", result.FormattedAddress)
	assert.Equal(t, 2, inner.reverseCalls)
}
