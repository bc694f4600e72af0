package graticule

import (
	"math"
	"testing"

	"github.com/couchcryptid/wildfire-map-service/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWebMercator_Project(t *testing.T) {
	p, err := WebMercator{}.Project(domain.LatLng{Lat: 0, Lng: 0})
	require.NoError(t, err)
	assert.InDelta(t, 0, p.X, 1e-9)
	assert.InDelta(t, 0, p.Y, 1e-6)

	p, err = WebMercator{}.Project(domain.LatLng{Lat: 0, Lng: 180})
	require.NoError(t, err)
	assert.InDelta(t, 20037508.34, p.X, 0.01)

	p, err = WebMercator{}.Project(domain.LatLng{Lat: MaxLatitude, Lng: 0})
	require.NoError(t, err)
	assert.InDelta(t, 20037508.34, p.Y, 1)
}

func TestWebMercator_RoundTrip(t *testing.T) {
	points := []domain.LatLng{
		{Lat: 36.019, Lng: 129.343},
		{Lat: -33.8688, Lng: 151.2093},
		{Lat: 64.1466, Lng: -21.9426},
		{Lat: -84.9, Lng: -179.5},
	}
	for _, ll := range points {
		p, err := WebMercator{}.Project(ll)
		require.NoError(t, err)
		back, err := WebMercator{}.Unproject(p)
		require.NoError(t, err)

		assert.InDelta(t, ll.Lat, back.Lat, 1e-6)
		assert.InDelta(t, ll.Lng, back.Lng, 1e-6)
	}
}

func TestWebMercator_OutOfDomain(t *testing.T) {
	tests := []domain.LatLng{
		{Lat: 85.06, Lng: 0},
		{Lat: -90, Lng: 0},
		{Lat: math.NaN(), Lng: 0},
		{Lat: 0, Lng: math.Inf(1)},
	}
	for _, ll := range tests {
		_, err := WebMercator{}.Project(ll)
		assert.ErrorIs(t, err, ErrProjection, "lat=%g lng=%g", ll.Lat, ll.Lng)
	}

	_, err := WebMercator{}.Unproject(Point{X: math.NaN(), Y: 0})
	assert.ErrorIs(t, err, ErrProjection)
}
