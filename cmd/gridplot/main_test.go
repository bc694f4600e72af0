package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/wildfire-map-service/internal/domain"
	"github.com/couchcryptid/wildfire-map-service/internal/graticule"
)

func TestPanSequence(t *testing.T) {
	seq := panSequence(domain.NewBounds(36.05, 129.30, 36.00, 129.36), 0.01, 0.02, 3)

	require.Len(t, seq, 3)
	assert.Equal(t, domain.NewBounds(36.05, 129.30, 36.00, 129.36), seq[0])
	assert.InDelta(t, 36.07, seq[2].North(), 1e-9)
	assert.InDelta(t, 129.34, seq[2].West(), 1e-9)
}

func TestStableOffsets(t *testing.T) {
	prev := []graticule.Line{
		{Axis: graticule.Vertical, Offset: 1},
		{Axis: graticule.Vertical, Offset: 2},
		{Axis: graticule.Horizontal, Offset: 2},
	}
	cur := []graticule.Line{
		{Axis: graticule.Vertical, Offset: 2},
		{Axis: graticule.Vertical, Offset: 3},
		{Axis: graticule.Horizontal, Offset: 2},
	}

	kept, total := stableOffsets(prev, cur)

	assert.Equal(t, 2, kept)
	assert.Equal(t, 3, total)
}

func TestEndpoints(t *testing.T) {
	lines := []graticule.Line{
		{From: domain.LatLng{Lat: 1, Lng: 2}, To: domain.LatLng{Lat: 3, Lng: 2}, Major: true},
		{From: domain.LatLng{Lat: 1, Lng: 3}, To: domain.LatLng{Lat: 3, Lng: 3}},
	}

	major := endpoints(lines, true)

	require.Len(t, major, 2)
	assert.Equal(t, []float64{2, 1}, major[0].Value)
	assert.Len(t, endpoints(lines, false), 2)
}

func TestRun_WritesChart(t *testing.T) {
	out := filepath.Join(t.TempDir(), "grid.html")
	var stdout bytes.Buffer

	err := run([]string{"-frames", "3", "-out", out}, &stdout)

	require.NoError(t, err)
	assert.Contains(t, stdout.String(), "frame 2:")
	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Contains(t, string(data), "Graticule")
}

func TestRun_RejectsInvalidGrid(t *testing.T) {
	err := run([]string{"-step", "0", "-out", filepath.Join(t.TempDir(), "x.html")}, &bytes.Buffer{})

	assert.ErrorIs(t, err, graticule.ErrInvalidConfiguration)
}
