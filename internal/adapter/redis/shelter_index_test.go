package redis

import (
	"encoding/json"
	"io"
	"log/slog"
	"testing"

	"github.com/couchcryptid/wildfire-map-service/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testIndex() *ShelterIndex {
	return NewShelterIndex(nil, "shelters", 50, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestNewShelterIndex_Keys(t *testing.T) {
	idx := testIndex()
	assert.Equal(t, "shelters:geo", idx.geoKey)
	assert.Equal(t, "shelters:data", idx.dataKey)
}

func TestShelterIndex_Encode(t *testing.T) {
	d := 120.0
	shelters := []domain.Shelter{
		{ID: "a", Name: "Gym", Lat: 36.03, Lng: 129.35, DistanceMeters: &d, DistanceText: "120m"},
		{ID: "polar", Name: "Station", Lat: 89.9, Lng: 0},
	}

	locations, fields, err := testIndex().encode(shelters)
	require.NoError(t, err)

	require.Len(t, locations, 1, "latitudes beyond the geo range are skipped")
	assert.Equal(t, "a", locations[0].Name)
	assert.Equal(t, 36.03, locations[0].Latitude)
	assert.Equal(t, 129.35, locations[0].Longitude)

	require.Len(t, fields, 2)
	assert.Equal(t, "a", fields[0])
	var stored domain.Shelter
	require.NoError(t, json.Unmarshal([]byte(fields[1].(string)), &stored))
	assert.Equal(t, "Gym", stored.Name)
	assert.Nil(t, stored.DistanceMeters, "query-relative distance is not persisted")
	assert.Empty(t, stored.DistanceText)
}

func TestShelterIndex_Decode(t *testing.T) {
	values := []interface{}{
		`{"id":"a","name":"Gym","lat":36.03,"lng":129.35,"capacity":200}`,
		nil,
		`{corrupt`,
		`{"id":"b","name":"Hall","lat":36.04,"lng":129.36,"capacity":0}`,
	}

	shelters := testIndex().decode(values)

	require.Len(t, shelters, 2)
	assert.Equal(t, domain.Shelter{ID: "a", Name: "Gym", Lat: 36.03, Lng: 129.35, Capacity: 200}, shelters[0])
	assert.Equal(t, "b", shelters[1].ID)
}
