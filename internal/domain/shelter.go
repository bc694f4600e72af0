package domain

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
)

const defaultShelterName = "Shelter"

// Shelter is an evacuation shelter. Distance fields are only set on results
// sorted relative to a location.
type Shelter struct {
	ID             string   `json:"id"`
	Name           string   `json:"name"`
	Address        string   `json:"address,omitempty"`
	Capacity       int      `json:"capacity"`
	Lat            float64  `json:"lat"`
	Lng            float64  `json:"lng"`
	DistanceMeters *float64 `json:"distance_m,omitempty"`
	DistanceText   string   `json:"distance_text,omitempty"`
}

// Location returns the shelter's coordinates.
func (s Shelter) Location() LatLng {
	return LatLng{Lat: s.Lat, Lng: s.Lng}
}

// NormalizeShelters decodes any of the shelter payload shapes into shelters
// with finite coordinates. Entries whose coordinates are missing or not
// numeric are dropped. IDs are unique within the result: a repeated ID gets
// a coordinate suffix.
func NormalizeShelters(data []byte) ([]Shelter, error) {
	records, err := shelterRecords(data)
	if err != nil {
		return nil, err
	}

	shelters := make([]Shelter, 0, len(records))
	seen := make(map[string]struct{}, len(records))
	for _, rec := range records {
		s, ok := normalizeShelter(rec)
		if !ok {
			continue
		}
		s.ID = uniqueID(seen, s.ID, s.Lat, s.Lng)
		seen[s.ID] = struct{}{}
		shelters = append(shelters, s)
	}
	return shelters, nil
}

func uniqueID(seen map[string]struct{}, id string, lat, lng float64) string {
	if _, dup := seen[id]; !dup {
		return id
	}
	base := id + "-" + coordHash(lat, lng)
	candidate := base
	for n := 2; ; n++ {
		if _, dup := seen[candidate]; !dup {
			return candidate
		}
		candidate = base + "-" + strconv.Itoa(n)
	}
}

func shelterRecords(data []byte) ([]map[string]any, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, nil
	}

	if trimmed[0] == '[' {
		var recs []map[string]any
		if err := json.Unmarshal(trimmed, &recs); err != nil {
			return nil, fmt.Errorf("decode shelters: %w", err)
		}
		return recs, nil
	}

	var envelope struct {
		Shelters []map[string]any `json:"shelters"`
		Data     []map[string]any `json:"data"`
	}
	if err := json.Unmarshal(trimmed, &envelope); err != nil {
		return nil, fmt.Errorf("decode shelters: %w", err)
	}
	if envelope.Shelters != nil {
		return envelope.Shelters, nil
	}
	return envelope.Data, nil
}

func normalizeShelter(rec map[string]any) (Shelter, bool) {
	lat := pickNumber(rec, "lat", "latitude")
	lng := pickNumber(rec, "lng", "lon", "longitude")
	if !isFinite(lat) || !isFinite(lng) {
		return Shelter{}, false
	}

	name := pickString(rec, "name")
	id := pickString(rec, "id")
	switch {
	case id != "":
	case name != "":
		id = name + "-" + coordHash(lat, lng)
	default:
		id = "shelter-" + coordHash(lat, lng)
	}
	if name == "" {
		name = defaultShelterName
	}

	capacity := pickNumber(rec, "capacity")
	if !isFinite(capacity) {
		capacity = 0
	}

	return Shelter{
		ID:       id,
		Name:     name,
		Address:  pickString(rec, "address"),
		Capacity: int(capacity),
		Lat:      lat,
		Lng:      lng,
	}, true
}

// coordHash derives a stable suffix from coordinates, so repeated loads of
// the same shelter keep the same ID.
func coordHash(lat, lng float64) string {
	hash := sha256.Sum256([]byte(fmt.Sprintf("%.6f|%.6f", lat, lng)))
	return hex.EncodeToString(hash[:8])
}

// pickString returns the first present key rendered as a string. Numbers are
// formatted without trailing zeros.
func pickString(rec map[string]any, keys ...string) string {
	for _, k := range keys {
		v, ok := rec[k]
		if !ok || v == nil {
			continue
		}
		switch t := v.(type) {
		case string:
			return strings.TrimSpace(t)
		case float64:
			return strconv.FormatFloat(t, 'f', -1, 64)
		case bool:
			return strconv.FormatBool(t)
		default:
			return ""
		}
	}
	return ""
}

// pickNumber returns the first present key as a number. Numeric strings are
// parsed; anything else present yields NaN. A missing key yields NaN.
func pickNumber(rec map[string]any, keys ...string) float64 {
	for _, k := range keys {
		v, ok := rec[k]
		if !ok || v == nil {
			continue
		}
		switch t := v.(type) {
		case float64:
			return t
		case string:
			f, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
			if err != nil {
				return math.NaN()
			}
			return f
		default:
			return math.NaN()
		}
	}
	return math.NaN()
}

// SortByDistance returns a copy of shelters ordered nearest first from here,
// with distance fields filled in. Ties keep their input order.
func SortByDistance(shelters []Shelter, here LatLng) []Shelter {
	out := make([]Shelter, len(shelters))
	copy(out, shelters)
	for i := range out {
		d := DistanceMeters(here, out[i].Location())
		out[i].DistanceMeters = &d
		out[i].DistanceText = FormatDistance(d)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return *out[i].DistanceMeters < *out[j].DistanceMeters
	})
	return out
}
