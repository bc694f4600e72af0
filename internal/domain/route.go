package domain

import (
	"encoding/json"
	"fmt"
)

// FitPadding is the margin added around a safe path when framing it.
const FitPadding = 0.15

// PathShelter is the destination of a safe path.
type PathShelter struct {
	Lat  float64 `json:"lat"`
	Lng  float64 `json:"lng"`
	Name string  `json:"name,omitempty"`
}

// SafePath is an evacuation route from Start to Shelter.
type SafePath struct {
	Route   []LatLng     `json:"route"`
	Start   *LatLng      `json:"start,omitempty"`
	Shelter *PathShelter `json:"shelter,omitempty"`
}

// IsEmpty reports whether the path has no route to draw.
func (p SafePath) IsEmpty() bool {
	return len(p.Route) == 0
}

// FitBounds returns the box framing the route, start, and shelter, padded by
// FitPadding. The second result is false when there is nothing to frame.
func (p SafePath) FitBounds() (Bounds, bool) {
	pts := make([]LatLng, 0, len(p.Route)+2)
	pts = append(pts, p.Route...)
	if p.Start != nil {
		pts = append(pts, *p.Start)
	}
	if p.Shelter != nil {
		pts = append(pts, LatLng{Lat: p.Shelter.Lat, Lng: p.Shelter.Lng})
	}
	b, ok := BoundsOf(pts)
	if !ok {
		return Bounds{}, false
	}
	return b.Pad(FitPadding), true
}

// safePathWire mirrors the route API response:
// {"safe_path": {"route": [[lat, lon], ...], "start": [lat, lon], "shelter": {"lat", "lon", "name"}}}.
type safePathWire struct {
	SafePath struct {
		Route   [][2]float64 `json:"route"`
		Start   *[2]float64  `json:"start"`
		Shelter *struct {
			Lat  json.Number `json:"lat"`
			Lon  json.Number `json:"lon"`
			Name string      `json:"name"`
		} `json:"shelter"`
	} `json:"safe_path"`
}

// ParseSafePath decodes a route API response. Shelter coordinates may be
// numbers or numeric strings.
func ParseSafePath(data []byte) (SafePath, error) {
	var wire safePathWire
	if err := json.Unmarshal(data, &wire); err != nil {
		return SafePath{}, fmt.Errorf("decode safe path: %w", err)
	}

	sp := wire.SafePath
	path := SafePath{Route: make([]LatLng, 0, len(sp.Route))}
	for _, pt := range sp.Route {
		path.Route = append(path.Route, LatLng{Lat: pt[0], Lng: pt[1]})
	}
	if sp.Start != nil {
		path.Start = &LatLng{Lat: sp.Start[0], Lng: sp.Start[1]}
	}
	if sp.Shelter != nil {
		lat, errLat := sp.Shelter.Lat.Float64()
		lon, errLon := sp.Shelter.Lon.Float64()
		if errLat != nil || errLon != nil {
			return SafePath{}, fmt.Errorf("decode safe path: shelter coordinates %q, %q", sp.Shelter.Lat, sp.Shelter.Lon)
		}
		path.Shelter = &PathShelter{Lat: lat, Lng: lon, Name: sp.Shelter.Name}
	}
	return path, nil
}
