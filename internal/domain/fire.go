package domain

import (
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// Fire layers as exposed by the API.
const (
	LayerCurrent  = "current"
	LayerForecast = "forecast"
)

// CellBounds holds the four corners of a fire cell as [lat, lng] pairs.
type CellBounds struct {
	TopLeft     [2]float64 `json:"top_left"`
	TopRight    [2]float64 `json:"top_right"`
	BottomLeft  [2]float64 `json:"bottom_left"`
	BottomRight [2]float64 `json:"bottom_right"`
}

// FireCell is one square of the fire model's grid.
type FireCell struct {
	Row    int        `json:"row"`
	Col    int        `json:"col"`
	Bounds CellBounds `json:"bounds"`
}

// FireState is a snapshot of the fire model: the cells burning now and the
// cells forecast to burn next.
type FireState struct {
	Current   []FireCell `json:"initial_state"`
	Forecast  []FireCell `json:"next_day_fires"`
	UpdatedAt time.Time  `json:"updated_at,omitempty"`
}

// IsEmpty reports whether the snapshot carries no cells at all.
func (s FireState) IsEmpty() bool {
	return len(s.Current) == 0 && len(s.Forecast) == 0
}

// Bounds returns the box covering every corner of both layers.
func (s FireState) Bounds() (Bounds, bool) {
	pts := CollectCorners(s.Current)
	pts = append(pts, CollectCorners(s.Forecast)...)
	return BoundsOf(pts)
}

// ParseFireState decodes the fire model payload
// ({"initial_state": [...], "next_day_fires": [...]}) and rejects cells with
// non-finite corners.
func ParseFireState(data []byte) (FireState, error) {
	var state FireState
	if err := json.Unmarshal(data, &state); err != nil {
		return FireState{}, fmt.Errorf("%w: %w", ErrInvalidFireState, err)
	}
	for _, layer := range [][]FireCell{state.Current, state.Forecast} {
		for _, c := range layer {
			for _, p := range cellCorners(c) {
				if !p.IsFinite() {
					return FireState{}, fmt.Errorf("%w: cell row=%d col=%d has a non-finite corner", ErrInvalidFireState, c.Row, c.Col)
				}
			}
		}
	}
	return state, nil
}

// ParseFireUpdate decodes a fire-state message from the update stream. The
// message timestamp stands in for UpdatedAt when the payload has none.
func ParseFireUpdate(raw RawEvent) (FireState, error) {
	state, err := ParseFireState(raw.Value)
	if err != nil {
		return FireState{}, fmt.Errorf("parse fire update: %w", err)
	}
	if state.UpdatedAt.IsZero() && !raw.Timestamp.IsZero() {
		state.UpdatedAt = raw.Timestamp.UTC()
	}
	return state, nil
}

// EnrichFireState orders both layers by (row, col), drops duplicate cells
// (the last one wins), and stamps UpdatedAt from the package clock when unset.
func EnrichFireState(state FireState) FireState {
	state.Current = dedupeCells(state.Current)
	state.Forecast = dedupeCells(state.Forecast)
	if state.UpdatedAt.IsZero() {
		state.UpdatedAt = clock.Now().UTC()
	}
	return state
}

func dedupeCells(cells []FireCell) []FireCell {
	type key struct{ row, col int }
	byKey := make(map[key]FireCell, len(cells))
	for _, c := range cells {
		byKey[key{c.Row, c.Col}] = c
	}
	out := make([]FireCell, 0, len(byKey))
	for _, c := range byKey {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Row != out[j].Row {
			return out[i].Row < out[j].Row
		}
		return out[i].Col < out[j].Col
	})
	return out
}

// CellRing returns the closed outline of a cell in clockwise order
// TL → TR → BR → BL → TL.
func CellRing(c FireCell) []LatLng {
	corners := cellCorners(c)
	return append(corners, corners[0])
}

// CollectCorners flattens the corners of every cell, four per cell.
func CollectCorners(cells []FireCell) []LatLng {
	pts := make([]LatLng, 0, len(cells)*4)
	for _, c := range cells {
		pts = append(pts, cellCorners(c)...)
	}
	return pts
}

func cellCorners(c FireCell) []LatLng {
	b := c.Bounds
	return []LatLng{
		{Lat: b.TopLeft[0], Lng: b.TopLeft[1]},
		{Lat: b.TopRight[0], Lng: b.TopRight[1]},
		{Lat: b.BottomRight[0], Lng: b.BottomRight[1]},
		{Lat: b.BottomLeft[0], Lng: b.BottomLeft[1]},
	}
}

// FireFeatures renders the requested layers as GeoJSON polygons, one feature
// per cell, tagged with layer/row/col properties. An empty layers list
// renders both.
func FireFeatures(state FireState, layers ...string) *geojson.FeatureCollection {
	if len(layers) == 0 {
		layers = []string{LayerCurrent, LayerForecast}
	}

	fc := geojson.NewFeatureCollection()
	for _, layer := range layers {
		var cells []FireCell
		switch layer {
		case LayerCurrent:
			cells = state.Current
		case LayerForecast:
			cells = state.Forecast
		default:
			continue
		}
		for _, c := range cells {
			ring := make(orb.Ring, 0, 5)
			for _, p := range CellRing(c) {
				ring = append(ring, orb.Point{p.Lng, p.Lat})
			}
			f := geojson.NewFeature(orb.Polygon{ring})
			f.Properties["layer"] = layer
			f.Properties["row"] = c.Row
			f.Properties["col"] = c.Col
			fc.Append(f)
		}
	}
	return fc
}
