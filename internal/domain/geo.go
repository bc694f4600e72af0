package domain

import "math"

// LatLng is a WGS-84 latitude/longitude pair in degrees.
type LatLng struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// IsFinite reports whether both components are real numbers.
func (p LatLng) IsFinite() bool {
	return isFinite(p.Lat) && isFinite(p.Lng)
}

// Bounds is a geographic box described by its northwest and southeast corners.
type Bounds struct {
	NorthWest LatLng `json:"north_west"`
	SouthEast LatLng `json:"south_east"`
}

// NewBounds builds a Bounds from its four edges.
func NewBounds(north, west, south, east float64) Bounds {
	return Bounds{
		NorthWest: LatLng{Lat: north, Lng: west},
		SouthEast: LatLng{Lat: south, Lng: east},
	}
}

// Normalize returns the box with NorthWest holding the maximum latitude and
// minimum longitude, so callers may pass corners in either order.
func (b Bounds) Normalize() Bounds {
	return NewBounds(
		math.Max(b.NorthWest.Lat, b.SouthEast.Lat),
		math.Min(b.NorthWest.Lng, b.SouthEast.Lng),
		math.Min(b.NorthWest.Lat, b.SouthEast.Lat),
		math.Max(b.NorthWest.Lng, b.SouthEast.Lng),
	)
}

// North returns the northern edge latitude.
func (b Bounds) North() float64 { return b.NorthWest.Lat }

// West returns the western edge longitude.
func (b Bounds) West() float64 { return b.NorthWest.Lng }

// South returns the southern edge latitude.
func (b Bounds) South() float64 { return b.SouthEast.Lat }

// East returns the eastern edge longitude.
func (b Bounds) East() float64 { return b.SouthEast.Lng }

// IsDegenerate reports whether the normalized box has zero area.
func (b Bounds) IsDegenerate() bool {
	n := b.Normalize()
	return n.North() == n.South() || n.East() == n.West()
}

// Contains reports whether p lies inside or on the edge of the box.
func (b Bounds) Contains(p LatLng) bool {
	n := b.Normalize()
	return p.Lat <= n.North() && p.Lat >= n.South() && p.Lng >= n.West() && p.Lng <= n.East()
}

// Pad grows the box on every side by ratio times its height (latitude) and
// width (longitude). Pad(0.15) matches the fit-to-route framing used by the
// map client.
func (b Bounds) Pad(ratio float64) Bounds {
	n := b.Normalize()
	dLat := (n.North() - n.South()) * ratio
	dLng := (n.East() - n.West()) * ratio
	return NewBounds(n.North()+dLat, n.West()-dLng, n.South()-dLat, n.East()+dLng)
}

// BoundsOf returns the smallest box containing every finite point. The second
// result is false when no point qualifies.
func BoundsOf(points []LatLng) (Bounds, bool) {
	var (
		b     Bounds
		found bool
	)
	for _, p := range points {
		if !p.IsFinite() {
			continue
		}
		if !found {
			b = NewBounds(p.Lat, p.Lng, p.Lat, p.Lng)
			found = true
			continue
		}
		b = NewBounds(
			math.Max(b.North(), p.Lat),
			math.Min(b.West(), p.Lng),
			math.Min(b.South(), p.Lat),
			math.Max(b.East(), p.Lng),
		)
	}
	return b, found
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
