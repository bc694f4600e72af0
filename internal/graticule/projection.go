package graticule

import (
	"fmt"
	"math"

	"github.com/couchcryptid/wildfire-map-service/internal/domain"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/project"
)

// MaxLatitude is the latitude at which Web Mercator becomes square.
const MaxLatitude = 85.0511287798

// Point is a planar coordinate in meters.
type Point struct {
	X float64
	Y float64
}

// Projection maps geographic coordinates to a planar meters-based system
// and back.
type Projection interface {
	Project(p domain.LatLng) (Point, error)
	Unproject(p Point) (domain.LatLng, error)
}

// WebMercator is the spherical Web Mercator projection (EPSG:3857) used by
// tiled web maps.
type WebMercator struct{}

// Project rejects non-finite input and latitudes beyond ±MaxLatitude rather
// than clamping them to the pole.
func (WebMercator) Project(p domain.LatLng) (Point, error) {
	if !p.IsFinite() || math.Abs(p.Lat) > MaxLatitude {
		return Point{}, fmt.Errorf("%w: project lat=%g lng=%g", ErrProjection, p.Lat, p.Lng)
	}
	m := project.WGS84.ToMercator(orb.Point{p.Lng, p.Lat})
	return Point{X: m[0], Y: m[1]}, nil
}

// Unproject accepts any finite point. Points beyond the square map the
// latitude toward ±90°.
func (WebMercator) Unproject(p Point) (domain.LatLng, error) {
	if math.IsNaN(p.X) || math.IsNaN(p.Y) || math.IsInf(p.X, 0) || math.IsInf(p.Y, 0) {
		return domain.LatLng{}, fmt.Errorf("%w: unproject x=%g y=%g", ErrProjection, p.X, p.Y)
	}
	g := project.Mercator.ToWGS84(orb.Point{p.X, p.Y})
	return domain.LatLng{Lat: g[1], Lng: g[0]}, nil
}
