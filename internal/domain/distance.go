package domain

import (
	"fmt"
	"math"
)

// earthRadiusMeters is the mean sphere radius used by browser map clients
// for distance display.
const earthRadiusMeters = 6371000.0

// DistanceMeters returns the great-circle distance between a and b.
func DistanceMeters(a, b LatLng) float64 {
	dLat := toRad(b.Lat - a.Lat)
	dLng := toRad(b.Lng - a.Lng)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRad(a.Lat))*math.Cos(toRad(b.Lat))*
			math.Sin(dLng/2)*math.Sin(dLng/2)

	return 2 * earthRadiusMeters * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
}

// FormatDistance renders meters for display: "181m" below one kilometre,
// "1.2km" from there on, and "-" for unknown distances.
func FormatDistance(meters float64) string {
	if !isFinite(meters) || meters < 0 {
		return "-"
	}
	if meters < 1000 {
		return fmt.Sprintf("%dm", int(math.Round(meters)))
	}
	return fmt.Sprintf("%.1fkm", meters/1000)
}

func toRad(deg float64) float64 {
	return deg * math.Pi / 180
}
