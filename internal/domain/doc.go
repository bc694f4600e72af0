// Package domain models the wildfire map: geographic primitives, fire-risk
// grid cells, evacuation shelters, and safe evacuation paths.
//
// # Coordinates
//
// All coordinates are WGS-84 degrees. The upstream fire API is inconsistent
// about axis order and naming, so the conventions are fixed here:
//
//	LatLng            {lat, lng}         used everywhere inside the service
//	FireCell corners  [lat, lng] pairs   exactly as the fire model emits them
//	Safe path route   [[lat, lon], ...]  exactly as the route API emits it
//	GeoJSON output    [lng, lat]         RFC 7946 order, see FireFeatures
//
// # Fire State
//
// The fire model publishes two layers of 1 km × 1 km cells:
//
//	initial_state   cells burning now ("current" layer)
//	next_day_fires  cells forecast to burn within a day ("forecast" layer)
//
// Each cell carries its grid row/col and four corner coordinates. Cells are
// rendered as closed rings in clockwise order TL → TR → BR → BL → TL. See
// [CellRing].
//
// # Shelters
//
// The shelter endpoint has shipped three payload shapes over time (a bare
// array, {"shelters": [...]}, and {"data": [...]}) with several coordinate
// aliases (lat/latitude, lng/lon/longitude) and numbers that sometimes arrive
// as strings. [NormalizeShelters] accepts all of them and drops entries
// without usable coordinates.
//
// Distances use the haversine formula on a sphere of radius 6,371,000 m,
// which matches what browser map clients display. [FormatDistance] renders
// "181m" below one kilometre and "1.2km" above.
package domain
