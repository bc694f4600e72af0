package graticule

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// FeatureCollection renders lines as GeoJSON LineStrings in [lng, lat] order.
// Each feature carries its classification and the style to draw it with.
func FeatureCollection(lines []Line, style Style) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	for _, l := range lines {
		f := geojson.NewFeature(orb.LineString{
			{l.From.Lng, l.From.Lat},
			{l.To.Lng, l.To.Lat},
		})

		cs := style.For(l)
		f.Properties["major"] = l.Major
		f.Properties["axis"] = l.Axis.String()
		f.Properties["offset"] = l.Offset
		f.Properties["color"] = cs.Color
		f.Properties["weight"] = cs.Weight
		f.Properties["opacity"] = style.Opacity
		if cs.Dash != "" {
			f.Properties["dash"] = cs.Dash
		}

		fc.Append(f)
	}
	return fc
}
