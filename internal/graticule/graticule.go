// Package graticule generates the reference grid drawn over the map.
//
// Lines are placed at whole multiples of a fixed step (in projected meters)
// from an origin anchor, so the same geographic line appears at the same
// place no matter which viewport asked for it. Each Line carries that
// multiple as Offset; two viewports that overlap agree on every line with
// the same Axis and Offset.
//
// The generator is stateless: callers re-run Generate on every viewport
// change.
package graticule

import (
	"fmt"
	"math"

	"github.com/couchcryptid/wildfire-map-service/internal/domain"
)

// edgeTolerance is how far (in steps) a line may sit outside the expanded
// box and still count as on its edge. It absorbs the floating-point drift of
// a geographic round trip.
const edgeTolerance = 1e-6

// Axis identifies the orientation of a line.
type Axis uint8

const (
	// Vertical lines run north-south at a fixed projected X.
	Vertical Axis = iota
	// Horizontal lines run east-west at a fixed projected Y.
	Horizontal
)

func (a Axis) String() string {
	switch a {
	case Vertical:
		return "vertical"
	case Horizontal:
		return "horizontal"
	default:
		return fmt.Sprintf("axis(%d)", uint8(a))
	}
}

// Line is one grid line with geographic endpoints.
type Line struct {
	From   domain.LatLng
	To     domain.LatLng
	Axis   Axis
	Offset int64 // whole steps from the origin anchor
	Major  bool
}

// Config controls a single generation.
type Config struct {
	StepMeters     float64
	MajorEvery     int
	Origin         domain.LatLng
	MarginFraction float64
	MaxLineCount   int
}

// DefaultConfig returns a 1 km grid with a major line every 5 km, anchored
// at 0,0.
func DefaultConfig() Config {
	return Config{
		StepMeters:     1000,
		MajorEvery:     5,
		MarginFraction: 0.08,
		MaxLineCount:   240,
	}
}

// Validate reports ErrInvalidConfiguration for a config Generate would reject
// regardless of viewport. Generate can still reject a step too fine to index
// the viewport it is given.
func (c Config) Validate() error {
	switch {
	case !(c.StepMeters > 0) || math.IsInf(c.StepMeters, 0):
		return fmt.Errorf("%w: step must be a positive number of meters, got %g", ErrInvalidConfiguration, c.StepMeters)
	case c.MajorEvery < 1:
		return fmt.Errorf("%w: major interval must be at least 1, got %d", ErrInvalidConfiguration, c.MajorEvery)
	case !(c.MarginFraction >= 0) || math.IsInf(c.MarginFraction, 0):
		return fmt.Errorf("%w: margin must be a non-negative fraction, got %g", ErrInvalidConfiguration, c.MarginFraction)
	case c.MaxLineCount < 1:
		return fmt.Errorf("%w: line cap must be at least 1, got %d", ErrInvalidConfiguration, c.MaxLineCount)
	}
	return nil
}

// Generator produces grid lines using a fixed projection.
type Generator struct {
	proj Projection
}

// New returns a Generator. A nil projection uses WebMercator.
func New(proj Projection) *Generator {
	if proj == nil {
		proj = WebMercator{}
	}
	return &Generator{proj: proj}
}

var defaultGenerator = New(nil)

// Generate is shorthand for a Web Mercator Generator's Generate.
func Generate(bounds domain.Bounds, cfg Config) ([]Line, error) {
	return defaultGenerator.Generate(bounds, cfg)
}

// box is an axis-aligned rectangle in projected meters.
type box struct {
	minX, maxX, minY, maxY float64
}

// Generate returns the vertical lines (west to east) followed by the
// horizontal lines (south to north) covering bounds expanded by the margin,
// stopping once MaxLineCount lines have been produced. A zero-area viewport
// yields an empty slice.
func (g *Generator) Generate(bounds domain.Bounds, cfg Config) ([]Line, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	b := bounds.Normalize()
	if b.IsDegenerate() {
		return []Line{}, nil
	}

	nw, err := g.proj.Project(b.NorthWest)
	if err != nil {
		return nil, err
	}
	se, err := g.proj.Project(b.SouthEast)
	if err != nil {
		return nil, err
	}
	origin, err := g.proj.Project(cfg.Origin)
	if err != nil {
		return nil, fmt.Errorf("origin: %w", err)
	}

	bx := expand(nw, se, cfg.MarginFraction)

	xs, err := stepRange(bx.minX, bx.maxX, origin.X, cfg.StepMeters)
	if err != nil {
		return nil, err
	}
	ys, err := stepRange(bx.minY, bx.maxY, origin.Y, cfg.StepMeters)
	if err != nil {
		return nil, err
	}

	lines := make([]Line, 0, min(cfg.MaxLineCount, estimate(bx, cfg.StepMeters)))
	lines, err = g.appendAxis(lines, Vertical, bx, origin.X, xs, cfg)
	if err != nil {
		return nil, err
	}
	lines, err = g.appendAxis(lines, Horizontal, bx, origin.Y, ys, cfg)
	if err != nil {
		return nil, err
	}
	return lines, nil
}

// maxExactOffset is the largest step index a float64 counts exactly.
const maxExactOffset = 1 << 53

// span is the inclusive range of step indices covering one axis.
type span struct {
	first, last float64
}

// stepRange finds the step indices covering [lo, hi]. Indices beyond
// maxExactOffset would collapse onto each other, so such a step is rejected
// as a configuration error.
func stepRange(lo, hi, anchor, step float64) (span, error) {
	sp := span{
		first: math.Floor((lo-anchor)/step + edgeTolerance),
		last:  math.Floor((hi-anchor)/step + edgeTolerance),
	}
	if !(math.Abs(sp.first) <= maxExactOffset && math.Abs(sp.last) <= maxExactOffset) {
		return span{}, fmt.Errorf("%w: step %g m is too small to index this viewport", ErrInvalidConfiguration, step)
	}
	return sp, nil
}

func expand(nw, se Point, margin float64) box {
	dx := math.Abs(nw.X-se.X) * margin
	dy := math.Abs(nw.Y-se.Y) * margin
	return box{
		minX: math.Min(nw.X, se.X) - dx,
		maxX: math.Max(nw.X, se.X) + dx,
		minY: math.Min(nw.Y, se.Y) - dy,
		maxY: math.Max(nw.Y, se.Y) + dy,
	}
}

func estimate(bx box, step float64) int {
	n := (bx.maxX-bx.minX)/step + (bx.maxY-bx.minY)/step + 2
	if n > math.MaxInt32 {
		return math.MaxInt32
	}
	return int(n)
}

// appendAxis emits the lines of one axis. Positions are computed as
// anchor + k*step from the integer k, never by accumulation.
func (g *Generator) appendAxis(lines []Line, axis Axis, bx box, anchor float64, sp span, cfg Config) ([]Line, error) {
	step := cfg.StepMeters
	for k, n := sp.first, 0; k <= sp.last && len(lines) < cfg.MaxLineCount; k, n = k+1, n+1 {
		pos := anchor + k*step

		a, b := Point{X: pos, Y: bx.minY}, Point{X: pos, Y: bx.maxY}
		if axis == Horizontal {
			a, b = Point{X: bx.minX, Y: pos}, Point{X: bx.maxX, Y: pos}
		}

		from, err := g.proj.Unproject(a)
		if err != nil {
			return nil, err
		}
		to, err := g.proj.Unproject(b)
		if err != nil {
			return nil, err
		}

		lines = append(lines, Line{
			From:   from,
			To:     to,
			Axis:   axis,
			Offset: int64(k),
			Major:  n%cfg.MajorEvery == 0,
		})
	}
	return lines, nil
}
