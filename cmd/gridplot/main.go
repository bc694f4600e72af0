// Command gridplot pans a viewport across the map with a graticule layer
// attached, reports how many grid lines stay put between frames, and renders
// the last frame to an HTML map.
//
// Usage:
//
//	go run ./cmd/gridplot \
//	  -north 36.05 -west 129.30 -south 36.00 -east 129.36 \
//	  -pan-lat 0.004 -pan-lng 0.006 -frames 6 -out graticule.html
package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/go-echarts/go-echarts/v2/types"

	"github.com/couchcryptid/wildfire-map-service/internal/domain"
	"github.com/couchcryptid/wildfire-map-service/internal/graticule"
	"github.com/couchcryptid/wildfire-map-service/internal/viewport"
)

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		log.Fatal(err)
	}
}

func run(args []string, out io.Writer) error {
	fs := flag.NewFlagSet("gridplot", flag.ContinueOnError)
	north := fs.Float64("north", 36.05, "north edge of the first frame")
	west := fs.Float64("west", 129.30, "west edge of the first frame")
	south := fs.Float64("south", 36.00, "south edge of the first frame")
	east := fs.Float64("east", 129.36, "east edge of the first frame")
	step := fs.Float64("step", 1000, "grid step in meters")
	major := fs.Int("major", 5, "major line interval")
	margin := fs.Float64("margin", 0.08, "margin fraction around the viewport")
	maxLines := fs.Int("max-lines", 240, "line cap per frame")
	panLat := fs.Float64("pan-lat", 0.004, "latitude shift per frame")
	panLng := fs.Float64("pan-lng", 0.006, "longitude shift per frame")
	frames := fs.Int("frames", 6, "number of frames, including the first")
	outPath := fs.String("out", "graticule.html", "output HTML file")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *frames < 1 {
		return fmt.Errorf("frames must be at least 1, got %d", *frames)
	}

	cfg := graticule.Config{
		StepMeters:     *step,
		MajorEvery:     *major,
		MarginFraction: *margin,
		MaxLineCount:   *maxLines,
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))

	layer, err := viewport.NewLayer(nil, cfg, logger)
	if err != nil {
		return err
	}

	seq := panSequence(domain.NewBounds(*north, *west, *south, *east), *panLat, *panLng, *frames)
	emitter := viewport.NewEmitter(seq[0])
	detach := layer.Attach(emitter)
	defer detach()

	prev := layer.Lines()
	fmt.Fprintf(out, "frame 0: %d lines\n", len(prev))
	for i, b := range seq[1:] {
		emitter.Move(b)
		cur := layer.Lines()
		kept, total := stableOffsets(prev, cur)
		fmt.Fprintf(out, "frame %d: %d lines, %d/%d previous lines kept their offset\n", i+1, len(cur), kept, total)
		prev = cur
	}

	f, err := os.Create(*outPath)
	if err != nil {
		return fmt.Errorf("create %s: %w", *outPath, err)
	}
	defer f.Close()

	if err := renderChart(f, prev); err != nil {
		return fmt.Errorf("render chart: %w", err)
	}
	fmt.Fprintf(out, "graticule map generated: %s\n", *outPath)
	return nil
}

// panSequence returns frames viewports, each shifted by (dLat, dLng) from
// the one before.
func panSequence(start domain.Bounds, dLat, dLng float64, frames int) []domain.Bounds {
	seq := make([]domain.Bounds, frames)
	for i := range seq {
		shift := float64(i)
		seq[i] = domain.NewBounds(
			start.North()+shift*dLat,
			start.West()+shift*dLng,
			start.South()+shift*dLat,
			start.East()+shift*dLng,
		)
	}
	return seq
}

type lineKey struct {
	axis   graticule.Axis
	offset int64
}

// stableOffsets counts the lines of prev whose axis and offset also appear
// in cur.
func stableOffsets(prev, cur []graticule.Line) (kept, total int) {
	seen := make(map[lineKey]bool, len(cur))
	for _, l := range cur {
		seen[lineKey{l.Axis, l.Offset}] = true
	}
	for _, l := range prev {
		if seen[lineKey{l.Axis, l.Offset}] {
			kept++
		}
	}
	return kept, len(prev)
}

// endpoints returns the [lng, lat] endpoints of the major or minor lines.
func endpoints(lines []graticule.Line, major bool) []opts.GeoData {
	var pts []opts.GeoData
	for _, l := range lines {
		if l.Major != major {
			continue
		}
		name := fmt.Sprintf("%s %d", l.Axis, l.Offset)
		pts = append(pts,
			opts.GeoData{Name: name, Value: []float64{l.From.Lng, l.From.Lat}},
			opts.GeoData{Name: name, Value: []float64{l.To.Lng, l.To.Lat}},
		)
	}
	return pts
}

func renderChart(w io.Writer, lines []graticule.Line) error {
	geo := charts.NewGeo()
	geo.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			PageTitle: "Graticule",
			Width:     "900px",
			Height:    "700px",
		}),
		charts.WithTitleOpts(opts.Title{
			Title:    "Graticule line endpoints",
			Subtitle: fmt.Sprintf("%d lines", len(lines)),
		}),
		charts.WithGeoComponentOpts(opts.GeoComponent{
			Map:    "world",
			Silent: opts.Bool(true),
		}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true)}),
	)

	geo.AddSeries("major", types.ChartScatter, endpoints(lines, true),
		charts.WithItemStyleOpts(opts.ItemStyle{Color: graticule.DefaultStyle().Major.Color}),
	)
	geo.AddSeries("minor", types.ChartScatter, endpoints(lines, false),
		charts.WithItemStyleOpts(opts.ItemStyle{Color: graticule.DefaultStyle().Minor.Color}),
	)

	return geo.Render(w)
}
