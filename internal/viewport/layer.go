package viewport

import (
	"errors"
	"log/slog"
	"sync"

	"github.com/couchcryptid/wildfire-map-service/internal/domain"
	"github.com/couchcryptid/wildfire-map-service/internal/graticule"
)

// Layer keeps the grid lines for the latest viewport of a Source.
type Layer struct {
	gen    *graticule.Generator
	cfg    graticule.Config
	logger *slog.Logger

	mu          sync.RWMutex
	lines       []graticule.Line
	bounds      domain.Bounds
	generations int
}

// NewLayer validates cfg up front so a misconfigured layer never attaches.
// A nil generator uses Web Mercator.
func NewLayer(gen *graticule.Generator, cfg graticule.Config, logger *slog.Logger) (*Layer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if gen == nil {
		gen = graticule.New(nil)
	}
	return &Layer{gen: gen, cfg: cfg, logger: logger}, nil
}

// Attach computes lines for the source's current viewport and again on every
// change until the returned detach func is called.
func (l *Layer) Attach(src Source) (detach func()) {
	_ = l.Recompute(src.Bounds())
	return src.Subscribe(func(b domain.Bounds) {
		_ = l.Recompute(b)
	})
}

// Recompute regenerates lines for b. On a projection error the previous
// lines are kept and the error is returned.
func (l *Layer) Recompute(b domain.Bounds) error {
	lines, err := l.gen.Generate(b, l.cfg)
	if err != nil {
		if errors.Is(err, graticule.ErrProjection) {
			l.logger.Warn("graticule projection failed, keeping previous lines",
				"north", b.North(), "west", b.West(), "south", b.South(), "east", b.East(),
				"error", err,
			)
		} else {
			l.logger.Error("graticule generation failed", "error", err)
		}
		return err
	}

	l.mu.Lock()
	l.lines = lines
	l.bounds = b
	l.generations++
	l.mu.Unlock()

	l.logger.Debug("graticule recomputed", "lines", len(lines))
	return nil
}

// Lines returns a copy of the current line set.
func (l *Layer) Lines() []graticule.Line {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]graticule.Line, len(l.lines))
	copy(out, l.lines)
	return out
}

// Bounds returns the viewport the current lines were generated for.
func (l *Layer) Bounds() domain.Bounds {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.bounds
}

// Generations counts successful recomputations.
func (l *Layer) Generations() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.generations
}

// Config returns the generation config the layer was built with.
func (l *Layer) Config() graticule.Config {
	return l.cfg
}
