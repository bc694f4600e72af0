// Package service is the map backend's application layer. It combines the
// graticule generator, the fire-state store, the shelter index and the
// upstream route API behind the operations the HTTP adapter serves.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/couchcryptid/wildfire-map-service/internal/cache"
	"github.com/couchcryptid/wildfire-map-service/internal/domain"
	"github.com/couchcryptid/wildfire-map-service/internal/graticule"
	"github.com/couchcryptid/wildfire-map-service/internal/observability"
)

// FireAPI is the upstream fire, shelter and route API.
type FireAPI interface {
	InitFire(ctx context.Context) (domain.FireState, error)
	SafePath(ctx context.Context, lat, lon float64) (domain.SafePath, error)
	Shelters(ctx context.Context) ([]domain.Shelter, error)
}

// Options carries the optional collaborators and tunables of a Service.
type Options struct {
	Geocoder          domain.Geocoder // nil disables address enrichment
	Grid              graticule.Config
	MaxLinesLimit     int // ceiling for per-request line caps; 0 means 10x Grid.MaxLineCount
	Style             graticule.Style
	SafePathCacheTTL  time.Duration
	SafePathCacheSize int
	Clock             clockwork.Clock
}

// SafePathResult is a safe path plus the box that frames it.
type SafePathResult struct {
	domain.SafePath
	Bounds domain.Bounds `json:"bounds"`
	Cached bool          `json:"cached"`
}

// Service implements the map backend operations.
type Service struct {
	api      FireAPI
	fires    *FireStore
	shelters ShelterIndex
	geocoder domain.Geocoder
	routes   *cache.LRU[string, domain.SafePath]
	gen      *graticule.Generator
	grid     graticule.Config
	maxLines int
	style    graticule.Style
	metrics  *observability.Metrics
	logger   *slog.Logger
}

// New creates a Service.
func New(api FireAPI, fires *FireStore, shelters ShelterIndex, opts Options, metrics *observability.Metrics, logger *slog.Logger) *Service {
	maxLines := opts.MaxLinesLimit
	if maxLines <= 0 {
		maxLines = 10 * opts.Grid.MaxLineCount
	}
	return &Service{
		api:      api,
		fires:    fires,
		shelters: shelters,
		geocoder: opts.Geocoder,
		routes:   cache.New[string, domain.SafePath](opts.SafePathCacheSize, opts.SafePathCacheTTL, opts.Clock),
		gen:      graticule.New(nil),
		grid:     opts.Grid,
		maxLines: maxLines,
		style:    opts.Style,
		metrics:  metrics,
		logger:   logger,
	}
}

// GridDefaults returns the configured graticule settings.
func (s *Service) GridDefaults() graticule.Config { return s.grid }

// MaxLinesLimit is the largest line cap a request may ask for.
func (s *Service) MaxLinesLimit() int { return s.maxLines }

// Style returns the configured graticule style.
func (s *Service) Style() graticule.Style { return s.style }

// Graticule generates the grid for a viewport.
func (s *Service) Graticule(bounds domain.Bounds, cfg graticule.Config) ([]graticule.Line, error) {
	start := time.Now()
	lines, err := s.gen.Generate(bounds, cfg)
	s.metrics.GraticuleDuration.Observe(time.Since(start).Seconds())

	switch {
	case errors.Is(err, graticule.ErrInvalidConfiguration):
		s.metrics.GraticuleRequests.WithLabelValues("invalid").Inc()
		return nil, err
	case errors.Is(err, graticule.ErrProjection):
		s.metrics.GraticuleRequests.WithLabelValues("projection").Inc()
		return nil, err
	case err != nil:
		return nil, err
	case len(lines) == 0:
		s.metrics.GraticuleRequests.WithLabelValues("empty").Inc()
	default:
		s.metrics.GraticuleRequests.WithLabelValues("ok").Inc()
	}
	s.metrics.GraticuleLines.Observe(float64(len(lines)))
	return lines, nil
}

// SeedFireState loads the current fire state from upstream into the store.
func (s *Service) SeedFireState(ctx context.Context) error {
	state, err := s.api.InitFire(ctx)
	if err != nil {
		return fmt.Errorf("seed fire state: %w", err)
	}
	state = domain.EnrichFireState(state)
	s.fires.Set(state)
	s.logger.Info("fire state seeded",
		"current_cells", len(state.Current),
		"forecast_cells", len(state.Forecast),
	)
	return nil
}

// FireState returns the latest fire state, or ErrNotFound before one has
// been loaded.
func (s *Service) FireState() (domain.FireState, error) {
	state, ok := s.fires.Load()
	if !ok {
		return domain.FireState{}, fmt.Errorf("fire state: %w", domain.ErrNotFound)
	}
	return state, nil
}

// RefreshShelters reloads the shelter list from upstream, fills in missing
// addresses and replaces the index. It returns the number indexed.
func (s *Service) RefreshShelters(ctx context.Context) (int, error) {
	shelters, err := s.api.Shelters(ctx)
	if err != nil {
		return 0, fmt.Errorf("fetch shelters: %w", err)
	}
	shelters = domain.EnrichShelters(ctx, shelters, s.geocoder, s.logger)

	if err := s.shelters.Replace(ctx, shelters); err != nil {
		return 0, fmt.Errorf("index shelters: %w", err)
	}
	s.metrics.SheltersIndexed.Set(float64(len(shelters)))
	return len(shelters), nil
}

// Shelters lists shelters. With a location they come nearest first with
// distances; otherwise ordered by ID. A limit of zero means no limit.
func (s *Service) Shelters(ctx context.Context, here *domain.LatLng, limit int) ([]domain.Shelter, error) {
	if limit < 0 {
		return nil, fmt.Errorf("%w: limit must not be negative", domain.ErrInvalidArgument)
	}
	if here != nil {
		if !here.IsFinite() {
			return nil, fmt.Errorf("%w: location must be finite", domain.ErrInvalidArgument)
		}
		return s.shelters.Nearest(ctx, *here, limit)
	}

	all, err := s.shelters.All(ctx)
	if err != nil {
		return nil, err
	}
	if limit > 0 && len(all) > limit {
		all = all[:limit]
	}
	return all, nil
}

// SafePath returns the evacuation route from here. Results are cached per
// start location (rounded to about 11 m) until the TTL passes; empty routes
// are never cached and come back as ErrNotFound.
func (s *Service) SafePath(ctx context.Context, here domain.LatLng) (SafePathResult, error) {
	if !here.IsFinite() {
		return SafePathResult{}, fmt.Errorf("%w: location must be finite", domain.ErrInvalidArgument)
	}

	key := routeKey(here)
	if path, ok := s.routes.Get(key); ok {
		s.metrics.CacheLookups.WithLabelValues("safe_path", "hit").Inc()
		return framed(path, true), nil
	}
	s.metrics.CacheLookups.WithLabelValues("safe_path", "miss").Inc()

	path, err := s.api.SafePath(ctx, here.Lat, here.Lng)
	if err != nil {
		return SafePathResult{}, err
	}
	if path.IsEmpty() {
		return SafePathResult{}, fmt.Errorf("safe path from %s: %w", key, domain.ErrNotFound)
	}

	s.routes.Put(key, path)
	return framed(path, false), nil
}

func routeKey(p domain.LatLng) string {
	return fmt.Sprintf("%.4f,%.4f", p.Lat, p.Lng)
}

func framed(path domain.SafePath, cached bool) SafePathResult {
	b, _ := path.FitBounds()
	return SafePathResult{SafePath: path, Bounds: b, Cached: cached}
}
