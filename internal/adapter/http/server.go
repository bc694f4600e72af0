// Package http serves the map backend API together with the health,
// readiness and metrics endpoints.
package http

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/couchcryptid/wildfire-map-service/internal/domain"
	"github.com/couchcryptid/wildfire-map-service/internal/graticule"
	"github.com/couchcryptid/wildfire-map-service/internal/service"
)

// MapService is the application layer behind the API routes.
type MapService interface {
	GridDefaults() graticule.Config
	MaxLinesLimit() int
	Style() graticule.Style
	Graticule(bounds domain.Bounds, cfg graticule.Config) ([]graticule.Line, error)
	FireState() (domain.FireState, error)
	Shelters(ctx context.Context, here *domain.LatLng, limit int) ([]domain.Shelter, error)
	SafePath(ctx context.Context, here domain.LatLng) (service.SafePathResult, error)
}

// Server exposes the API plus /healthz, /readyz and /metrics.
type Server struct {
	httpServer *http.Server
	svc        MapService
	logger     *slog.Logger
}

// NewServer creates the HTTP server and registers every route.
func NewServer(addr string, svc MapService, ready sharedobs.ReadinessChecker, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		svc:    svc,
		logger: logger,
	}

	mux.HandleFunc("GET /healthz", sharedobs.LivenessHandler())
	mux.HandleFunc("GET /readyz", sharedobs.ReadinessHandler(ready))
	mux.Handle("GET /metrics", promhttp.Handler())

	mux.HandleFunc("GET /v1/graticule", s.handleGraticule)
	mux.HandleFunc("GET /v1/fire", s.handleFire)
	mux.HandleFunc("GET /v1/shelters", s.handleShelters)
	mux.HandleFunc("GET /v1/route/safe", s.handleSafePath)

	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}
