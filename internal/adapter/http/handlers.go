package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"strconv"

	"github.com/couchcryptid/wildfire-map-service/internal/domain"
	"github.com/couchcryptid/wildfire-map-service/internal/graticule"
)

const contentTypeGeoJSON = "application/geo+json"

func (s *Server) handleGraticule(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	bounds, err := parseBounds(q)
	if err != nil {
		s.writeError(w, err)
		return
	}
	cfg, err := gridOverrides(q, s.svc.GridDefaults(), s.svc.MaxLinesLimit())
	if err != nil {
		s.writeError(w, err)
		return
	}

	lines, err := s.svc.Graticule(bounds, cfg)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSONType(w, http.StatusOK, contentTypeGeoJSON, graticule.FeatureCollection(lines, s.svc.Style()))
}

func (s *Server) handleFire(w http.ResponseWriter, r *http.Request) {
	var layers []string
	switch layer := r.URL.Query().Get("layer"); layer {
	case "":
	case domain.LayerCurrent, domain.LayerForecast:
		layers = []string{layer}
	default:
		s.writeError(w, fmt.Errorf("%w: unknown layer %q", domain.ErrInvalidArgument, layer))
		return
	}

	state, err := s.svc.FireState()
	if err != nil {
		s.writeError(w, err)
		return
	}

	w.Header().Set("Last-Modified", state.UpdatedAt.UTC().Format(http.TimeFormat))
	writeJSONType(w, http.StatusOK, contentTypeGeoJSON, domain.FireFeatures(state, layers...))
}

type sheltersResponse struct {
	Shelters []domain.Shelter `json:"shelters"`
	Count    int              `json:"count"`
}

func (s *Server) handleShelters(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	var here *domain.LatLng
	if q.Has("lat") || q.Has("lng") {
		p, err := parseLocation(q)
		if err != nil {
			s.writeError(w, err)
			return
		}
		here = &p
	}
	limit := 0
	if q.Has("limit") {
		n, err := strconv.Atoi(q.Get("limit"))
		if err != nil || n < 0 {
			s.writeError(w, fmt.Errorf("%w: limit must be a non-negative integer", domain.ErrInvalidArgument))
			return
		}
		limit = n
	}

	shelters, err := s.svc.Shelters(r.Context(), here, limit)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sheltersResponse{Shelters: shelters, Count: len(shelters)})
}

func (s *Server) handleSafePath(w http.ResponseWriter, r *http.Request) {
	here, err := parseLocation(r.URL.Query())
	if err != nil {
		s.writeError(w, err)
		return
	}

	result, err := s.svc.SafePath(r.Context(), here)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func parseBounds(q url.Values) (domain.Bounds, error) {
	var edges [4]float64
	for i, key := range []string{"north", "west", "south", "east"} {
		v, err := requiredFloat(q, key)
		if err != nil {
			return domain.Bounds{}, err
		}
		edges[i] = v
	}
	return domain.NewBounds(edges[0], edges[1], edges[2], edges[3]), nil
}

func parseLocation(q url.Values) (domain.LatLng, error) {
	lat, err := requiredFloat(q, "lat")
	if err != nil {
		return domain.LatLng{}, err
	}
	lng, err := requiredFloat(q, "lng")
	if err != nil {
		return domain.LatLng{}, err
	}
	if math.Abs(lat) > 90 || math.Abs(lng) > 180 {
		return domain.LatLng{}, fmt.Errorf("%w: location %g,%g out of range", domain.ErrInvalidArgument, lat, lng)
	}
	return domain.LatLng{Lat: lat, Lng: lng}, nil
}

// gridOverrides applies the optional per-request grid parameters on top of
// the configured defaults. Range checks are left to the generator.
// gridOverrides applies per-request settings on top of cfg. A line cap above
// maxLines is rejected so a single request cannot ask for unbounded work.
func gridOverrides(q url.Values, cfg graticule.Config, maxLines int) (graticule.Config, error) {
	var err error
	if q.Has("step") {
		if cfg.StepMeters, err = requiredFloat(q, "step"); err != nil {
			return cfg, err
		}
	}
	if q.Has("margin") {
		if cfg.MarginFraction, err = requiredFloat(q, "margin"); err != nil {
			return cfg, err
		}
	}
	if q.Has("origin_lat") {
		if cfg.Origin.Lat, err = requiredFloat(q, "origin_lat"); err != nil {
			return cfg, err
		}
	}
	if q.Has("origin_lng") {
		if cfg.Origin.Lng, err = requiredFloat(q, "origin_lng"); err != nil {
			return cfg, err
		}
	}
	if q.Has("major_every") {
		if cfg.MajorEvery, err = requiredInt(q, "major_every"); err != nil {
			return cfg, err
		}
	}
	if q.Has("max_lines") {
		if cfg.MaxLineCount, err = requiredInt(q, "max_lines"); err != nil {
			return cfg, err
		}
		if cfg.MaxLineCount > maxLines {
			return cfg, fmt.Errorf("%w: max_lines must be at most %d, got %d", domain.ErrInvalidArgument, maxLines, cfg.MaxLineCount)
		}
	}
	return cfg, nil
}

func requiredFloat(q url.Values, key string) (float64, error) {
	raw := q.Get(key)
	if raw == "" {
		return 0, fmt.Errorf("%w: missing %s", domain.ErrInvalidArgument, key)
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("%w: %s must be a finite number, got %q", domain.ErrInvalidArgument, key, raw)
	}
	return v, nil
}

func requiredInt(q url.Values, key string) (int, error) {
	raw := q.Get(key)
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: %s must be an integer, got %q", domain.ErrInvalidArgument, key, raw)
	}
	return v, nil
}

// statusFor maps service errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrInvalidArgument), errors.Is(err, graticule.ErrInvalidConfiguration):
		return http.StatusBadRequest
	case errors.Is(err, graticule.ErrProjection):
		return http.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrUpstream):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "status", status, "error", err)
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	writeJSONType(w, status, "application/json", v)
}

func writeJSONType(w http.ResponseWriter, status int, contentType string, v any) {
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck // client went away
}
