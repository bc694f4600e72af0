// Package fireapi is the client for the wildfire model's HTTP API: the
// current fire state, the shelter list, and safe evacuation paths.
package fireapi

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/couchcryptid/wildfire-map-service/internal/domain"
	"github.com/couchcryptid/wildfire-map-service/internal/observability"
)

// Endpoint labels used in logs and metrics.
const (
	EndpointFireInit = "fire_init"
	EndpointSafePath = "safe_path"
	EndpointShelters = "shelters"
)

const maxBodyBytes = 8 << 20

// Client calls the fire API.
type Client struct {
	baseURL    string
	httpClient *http.Client
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// NewClient creates a client for the API rooted at baseURL.
func NewClient(baseURL string, timeout time.Duration, metrics *observability.Metrics, logger *slog.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
		metrics: metrics,
		logger:  logger,
	}
}

// InitFire fetches the current fire state.
func (c *Client) InitFire(ctx context.Context) (domain.FireState, error) {
	body, err := c.get(ctx, EndpointFireInit, "/api/v1/fire/init", nil)
	if err != nil {
		return domain.FireState{}, err
	}
	state, err := domain.ParseFireState(body)
	if err != nil {
		return domain.FireState{}, fmt.Errorf("%w: %s: %w", domain.ErrUpstream, EndpointFireInit, err)
	}
	return state, nil
}

// SafePath asks the route planner for the safe path from lat/lon to the
// nearest reachable shelter. A response with an empty route is not an error;
// callers check SafePath.IsEmpty.
func (c *Client) SafePath(ctx context.Context, lat, lon float64) (domain.SafePath, error) {
	params := url.Values{
		"lat": {strconv.FormatFloat(lat, 'f', -1, 64)},
		"lon": {strconv.FormatFloat(lon, 'f', -1, 64)},
	}
	body, err := c.get(ctx, EndpointSafePath, "/api/v1/route/path", params)
	if err != nil {
		return domain.SafePath{}, err
	}
	path, err := domain.ParseSafePath(body)
	if err != nil {
		return domain.SafePath{}, fmt.Errorf("%w: %s: %w", domain.ErrUpstream, EndpointSafePath, err)
	}
	return path, nil
}

// Shelters fetches and normalizes the shelter list.
func (c *Client) Shelters(ctx context.Context) ([]domain.Shelter, error) {
	body, err := c.get(ctx, EndpointShelters, "/api/v1/shelter", nil)
	if err != nil {
		return nil, err
	}
	shelters, err := domain.NormalizeShelters(body)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", domain.ErrUpstream, EndpointShelters, err)
	}
	return shelters, nil
}

func (c *Client) get(ctx context.Context, endpoint, path string, params url.Values) (body []byte, err error) {
	start := time.Now()
	defer func() {
		c.metrics.UpstreamDuration.WithLabelValues(endpoint).Observe(time.Since(start).Seconds())
		outcome := "success"
		if err != nil {
			outcome = "error"
		}
		c.metrics.UpstreamRequests.WithLabelValues(endpoint, outcome).Inc()
	}()

	u := c.baseURL + path
	if len(params) > 0 {
		u += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %s request: %w", domain.ErrUpstream, endpoint, err)
	}
	defer resp.Body.Close()

	body, err = io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: %s read body: %w", domain.ErrUpstream, endpoint, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.logger.Warn("fire api error response",
			"endpoint", endpoint,
			"status", resp.StatusCode,
		)
		return nil, fmt.Errorf("%w: %s status %d: %s", domain.ErrUpstream, endpoint, resp.StatusCode, truncate(body, 256))
	}
	return body, nil
}

func truncate(b []byte, n int) []byte {
	if len(b) <= n {
		return b
	}
	return b[:n]
}
