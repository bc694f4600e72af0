package config

import (
	"errors"
	"fmt"
	"math"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	// Upstream fire/shelter/route API.
	FireAPIURL     string
	FireAPITimeout time.Duration

	SafePathCacheTTL       time.Duration
	SafePathCacheSize      int
	ShelterRefreshInterval time.Duration

	// Graticule defaults, overridable per request.
	GridStepMeters float64
	GridMajorEvery int
	GridMargin     float64
	GridMaxLines   int
	GridLineLimit  int // ceiling for a per-request max_lines
	GridOriginLat  float64
	GridOriginLng  float64
	GridStyleFile  string

	// Mapbox geocoding configuration.
	MapboxToken     string
	MapboxEnabled   bool
	MapboxTimeout   time.Duration
	MapboxCacheSize int

	// Fire-state stream. Disabled unless KAFKA_ENABLED=true.
	KafkaEnabled       bool
	KafkaBrokers       []string
	KafkaSourceTopic   string
	KafkaSinkTopic     string
	KafkaGroupID       string
	BatchSize          int
	BatchFlushInterval time.Duration

	// Shelter geo index. Empty RedisAddr keeps shelters in memory.
	RedisAddr           string
	RedisKeyPrefix      string
	ShelterSearchRadius float64 // km
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	batchSize, err := sharedcfg.ParseBatchSize()
	if err != nil {
		return nil, err
	}

	flushInterval, err := sharedcfg.ParseBatchFlushInterval()
	if err != nil {
		return nil, err
	}

	fireAPITimeout, err := parsePositiveDuration("FIRE_API_TIMEOUT", "5s")
	if err != nil {
		return nil, err
	}
	safePathTTL, err := parsePositiveDuration("SAFE_PATH_CACHE_TTL", "5m")
	if err != nil {
		return nil, err
	}
	refreshInterval, err := parsePositiveDuration("SHELTER_REFRESH_INTERVAL", "10m")
	if err != nil {
		return nil, err
	}
	mapboxTimeout, err := parsePositiveDuration("MAPBOX_TIMEOUT", "5s")
	if err != nil {
		return nil, err
	}

	safePathSize, err := parsePositiveInt("SAFE_PATH_CACHE_SIZE", 256)
	if err != nil {
		return nil, err
	}

	searchRadius, err := parseFloat("SHELTER_SEARCH_RADIUS_KM", 50)
	if err != nil {
		return nil, err
	}
	if !(searchRadius > 0) || math.IsInf(searchRadius, 0) {
		return nil, fmt.Errorf("invalid SHELTER_SEARCH_RADIUS_KM: must be positive, got %g", searchRadius)
	}

	grid, err := loadGrid()
	if err != nil {
		return nil, err
	}

	mapboxToken := os.Getenv("MAPBOX_TOKEN")
	mapboxEnabled := mapboxToken != ""
	if v := os.Getenv("MAPBOX_ENABLED"); v != "" {
		mapboxEnabled = v == "true"
	}

	cfg := &Config{
		HTTPAddr:        sharedcfg.EnvOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:       sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,

		FireAPIURL:     strings.TrimRight(sharedcfg.EnvOrDefault("FIRE_API_URL", "http://localhost:8000"), "/"),
		FireAPITimeout: fireAPITimeout,

		SafePathCacheTTL:       safePathTTL,
		SafePathCacheSize:      safePathSize,
		ShelterRefreshInterval: refreshInterval,

		GridStepMeters: grid.step,
		GridMajorEvery: grid.majorEvery,
		GridMargin:     grid.margin,
		GridMaxLines:   grid.maxLines,
		GridLineLimit:  grid.lineLimit,
		GridOriginLat:  grid.originLat,
		GridOriginLng:  grid.originLng,
		GridStyleFile:  os.Getenv("GRID_STYLE_FILE"),

		MapboxToken:     mapboxToken,
		MapboxEnabled:   mapboxEnabled,
		MapboxTimeout:   mapboxTimeout,
		MapboxCacheSize: parseMapboxCacheSize(),

		KafkaEnabled:       os.Getenv("KAFKA_ENABLED") == "true",
		KafkaBrokers:       sharedcfg.ParseBrokers(sharedcfg.EnvOrDefault("KAFKA_BROKERS", "localhost:9092")),
		KafkaSourceTopic:   sharedcfg.EnvOrDefault("KAFKA_SOURCE_TOPIC", "fire-state-updates"),
		KafkaSinkTopic:     sharedcfg.EnvOrDefault("KAFKA_SINK_TOPIC", "fire-cells-geojson"),
		KafkaGroupID:       sharedcfg.EnvOrDefault("KAFKA_GROUP_ID", "wildfire-map"),
		BatchSize:          batchSize,
		BatchFlushInterval: flushInterval,

		RedisAddr:           os.Getenv("REDIS_ADDR"),
		RedisKeyPrefix:      sharedcfg.EnvOrDefault("REDIS_KEY_PREFIX", "wildfire:shelters"),
		ShelterSearchRadius: searchRadius,
	}

	if u, err := url.Parse(cfg.FireAPIURL); err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid FIRE_API_URL %q", cfg.FireAPIURL)
	}
	if cfg.KafkaEnabled {
		if len(cfg.KafkaBrokers) == 0 {
			return nil, errors.New("KAFKA_BROKERS is required")
		}
		if cfg.KafkaSourceTopic == "" {
			return nil, errors.New("KAFKA_SOURCE_TOPIC is required")
		}
		if cfg.KafkaSinkTopic == "" {
			return nil, errors.New("KAFKA_SINK_TOPIC is required")
		}
	}
	if cfg.MapboxEnabled && cfg.MapboxToken == "" {
		return nil, errors.New("MAPBOX_ENABLED is true but MAPBOX_TOKEN is not set")
	}

	return cfg, nil
}

type gridSettings struct {
	step       float64
	majorEvery int
	margin     float64
	maxLines   int
	lineLimit  int
	originLat  float64
	originLng  float64
}

func loadGrid() (gridSettings, error) {
	var g gridSettings
	var err error

	if g.step, err = parseFloat("GRID_STEP_METERS", 1000); err != nil {
		return g, err
	}
	if !(g.step > 0) || math.IsInf(g.step, 0) {
		return g, fmt.Errorf("invalid GRID_STEP_METERS: must be positive, got %g", g.step)
	}

	if g.majorEvery, err = parsePositiveInt("GRID_MAJOR_EVERY", 5); err != nil {
		return g, err
	}

	if g.margin, err = parseFloat("GRID_MARGIN", 0.08); err != nil {
		return g, err
	}
	if g.margin < 0 || math.IsInf(g.margin, 0) {
		return g, fmt.Errorf("invalid GRID_MARGIN: must be non-negative, got %g", g.margin)
	}

	if g.maxLines, err = parsePositiveInt("GRID_MAX_LINES", 240); err != nil {
		return g, err
	}
	if g.lineLimit, err = parsePositiveInt("GRID_MAX_LINES_LIMIT", 10*g.maxLines); err != nil {
		return g, err
	}
	if g.lineLimit < g.maxLines {
		return g, fmt.Errorf("invalid GRID_MAX_LINES_LIMIT: must be at least GRID_MAX_LINES (%d), got %d", g.maxLines, g.lineLimit)
	}

	if g.originLat, g.originLng, err = parseLatLng("GRID_ORIGIN", "0,0"); err != nil {
		return g, err
	}
	return g, nil
}

func parsePositiveDuration(key, def string) (time.Duration, error) {
	d, err := time.ParseDuration(sharedcfg.EnvOrDefault(key, def))
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return d, nil
}

func parsePositiveInt(key string, def int) (int, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 1 {
		return 0, fmt.Errorf("invalid %s: must be a positive integer", key)
	}
	return n, nil
}

func parseFloat(key string, def float64) (float64, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(f) {
		return 0, fmt.Errorf("invalid %s: %q is not a number", key, s)
	}
	return f, nil
}

// parseLatLng reads a "lat,lng" pair.
func parseLatLng(key, def string) (float64, float64, error) {
	s := sharedcfg.EnvOrDefault(key, def)
	parts := strings.Split(s, ",")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("invalid %s: want \"lat,lng\", got %q", key, s)
	}
	lat, errLat := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	lng, errLng := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if errLat != nil || errLng != nil || !(math.Abs(lat) <= 90) || !(math.Abs(lng) <= 180) {
		return 0, 0, fmt.Errorf("invalid %s: want \"lat,lng\", got %q", key, s)
	}
	return lat, lng, nil
}

func parseMapboxCacheSize() int {
	if s := os.Getenv("MAPBOX_CACHE_SIZE"); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n > 0 {
			return n
		}
	}
	return 1000
}
