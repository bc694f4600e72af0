package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	goredis "github.com/go-redis/redis/v8"

	fireapi "github.com/couchcryptid/wildfire-map-service/internal/adapter/fireapi"
	httpadapter "github.com/couchcryptid/wildfire-map-service/internal/adapter/http"
	kafkaadapter "github.com/couchcryptid/wildfire-map-service/internal/adapter/kafka"
	"github.com/couchcryptid/wildfire-map-service/internal/adapter/mapbox"
	redisadapter "github.com/couchcryptid/wildfire-map-service/internal/adapter/redis"
	"github.com/couchcryptid/wildfire-map-service/internal/config"
	"github.com/couchcryptid/wildfire-map-service/internal/domain"
	"github.com/couchcryptid/wildfire-map-service/internal/graticule"
	"github.com/couchcryptid/wildfire-map-service/internal/observability"
	"github.com/couchcryptid/wildfire-map-service/internal/pipeline"
	"github.com/couchcryptid/wildfire-map-service/internal/service"
)

const seedRetryInterval = 5 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	style, err := graticule.LoadStyle(cfg.GridStyleFile)
	if err != nil {
		logger.Error("failed to load grid style", "error", err)
		os.Exit(1)
	}
	grid := graticule.Config{
		StepMeters:     cfg.GridStepMeters,
		MajorEvery:     cfg.GridMajorEvery,
		Origin:         domain.LatLng{Lat: cfg.GridOriginLat, Lng: cfg.GridOriginLng},
		MarginFraction: cfg.GridMargin,
		MaxLineCount:   cfg.GridMaxLines,
	}

	// Initialize geocoder (feature-flagged via MAPBOX_ENABLED / MAPBOX_TOKEN).
	var geocoder domain.Geocoder
	if cfg.MapboxEnabled {
		client := mapbox.NewClient(cfg.MapboxToken, cfg.MapboxTimeout, metrics, logger)
		geocoder = mapbox.NewCachedGeocoder(client, cfg.MapboxCacheSize, metrics)
		metrics.GeocodeEnabled.Set(1)
		logger.Info("mapbox geocoding enabled", "cache_size", cfg.MapboxCacheSize, "timeout", cfg.MapboxTimeout)
	} else {
		logger.Info("mapbox geocoding disabled")
	}

	var (
		shelters    service.ShelterIndex = service.NewMemoryShelterIndex()
		redisClient *goredis.Client
	)
	if cfg.RedisAddr != "" {
		redisClient = goredis.NewClient(&goredis.Options{Addr: cfg.RedisAddr})
		shelters = redisadapter.NewShelterIndex(redisClient, cfg.RedisKeyPrefix, cfg.ShelterSearchRadius, logger)
		logger.Info("redis shelter index enabled", "addr", cfg.RedisAddr, "radius_km", cfg.ShelterSearchRadius)
	}

	api := fireapi.NewClient(cfg.FireAPIURL, cfg.FireAPITimeout, metrics, logger)
	fires := service.NewFireStore(logger)
	svc := service.New(api, fires, shelters, service.Options{
		Geocoder:          geocoder,
		Grid:              grid,
		MaxLinesLimit:     cfg.GridLineLimit,
		Style:             style,
		SafePathCacheTTL:  cfg.SafePathCacheTTL,
		SafePathCacheSize: cfg.SafePathCacheSize,
	}, metrics, logger)
	refresher := service.NewShelterRefresher(svc, cfg.ShelterRefreshInterval, nil, logger)

	srv := httpadapter.NewServer(cfg.HTTPAddr, svc, fires, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Start HTTP server.
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	go seedFireState(ctx, svc, logger)
	go refresher.Run(ctx)

	// Start the fire-state stream.
	var (
		reader *kafkaadapter.Reader
		writer *kafkaadapter.Writer
	)
	if cfg.KafkaEnabled {
		reader = kafkaadapter.NewReader(cfg, logger)
		writer = kafkaadapter.NewWriter(cfg, logger)
		p := pipeline.New(reader, pipeline.NewTransformer(), pipeline.MultiLoader{fires, writer}, logger, metrics, cfg.BatchSize)

		go func() {
			if err := p.Run(ctx); err != nil {
				logger.Error("pipeline error", "error", err)
			}
		}()
	} else {
		logger.Info("fire-state stream disabled")
	}

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	if reader != nil {
		if err := reader.Close(); err != nil {
			logger.Error("kafka reader close error", "error", err)
		}
	}
	if writer != nil {
		if err := writer.Close(); err != nil {
			logger.Error("kafka writer close error", "error", err)
		}
	}
	if redisClient != nil {
		if err := redisClient.Close(); err != nil {
			logger.Error("redis close error", "error", err)
		}
	}

	logger.Info("shutdown complete")
}

// seedFireState retries the initial fire-state load until it succeeds or
// ctx is done. Readiness stays false until then.
func seedFireState(ctx context.Context, svc *service.Service, logger *slog.Logger) {
	for {
		err := svc.SeedFireState(ctx)
		if err == nil {
			return
		}
		logger.Warn("fire state seed failed, retrying", "error", err, "retry_in", seedRetryInterval)

		select {
		case <-ctx.Done():
			return
		case <-time.After(seedRetryInterval):
		}
	}
}
