// Package redis stores shelters in a Redis geo set so nearest-shelter
// queries run server-side.
package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"sort"

	goredis "github.com/go-redis/redis/v8"

	"github.com/couchcryptid/wildfire-map-service/internal/domain"
)

// Redis rejects GEOADD beyond this latitude.
const maxGeoLatitude = 85.05112878

// ShelterIndex keeps shelter locations in a geo set (GEOADD) and their JSON
// payloads in a hash keyed by shelter ID.
type ShelterIndex struct {
	client   *goredis.Client
	geoKey   string
	dataKey  string
	radiusKm float64
	logger   *slog.Logger
}

// NewShelterIndex creates an index under keyPrefix. Nearest only considers
// shelters within radiusKm of the query point.
func NewShelterIndex(client *goredis.Client, keyPrefix string, radiusKm float64, logger *slog.Logger) *ShelterIndex {
	return &ShelterIndex{
		client:   client,
		geoKey:   keyPrefix + ":geo",
		dataKey:  keyPrefix + ":data",
		radiusKm: radiusKm,
		logger:   logger,
	}
}

// Replace swaps the indexed shelters for the given set atomically.
func (i *ShelterIndex) Replace(ctx context.Context, shelters []domain.Shelter) error {
	locations, fields, err := i.encode(shelters)
	if err != nil {
		return err
	}

	_, err = i.client.TxPipelined(ctx, func(pipe goredis.Pipeliner) error {
		pipe.Del(ctx, i.geoKey, i.dataKey)
		if len(locations) > 0 {
			pipe.GeoAdd(ctx, i.geoKey, locations...)
			pipe.HSet(ctx, i.dataKey, fields...)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("replace shelters: %w", err)
	}
	return nil
}

func (i *ShelterIndex) encode(shelters []domain.Shelter) ([]*goredis.GeoLocation, []interface{}, error) {
	locations := make([]*goredis.GeoLocation, 0, len(shelters))
	fields := make([]interface{}, 0, 2*len(shelters))
	for _, s := range shelters {
		if math.Abs(s.Lat) > maxGeoLatitude {
			i.logger.Warn("skipping shelter outside redis geo range", "shelter_id", s.ID, "lat", s.Lat)
			continue
		}
		s.DistanceMeters = nil
		s.DistanceText = ""
		payload, err := json.Marshal(s)
		if err != nil {
			return nil, nil, fmt.Errorf("marshal shelter %s: %w", s.ID, err)
		}
		locations = append(locations, &goredis.GeoLocation{
			Name:      s.ID,
			Latitude:  s.Lat,
			Longitude: s.Lng,
		})
		fields = append(fields, s.ID, string(payload))
	}
	return locations, fields, nil
}

// Nearest returns up to limit shelters within the search radius of here,
// nearest first, with distance fields set. A limit of zero means no limit.
func (i *ShelterIndex) Nearest(ctx context.Context, here domain.LatLng, limit int) ([]domain.Shelter, error) {
	query := &goredis.GeoRadiusQuery{
		Radius: i.radiusKm,
		Unit:   "km",
		Sort:   "ASC",
	}
	if limit > 0 {
		query.Count = limit
	}

	found, err := i.client.GeoRadius(ctx, i.geoKey, here.Lng, here.Lat, query).Result()
	if err != nil {
		return nil, fmt.Errorf("nearby shelters: %w", err)
	}
	if len(found) == 0 {
		return []domain.Shelter{}, nil
	}

	ids := make([]string, len(found))
	for n, loc := range found {
		ids[n] = loc.Name
	}
	values, err := i.client.HMGet(ctx, i.dataKey, ids...).Result()
	if err != nil {
		return nil, fmt.Errorf("load shelter payloads: %w", err)
	}

	return domain.SortByDistance(i.decode(values), here), nil
}

// All returns every indexed shelter ordered by ID.
func (i *ShelterIndex) All(ctx context.Context) ([]domain.Shelter, error) {
	payloads, err := i.client.HGetAll(ctx, i.dataKey).Result()
	if err != nil {
		return nil, fmt.Errorf("load shelters: %w", err)
	}

	values := make([]interface{}, 0, len(payloads))
	for _, p := range payloads {
		values = append(values, p)
	}
	shelters := i.decode(values)
	sort.Slice(shelters, func(a, b int) bool { return shelters[a].ID < shelters[b].ID })
	return shelters, nil
}

// CheckReadiness pings Redis.
func (i *ShelterIndex) CheckReadiness(ctx context.Context) error {
	return i.client.Ping(ctx).Err()
}

// decode turns HMGET/HGETALL values into shelters. Missing members (nil)
// and corrupt payloads are skipped.
func (i *ShelterIndex) decode(values []interface{}) []domain.Shelter {
	shelters := make([]domain.Shelter, 0, len(values))
	for _, v := range values {
		raw, ok := v.(string)
		if !ok {
			continue
		}
		var s domain.Shelter
		if err := json.Unmarshal([]byte(raw), &s); err != nil {
			i.logger.Warn("skipping corrupt shelter payload", "error", err)
			continue
		}
		shelters = append(shelters, s)
	}
	return shelters
}
