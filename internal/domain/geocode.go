package domain

import (
	"context"
	"log/slog"
)

// EnrichShelterAddress fills a missing shelter address by reverse geocoding
// its coordinates. If geocoder is nil or the lookup fails, the shelter is
// returned unchanged.
func EnrichShelterAddress(ctx context.Context, shelter Shelter, geocoder Geocoder, logger *slog.Logger) Shelter {
	if geocoder == nil || shelter.Address != "" {
		return shelter
	}

	result, err := geocoder.ReverseGeocode(ctx, shelter.Lat, shelter.Lng)
	if err != nil {
		logger.Warn("reverse geocoding failed",
			"shelter_id", shelter.ID,
			"lat", shelter.Lat,
			"lng", shelter.Lng,
			"error", err,
		)
		return shelter
	}
	if result.FormattedAddress != "" {
		shelter.Address = result.FormattedAddress
	}
	return shelter
}

// EnrichShelters applies EnrichShelterAddress to every shelter, stopping
// early (and returning what it has) once ctx is done.
func EnrichShelters(ctx context.Context, shelters []Shelter, geocoder Geocoder, logger *slog.Logger) []Shelter {
	out := make([]Shelter, len(shelters))
	copy(out, shelters)
	if geocoder == nil {
		return out
	}
	for i := range out {
		if ctx.Err() != nil {
			break
		}
		out[i] = EnrichShelterAddress(ctx, out[i], geocoder, logger)
	}
	return out
}
