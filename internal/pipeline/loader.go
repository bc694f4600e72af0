package pipeline

import (
	"context"
	"errors"

	"github.com/couchcryptid/wildfire-map-service/internal/domain"
)

// MultiLoader fans a batch out to several loaders in order. Every loader is
// attempted; the returned error joins their failures.
type MultiLoader []BatchLoader

func (m MultiLoader) LoadBatch(ctx context.Context, states []domain.FireState) error {
	var errs []error
	for _, l := range m {
		if err := l.LoadBatch(ctx, states); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
