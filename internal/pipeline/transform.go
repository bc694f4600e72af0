package pipeline

import (
	"context"

	"github.com/couchcryptid/wildfire-map-service/internal/domain"
)

// FireTransformer parses fire-state update messages.
type FireTransformer struct{}

// NewTransformer creates a FireTransformer.
func NewTransformer() *FireTransformer {
	return &FireTransformer{}
}

// Transform decodes the message, stamps it with the message time and
// removes duplicate cells.
func (t *FireTransformer) Transform(_ context.Context, raw domain.RawEvent) (domain.FireState, error) {
	state, err := domain.ParseFireUpdate(raw)
	if err != nil {
		return domain.FireState{}, err
	}
	return domain.EnrichFireState(state), nil
}
