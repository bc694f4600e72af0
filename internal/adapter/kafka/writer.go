// Package kafka connects the fire-state pipeline to Kafka: a consumer-group
// reader for raw updates and a writer that publishes the rendered GeoJSON
// fire layer.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/couchcryptid/wildfire-map-service/internal/config"
	"github.com/couchcryptid/wildfire-map-service/internal/domain"
)

// MessageKey keys every sink message so all snapshots land on one
// partition in order.
const MessageKey = "fire-state"

// Writer publishes fire states as GeoJSON to the sink topic.
// It implements pipeline.BatchLoader.
type Writer struct {
	writer *kafkago.Writer
	logger *slog.Logger
}

// NewWriter creates a Kafka producer for the configured sink topic.
func NewWriter(cfg *config.Config, logger *slog.Logger) *Writer {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.KafkaBrokers...),
		Topic:        cfg.KafkaSinkTopic,
		Balancer:     &kafkago.Hash{},
		RequiredAcks: kafkago.RequireAll,
	}
	return &Writer{writer: w, logger: logger}
}

// LoadBatch renders each state and publishes the batch in a single
// WriteMessages call.
func (w *Writer) LoadBatch(ctx context.Context, states []domain.FireState) error {
	if len(states) == 0 {
		return nil
	}
	msgs := make([]kafkago.Message, len(states))
	for i := range states {
		msg, err := serializeToMessage(states[i])
		if err != nil {
			return err
		}
		msgs[i] = msg
	}
	if err := w.writer.WriteMessages(ctx, msgs...); err != nil {
		return fmt.Errorf("publish fire layer: %w", err)
	}
	w.logger.Debug("published fire layer", "messages", len(msgs))
	return nil
}

func (w *Writer) Close() error {
	return w.writer.Close()
}

// serializeToMessage renders a FireState as a GeoJSON FeatureCollection
// message.
func serializeToMessage(state domain.FireState) (kafkago.Message, error) {
	data, err := json.Marshal(domain.FireFeatures(state))
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize fire layer: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(MessageKey),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "content_type", Value: []byte("application/geo+json")},
			{Key: "updated_at", Value: []byte(state.UpdatedAt.Format(time.RFC3339))},
			{Key: "current_cells", Value: []byte(strconv.Itoa(len(state.Current)))},
			{Key: "forecast_cells", Value: []byte(strconv.Itoa(len(state.Forecast)))},
		},
	}, nil
}
