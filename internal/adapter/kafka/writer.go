package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/soundinglab/inversion-etl/internal/config"
	"github.com/soundinglab/inversion-etl/internal/domain"
)

// Writer produces inversion events to a Kafka topic.
// It implements pipeline.Publisher.
type Writer struct {
	writer *kafkago.Writer
	logger *slog.Logger
}

// NewWriter creates a Kafka producer for the configured sink topic.
func NewWriter(cfg *config.Config, logger *slog.Logger) *Writer {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.KafkaBrokers...),
		Topic:        cfg.KafkaSinkTopic,
		Balancer:     &kafkago.LeastBytes{},
		RequiredAcks: kafkago.RequireAll,
	}
	return &Writer{writer: w, logger: logger}
}

// Publish serializes and publishes one profile's events to the sink topic in
// a single WriteMessages call.
func (w *Writer) Publish(ctx context.Context, station string, events []domain.InversionEvent) error {
	if len(events) == 0 {
		return nil
	}
	msgs := make([]kafkago.Message, len(events))
	for i := range events {
		msg, err := serializeToMessage(station, events[i])
		if err != nil {
			return err
		}
		msgs[i] = msg
	}
	return w.writer.WriteMessages(ctx, msgs...)
}

func (w *Writer) Close() error {
	return w.writer.Close()
}

// serializeToMessage marshals an InversionEvent into a Kafka message. The key
// combines station and observation time so events from the same sounding land
// on the same partition.
func serializeToMessage(station string, event domain.InversionEvent) (kafkago.Message, error) {
	data, err := json.Marshal(event)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize inversion event: %w", err)
	}
	key := fmt.Sprintf("%s:%s", station, event.Observed.Format(time.RFC3339))
	return kafkago.Message{
		Key:   []byte(key),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "station", Value: []byte(station)},
			{Key: "observed_at", Value: []byte(event.Observed.Format(time.RFC3339))},
		},
	}, nil
}
