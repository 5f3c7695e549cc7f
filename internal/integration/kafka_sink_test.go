//go:build integration

package integration_test

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net"
	"strconv"
	"testing"
	"time"

	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tckafka "github.com/testcontainers/testcontainers-go/modules/kafka"

	"github.com/soundinglab/inversion-etl/internal/adapter/kafka"
	"github.com/soundinglab/inversion-etl/internal/config"
	"github.com/soundinglab/inversion-etl/internal/domain"
)

const testSinkTopic = "test-inversion-events"

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// startKafka launches a single-node Kafka container and returns its broker
// address.
func startKafka(ctx context.Context, t *testing.T) string {
	t.Helper()

	container, err := tckafka.Run(ctx, "confluentinc/confluent-local:7.6.1")
	require.NoError(t, err, "start kafka container")
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	brokers, err := container.Brokers(ctx)
	require.NoError(t, err, "resolve broker address")
	require.NotEmpty(t, brokers)
	return brokers[0]
}

func createTopic(t *testing.T, broker, topic string) {
	t.Helper()

	conn, err := kafkago.Dial("tcp", broker)
	require.NoError(t, err, "dial broker")
	defer conn.Close()

	controller, err := conn.Controller()
	require.NoError(t, err, "find controller")

	controllerConn, err := kafkago.Dial("tcp", net.JoinHostPort(controller.Host, strconv.Itoa(controller.Port)))
	require.NoError(t, err, "dial controller")
	defer controllerConn.Close()

	err = controllerConn.CreateTopics(kafkago.TopicConfig{
		Topic:             topic,
		NumPartitions:     1,
		ReplicationFactor: 1,
	})
	require.NoError(t, err, "create topic")
}

// sinkMessage holds a deserialized message read from the sink topic.
type sinkMessage struct {
	Event   domain.InversionEvent
	Key     string
	Headers map[string]string
}

func readSink(ctx context.Context, t *testing.T, consumer *kafkago.Reader) sinkMessage {
	t.Helper()
	readCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	msg, err := consumer.ReadMessage(readCtx)
	require.NoError(t, err, "read from sink topic")

	headers := make(map[string]string, len(msg.Headers))
	for _, h := range msg.Headers {
		headers[h.Key] = string(h.Value)
	}
	var event domain.InversionEvent
	require.NoError(t, json.Unmarshal(msg.Value, &event), "unmarshal sink message")

	return sinkMessage{
		Event:   event,
		Key:     string(msg.Key),
		Headers: headers,
	}
}

// TestKafkaPublish verifies that the writer delivers classified events to a
// real broker with the expected key, value, and headers.
func TestKafkaPublish(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 90*time.Second)
	defer cancel()

	broker := startKafka(ctx, t)
	createTopic(t, broker, testSinkTopic)

	cfg := &config.Config{
		KafkaBrokers:   []string{broker},
		KafkaSinkTopic: testSinkTopic,
	}

	writer := kafka.NewWriter(cfg, discardLogger())
	t.Cleanup(func() { _ = writer.Close() })

	night := time.Date(2021, time.January, 15, 0, 0, 0, 0, time.UTC)
	day := time.Date(2021, time.January, 15, 12, 0, 0, 0, time.UTC)
	events := []domain.InversionEvent{
		{
			InversionSegment: domain.InversionSegment{DeltaT: 4, DeltaH: 150, BaseHgt: 50, BaseTemp: -5},
			Observed:         night,
			Ground:           true,
			Night:            true,
			ProcessedAt:      time.Now().UTC(),
		},
		{
			InversionSegment: domain.InversionSegment{DeltaT: 1.5, DeltaH: 300, BaseHgt: 450, BaseTemp: 2},
			Observed:         day,
			Day:              true,
			ProcessedAt:      time.Now().UTC(),
		},
	}

	require.NoError(t, writer.Publish(ctx, "16622", events))

	consumer := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:     []string{broker},
		Topic:       testSinkTopic,
		GroupID:     fmt.Sprintf("test-sink-%d", time.Now().UnixNano()),
		StartOffset: kafkago.FirstOffset,
	})
	t.Cleanup(func() { _ = consumer.Close() })

	first := readSink(ctx, t, consumer)
	assert.Equal(t, "16622:2021-01-15T00:00:00Z", first.Key)
	assert.Equal(t, "16622", first.Headers["station"])
	assert.Equal(t, night.Format(time.RFC3339), first.Headers["observed_at"])
	assert.Equal(t, 4.0, first.Event.DeltaT)
	assert.Equal(t, 150.0, first.Event.DeltaH)
	assert.True(t, first.Event.Ground)
	assert.True(t, first.Event.Night)
	assert.False(t, first.Event.Day)

	second := readSink(ctx, t, consumer)
	assert.Equal(t, "16622:2021-01-15T12:00:00Z", second.Key)
	assert.Equal(t, 450.0, second.Event.BaseHgt)
	assert.False(t, second.Event.Ground)
	assert.True(t, second.Event.Day)
}

// TestKafkaPublishEmpty verifies that an empty batch produces no messages.
func TestKafkaPublishEmpty(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 90*time.Second)
	defer cancel()

	broker := startKafka(ctx, t)
	createTopic(t, broker, testSinkTopic)

	cfg := &config.Config{
		KafkaBrokers:   []string{broker},
		KafkaSinkTopic: testSinkTopic,
	}

	writer := kafka.NewWriter(cfg, discardLogger())
	t.Cleanup(func() { _ = writer.Close() })

	require.NoError(t, writer.Publish(ctx, "16622", nil))

	consumer := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:     []string{broker},
		Topic:       testSinkTopic,
		GroupID:     fmt.Sprintf("test-empty-%d", time.Now().UnixNano()),
		StartOffset: kafkago.FirstOffset,
	})
	t.Cleanup(func() { _ = consumer.Close() })

	readCtx, readCancel := context.WithTimeout(ctx, 5*time.Second)
	_, err := consumer.ReadMessage(readCtx)
	readCancel()
	assert.Error(t, err, "expected no message on sink topic")
}
