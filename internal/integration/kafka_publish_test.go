//go:build integration

package integration_test

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net"
	"strconv"
	"testing"
	"time"

	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tckafka "github.com/testcontainers/testcontainers-go/modules/kafka"

	kafkaadapter "github.com/geowatch/event-radar/internal/adapter/kafka"
	"github.com/geowatch/event-radar/internal/domain"
)

const testEventsTopic = "test-canonical-events"

// startKafka launches a single-broker Kafka container and returns its
// bootstrap address. The container is terminated when the test finishes.
func startKafka(ctx context.Context, t *testing.T) string {
	t.Helper()

	ctr, err := tckafka.Run(ctx, "confluentinc/confluent-local:7.5.0",
		tckafka.WithClusterID("event-radar-test"))
	require.NoError(t, err, "start kafka container")
	t.Cleanup(func() { _ = ctr.Terminate(context.Background()) })

	brokers, err := ctr.Brokers(ctx)
	require.NoError(t, err, "resolve kafka brokers")
	require.NotEmpty(t, brokers)
	return brokers[0]
}

// createTopic creates a topic via the cluster controller so consumers do
// not race auto-creation on first read.
func createTopic(t *testing.T, broker, topic string) {
	t.Helper()

	conn, err := kafkago.Dial("tcp", broker)
	require.NoError(t, err, "dial broker")
	defer conn.Close()

	controller, err := conn.Controller()
	require.NoError(t, err, "resolve controller")

	controllerConn, err := kafkago.Dial("tcp",
		net.JoinHostPort(controller.Host, strconv.Itoa(controller.Port)))
	require.NoError(t, err, "dial controller")
	defer controllerConn.Close()

	require.NoError(t, controllerConn.CreateTopics(kafkago.TopicConfig{
		Topic:             topic,
		NumPartitions:     1,
		ReplicationFactor: 1,
	}))
}

func discardLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

// publishedMessage holds a deserialized message read from the events topic.
type publishedMessage struct {
	Event   domain.CanonicalEvent
	Key     string
	Headers map[string]string
}

// readPublished reads a single message from the consumer and deserializes it.
func readPublished(ctx context.Context, t *testing.T, consumer *kafkago.Reader) publishedMessage {
	t.Helper()
	readCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	msg, err := consumer.ReadMessage(readCtx)
	require.NoError(t, err, "read from events topic")

	headers := make(map[string]string, len(msg.Headers))
	for _, h := range msg.Headers {
		headers[h.Key] = string(h.Value)
	}
	var event domain.CanonicalEvent
	require.NoError(t, json.Unmarshal(msg.Value, &event), "unmarshal published event")

	return publishedMessage{
		Event:   event,
		Key:     string(msg.Key),
		Headers: headers,
	}
}

// TestPublisherRoundTrip verifies that a published canonical event round-trips
// through a real broker with its key and headers intact.
func TestPublisherRoundTrip(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 90*time.Second)
	defer cancel()

	broker := startKafka(ctx, t)
	createTopic(t, broker, testEventsTopic)

	processedAt := time.Date(2026, time.August, 29, 12, 0, 0, 0, time.UTC)
	event := domain.CanonicalEvent{
		ID:          domain.NewEventID("Major earthquake strikes Tokyo", 35.6762, 139.6503),
		Title:       "Major earthquake strikes Tokyo",
		Summary:     "A magnitude 7.1 earthquake struck the Tokyo metropolitan area.",
		Lat:         35.6762,
		Lng:         139.6503,
		Timestamp:   processedAt.Add(-3 * time.Hour),
		SourceLabel: "gdelt",
		Category:    domain.CategoryDisaster,
		Intensity:   78,
		URL:         "https://example.com/tokyo-earthquake",
		Tone:        -7.5,
		SourceCount: 2,
		ProcessedAt: processedAt,
	}

	publisher := kafkaadapter.NewPublisher([]string{broker}, testEventsTopic, discardLogger())
	t.Cleanup(func() { _ = publisher.Close() })

	require.NoError(t, publisher.PublishBatch(ctx, []domain.CanonicalEvent{event}))

	consumer := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:     []string{broker},
		Topic:       testEventsTopic,
		GroupID:     fmt.Sprintf("test-events-%d", time.Now().UnixNano()),
		StartOffset: kafkago.FirstOffset,
	})
	t.Cleanup(func() { _ = consumer.Close() })

	pm := readPublished(ctx, t, consumer)

	assert.Equal(t, event.ID, pm.Key, "message key is the event ID")
	assert.Equal(t, "disaster", pm.Headers["category"])
	assert.Equal(t, "2026-08-29T12:00:00Z", pm.Headers["processed_at"])

	assert.Equal(t, event.ID, pm.Event.ID)
	assert.Equal(t, event.Title, pm.Event.Title)
	assert.Equal(t, domain.CategoryDisaster, pm.Event.Category)
	assert.Equal(t, 78, pm.Event.Intensity)
	assert.Equal(t, 2, pm.Event.SourceCount)
	assert.InDelta(t, 35.6762, pm.Event.Lat, 1e-9)
	assert.InDelta(t, 139.6503, pm.Event.Lng, 1e-9)
	assert.True(t, pm.Event.ProcessedAt.Equal(processedAt))
}

// TestPublisherLogCompactionKeying verifies that re-publishing the same event
// keeps a stable key, so compacted topics converge on one record per event.
func TestPublisherLogCompactionKeying(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 90*time.Second)
	defer cancel()

	broker := startKafka(ctx, t)
	createTopic(t, broker, testEventsTopic)

	event := domain.CanonicalEvent{
		ID:          domain.NewEventID("Ceasefire talks resume in Damascus", 33.5138, 36.2765),
		Title:       "Ceasefire talks resume in Damascus",
		Lat:         33.5138,
		Lng:         36.2765,
		Timestamp:   time.Date(2026, time.August, 29, 9, 0, 0, 0, time.UTC),
		SourceLabel: "newsapi",
		Category:    domain.CategoryConflict,
		Intensity:   41,
		URL:         "https://example.com/damascus-talks",
		SourceCount: 1,
		ProcessedAt: time.Date(2026, time.August, 29, 12, 0, 0, 0, time.UTC),
	}

	publisher := kafkaadapter.NewPublisher([]string{broker}, testEventsTopic, discardLogger())
	t.Cleanup(func() { _ = publisher.Close() })

	require.NoError(t, publisher.PublishBatch(ctx, []domain.CanonicalEvent{event}))

	// Second pass observed one more source for the same event.
	event.SourceCount = 2
	event.Intensity = 55
	require.NoError(t, publisher.PublishBatch(ctx, []domain.CanonicalEvent{event}))

	consumer := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:     []string{broker},
		Topic:       testEventsTopic,
		GroupID:     fmt.Sprintf("test-compact-%d", time.Now().UnixNano()),
		StartOffset: kafkago.FirstOffset,
	})
	t.Cleanup(func() { _ = consumer.Close() })

	first := readPublished(ctx, t, consumer)
	second := readPublished(ctx, t, consumer)

	assert.Equal(t, first.Key, second.Key, "same event keeps the same key across passes")
	assert.Equal(t, 1, first.Event.SourceCount)
	assert.Equal(t, 2, second.Event.SourceCount)
	assert.Equal(t, 55, second.Event.Intensity)
}
