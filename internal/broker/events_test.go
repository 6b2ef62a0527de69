package broker

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"catalog-service/internal/catalog"
	"catalog-service/internal/models"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memoryWriter struct {
	messages []kafka.Message
	err      error
	closed   bool
}

func (w *memoryWriter) WriteMessages(ctx context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.messages = append(w.messages, msgs...)
	return nil
}

func (w *memoryWriter) Close() error {
	w.closed = true
	return nil
}

func TestEventPublisherImplementsCatalogPublisher(t *testing.T) {
	var _ catalog.EventPublisher = (*EventPublisher)(nil)
}

func TestPublishCatalogLoaded(t *testing.T) {
	writer := &memoryWriter{}
	publisher := NewEventPublisher(NewProducerWithWriter(writer))

	event := &models.CatalogLoadedEvent{
		BaseEvent: models.BaseEvent{
			EventID:   "evt-1",
			EventType: models.EventTypeCatalogLoaded,
			Timestamp: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
		},
		SessionID:    "abc",
		Source:       models.SourceNetwork,
		ProductCount: 2,
		Categories:   []string{"men", "women"},
	}

	require.NoError(t, publisher.PublishCatalogLoaded(context.Background(), event))
	require.Len(t, writer.messages, 1)

	msg := writer.messages[0]
	assert.Equal(t, "session-abc", string(msg.Key))

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(msg.Value, &decoded))
	assert.Equal(t, "CATALOG_LOADED", decoded["event_type"])
	assert.Equal(t, "network", decoded["source"])
	assert.Equal(t, float64(2), decoded["product_count"])
}

func TestPublishCatalogLoadFailed(t *testing.T) {
	writer := &memoryWriter{}
	publisher := NewEventPublisher(NewProducerWithWriter(writer))

	err := publisher.PublishCatalogLoadFailed(context.Background(), &models.CatalogLoadFailedEvent{
		BaseEvent: models.BaseEvent{EventID: "evt-2", EventType: models.EventTypeCatalogLoadFailed},
		SessionID: "xyz",
		Reason:    "catalog request failed",
	})
	require.NoError(t, err)
	require.Len(t, writer.messages, 1)
	assert.Equal(t, "session-xyz", string(writer.messages[0].Key))
}

func TestPublishWriteError(t *testing.T) {
	writer := &memoryWriter{err: errors.New("leader not available")}
	producer := NewProducerWithWriter(writer)

	err := producer.PublishEvent(context.Background(), "k", map[string]string{"a": "b"})
	assert.ErrorContains(t, err, "leader not available")

	require.NoError(t, producer.Close())
	assert.True(t, writer.closed)
}
