package broker

import (
	"context"
	"fmt"

	"catalog-service/internal/models"
)

// EventPublisher publishes catalog lifecycle events keyed by session
type EventPublisher struct {
	producer *Producer
}

// NewEventPublisher creates a new event publisher
func NewEventPublisher(producer *Producer) *EventPublisher {
	return &EventPublisher{producer: producer}
}

// PublishCatalogLoaded publishes CatalogLoaded event
func (ep *EventPublisher) PublishCatalogLoaded(ctx context.Context, event *models.CatalogLoadedEvent) error {
	return ep.producer.PublishEvent(ctx, sessionKey(event.SessionID), event)
}

// PublishCatalogLoadFailed publishes CatalogLoadFailed event
func (ep *EventPublisher) PublishCatalogLoadFailed(ctx context.Context, event *models.CatalogLoadFailedEvent) error {
	return ep.producer.PublishEvent(ctx, sessionKey(event.SessionID), event)
}

func sessionKey(sessionID string) string {
	return fmt.Sprintf("session-%s", sessionID)
}
