package service

import (
	"context"

	"oxbow-be/internal/pkg/logger"
	"oxbow-be/pkg/events"
)

// EventPublisher is satisfied by the NATS publisher. A nil EventPublisher
// disables domain events.
type EventPublisher interface {
	Publish(ctx context.Context, event events.Event) error
}

// publishEvent is best effort: notifications are auxiliary, so a failed
// publish is logged and never fails the caller.
func publishEvent(ctx context.Context, pub EventPublisher, log logger.ILogger, module, eventType string, data map[string]interface{}) {
	if pub == nil {
		return
	}
	if err := pub.Publish(ctx, events.New(eventType, data)); err != nil {
		log.Warn(module, "Failed to publish event", map[string]interface{}{
			"type":  eventType,
			"error": err.Error(),
		})
	}
}
