package ports

import (
	"context"

	"teamchat/domain/events"
)

// EventPublisher sends integration events to downstream consumers.
type EventPublisher interface {
	Publish(ctx context.Context, event events.DomainEvent) error
	PublishBatch(ctx context.Context, events []events.DomainEvent) error
}
