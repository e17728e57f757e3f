package interfaces

import "context"

// EventPublisher pushes committed-entry events to an external broker. It is
// best-effort and never part of the write path.
type EventPublisher interface {
	Publish(ctx context.Context, event any) error
	Close() error
}
