package ports

import (
	"context"

	"github.com/example/usermanagement/internal/core/domain"
)

// AccountEventPublisher delivers a lifecycle event to a downstream sink.
type AccountEventPublisher interface {
	Publish(ctx context.Context, event domain.AccountEvent) error
}

// AccountEventSink accepts events for asynchronous delivery. Enqueue must
// not wait on the downstream publisher.
type AccountEventSink interface {
	Enqueue(event domain.AccountEvent)
}
