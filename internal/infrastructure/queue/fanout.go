package queue

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"github.com/example/usermanagement/internal/core/domain"
	"github.com/example/usermanagement/internal/core/ports"
)

// FanOut delivers each event to every publisher in order. A failing
// publisher does not prevent delivery to the rest.
type FanOut []ports.AccountEventPublisher

func (f FanOut) Publish(ctx context.Context, event domain.AccountEvent) error {
	var errs []error
	for _, p := range f {
		if err := p.Publish(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// LogPublisher writes events to the application log. It is the sink used
// when neither the Mongo audit trail nor a broker is configured.
type LogPublisher struct {
	Log zerolog.Logger
}

func (p LogPublisher) Publish(_ context.Context, event domain.AccountEvent) error {
	p.Log.Info().
		Str("event_type", string(event.Type)).
		Str("account_id", event.AccountID).
		Str("actor", event.ActorEmail).
		Time("occurred_at", event.OccurredAt).
		Msg("account event")
	return nil
}
