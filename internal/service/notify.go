package service

import (
	"context"
	"log/slog"

	"github.com/Eursukkul/event-registration/internal/models"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("github.com/Eursukkul/event-registration/internal/service")

// Notifier delivers notices to the broker. *rabbitmq.Publisher satisfies it.
type Notifier interface {
	Publish(ctx context.Context, routingKey string, payload any) error
}

// dispatch publishes notices in the background. Delivery is attempted once
// and a failure is only logged: a registration decision is never rolled back
// because a notice could not be sent.
func dispatch(ctx context.Context, n Notifier, routingKey string, notices ...models.Notice) {
	if n == nil || len(notices) == 0 {
		return
	}
	ctx = context.WithoutCancel(ctx)
	go func() {
		for _, notice := range notices {
			if err := n.Publish(ctx, routingKey, notice); err != nil {
				slog.Warn("notice publish failed",
					"routing_key", routingKey,
					"event_id", notice.EventID,
					"user_id", notice.UserID,
					"error", err,
				)
			}
		}
	}()
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
