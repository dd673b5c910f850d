package audit

import (
	"context"
	"log/slog"
)

// Sink receives fully-formed events. Implementations: Kafka, or none (the
// worker always logs regardless).
type Sink interface {
	Publish(ctx context.Context, event Event) error
}

// Worker consumes audit events from the inbox, logs them, and forwards them
// to the sink when one is configured. Sink failures are logged and skipped;
// the enrollment row itself is the durable record.
type Worker struct {
	inbox  <-chan Event
	sink   Sink
	logger *slog.Logger
}

func NewWorker(inbox <-chan Event, sink Sink, logger *slog.Logger) *Worker {
	return &Worker{inbox: inbox, sink: sink, logger: logger}
}

func (w *Worker) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event := <-w.inbox:
			w.logger.InfoContext(ctx, "audit",
				"action", event.Action,
				"person_id", event.PersonID,
				"enrollment_id", event.EnrollmentID,
				"event_key", event.EventKey,
				"reason", event.Reason,
			)
			if w.sink == nil {
				continue
			}
			if err := w.sink.Publish(ctx, event); err != nil {
				w.logger.ErrorContext(ctx, "audit sink publish failed",
					"action", event.Action,
					"error", err.Error(),
				)
			}
		}
	}
}
