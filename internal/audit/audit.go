// Package audit records what happened to every submission: accepted
// enrollments and duplicate rejections. Events flow through a channel into a
// background worker so the request path never blocks on the sink.
package audit

import (
	"context"
	"log/slog"
	"time"
)

// Actions emitted by the enrollment service.
const (
	ActionEnrollmentCreated = "enrollment_created"
	ActionDuplicateRejected = "duplicate_rejected"
)

// Event is emitted from domain logic to capture key actions. Keep it
// transport-agnostic so sinks can fan out. The CPF never appears here, only
// the opaque person ID.
type Event struct {
	Timestamp    time.Time `json:"timestamp"`
	Action       string    `json:"action"`
	PersonID     string    `json:"person_id"`
	EnrollmentID string    `json:"enrollment_id,omitempty"`
	EventKey     string    `json:"event_key"`
	Method       string    `json:"method,omitempty"`
	Amount       float64   `json:"amount,omitempty"`
	Reason       string    `json:"reason,omitempty"`
}

// Publisher hands events to the worker. Emit drops on a full inbox rather
// than stalling a registrant's submission.
type Publisher struct {
	inbox  chan<- Event
	logger *slog.Logger
}

func NewPublisher(inbox chan<- Event, logger *slog.Logger) *Publisher {
	return &Publisher{inbox: inbox, logger: logger}
}

func (p *Publisher) Emit(ctx context.Context, event Event) {
	if p == nil {
		return
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	select {
	case p.inbox <- event:
	default:
		p.logger.WarnContext(ctx, "audit inbox full, event dropped", "action", event.Action)
	}
}
