package audit

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingSink struct {
	mu     sync.Mutex
	events []Event
	err    error
}

func (s *recordingSink) Publish(_ context.Context, event Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, event)
	return s.err
}

func (s *recordingSink) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.events)
}

func TestPublisher_EmitStampsTimestamp(t *testing.T) {
	inbox := make(chan Event, 1)
	p := NewPublisher(inbox, slog.Default())

	p.Emit(context.Background(), Event{Action: ActionEnrollmentCreated, PersonID: "p1"})

	event := <-inbox
	assert.Equal(t, ActionEnrollmentCreated, event.Action)
	assert.False(t, event.Timestamp.IsZero())
}

func TestPublisher_DropsOnFullInbox(t *testing.T) {
	inbox := make(chan Event, 1)
	p := NewPublisher(inbox, slog.Default())

	p.Emit(context.Background(), Event{Action: ActionEnrollmentCreated})
	// The inbox is full; this must return immediately instead of blocking.
	done := make(chan struct{})
	go func() {
		p.Emit(context.Background(), Event{Action: ActionDuplicateRejected})
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Emit blocked on a full inbox")
	}
	assert.Len(t, inbox, 1)
}

func TestPublisher_NilIsNoOp(t *testing.T) {
	var p *Publisher
	p.Emit(context.Background(), Event{Action: ActionEnrollmentCreated})
}

func TestWorker_ForwardsToSink(t *testing.T) {
	inbox := make(chan Event, 4)
	sink := &recordingSink{}
	w := NewWorker(inbox, sink, slog.Default())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		_ = w.Run(ctx)
		close(done)
	}()

	inbox <- Event{Action: ActionEnrollmentCreated, PersonID: "p1"}
	inbox <- Event{Action: ActionDuplicateRejected, PersonID: "p1"}

	require.Eventually(t, func() bool { return sink.count() == 2 }, 2*time.Second, 10*time.Millisecond)
	cancel()
	<-done

	assert.Equal(t, ActionEnrollmentCreated, sink.events[0].Action)
	assert.Equal(t, ActionDuplicateRejected, sink.events[1].Action)
}

func TestWorker_SinkFailureDoesNotStopConsumption(t *testing.T) {
	inbox := make(chan Event, 4)
	sink := &recordingSink{err: errors.New("broker down")}
	w := NewWorker(inbox, sink, slog.Default())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = w.Run(ctx) }()

	inbox <- Event{Action: ActionEnrollmentCreated}
	inbox <- Event{Action: ActionEnrollmentCreated}

	require.Eventually(t, func() bool { return sink.count() == 2 }, 2*time.Second, 10*time.Millisecond)
}

func TestWorker_StopsOnContextCancel(t *testing.T) {
	inbox := make(chan Event)
	w := NewWorker(inbox, nil, slog.Default())

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- w.Run(ctx) }()

	cancel()
	select {
	case err := <-errCh:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("worker did not stop")
	}
}
