// Package events publishes domain events after successful writes. Publishing
// is best effort: a failed publish is logged and never fails the write that
// produced it.
package events

import (
	"context"
	"sync"
	"time"

	"dancebook/pkg/logger"

	"github.com/google/uuid"
)

const (
	EnrolmentCreated  = "enrolment.created"
	AccountRegistered = "account.registered"
	AccountDeleted    = "account.deleted"
	CourseAdded       = "course.added"
	CourseDeleted     = "course.deleted"
	ClassAdded        = "class.added"
	ClassUpdated      = "class.updated"
	ClassDeleted      = "class.deleted"
)

type Event struct {
	ID         string    `json:"id"`
	Type       string    `json:"type"`
	Subject    string    `json:"subject"`
	OccurredAt time.Time `json:"occurred_at"`
	Data       any       `json:"data,omitempty"`
}

// New stamps an event about subject, the id of the entity it concerns.
func New(eventType, subject string, data any) Event {
	return Event{
		ID:         uuid.NewString(),
		Type:       eventType,
		Subject:    subject,
		OccurredAt: time.Now().UTC(),
		Data:       data,
	}
}

type Publisher interface {
	Publish(ctx context.Context, event Event) error
	Close() error
}

// Emit publishes event and logs, rather than returns, any failure.
func Emit(ctx context.Context, p Publisher, log *logger.Logger, event Event) {
	if p == nil {
		return
	}
	if err := p.Publish(ctx, event); err != nil {
		log.Warn("failed to publish event",
			"event_type", event.Type,
			"event_id", event.ID,
			"subject", event.Subject,
			"error", err,
		)
	}
}

type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, Event) error { return nil }
func (NopPublisher) Close() error                         { return nil }

// Recorder keeps published events in memory.
type Recorder struct {
	mu     sync.Mutex
	events []Event
	Err    error
}

func (r *Recorder) Publish(_ context.Context, event Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return r.Err
	}
	r.events = append(r.events, event)
	return nil
}

func (r *Recorder) Close() error { return nil }

func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Event(nil), r.events...)
}

// Types lists the recorded event types in publish order.
func (r *Recorder) Types() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.events))
	for _, e := range r.events {
		out = append(out, e.Type)
	}
	return out
}
