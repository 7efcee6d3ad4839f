package queue

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Domain event types carried over the queue. Consumers treat unknown types
// as a no-op so the set can grow.
const (
	EventSessionIssued    = "session.issued"
	EventSessionExpired   = "session.expired"
	EventSessionDeleted   = "session.deleted"
	EventAttendanceMarked = "attendance.marked"
)

// Event is the shared envelope for all domain events.
type Event struct {
	ID         string    `json:"id"`
	Token      string    `json:"token"`
	RollNumber string    `json:"roll_number,omitempty"`
	Subject    string    `json:"subject,omitempty"`
	Department string    `json:"department,omitempty"`
	Semester   string    `json:"semester,omitempty"`
	Section    string    `json:"section,omitempty"`
	At         time.Time `json:"at"`
}

// PublishEvent marshals and enqueues a domain event. Publish failures are the
// caller's to log; the write path never fails on them.
func PublishEvent(ctx context.Context, q Queue, eventType string, evt Event) error {
	if evt.ID == "" {
		evt.ID = uuid.NewString()
	}
	if evt.At.IsZero() {
		evt.At = time.Now().UTC()
	}
	body, err := json.Marshal(evt)
	if err != nil {
		return err
	}
	return q.Publish(ctx, Message{Type: eventType, Body: body})
}
