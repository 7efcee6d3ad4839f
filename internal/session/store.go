package session

import (
	"context"
	"time"
)

// Store persists sessions and the current-session pointer. Mutations on a
// single session must be atomic; AddAttendee in particular must behave as an
// add-to-set so concurrent marks cannot double-count.
type Store interface {
	// Insert persists a new session as permanent history.
	Insert(ctx context.Context, s Session) error
	// Get returns a session with its attendee set, or ErrNotFound.
	Get(ctx context.Context, token string) (*Session, error)
	// SetCurrent atomically replaces the single current-session pointer.
	SetCurrent(ctx context.Context, token string) error
	// CurrentToken returns the pointer target, or ErrNotFound when no
	// session has ever been issued.
	CurrentToken(ctx context.Context) (string, error)
	// Expire flips status active -> expired. It reports whether this call
	// performed the transition; expiring an expired session is a no-op.
	Expire(ctx context.Context, token string) (bool, error)
	// ExpireOverdue transitions every active session issued before cutoff
	// and returns the tokens it expired.
	ExpireOverdue(ctx context.Context, cutoff time.Time) ([]string, error)
	// AddAttendee appends roll to the session's attendee set. It reports
	// false when the roll number was already present.
	AddAttendee(ctx context.Context, token, roll string) (bool, error)
	// Delete removes a session from history and returns the removed record,
	// or ErrNotFound.
	Delete(ctx context.Context, token string) (*Session, error)
	// ListByFaculty returns a faculty member's session history, newest first.
	ListByFaculty(ctx context.Context, facultyName string) ([]Session, error)
}
