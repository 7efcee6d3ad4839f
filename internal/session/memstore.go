package session

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemStore is an in-memory Store for dev mode and tests. A single mutex
// stands in for the database's per-statement atomicity.
type MemStore struct {
	mu       sync.Mutex
	sessions map[string]*Session
	current  string
}

// NewMemStore creates an empty in-memory store.
func NewMemStore() *MemStore {
	return &MemStore{sessions: make(map[string]*Session)}
}

// Insert persists a new session as history.
func (m *MemStore) Insert(_ context.Context, s Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := s
	cp.Attendees = append([]string(nil), s.Attendees...)
	m.sessions[s.Token] = &cp
	return nil
}

// Get returns a copy of the session with its attendee set.
func (m *MemStore) Get(_ context.Context, token string) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[token]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *s
	cp.Attendees = append([]string(nil), s.Attendees...)
	return &cp, nil
}

// SetCurrent replaces the current-session pointer.
func (m *MemStore) SetCurrent(_ context.Context, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.current = token
	return nil
}

// CurrentToken returns the pointer target.
func (m *MemStore) CurrentToken(_ context.Context) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.current == "" {
		return "", ErrNotFound
	}
	return m.current, nil
}

// Expire flips status active -> expired.
func (m *MemStore) Expire(_ context.Context, token string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[token]
	if !ok || s.Status != StatusActive {
		return false, nil
	}
	s.Status = StatusExpired
	return true, nil
}

// ExpireOverdue transitions every active session issued before cutoff.
func (m *MemStore) ExpireOverdue(_ context.Context, cutoff time.Time) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var tokens []string
	for _, s := range m.sessions {
		if s.Status == StatusActive && s.IssuedAt.Before(cutoff) {
			s.Status = StatusExpired
			tokens = append(tokens, s.Token)
		}
	}
	return tokens, nil
}

// AddAttendee appends roll to the attendee set, reporting duplicates.
func (m *MemStore) AddAttendee(_ context.Context, token, roll string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[token]
	if !ok {
		return false, ErrNotFound
	}
	for _, r := range s.Attendees {
		if r == roll {
			return false, nil
		}
	}
	s.Attendees = append(s.Attendees, roll)
	return true, nil
}

// Delete removes a session and returns the removed record.
func (m *MemStore) Delete(_ context.Context, token string) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[token]
	if !ok {
		return nil, ErrNotFound
	}
	delete(m.sessions, token)
	return s, nil
}

// ListByFaculty returns a faculty member's session history, newest first.
func (m *MemStore) ListByFaculty(_ context.Context, facultyName string) ([]Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var res []Session
	for _, s := range m.sessions {
		if s.Scope.FacultyName == facultyName {
			cp := *s
			cp.Attendees = append([]string(nil), s.Attendees...)
			res = append(res, cp)
		}
	}
	sort.Slice(res, func(i, j int) bool { return res[i].IssuedAt.After(res[j].IssuedAt) })
	return res, nil
}
