package session

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"attendance/internal/roster"
)

// Aggregates receives the denormalized-counter updates that follow session
// lifecycle changes and successful marks. Implemented by aggregate.Maintainer.
type Aggregates interface {
	OnSessionIssued(ctx context.Context, scope Scope, issuedAt time.Time) error
	OnSessionDeleted(ctx context.Context, scope Scope, issuedAt time.Time) error
	RecordAttendance(ctx context.Context, st roster.Student, subject string, markedAt time.Time) error
}

// ScopeEcho is the redundant scope a submitting client may send alongside a
// mark request; when present it must match the session exactly.
type ScopeEcho struct {
	Subject     string `json:"subject"`
	Period      string `json:"period"`
	FacultyName string `json:"faculty_name"`
}

func (e *ScopeEcho) empty() bool {
	return e == nil || (e.Subject == "" && e.Period == "" && e.FacultyName == "")
}

// MarkResult confirms a successful mark, echoing session scope for display.
type MarkResult struct {
	RollNumber  string `json:"roll_number"`
	Subject     string `json:"subject"`
	Department  string `json:"department"`
	Semester    string `json:"semester"`
	Period      string `json:"period"`
	FacultyName string `json:"faculty_name"`
}

// Service owns the period-token lifecycle: issuance, expiry transitions, and
// the attendance-recording protocol.
type Service struct {
	store      Store
	roster     roster.Store
	aggregates Aggregates
	window     time.Duration
	retries    int
	now        func() time.Time
}

// NewService creates a service. retries bounds the retry loop on transient
// storage conflicts during marking.
func NewService(store Store, ros roster.Store, agg Aggregates, window time.Duration, retries int) *Service {
	if window <= 0 {
		window = DefaultWindow
	}
	if retries <= 0 {
		retries = 3
	}
	return &Service{
		store:      store,
		roster:     ros,
		aggregates: agg,
		window:     window,
		retries:    retries,
		now:        time.Now,
	}
}

// Window returns the configured validity window.
func (s *Service) Window() time.Duration { return s.window }

// Issue creates a new active session for scope, replaces the current-session
// pointer, updates the section summary, and schedules an eager expiry
// transition. The timer is a best-effort latency optimization; the lazy check
// on reads is the source of truth across restarts.
func (s *Service) Issue(ctx context.Context, scope Scope) (*Session, error) {
	if err := scope.Validate(); err != nil {
		return nil, err
	}

	sess := Session{
		Token:    NewToken(),
		IssuedAt: s.now().UTC(),
		Status:   StatusActive,
		Scope:    scope,
	}
	if err := s.store.Insert(ctx, sess); err != nil {
		return nil, fmt.Errorf("insert session: %w", err)
	}
	if err := s.store.SetCurrent(ctx, sess.Token); err != nil {
		return nil, fmt.Errorf("set current session: %w", err)
	}
	if err := s.aggregates.OnSessionIssued(ctx, scope, sess.IssuedAt); err != nil {
		return nil, fmt.Errorf("update section summary: %w", err)
	}

	s.scheduleExpiry(sess.Token, sess.IssuedAt)
	return &sess, nil
}

func (s *Service) scheduleExpiry(token string, issuedAt time.Time) {
	delay := issuedAt.Add(s.window).Sub(s.now())
	if delay < 0 {
		delay = 0
	}
	time.AfterFunc(delay, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		transitioned, err := s.store.Expire(ctx, token)
		if err != nil {
			log.Printf("timer expiry for %s failed: %v", token, err)
			return
		}
		if transitioned {
			log.Printf("session %s expired by timer", token)
		}
	})
}

// Get returns a session by token, lazily persisting the expired status when
// the window has elapsed.
func (s *Service) Get(ctx context.Context, token string) (*Session, error) {
	if strings.TrimSpace(token) == "" {
		return nil, validationf("token is required")
	}
	sess, err := s.store.Get(ctx, token)
	if err != nil {
		return nil, err
	}
	s.lazyExpire(ctx, sess)
	return sess, nil
}

// Current returns the most recently issued session via the pointer record.
func (s *Service) Current(ctx context.Context) (*Session, error) {
	token, err := s.store.CurrentToken(ctx)
	if err != nil {
		return nil, err
	}
	sess, err := s.store.Get(ctx, token)
	if err != nil {
		return nil, err
	}
	s.lazyExpire(ctx, sess)
	return sess, nil
}

func (s *Service) lazyExpire(ctx context.Context, sess *Session) {
	if sess.Status != StatusActive || !Expired(sess.IssuedAt, s.now(), s.window) {
		return
	}
	if _, err := s.store.Expire(ctx, sess.Token); err != nil {
		log.Printf("lazy expiry for %s failed: %v", sess.Token, err)
	}
	// Reflect the transition in the response regardless; the next read
	// self-corrects if the write was lost.
	sess.Status = StatusExpired
}

// Mark records attendance for rollNumber against token. Validation
// short-circuits in a fixed order: session lookup, expiry, roster lookup,
// eligibility, duplicate check, optional scope echo. On success the attendee
// set is appended first, then the student ledger is updated; a crash between
// the two leaves a gap that readers of the attendee set can reconcile.
func (s *Service) Mark(ctx context.Context, rollNumber, token string, echo *ScopeEcho) (*MarkResult, error) {
	if strings.TrimSpace(rollNumber) == "" || strings.TrimSpace(token) == "" {
		return nil, validationf("roll number and token are required")
	}
	roll := NormalizeRoll(rollNumber)

	sess, err := s.store.Get(ctx, token)
	if err != nil {
		return nil, err
	}

	if Expired(sess.IssuedAt, s.now(), s.window) || sess.Status == StatusExpired {
		s.lazyExpire(ctx, sess)
		return nil, ErrExpired
	}

	student, err := s.roster.Get(ctx, roll)
	if err != nil {
		return nil, err
	}

	if !eligible(*student, sess.Scope) {
		return nil, ErrIneligible
	}

	if sess.Marked(roll) {
		return nil, ErrAlreadyMarked
	}

	if !echo.empty() {
		if echo.Subject != sess.Scope.Subject ||
			echo.Period != sess.Scope.Period ||
			echo.FacultyName != sess.Scope.FacultyName {
			return nil, ErrIneligible
		}
	}

	added, err := s.addAttendeeRetry(ctx, sess.Token, roll)
	if err != nil {
		return nil, err
	}
	if !added {
		return nil, ErrAlreadyMarked
	}

	if err := s.aggregates.RecordAttendance(ctx, *student, sess.Scope.Subject, s.now().UTC()); err != nil {
		// The attendee append already committed; surfaced as an error so the
		// operator sees the ledger gap, but the mark itself stands.
		return nil, fmt.Errorf("update student ledger: %w", err)
	}

	return &MarkResult{
		RollNumber:  roll,
		Subject:     sess.Scope.Subject,
		Department:  sess.Scope.Department,
		Semester:    sess.Scope.Semester,
		Period:      sess.Scope.Period,
		FacultyName: sess.Scope.FacultyName,
	}, nil
}

func (s *Service) addAttendeeRetry(ctx context.Context, token, roll string) (bool, error) {
	var lastErr error
	for attempt := 0; attempt < s.retries; attempt++ {
		added, err := s.store.AddAttendee(ctx, token, roll)
		if err == nil {
			return added, nil
		}
		if !errors.Is(err, ErrConflict) {
			return false, fmt.Errorf("append attendee: %w", err)
		}
		lastErr = err
	}
	return false, fmt.Errorf("append attendee: retries exhausted: %w", lastErr)
}

// Delete removes a session from history and compensates the section summary.
// Student ledgers are deliberately left untouched.
func (s *Service) Delete(ctx context.Context, token string) (*Session, error) {
	sess, err := s.store.Delete(ctx, token)
	if err != nil {
		return nil, err
	}
	if err := s.aggregates.OnSessionDeleted(ctx, sess.Scope, sess.IssuedAt); err != nil {
		return nil, fmt.Errorf("compensate section summary: %w", err)
	}
	return sess, nil
}

// History returns a faculty member's issued sessions, newest first, applying
// lazy expiry to each.
func (s *Service) History(ctx context.Context, facultyName string) ([]Session, error) {
	if strings.TrimSpace(facultyName) == "" {
		return nil, validationf("faculty name is required")
	}
	sessions, err := s.store.ListByFaculty(ctx, facultyName)
	if err != nil {
		return nil, err
	}
	for i := range sessions {
		s.lazyExpire(ctx, &sessions[i])
	}
	return sessions, nil
}

// eligible compares roster scope against session scope: department, semester
// and section case-insensitively, year by its numeric prefix.
func eligible(st roster.Student, scope Scope) bool {
	return strings.EqualFold(st.Department, scope.Department) &&
		strings.EqualFold(st.Semester, scope.Semester) &&
		strings.EqualFold(st.Section, scope.Section) &&
		yearDigits(st.Year) == yearDigits(scope.Year)
}
