package aggregate

import (
	"context"
	"errors"
	"fmt"
	"time"

	"attendance/internal/roster"
	"attendance/internal/session"
)

// Maintainer owns the consistency of the section summary and student ledger
// as sessions are issued, deleted, and attended. Nothing else mutates either
// aggregate.
type Maintainer struct {
	store Store
}

// NewMaintainer creates a maintainer over a store.
func NewMaintainer(store Store) *Maintainer {
	return &Maintainer{store: store}
}

// OnSessionIssued increments the section's conducted counters for the
// issuance date, lazily creating the summary for a new section.
func (m *Maintainer) OnSessionIssued(ctx context.Context, scope session.Scope, issuedAt time.Time) error {
	key := keyFor(scope)
	if err := m.store.IncrementSummary(ctx, key, scope.Subject, Day(issuedAt)); err != nil {
		return err
	}
	return m.checkSummary(ctx, key)
}

// OnSessionDeleted is the inverse of OnSessionIssued, floored at zero. The
// day is derived from the session's original issuance time, never the
// deletion time.
func (m *Maintainer) OnSessionDeleted(ctx context.Context, scope session.Scope, issuedAt time.Time) error {
	key := keyFor(scope)
	if err := m.store.DecrementSummary(ctx, key, scope.Subject, Day(issuedAt)); err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil
		}
		return err
	}
	return m.checkSummary(ctx, key)
}

// RecordAttendance increments a student's ledger for subject on the marking
// date, seeding a new ledger from the roster entry.
func (m *Maintainer) RecordAttendance(ctx context.Context, st roster.Student, subject string, markedAt time.Time) error {
	seed := NewStudent{
		RollNumber: session.NormalizeRoll(st.RollNumber),
		Name:       st.Name,
		Department: st.Department,
		Semester:   st.Semester,
		Section:    st.Section,
	}
	if err := m.store.IncrementLedger(ctx, seed, subject, Day(markedAt)); err != nil {
		return err
	}
	return m.checkLedger(ctx, seed.RollNumber)
}

// Summary exposes the read side for the dashboard projector.
func (m *Maintainer) Summary(ctx context.Context, key SectionKey) (*SectionSummary, error) {
	return m.store.GetSummary(ctx, key)
}

// Ledger exposes the read side for the dashboard projector.
func (m *Maintainer) Ledger(ctx context.Context, rollNumber string) (*StudentLedger, error) {
	return m.store.GetLedger(ctx, session.NormalizeRoll(rollNumber))
}

// checkSummary verifies the cached total equals the per-subject sum. A
// violation is a programming error, never caused by client input.
func (m *Maintainer) checkSummary(ctx context.Context, key SectionKey) error {
	sm, err := m.store.GetSummary(ctx, key)
	if err != nil {
		return err
	}
	if got := sum(sm.Subjects); got != sm.TotalConducted {
		return fmt.Errorf("summary invariant violated for %s/%s/%s: cached total %d, subject sum %d",
			key.Department, key.Semester, key.Section, sm.TotalConducted, got)
	}
	return nil
}

func (m *Maintainer) checkLedger(ctx context.Context, rollNumber string) error {
	led, err := m.store.GetLedger(ctx, rollNumber)
	if err != nil {
		return err
	}
	if got := sum(led.Subjects); got != led.TotalAttended {
		return fmt.Errorf("ledger invariant violated for %s: cached total %d, subject sum %d",
			rollNumber, led.TotalAttended, got)
	}
	return nil
}

func keyFor(scope session.Scope) SectionKey {
	return SectionKey{
		Department: scope.Department,
		Semester:   scope.Semester,
		Section:    scope.Section,
	}
}
