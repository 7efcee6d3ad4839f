package aggregate

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"attendance/internal/roster"
	"attendance/internal/session"
)

var testScope = session.Scope{
	Department:  "CSE",
	Semester:    "sem3",
	Section:     "secA",
	Year:        "3rd",
	Subject:     "DBMS",
	Period:      "2",
	FacultyName: "Dr. Rao",
	Block:       "A",
	Room:        "101",
}

var issuedAt = time.Date(2024, 1, 10, 9, 0, 0, 0, time.UTC)

func testKey() SectionKey {
	return SectionKey{Department: "CSE", Semester: "sem3", Section: "secA"}
}

func TestIssueAndDeleteAreInverse(t *testing.T) {
	ctx := context.Background()
	m := NewMaintainer(NewMemStore())

	require.NoError(t, m.OnSessionIssued(ctx, testScope, issuedAt))
	require.NoError(t, m.OnSessionIssued(ctx, testScope, issuedAt))

	sm, err := m.Summary(ctx, testKey())
	require.NoError(t, err)
	require.Equal(t, 2, sm.TotalConducted)
	require.Equal(t, 2, sm.Subjects["DBMS"])
	require.Equal(t, 2, sm.Dates["2024-01-10"])

	require.NoError(t, m.OnSessionDeleted(ctx, testScope, issuedAt))

	sm, err = m.Summary(ctx, testKey())
	require.NoError(t, err)
	require.Equal(t, 1, sm.TotalConducted)
	require.Equal(t, 1, sm.Subjects["DBMS"])
	require.Equal(t, 1, sm.Dates["2024-01-10"])
}

func TestDeleteFloorsAtZeroAndDropsDateKey(t *testing.T) {
	ctx := context.Background()
	m := NewMaintainer(NewMemStore())

	require.NoError(t, m.OnSessionIssued(ctx, testScope, issuedAt))
	require.NoError(t, m.OnSessionDeleted(ctx, testScope, issuedAt))

	sm, err := m.Summary(ctx, testKey())
	require.NoError(t, err)
	require.Equal(t, 0, sm.TotalConducted)
	require.NotContains(t, sm.Dates, "2024-01-10")

	// A second delete for the same session must not go negative.
	require.NoError(t, m.OnSessionDeleted(ctx, testScope, issuedAt))

	sm, err = m.Summary(ctx, testKey())
	require.NoError(t, err)
	require.Equal(t, 0, sm.TotalConducted)
	require.Equal(t, 0, sm.Subjects["DBMS"])
}

func TestDeleteForUnknownSectionIsTolerated(t *testing.T) {
	m := NewMaintainer(NewMemStore())
	require.NoError(t, m.OnSessionDeleted(context.Background(), testScope, issuedAt))
}

func TestDeleteUsesIssuanceDate(t *testing.T) {
	ctx := context.Background()
	m := NewMaintainer(NewMemStore())

	require.NoError(t, m.OnSessionIssued(ctx, testScope, issuedAt))

	other := testScope
	other.Subject = "OS"
	require.NoError(t, m.OnSessionIssued(ctx, other, issuedAt.Add(24*time.Hour)))

	// Deleting the first session two days later must decrement its own
	// issuance date, leaving the other date intact.
	require.NoError(t, m.OnSessionDeleted(ctx, testScope, issuedAt))

	sm, err := m.Summary(ctx, testKey())
	require.NoError(t, err)
	require.Equal(t, 1, sm.TotalConducted)
	require.NotContains(t, sm.Dates, "2024-01-10")
	require.Equal(t, 1, sm.Dates["2024-01-11"])
}

func TestRecordAttendanceSeedsAndNormalizes(t *testing.T) {
	ctx := context.Background()
	m := NewMaintainer(NewMemStore())

	st := roster.Student{
		RollNumber: "21CS001",
		Name:       "Asha",
		Department: "CSE",
		Semester:   "sem3",
		Section:    "secA",
	}
	require.NoError(t, m.RecordAttendance(ctx, st, "DBMS", issuedAt))
	require.NoError(t, m.RecordAttendance(ctx, st, "DBMS", issuedAt.Add(24*time.Hour)))
	require.NoError(t, m.RecordAttendance(ctx, st, "OS", issuedAt.Add(24*time.Hour)))

	led, err := m.Ledger(ctx, "21cs001")
	require.NoError(t, err)
	require.Equal(t, "21cs001", led.RollNumber)
	require.Equal(t, "Asha", led.Name)
	require.Equal(t, 3, led.TotalAttended)
	require.Equal(t, 2, led.Subjects["DBMS"])
	require.Equal(t, 1, led.Subjects["OS"])
	require.Equal(t, 1, led.Dates["2024-01-10"])
	require.Equal(t, 2, led.Dates["2024-01-11"])

	// Lookup accepts either casing.
	upper, err := m.Ledger(ctx, "21CS001")
	require.NoError(t, err)
	require.Equal(t, led.TotalAttended, upper.TotalAttended)
}

func TestLedgerUnknownStudent(t *testing.T) {
	m := NewMaintainer(NewMemStore())
	_, err := m.Ledger(context.Background(), "nobody")
	require.ErrorIs(t, err, ErrNotFound)
}

// skewedStore inflates cached totals on read, simulating a store whose
// grand-total counters drifted from the per-subject rows.
type skewedStore struct{ Store }

func (s skewedStore) GetSummary(ctx context.Context, key SectionKey) (*SectionSummary, error) {
	sm, err := s.Store.GetSummary(ctx, key)
	if err != nil {
		return nil, err
	}
	sm.TotalConducted++
	return sm, nil
}

func (s skewedStore) GetLedger(ctx context.Context, rollNumber string) (*StudentLedger, error) {
	led, err := s.Store.GetLedger(ctx, rollNumber)
	if err != nil {
		return nil, err
	}
	led.TotalAttended++
	return led, nil
}

func TestMaintainerReportsDriftedTotals(t *testing.T) {
	ctx := context.Background()
	m := NewMaintainer(skewedStore{Store: NewMemStore()})

	err := m.OnSessionIssued(ctx, testScope, issuedAt)
	require.ErrorContains(t, err, "summary invariant violated")

	err = m.OnSessionDeleted(ctx, testScope, issuedAt)
	require.ErrorContains(t, err, "summary invariant violated")

	st := roster.Student{RollNumber: "21CS001", Name: "Asha", Department: "CSE", Semester: "sem3", Section: "secA"}
	err = m.RecordAttendance(ctx, st, "DBMS", issuedAt)
	require.ErrorContains(t, err, "ledger invariant violated")
}

func TestDayFormatsUTC(t *testing.T) {
	ist := time.FixedZone("IST", 5*3600+1800)
	// 01:00 IST on Jan 11 is still Jan 10 in UTC.
	require.Equal(t, "2024-01-10", Day(time.Date(2024, 1, 11, 1, 0, 0, 0, ist)))
}
