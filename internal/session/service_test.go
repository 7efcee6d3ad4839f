package session_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"attendance/internal/aggregate"
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

type testEnv struct {
	svc   *session.Service
	store *session.MemStore
	ros   *roster.MemStore
	aggs  *aggregate.MemStore
	maint *aggregate.Maintainer
	now   time.Time
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	env := &testEnv{
		store: session.NewMemStore(),
		ros:   roster.NewMemStore(),
		aggs:  aggregate.NewMemStore(),
		now:   time.Date(2024, 1, 10, 9, 0, 0, 0, time.UTC),
	}
	env.maint = aggregate.NewMaintainer(env.aggs)
	env.svc = session.NewService(env.store, env.ros, env.maint, session.DefaultWindow, 3)
	env.svc.SetNowForTest(func() time.Time { return env.now })

	require.NoError(t, env.ros.Create(context.Background(), roster.Student{
		RollNumber: "21CS001", Name: "Asha", Email: "asha@college.edu",
		Department: "CSE", Year: "3rd", Semester: "sem3", Section: "secA",
	}))
	require.NoError(t, env.ros.Create(context.Background(), roster.Student{
		RollNumber: "21IT002", Name: "Vikram", Email: "vikram@college.edu",
		Department: "IT", Year: "3rd", Semester: "sem3", Section: "secA",
	}))
	require.NoError(t, env.ros.Create(context.Background(), roster.Student{
		RollNumber: "21CS003", Name: "Meera", Email: "meera@college.edu",
		Department: "CSE", Year: "3rd", Semester: "sem3", Section: "secA",
	}))
	return env
}

func (e *testEnv) advance(d time.Duration) { e.now = e.now.Add(d) }

func TestIssueValidatesScope(t *testing.T) {
	env := newTestEnv(t)
	bad := testScope
	bad.Subject = ""
	_, err := env.svc.Issue(context.Background(), bad)
	require.Error(t, err)
	require.True(t, session.IsValidation(err))
}

func TestIssueCreatesActiveSessionAndPointer(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	sess, err := env.svc.Issue(ctx, testScope)
	require.NoError(t, err)
	require.Len(t, sess.Token, 10)
	require.Equal(t, session.StatusActive, sess.Status)
	require.Empty(t, sess.Attendees)

	cur, err := env.svc.Current(ctx)
	require.NoError(t, err)
	require.Equal(t, sess.Token, cur.Token)

	// Issuance updates the section summary exactly once.
	sm, err := env.maint.Summary(ctx, aggregate.SectionKey{Department: "CSE", Semester: "sem3", Section: "secA"})
	require.NoError(t, err)
	require.Equal(t, 1, sm.TotalConducted)
	require.Equal(t, 1, sm.Subjects["DBMS"])
	require.Equal(t, 1, sm.Dates["2024-01-10"])
}

func TestIssueSupersedesCurrentPointer(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	first, err := env.svc.Issue(ctx, testScope)
	require.NoError(t, err)
	env.advance(time.Minute)
	second, err := env.svc.Issue(ctx, testScope)
	require.NoError(t, err)

	cur, err := env.svc.Current(ctx)
	require.NoError(t, err)
	require.Equal(t, second.Token, cur.Token)

	// The superseded session stays independently queryable and active
	// until its own window elapses.
	old, err := env.svc.Get(ctx, first.Token)
	require.NoError(t, err)
	require.Equal(t, session.StatusActive, old.Status)
}

func TestGetLazilyExpires(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	sess, err := env.svc.Issue(ctx, testScope)
	require.NoError(t, err)

	env.advance(6 * time.Minute)
	got, err := env.svc.Get(ctx, sess.Token)
	require.NoError(t, err)
	require.Equal(t, session.StatusExpired, got.Status)

	// Persisted, not just reflected in the response.
	stored, err := env.store.Get(ctx, sess.Token)
	require.NoError(t, err)
	require.Equal(t, session.StatusExpired, stored.Status)
}

func TestMarkScenario(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	sess, err := env.svc.Issue(ctx, testScope)
	require.NoError(t, err)

	// Eligible student marks one minute in.
	env.advance(time.Minute)
	res, err := env.svc.Mark(ctx, "21CS001", sess.Token, nil)
	require.NoError(t, err)
	require.Equal(t, "21cs001", res.RollNumber)
	require.Equal(t, "DBMS", res.Subject)

	led, err := env.maint.Ledger(ctx, "21CS001")
	require.NoError(t, err)
	require.Equal(t, 1, led.Subjects["DBMS"])
	require.Equal(t, 1, led.TotalAttended)

	// Same roll again: idempotent rejection, ledger unchanged.
	env.advance(time.Minute)
	_, err = env.svc.Mark(ctx, "21CS001", sess.Token, nil)
	require.ErrorIs(t, err, session.ErrAlreadyMarked)
	led, err = env.maint.Ledger(ctx, "21CS001")
	require.NoError(t, err)
	require.Equal(t, 1, led.Subjects["DBMS"])

	// Wrong department.
	_, err = env.svc.Mark(ctx, "21IT002", sess.Token, nil)
	require.ErrorIs(t, err, session.ErrIneligible)

	// Past the window, a fresh roll is rejected as expired.
	env.advance(5 * time.Minute)
	_, err = env.svc.Mark(ctx, "21CS003", sess.Token, nil)
	require.ErrorIs(t, err, session.ErrExpired)

	got, err := env.store.Get(ctx, sess.Token)
	require.NoError(t, err)
	require.Equal(t, session.StatusExpired, got.Status)
	require.Equal(t, []string{"21cs001"}, got.Attendees)
}

func TestMarkUnknownTokenAndStudent(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.svc.Mark(ctx, "21CS001", "nosuchtokn", nil)
	require.ErrorIs(t, err, session.ErrNotFound)

	sess, err := env.svc.Issue(ctx, testScope)
	require.NoError(t, err)
	_, err = env.svc.Mark(ctx, "99XX999", sess.Token, nil)
	require.ErrorIs(t, err, roster.ErrNotFound)
}

func TestMarkEligibilityIsCaseInsensitive(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	require.NoError(t, env.ros.Create(ctx, roster.Student{
		RollNumber: "21CS010", Name: "Ravi", Email: "ravi@college.edu",
		Department: "cse", Year: "3", Semester: "SEM3", Section: "seca",
	}))

	sess, err := env.svc.Issue(ctx, testScope)
	require.NoError(t, err)
	_, err = env.svc.Mark(ctx, "21CS010", sess.Token, nil)
	require.NoError(t, err)
}

func TestMarkScopeEchoMustMatchExactly(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	sess, err := env.svc.Issue(ctx, testScope)
	require.NoError(t, err)

	_, err = env.svc.Mark(ctx, "21CS001", sess.Token, &session.ScopeEcho{
		Subject: "dbms", Period: "2", FacultyName: "Dr. Rao",
	})
	require.ErrorIs(t, err, session.ErrIneligible)

	_, err = env.svc.Mark(ctx, "21CS001", sess.Token, &session.ScopeEcho{
		Subject: "DBMS", Period: "2", FacultyName: "Dr. Rao",
	})
	require.NoError(t, err)
}

func TestAttendeesOnlyGrow(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	sess, err := env.svc.Issue(ctx, testScope)
	require.NoError(t, err)

	_, err = env.svc.Mark(ctx, "21CS001", sess.Token, nil)
	require.NoError(t, err)
	_, err = env.svc.Mark(ctx, "21CS003", sess.Token, nil)
	require.NoError(t, err)

	got, err := env.store.Get(ctx, sess.Token)
	require.NoError(t, err)
	require.Len(t, got.Attendees, 2)

	counts := make(map[string]int)
	for _, r := range got.Attendees {
		counts[r]++
	}
	for roll, n := range counts {
		require.Equal(t, 1, n, "duplicate attendee %s", roll)
	}
}

func TestDeleteCompensatesSummary(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	key := aggregate.SectionKey{Department: "CSE", Semester: "sem3", Section: "secA"}

	sess, err := env.svc.Issue(ctx, testScope)
	require.NoError(t, err)

	// Delete on a later day; compensation must use the issuance date.
	env.advance(48 * time.Hour)
	_, err = env.svc.Delete(ctx, sess.Token)
	require.NoError(t, err)

	sm, err := env.maint.Summary(ctx, key)
	require.NoError(t, err)
	require.Equal(t, 0, sm.TotalConducted)
	require.Equal(t, 0, sm.Subjects["DBMS"])
	require.NotContains(t, sm.Dates, "2024-01-10")

	_, err = env.svc.Delete(ctx, sess.Token)
	require.ErrorIs(t, err, session.ErrNotFound)
}

func TestHistoryListsOnlyThatFaculty(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.svc.Issue(ctx, testScope)
	require.NoError(t, err)
	other := testScope
	other.FacultyName = "Dr. Iyer"
	env.advance(time.Minute)
	_, err = env.svc.Issue(ctx, other)
	require.NoError(t, err)

	got, err := env.svc.History(ctx, "Dr. Rao")
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Equal(t, "Dr. Rao", got[0].Scope.FacultyName)
}
