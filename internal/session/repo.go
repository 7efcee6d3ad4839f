package session

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

// Repository persists sessions in Postgres. Attendee appends and status
// transitions are single-statement conditional updates, so concurrent workers
// coordinate entirely through the database.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a repo.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

const sessionColumns = `token, issued_at, status, department, semester, section, year, subject, period, faculty_name, block, room`

// Insert persists a new session as history.
func (r *Repository) Insert(ctx context.Context, s Session) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO sessions (`+sessionColumns+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
	`, s.Token, s.IssuedAt, s.Status, s.Scope.Department, s.Scope.Semester, s.Scope.Section,
		s.Scope.Year, s.Scope.Subject, s.Scope.Period, s.Scope.FacultyName, s.Scope.Block, s.Scope.Room)
	return err
}

// Get returns a session with its attendee set.
func (r *Repository) Get(ctx context.Context, token string) (*Session, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+sessionColumns+` FROM sessions WHERE token = $1
	`, token)
	sess, err := scanSession(row)
	if err != nil {
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT roll_number FROM session_attendees WHERE token = $1 ORDER BY marked_at
	`, token)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var roll string
		if err := rows.Scan(&roll); err != nil {
			return nil, err
		}
		sess.Attendees = append(sess.Attendees, roll)
	}
	return sess, rows.Err()
}

// SetCurrent replaces the single current-session pointer row atomically.
func (r *Repository) SetCurrent(ctx context.Context, token string) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO current_session (id, token) VALUES (1, $1)
		ON CONFLICT (id) DO UPDATE SET token = EXCLUDED.token
	`, token)
	return err
}

// CurrentToken returns the pointer target.
func (r *Repository) CurrentToken(ctx context.Context) (string, error) {
	var token string
	err := r.db.QueryRowContext(ctx, `SELECT token FROM current_session WHERE id = 1`).Scan(&token)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNotFound
	}
	return token, err
}

// Expire flips status active -> expired; expiring twice is a no-op.
func (r *Repository) Expire(ctx context.Context, token string) (bool, error) {
	res, err := r.db.ExecContext(ctx, `
		UPDATE sessions SET status = $1 WHERE token = $2 AND status = $3
	`, StatusExpired, token, StatusActive)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

// ExpireOverdue transitions every active session issued before cutoff.
func (r *Repository) ExpireOverdue(ctx context.Context, cutoff time.Time) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `
		UPDATE sessions SET status = $1
		WHERE status = $2 AND issued_at < $3
		RETURNING token
	`, StatusExpired, StatusActive, cutoff)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var tokens []string
	for rows.Next() {
		var t string
		if err := rows.Scan(&t); err != nil {
			return nil, err
		}
		tokens = append(tokens, t)
	}
	return tokens, rows.Err()
}

// AddAttendee appends roll to the attendee set. ON CONFLICT DO NOTHING makes
// the append an atomic add-to-set; zero rows affected means a duplicate.
func (r *Repository) AddAttendee(ctx context.Context, token, roll string) (bool, error) {
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO session_attendees (token, roll_number)
		VALUES ($1, $2)
		ON CONFLICT (token, roll_number) DO NOTHING
	`, token, roll)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

// Delete removes a session and returns the removed record.
func (r *Repository) Delete(ctx context.Context, token string) (*Session, error) {
	row := r.db.QueryRowContext(ctx, `
		DELETE FROM sessions WHERE token = $1
		RETURNING `+sessionColumns+`
	`, token)
	return scanSession(row)
}

// ListByFaculty returns a faculty member's session history, newest first.
func (r *Repository) ListByFaculty(ctx context.Context, facultyName string) ([]Session, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+sessionColumns+` FROM sessions
		WHERE faculty_name = $1
		ORDER BY issued_at DESC
	`, facultyName)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var res []Session
	for rows.Next() {
		var s Session
		if err := rows.Scan(&s.Token, &s.IssuedAt, &s.Status, &s.Scope.Department, &s.Scope.Semester,
			&s.Scope.Section, &s.Scope.Year, &s.Scope.Subject, &s.Scope.Period,
			&s.Scope.FacultyName, &s.Scope.Block, &s.Scope.Room); err != nil {
			return nil, err
		}
		res = append(res, s)
	}
	return res, rows.Err()
}

func scanSession(row *sql.Row) (*Session, error) {
	var s Session
	err := row.Scan(&s.Token, &s.IssuedAt, &s.Status, &s.Scope.Department, &s.Scope.Semester,
		&s.Scope.Section, &s.Scope.Year, &s.Scope.Subject, &s.Scope.Period,
		&s.Scope.FacultyName, &s.Scope.Block, &s.Scope.Room)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &s, nil
}
