package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
)

// DB wraps sql.DB for Postgres using pgx.
type DB struct {
	Client *sql.DB
}

// NewDB creates a Postgres connection with sane defaults and bootstraps the schema.
func NewDB(connString string) (*DB, error) {
	db, err := sql.Open("pgx", connString)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(time.Hour)
	if err := db.PingContext(context.Background()); err != nil {
		return nil, fmt.Errorf("ping db: %w", err)
	}
	if err := migrate(db); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return &DB{Client: db}, nil
}

func migrate(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS sessions (
		token         TEXT PRIMARY KEY,
		issued_at     TIMESTAMPTZ NOT NULL,
		status        TEXT NOT NULL DEFAULT 'active',
		department    TEXT NOT NULL,
		semester      TEXT NOT NULL,
		section       TEXT NOT NULL,
		year          TEXT NOT NULL,
		subject       TEXT NOT NULL,
		period        TEXT NOT NULL,
		faculty_name  TEXT NOT NULL,
		block         TEXT NOT NULL,
		room          TEXT NOT NULL,
		created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);

	CREATE INDEX IF NOT EXISTS idx_sessions_faculty ON sessions(faculty_name);
	CREATE INDEX IF NOT EXISTS idx_sessions_issued  ON sessions(issued_at);

	CREATE TABLE IF NOT EXISTS session_attendees (
		token        TEXT NOT NULL REFERENCES sessions(token) ON DELETE CASCADE,
		roll_number  TEXT NOT NULL,
		marked_at    TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		PRIMARY KEY (token, roll_number)
	);

	CREATE TABLE IF NOT EXISTS current_session (
		id     INT PRIMARY KEY DEFAULT 1 CHECK (id = 1),
		token  TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS section_summaries (
		department       TEXT NOT NULL,
		semester         TEXT NOT NULL,
		section          TEXT NOT NULL,
		total_conducted  INT NOT NULL DEFAULT 0,
		PRIMARY KEY (department, semester, section)
	);

	CREATE TABLE IF NOT EXISTS summary_subjects (
		department  TEXT NOT NULL,
		semester    TEXT NOT NULL,
		section     TEXT NOT NULL,
		subject     TEXT NOT NULL,
		conducted   INT NOT NULL DEFAULT 0,
		PRIMARY KEY (department, semester, section, subject)
	);

	CREATE TABLE IF NOT EXISTS summary_dates (
		department  TEXT NOT NULL,
		semester    TEXT NOT NULL,
		section     TEXT NOT NULL,
		day         DATE NOT NULL,
		conducted   INT NOT NULL DEFAULT 0,
		PRIMARY KEY (department, semester, section, day)
	);

	CREATE TABLE IF NOT EXISTS student_ledgers (
		roll_number     TEXT PRIMARY KEY,
		name            TEXT NOT NULL DEFAULT '',
		department      TEXT NOT NULL DEFAULT '',
		semester        TEXT NOT NULL DEFAULT '',
		section         TEXT NOT NULL DEFAULT '',
		total_attended  INT NOT NULL DEFAULT 0
	);

	CREATE TABLE IF NOT EXISTS ledger_subjects (
		roll_number  TEXT NOT NULL,
		subject      TEXT NOT NULL,
		attended     INT NOT NULL DEFAULT 0,
		PRIMARY KEY (roll_number, subject)
	);

	CREATE TABLE IF NOT EXISTS ledger_dates (
		roll_number  TEXT NOT NULL,
		day          DATE NOT NULL,
		attended     INT NOT NULL DEFAULT 0,
		PRIMARY KEY (roll_number, day)
	);

	CREATE TABLE IF NOT EXISTS students (
		roll_number  TEXT PRIMARY KEY,
		name         TEXT NOT NULL,
		email        TEXT UNIQUE NOT NULL,
		password     TEXT NOT NULL,
		department   TEXT NOT NULL,
		year         TEXT NOT NULL,
		semester     TEXT NOT NULL,
		section      TEXT NOT NULL,
		phone        TEXT NOT NULL DEFAULT '',
		role         TEXT NOT NULL DEFAULT 'student',
		created_at   TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);

	CREATE TABLE IF NOT EXISTS faculty (
		emp_id      TEXT PRIMARY KEY,
		name        TEXT NOT NULL,
		email       TEXT NOT NULL DEFAULT '',
		password    TEXT NOT NULL,
		role        TEXT NOT NULL DEFAULT 'faculty',
		created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);
	`
	_, err := db.Exec(schema)
	return err
}

// Close closes the underlying connection.
func (d *DB) Close() error {
	if d == nil || d.Client == nil {
		return nil
	}
	return d.Client.Close()
}
