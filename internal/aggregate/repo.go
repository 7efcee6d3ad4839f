package aggregate

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

// Repository persists aggregates in Postgres. Counter moves are expressed as
// single-statement upserts/updates inside one transaction per operation, so
// concurrent request workers never read-modify-write in application code.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a repo.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// IncrementSummary adds one conducted class for (section, subject, day).
func (r *Repository) IncrementSummary(ctx context.Context, key SectionKey, subject, day string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO section_summaries (department, semester, section, total_conducted)
		VALUES ($1,$2,$3,1)
		ON CONFLICT (department, semester, section)
		DO UPDATE SET total_conducted = section_summaries.total_conducted + 1
	`, key.Department, key.Semester, key.Section); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO summary_subjects (department, semester, section, subject, conducted)
		VALUES ($1,$2,$3,$4,1)
		ON CONFLICT (department, semester, section, subject)
		DO UPDATE SET conducted = summary_subjects.conducted + 1
	`, key.Department, key.Semester, key.Section, subject); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO summary_dates (department, semester, section, day, conducted)
		VALUES ($1,$2,$3,$4,1)
		ON CONFLICT (department, semester, section, day)
		DO UPDATE SET conducted = summary_dates.conducted + 1
	`, key.Department, key.Semester, key.Section, day); err != nil {
		return err
	}
	return tx.Commit()
}

// DecrementSummary removes one conducted class, flooring at zero and dropping
// a date row whose count reaches zero.
func (r *Repository) DecrementSummary(ctx context.Context, key SectionKey, subject, day string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		UPDATE section_summaries
		SET total_conducted = GREATEST(total_conducted - 1, 0)
		WHERE department = $1 AND semester = $2 AND section = $3
	`, key.Department, key.Semester, key.Section)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	if _, err := tx.ExecContext(ctx, `
		UPDATE summary_subjects
		SET conducted = GREATEST(conducted - 1, 0)
		WHERE department = $1 AND semester = $2 AND section = $3 AND subject = $4
	`, key.Department, key.Semester, key.Section, subject); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `
		UPDATE summary_dates
		SET conducted = GREATEST(conducted - 1, 0)
		WHERE department = $1 AND semester = $2 AND section = $3 AND day = $4
	`, key.Department, key.Semester, key.Section, day); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `
		DELETE FROM summary_dates
		WHERE department = $1 AND semester = $2 AND section = $3 AND day = $4 AND conducted = 0
	`, key.Department, key.Semester, key.Section, day); err != nil {
		return err
	}
	return tx.Commit()
}

// GetSummary returns the summary for a section.
func (r *Repository) GetSummary(ctx context.Context, key SectionKey) (*SectionSummary, error) {
	sm := &SectionSummary{
		Key:      key,
		Subjects: make(map[string]int),
		Dates:    make(map[string]int),
	}
	err := r.db.QueryRowContext(ctx, `
		SELECT total_conducted FROM section_summaries
		WHERE department = $1 AND semester = $2 AND section = $3
	`, key.Department, key.Semester, key.Section).Scan(&sm.TotalConducted)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT subject, conducted FROM summary_subjects
		WHERE department = $1 AND semester = $2 AND section = $3
	`, key.Department, key.Semester, key.Section)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var subject string
		var n int
		if err := rows.Scan(&subject, &n); err != nil {
			return nil, err
		}
		sm.Subjects[subject] = n
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	dateRows, err := r.db.QueryContext(ctx, `
		SELECT day, conducted FROM summary_dates
		WHERE department = $1 AND semester = $2 AND section = $3
	`, key.Department, key.Semester, key.Section)
	if err != nil {
		return nil, err
	}
	defer dateRows.Close()
	for dateRows.Next() {
		var day time.Time
		var n int
		if err := dateRows.Scan(&day, &n); err != nil {
			return nil, err
		}
		sm.Dates[day.Format(DayFormat)] = n
	}
	return sm, dateRows.Err()
}

// IncrementLedger adds one attended class for (student, subject, day),
// seeding the ledger row from roster fields when absent.
func (r *Repository) IncrementLedger(ctx context.Context, st NewStudent, subject, day string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO student_ledgers (roll_number, name, department, semester, section, total_attended)
		VALUES ($1,$2,$3,$4,$5,1)
		ON CONFLICT (roll_number)
		DO UPDATE SET total_attended = student_ledgers.total_attended + 1
	`, st.RollNumber, st.Name, st.Department, st.Semester, st.Section); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO ledger_subjects (roll_number, subject, attended)
		VALUES ($1,$2,1)
		ON CONFLICT (roll_number, subject)
		DO UPDATE SET attended = ledger_subjects.attended + 1
	`, st.RollNumber, subject); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO ledger_dates (roll_number, day, attended)
		VALUES ($1,$2,1)
		ON CONFLICT (roll_number, day)
		DO UPDATE SET attended = ledger_dates.attended + 1
	`, st.RollNumber, day); err != nil {
		return err
	}
	return tx.Commit()
}

// GetLedger returns a student's ledger.
func (r *Repository) GetLedger(ctx context.Context, rollNumber string) (*StudentLedger, error) {
	led := &StudentLedger{
		Subjects: make(map[string]int),
		Dates:    make(map[string]int),
	}
	err := r.db.QueryRowContext(ctx, `
		SELECT roll_number, name, department, semester, section, total_attended
		FROM student_ledgers WHERE roll_number = $1
	`, rollNumber).Scan(&led.RollNumber, &led.Name, &led.Department, &led.Semester, &led.Section, &led.TotalAttended)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT subject, attended FROM ledger_subjects WHERE roll_number = $1
	`, rollNumber)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var subject string
		var n int
		if err := rows.Scan(&subject, &n); err != nil {
			return nil, err
		}
		led.Subjects[subject] = n
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	dateRows, err := r.db.QueryContext(ctx, `
		SELECT day, attended FROM ledger_dates WHERE roll_number = $1
	`, rollNumber)
	if err != nil {
		return nil, err
	}
	defer dateRows.Close()
	for dateRows.Next() {
		var day time.Time
		var n int
		if err := dateRows.Scan(&day, &n); err != nil {
			return nil, err
		}
		led.Dates[day.Format(DayFormat)] = n
	}
	return led, dateRows.Err()
}
