package roster

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"
)

// Repository persists roster data in Postgres.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a repo.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// Get returns the student for a roll number. Lookup is case-insensitive.
func (r *Repository) Get(ctx context.Context, rollNumber string) (*Student, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT roll_number, name, email, password, department, year, semester, section, phone, role, created_at
		FROM students WHERE LOWER(roll_number) = LOWER($1)
	`, rollNumber)
	return scanStudent(row)
}

// GetByEmail returns the student for an email address.
func (r *Repository) GetByEmail(ctx context.Context, email string) (*Student, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT roll_number, name, email, password, department, year, semester, section, phone, role, created_at
		FROM students WHERE email = $1
	`, strings.ToLower(email))
	return scanStudent(row)
}

// Create inserts a new student record.
func (r *Repository) Create(ctx context.Context, st Student) error {
	if st.CreatedAt.IsZero() {
		st.CreatedAt = time.Now().UTC()
	}
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO students (roll_number, name, email, password, department, year, semester, section, phone, role, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
		ON CONFLICT (roll_number) DO NOTHING
	`, st.RollNumber, st.Name, strings.ToLower(st.Email), st.Password, st.Department,
		st.Year, st.Semester, st.Section, st.Phone, st.Role, st.CreatedAt)
	if err != nil {
		// The unique index on email also fires here.
		if strings.Contains(err.Error(), "students_email_key") {
			return ErrExists
		}
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrExists
	}
	return nil
}

// List returns every student, ordered by roll number.
func (r *Repository) List(ctx context.Context) ([]Student, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT roll_number, name, email, password, department, year, semester, section, phone, role, created_at
		FROM students ORDER BY roll_number
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var res []Student
	for rows.Next() {
		var st Student
		if err := rows.Scan(&st.RollNumber, &st.Name, &st.Email, &st.Password, &st.Department,
			&st.Year, &st.Semester, &st.Section, &st.Phone, &st.Role, &st.CreatedAt); err != nil {
			return nil, err
		}
		res = append(res, st)
	}
	return res, rows.Err()
}

// Update applies the non-empty fields of st in one statement; NULLIF keeps
// the stored value where the caller sent nothing.
func (r *Repository) Update(ctx context.Context, st Student) (*Student, error) {
	row := r.db.QueryRowContext(ctx, `
		UPDATE students SET
			name       = COALESCE(NULLIF($2,''), name),
			email      = COALESCE(NULLIF($3,''), email),
			department = COALESCE(NULLIF($4,''), department),
			year       = COALESCE(NULLIF($5,''), year),
			semester   = COALESCE(NULLIF($6,''), semester),
			section    = COALESCE(NULLIF($7,''), section),
			phone      = COALESCE(NULLIF($8,''), phone)
		WHERE LOWER(roll_number) = LOWER($1)
		RETURNING roll_number, name, email, password, department, year, semester, section, phone, role, created_at
	`, st.RollNumber, st.Name, strings.ToLower(st.Email), st.Department,
		st.Year, st.Semester, st.Section, st.Phone)
	updated, err := scanStudent(row)
	if err != nil {
		if strings.Contains(err.Error(), "students_email_key") {
			return nil, ErrExists
		}
		return nil, err
	}
	return updated, nil
}

// GetFaculty returns a faculty record by employee id.
func (r *Repository) GetFaculty(ctx context.Context, empID string) (*Faculty, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT emp_id, name, email, password, role FROM faculty WHERE emp_id = $1
	`, empID)
	var f Faculty
	if err := row.Scan(&f.EmpID, &f.Name, &f.Email, &f.Password, &f.Role); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &f, nil
}

func scanStudent(row *sql.Row) (*Student, error) {
	var st Student
	err := row.Scan(&st.RollNumber, &st.Name, &st.Email, &st.Password, &st.Department,
		&st.Year, &st.Semester, &st.Section, &st.Phone, &st.Role, &st.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &st, nil
}
