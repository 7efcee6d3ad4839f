package roster

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when a roll number is unknown.
var ErrNotFound = errors.New("student not found")

// ErrExists is returned when a registration collides with an existing student.
var ErrExists = errors.New("student already exists")

// Student is a roster entry. The attendance core reads it only for
// eligibility comparison.
type Student struct {
	RollNumber string    `json:"roll_number"`
	Name       string    `json:"name"`
	Email      string    `json:"email"`
	Password   string    `json:"-"`
	Department string    `json:"department"`
	Year       string    `json:"year"`
	Semester   string    `json:"semester"`
	Section    string    `json:"section"`
	Phone      string    `json:"phone"`
	Role       string    `json:"role"`
	CreatedAt  time.Time `json:"created_at"`
}

// Faculty is a staff record used only for login.
type Faculty struct {
	EmpID    string `json:"emp_id"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"-"`
	Role     string `json:"role"`
}

// Store persists roster entries.
type Store interface {
	Get(ctx context.Context, rollNumber string) (*Student, error)
	GetByEmail(ctx context.Context, email string) (*Student, error)
	Create(ctx context.Context, st Student) error
	// List returns every student, ordered by roll number.
	List(ctx context.Context) ([]Student, error)
	// Update applies the non-empty fields of st to the record identified by
	// st.RollNumber and returns the updated student. The roll number itself
	// never changes.
	Update(ctx context.Context, st Student) (*Student, error)
	GetFaculty(ctx context.Context, empID string) (*Faculty, error)
}
