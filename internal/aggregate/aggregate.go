package aggregate

import (
	"context"
	"errors"
	"time"
)

// DayFormat is the calendar-date key used in the dates maps.
const DayFormat = "2006-01-02"

// ErrNotFound is returned when a summary or ledger does not exist yet.
var ErrNotFound = errors.New("aggregate not found")

// SectionKey identifies one class section's summary.
type SectionKey struct {
	Department string `json:"department"`
	Semester   string `json:"semester"`
	Section    string `json:"section"`
}

// SectionSummary counts classes conducted for a section, per subject and per
// calendar date, with a cached grand total.
type SectionSummary struct {
	Key            SectionKey     `json:"key"`
	Subjects       map[string]int `json:"subjects"`
	Dates          map[string]int `json:"dates"`
	TotalConducted int            `json:"total_conducted"`
}

// StudentLedger counts classes attended by one student, per subject and per
// calendar date, with a cached grand total.
type StudentLedger struct {
	RollNumber    string         `json:"roll_number"`
	Name          string         `json:"name"`
	Department    string         `json:"department"`
	Semester      string         `json:"semester"`
	Section       string         `json:"section"`
	Subjects      map[string]int `json:"subjects"`
	Dates         map[string]int `json:"dates"`
	TotalAttended int            `json:"total_attended"`
}

// NewStudent seeds an empty ledger from roster fields.
type NewStudent struct {
	RollNumber string
	Name       string
	Department string
	Semester   string
	Section    string
}

// Store persists the two aggregates. Each increment/decrement must be atomic
// per document; both implementations guarantee that (single-statement SQL
// updates, or a mutex).
type Store interface {
	// IncrementSummary adds one conducted class to the section summary,
	// creating the summary, subject entry, or date entry as needed.
	IncrementSummary(ctx context.Context, key SectionKey, subject, day string) error
	// DecrementSummary removes one conducted class, flooring counters at
	// zero and dropping a date key whose count reaches zero.
	DecrementSummary(ctx context.Context, key SectionKey, subject, day string) error
	// GetSummary returns the summary for a section, or ErrNotFound.
	GetSummary(ctx context.Context, key SectionKey) (*SectionSummary, error)
	// IncrementLedger adds one attended class to a student's ledger,
	// creating the ledger from roster fields when absent.
	IncrementLedger(ctx context.Context, st NewStudent, subject, day string) error
	// GetLedger returns a student's ledger, or ErrNotFound.
	GetLedger(ctx context.Context, rollNumber string) (*StudentLedger, error)
}

// Day formats t's UTC calendar date as a map key.
func Day(t time.Time) string {
	return t.UTC().Format(DayFormat)
}

func sum(m map[string]int) int {
	total := 0
	for _, v := range m {
		total += v
	}
	return total
}
