package session

import (
	"strings"
	"time"
)

// Status of an issued session. The only transition is active -> expired.
const (
	StatusActive  = "active"
	StatusExpired = "expired"
)

// Scope describes the class period a session was issued for. All fields are
// immutable after issuance and are used to validate student eligibility.
type Scope struct {
	Department  string `json:"department"`
	Semester    string `json:"semester"`
	Section     string `json:"section"`
	Year        string `json:"year"`
	Subject     string `json:"subject"`
	Period      string `json:"period"`
	FacultyName string `json:"faculty_name"`
	Block       string `json:"block"`
	Room        string `json:"room"`
}

// Session is one QR-token-backed attendance window for a class period.
// Attendees grows monotonically and never contains a roll number twice.
type Session struct {
	Token     string    `json:"token"`
	IssuedAt  time.Time `json:"issued_at"`
	Status    string    `json:"status"`
	Scope     Scope     `json:"scope"`
	Attendees []string  `json:"attendees"`
}

// Marked reports whether roll has already attended this session.
func (s *Session) Marked(roll string) bool {
	roll = NormalizeRoll(roll)
	for _, r := range s.Attendees {
		if r == roll {
			return true
		}
	}
	return false
}

// TimeLeft returns the remaining validity at now, floored at zero.
func (s *Session) TimeLeft(now time.Time, window time.Duration) time.Duration {
	left := s.IssuedAt.Add(window).Sub(now)
	if left < 0 {
		return 0
	}
	return left
}

// NormalizeRoll canonicalizes a roll number for dedup and ledger keys.
func NormalizeRoll(roll string) string {
	return strings.ToLower(strings.TrimSpace(roll))
}

// Validate checks that every scope field is present.
func (sc Scope) Validate() error {
	fields := map[string]string{
		"department":   sc.Department,
		"semester":     sc.Semester,
		"section":      sc.Section,
		"year":         sc.Year,
		"subject":      sc.Subject,
		"period":       sc.Period,
		"faculty_name": sc.FacultyName,
		"block":        sc.Block,
		"room":         sc.Room,
	}
	for name, v := range fields {
		if strings.TrimSpace(v) == "" {
			return validationf("%s is required", name)
		}
	}
	return nil
}

// yearDigits extracts the numeric prefix of a year label ("3rd" -> "3").
func yearDigits(year string) string {
	var b strings.Builder
	for _, r := range year {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
