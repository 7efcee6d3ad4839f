package session

import (
	"errors"
	"fmt"
)

// Outcome errors surfaced by the recorder. Handlers map each to a distinct,
// stable response so clients can tell "already done" from "not allowed" from
// "try again".
var (
	ErrNotFound      = errors.New("session not found")
	ErrExpired       = errors.New("session expired")
	ErrIneligible    = errors.New("student not eligible for this session")
	ErrAlreadyMarked = errors.New("attendance already marked for this session")
	ErrConflict      = errors.New("storage conflict")
)

// ValidationError reports malformed or missing client input.
type ValidationError struct {
	msg string
}

func (e *ValidationError) Error() string { return e.msg }

func validationf(format string, args ...any) error {
	return &ValidationError{msg: fmt.Sprintf(format, args...)}
}

// IsValidation reports whether err is a client-fixable input error.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
