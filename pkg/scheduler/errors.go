package scheduler

import (
	"errors"
	"fmt"

	"github.com/arnavshah/roster-compliance-go/pkg/models"
)

var (
	// ErrInvalidInput is returned before any analysis runs
	ErrInvalidInput = errors.New("invalid input")
	// ErrIncompleteData marks a soft failure; it is reported as a note, not returned
	ErrIncompleteData = errors.New("incomplete data")
	// ErrStoreUnavailable wraps roster store load failures
	ErrStoreUnavailable = errors.New("roster store unavailable")
)

// ValidationError names the offending field of a rejected input
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s %s", ErrInvalidInput, e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error {
	return ErrInvalidInput
}

// NoteError renders a note as an error matching ErrIncompleteData
func NoteError(n models.Note) error {
	return fmt.Errorf("%w: %s: %s", ErrIncompleteData, n.Subject, n.Message)
}

func invalid(field, format string, args ...any) error {
	return &ValidationError{Field: field, Reason: fmt.Sprintf(format, args...)}
}
