package reconcile

import (
	"fmt"
)

// LengthMismatchError is returned when the two books hold a different
// number of lines. Lines are matched by position, so the run cannot go on.
type LengthMismatchError struct {
	KeyA   string
	CountA int
	KeyB   string
	CountB int
}

// Difference is the absolute difference in line count.
func (e *LengthMismatchError) Difference() int {
	if e.CountA > e.CountB {
		return e.CountA - e.CountB
	}
	return e.CountB - e.CountA
}

func (e *LengthMismatchError) Error() string {
	return fmt.Sprintf("line counts differ by %d lines: %s has %d, %s has %d",
		e.Difference(), e.KeyA, e.CountA, e.KeyB, e.CountB)
}

// ProcessingError wraps every fatal condition of a run with a message fit
// for display.
type ProcessingError struct {
	Message string
	Err     error
}

func (e *ProcessingError) Error() string {
	if e.Err != nil && e.Message != e.Err.Error() {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ProcessingError) Unwrap() error {
	return e.Err
}

func processingError(message string, err error) *ProcessingError {
	return &ProcessingError{Message: message, Err: err}
}
