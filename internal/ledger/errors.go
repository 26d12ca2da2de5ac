package ledger

import (
	"errors"
	"fmt"
)

// ErrNoSelection is returned by split operations when no friend is selected.
var ErrNoSelection = errors.New("no friend selected")

// ValidationError reports rejected input. State is unchanged when it is returned.
type ValidationError struct {
	Op     string // Operation that rejected the input, e.g. "add_friend"
	Field  string // Offending field, e.g. "name"
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: invalid %s: %s", e.Op, e.Field, e.Reason)
}

// IsValidation reports whether err is (or wraps) a *ValidationError.
func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}

func invalid(op, field, reason string) *ValidationError {
	return &ValidationError{Op: op, Field: field, Reason: reason}
}
