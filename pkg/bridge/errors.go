package bridge

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNotFound is returned when there is nothing to act on: an untracked channel, a missing chat channel or a
// ticket that could not be found.
var ErrNotFound = errors.New("not found")

// ValidationError is returned when a request is missing required data. It is raised before any upstream call.
type ValidationError struct {
	// Missing are the names of the missing fields.
	Missing []string
}

// NewValidationError creates a ValidationError for the missing fields.
func NewValidationError(missing ...string) *ValidationError {
	return &ValidationError{Missing: missing}
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("missing required fields: %s", strings.Join(e.Missing, ", "))
}

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}

// requireFields returns a ValidationError naming every empty field, or nil.
func requireFields(fields ...[2]string) error {
	missing := make([]string, 0)
	for _, f := range fields {
		if strings.TrimSpace(f[1]) == "" {
			missing = append(missing, f[0])
		}
	}
	if len(missing) == 0 {
		return nil
	}
	return NewValidationError(missing...)
}
