package engine

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for the service surface. All are recoverable at the
// caller boundary; persistence failures from the store propagate unchanged.
var (
	ErrInvalidRecurrence  = errors.New("recurrence interval must be positive")
	ErrInvalidHorizon     = errors.New("horizon months must not be negative")
	ErrDefinitionNotFound = errors.New("definition not found")
	ErrOccurrenceNotFound = errors.New("occurrence not found")
	ErrCategoryNotFound   = errors.New("category not found")
)

// ValidationError carries every field-level rule violation found, not just
// the first, so a caller can surface all problems at once.
type ValidationError struct {
	Messages []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed: %s", strings.Join(e.Messages, "; "))
}

// AsValidation unwraps a ValidationError from err, if present.
func AsValidation(err error) (*ValidationError, bool) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}
