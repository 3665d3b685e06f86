package domain

import "strings"

// ValidationError collects field-level issues from input validation.
// The rendered message joins every issue so the client can display the
// whole list at once.
type ValidationError struct {
	Issues []string
}

func (e *ValidationError) Error() string {
	return strings.Join(e.Issues, ". ") + "."
}

func NewValidationError(issues ...string) *ValidationError {
	return &ValidationError{Issues: issues}
}
