package maintenance

import "errors"

var (
	// ErrNotFound is returned when a task does not exist.
	ErrNotFound = errors.New("maintenance task not found")
	// ErrInvalidInput is returned when required fields are missing.
	ErrInvalidInput = errors.New("invalid input")
	// ErrAssigneeNotFound is returned when assignment targets an unknown user.
	ErrAssigneeNotFound = errors.New("assignee not found")
)
