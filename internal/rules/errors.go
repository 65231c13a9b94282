package rules

import "errors"

// ErrNotFound is returned when a rule does not exist.
var ErrNotFound = errors.New("rule not found")
