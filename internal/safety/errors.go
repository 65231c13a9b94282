package safety

import "errors"

// ErrNotFound is returned when a precaution does not exist.
var ErrNotFound = errors.New("safety precaution not found")
