package generation

import "errors"

var (
	// ErrInvalidKind is returned for generation kinds the service does not know.
	ErrInvalidKind = errors.New("unknown generation kind")
	// ErrInvalidInput is returned when required request fields are missing.
	ErrInvalidInput = errors.New("invalid input")
	// ErrExternalService is returned when the document-intelligence service
	// rejects or fails a request.
	ErrExternalService = errors.New("document-intelligence service error")
)
