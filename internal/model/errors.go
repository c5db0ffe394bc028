package model

import (
	"errors"
	"fmt"
)

// Sentinel errors for the client's failure kinds.
// Use errors.Is() to check against these.
var (
	// ErrNetwork: the request never produced a usable response (connection
	// refused, DNS failure, timeout).
	ErrNetwork = errors.New("network failure")
	// ErrParse: a response body was not the XML or JSON it claimed to be,
	// or was missing a required element.
	ErrParse = errors.New("parse failure")
	// ErrInvalid: user-supplied input rejected before any network call.
	ErrInvalid = errors.New("invalid input")
	// ErrService: the service answered with a non-success status.
	ErrService = errors.New("service error")
)

// ClientError is the structured error every pipeline stage returns.
// Stage names the operation for the user-visible error panel. For service
// errors, Detail carries the server-supplied body verbatim; discarding it
// would lose the only diagnostic the backend gives us.
type ClientError struct {
	Stage  string
	Detail string
	Status int   // HTTP status for service errors, 0 otherwise
	Err    error // wrapped sentinel, optionally with the cause
}

func (e *ClientError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s: el servidor respondió con el estado %d: %s", e.Stage, e.Status, e.Detail)
	}
	return fmt.Sprintf("%s: %s", e.Stage, e.Detail)
}

func (e *ClientError) Unwrap() error {
	return e.Err
}

// NewNetworkError wraps a transport-level failure for the given stage.
func NewNetworkError(stage string, err error) *ClientError {
	return &ClientError{
		Stage:  stage,
		Detail: fmt.Sprintf("no se pudo conectar al servicio: %v", err),
		Err:    fmt.Errorf("%w: %v", ErrNetwork, err),
	}
}

// NewParseError wraps an unintelligible or incomplete response body.
func NewParseError(stage string, err error) *ClientError {
	return &ClientError{
		Stage:  stage,
		Detail: fmt.Sprintf("respuesta ilegible: %v", err),
		Err:    fmt.Errorf("%w: %v", ErrParse, err),
	}
}

// NewValidationError rejects user input before any network call is made.
func NewValidationError(field, reason string) *ClientError {
	return &ClientError{
		Stage:  "validación",
		Detail: fmt.Sprintf("%s: %s", field, reason),
		Err:    ErrInvalid,
	}
}

// NewServiceError preserves a non-success response. The body is kept
// verbatim in Detail.
func NewServiceError(stage string, status int, body string) *ClientError {
	return &ClientError{
		Stage:  stage,
		Detail: body,
		Status: status,
		Err:    ErrService,
	}
}
