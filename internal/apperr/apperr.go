// internal/apperr/apperr.go
//
// Error taxonomy shared by the services and the HTTP layer.
//
// Context
// -------
// Services never write HTTP responses.  They return errors that carry a
// Kind and a short user-facing message.  Handlers map the Kind to a status
// code and either answer with JSON or flash the message and redirect.
//
// Sentinels are built once with New and compared with errors.Is.  Wrapping
// with fmt.Errorf("…: %w", err) keeps the Kind reachable through errors.As.
//
// Notes
// -----
// • Anything that is not an *Error is treated as Internal, and its text is
//   never shown to the user.
// • Oxford commas, two spaces after periods.
package apperr

import (
	"errors"
	"net/http"
)

// Kind classifies a failure for status-code mapping.
type Kind int

const (
	Internal Kind = iota
	Invalid
	Unauthenticated
	Forbidden
	NotFound
	TooLarge
)

// Error is a classified failure with a message safe to show end users.
type Error struct {
	Kind Kind
	Msg  string
}

func (e *Error) Error() string { return e.Msg }

// New returns a classified error.
func New(kind Kind, msg string) *Error { return &Error{Kind: kind, Msg: msg} }

// KindOf returns the Kind of the first *Error in err's chain, or Internal.
func KindOf(err error) Kind {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Kind
	}
	return Internal
}

// Message returns the user-facing message for err.  Internal failures get a
// generic string so driver or filesystem details never leak.
func Message(err error) string {
	var ae *Error
	if errors.As(err, &ae) && ae.Kind != Internal {
		return ae.Msg
	}
	return "Something went wrong.  Please try again."
}

// Status maps a Kind to its HTTP status code.
func Status(k Kind) int {
	switch k {
	case Invalid:
		return http.StatusBadRequest
	case Unauthenticated:
		return http.StatusUnauthorized
	case Forbidden:
		return http.StatusForbidden
	case NotFound:
		return http.StatusNotFound
	case TooLarge:
		return http.StatusRequestEntityTooLarge
	default:
		return http.StatusInternalServerError
	}
}

// Common sentinels used by more than one service.
var (
	ErrAccessDenied = New(Forbidden, "Access denied")
	ErrLoginNeeded  = New(Unauthenticated, "Please log in to access this page.")
	ErrBadDate      = New(Invalid, "Invalid date format")
	ErrTooLarge     = New(TooLarge, "File is too large")
)
