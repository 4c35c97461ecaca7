// Package apierr defines the uniform error shape every gateway operation
// surfaces to the rest of the client.
//
// The backend answers failures with either a structured envelope
// {error:{code,message,details}} or a flat {message}; transport failures
// produce no HTTP response at all. All of these collapse into a single
// *Error carrying a kind, a human-readable message, and an HTTP status.
package apierr

import (
	"errors"
	"fmt"
)

// Kind classifies a failed operation for the UI layer.
type Kind string

const (
	// KindValidation covers user-correctable 4xx rejections
	// (duplicate email, malformed input, password mismatch).
	KindValidation Kind = "validation"
	// KindAuth covers 401/403: bad credentials or an expired session.
	KindAuth Kind = "auth"
	// KindNetwork covers transport failures with no HTTP response.
	KindNetwork Kind = "network"
	// KindServer covers 5xx backend failures.
	KindServer Kind = "server"
)

// Error is the normalized failure of a single gateway operation.
type Error struct {
	Kind Kind
	// Message is the most specific human-readable text available:
	// the backend's error.message, then its flat message, then an
	// operation-specific fallback.
	Message string
	// Status is the HTTP status of the response, or 0 for transport
	// failures that never produced one.
	Status int
	// Cause is the underlying error, kept for logs only.
	Cause error
}

func (e *Error) Error() string {
	if e.Status > 0 {
		return fmt.Sprintf("%s (%d): %s", e.Kind, e.Status, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Cause }

// New constructs an Error with the kind inferred from the status code.
func New(status int, message string, cause error) *Error {
	return &Error{Kind: KindFromStatus(status), Message: message, Status: status, Cause: cause}
}

// Network wraps a transport failure that produced no HTTP response.
func Network(cause error) *Error {
	return &Error{Kind: KindNetwork, Message: "could not reach the server", Status: 0, Cause: cause}
}

// KindFromStatus maps an HTTP status code onto the client taxonomy.
func KindFromStatus(status int) Kind {
	switch {
	case status == 401 || status == 403:
		return KindAuth
	case status >= 400 && status < 500:
		return KindValidation
	case status >= 500:
		return KindServer
	default:
		return KindNetwork
	}
}

// IsKind reports whether err is (or wraps) an *Error of the given kind.
func IsKind(err error, kind Kind) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.Kind == kind
}

// IsAuth reports whether err signals invalid credentials or an expired
// session, the one class the session layer reacts to structurally.
func IsAuth(err error) bool { return IsKind(err, KindAuth) }
