// Package apperr defines the error taxonomy shared by the API server, the
// remote gateway and the syncing repositories. Every failure a caller can act
// on carries a Kind; callers branch with KindOf or Is rather than matching
// message strings.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an error.
type Kind int

const (
	// Internal is the zero-information default for unexpected failures.
	Internal Kind = iota
	// Validation marks missing or malformed input.
	Validation
	// NotFound marks an entity absent both locally and remotely.
	NotFound
	// Conflict marks duplicate ids, emails, song memberships or follows.
	Conflict
	// Unauthenticated marks bad credentials or a missing/invalid token.
	Unauthenticated
	// Unauthorized marks a failed ownership or role check.
	Unauthorized
	// Playback marks unreadable media.
	Playback
	// Network marks a transient transport failure. The syncing repositories
	// absorb these and fall back to the local store; they never surface.
	Network
)

// Error is a Kind-tagged error.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// New returns a Kind-tagged error with a fixed message.
func New(kind Kind, message string) error {
	return &Error{Kind: kind, Message: message}
}

// Newf returns a Kind-tagged error with a formatted message.
func Newf(kind Kind, format string, args ...interface{}) error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap tags an underlying error with a kind and context message.
func Wrap(kind Kind, message string, err error) error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// KindOf reports the kind of err, or Internal when err carries none.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return Internal
}

// Is reports whether err carries the given kind.
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// Message returns the taxonomy message for err, falling back to err.Error().
func Message(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}

// StatusCode maps an error to its fixed HTTP status.
func StatusCode(err error) int {
	switch KindOf(err) {
	case Validation, Conflict:
		return http.StatusBadRequest
	case Unauthenticated:
		return http.StatusUnauthorized
	case Unauthorized:
		return http.StatusForbidden
	case NotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// FromStatus maps an HTTP status back into the taxonomy. Used by the remote
// gateway to type server responses.
func FromStatus(status int, message string) error {
	switch status {
	case http.StatusBadRequest:
		// The API uses 400 for both validation and duplicate errors; the
		// message disambiguates but callers treat them alike.
		return New(Conflict, message)
	case http.StatusUnauthorized:
		return New(Unauthenticated, message)
	case http.StatusForbidden:
		return New(Unauthorized, message)
	case http.StatusNotFound:
		return New(NotFound, message)
	default:
		return New(Internal, message)
	}
}
