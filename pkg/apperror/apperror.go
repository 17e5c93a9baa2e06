// Package apperror defines the error taxonomy shared by every layer of the
// API. Each error carries a Kind; the central response writer maps the Kind
// to an HTTP status so controllers never pick status codes by hand.
package apperror

import (
	"errors"
	"net/http"
	"strings"
)

// Kind classifies a failure.
type Kind int

const (
	// KindValidation — one or more schema constraints were violated.
	KindValidation Kind = iota + 1
	// KindCast — a malformed document identifier.
	KindCast
	// KindDuplicate — a unique-constraint collision.
	KindDuplicate
	// KindToken — missing, malformed or expired signed credential.
	KindToken
	// KindNotFound — entity absent.
	KindNotFound
	// KindAuthorization — insufficient role.
	KindAuthorization
	// KindInternal — everything else.
	KindInternal
)

// Error is the taxonomy error type.
type Error struct {
	Kind    Kind
	Message string
	// Fields holds field → message for validation failures. Every violated
	// field is reported, not just the first.
	Fields map[string]string
	Err    error
}

func (e *Error) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if len(e.Fields) > 0 {
		msgs := make([]string, 0, len(e.Fields))
		for _, m := range e.Fields {
			msgs = append(msgs, m)
		}
		return strings.Join(msgs, ", ")
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return "internal server error"
}

func (e *Error) Unwrap() error { return e.Err }

// Status maps the error kind to an HTTP status code.
func (e *Error) Status() int {
	switch e.Kind {
	case KindValidation, KindCast, KindDuplicate:
		return http.StatusBadRequest
	case KindToken:
		return http.StatusUnauthorized
	case KindNotFound:
		return http.StatusNotFound
	case KindAuthorization:
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

// ── Constructors ─────────────────────────────────────────────────────────────

// NewValidation reports every violated field constraint at once.
func NewValidation(fields map[string]string) *Error {
	return &Error{Kind: KindValidation, Fields: fields}
}

// NewBadRequest is a message-only validation failure (e.g. malformed JSON).
func NewBadRequest(message string) *Error {
	return &Error{Kind: KindValidation, Message: message}
}

func NewCast(message string) *Error {
	return &Error{Kind: KindCast, Message: message}
}

func NewDuplicate(message string) *Error {
	return &Error{Kind: KindDuplicate, Message: message}
}

func NewToken(message string) *Error {
	return &Error{Kind: KindToken, Message: message}
}

func NewNotFound(message string) *Error {
	return &Error{Kind: KindNotFound, Message: message}
}

func NewAuthorization(message string) *Error {
	return &Error{Kind: KindAuthorization, Message: message}
}

// Wrap marks err as an internal failure, preserving the chain.
func Wrap(err error) *Error {
	return &Error{Kind: KindInternal, Err: err}
}

// As extracts an *Error from err's chain.
func As(err error) (*Error, bool) {
	var e *Error
	ok := errors.As(err, &e)
	return e, ok
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, kind Kind) bool {
	e, ok := As(err)
	return ok && e.Kind == kind
}
