package apperr

import (
	"context"
	"errors"
	"fmt"
)

// Kind classifies a failure so transport layers can map it to a status code
// without inspecting error strings.
type Kind int

const (
	KindUnknown Kind = iota
	KindInvalidInput
	KindNotFound
	KindStorage
	KindIndex
	KindProvider
	KindTimeout
)

func (k Kind) String() string {
	switch k {
	case KindInvalidInput:
		return "invalid_input"
	case KindNotFound:
		return "not_found"
	case KindStorage:
		return "storage_failure"
	case KindIndex:
		return "index_failure"
	case KindProvider:
		return "provider_unavailable"
	case KindTimeout:
		return "timeout"
	default:
		return "unknown"
	}
}

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

func (e *Error) Unwrap() error {
	return e.Err
}

func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func Newf(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches a kind and message to an underlying error. Context deadline
// errors always surface as Timeout regardless of the requested kind, so a
// slow store call is never reported as a semantic failure.
func Wrap(kind Kind, message string, err error) *Error {
	if errors.Is(err, context.DeadlineExceeded) {
		kind = KindTimeout
	}
	return &Error{Kind: kind, Message: message, Err: err}
}

func Invalid(message string) *Error  { return New(KindInvalidInput, message) }
func NotFound(message string) *Error { return New(KindNotFound, message) }

// KindOf extracts the kind from an error chain. Bare context deadline errors
// count as Timeout; anything untyped is Unknown.
func KindOf(err error) Kind {
	if err == nil {
		return KindUnknown
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return KindTimeout
	}
	return KindUnknown
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, kind Kind) bool {
	return KindOf(err) == kind
}
