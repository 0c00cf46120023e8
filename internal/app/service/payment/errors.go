package payment

import (
	"context"
	"errors"
)

// Error kinds. Every error returned by Submit matches exactly one of these
// with errors.Is.
var (
	ErrNotAuthenticated     = errors.New("not authenticated")
	ErrValidation           = errors.New("validation failed")
	ErrConfiguration        = errors.New("payment configuration missing")
	ErrUpload               = errors.New("screenshot upload failed")
	ErrPersistence          = errors.New("transaction persistence failed")
	ErrSubmissionInProgress = errors.New("submission already in progress")
)

const genericMessage = "Something went wrong. Please try again."

// Error carries the text shown to the payer next to its kind and cause.
type Error struct {
	kind  error
	msg   string
	cause error
}

func newError(kind error, msg string, cause error) *Error {
	return &Error{kind: kind, msg: msg, cause: cause}
}

func (e *Error) Error() string {
	if e.cause != nil {
		return e.kind.Error() + ": " + e.msg + ": " + e.cause.Error()
	}
	return e.kind.Error() + ": " + e.msg
}

func (e *Error) Unwrap() []error {
	if e.cause != nil {
		return []error{e.kind, e.cause}
	}
	return []error{e.kind}
}

// Kind returns the sentinel this error belongs to.
func (e *Error) Kind() error { return e.kind }

// Message is the plain text for the payer.
func (e *Error) Message() string { return e.msg }

// UserMessage returns the payer-facing text for err.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	var pe *Error
	if errors.As(err, &pe) {
		return pe.msg
	}
	return genericMessage
}

// IsRetryable reports whether the same submission may succeed if sent again.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrUpload) || errors.Is(err, ErrPersistence)
}

func isTimeout(err error) bool {
	return errors.Is(err, context.DeadlineExceeded)
}
