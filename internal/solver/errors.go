package solver

import "fmt"

type ErrorCode string

const (
	ErrorInvalidInput    ErrorCode = "INVALID_INPUT"
	ErrorUnknownProvider ErrorCode = "UNKNOWN_PROVIDER"
	ErrorInternal        ErrorCode = "INTERNAL_ERROR"
)

// Error is the typed failure returned before any provider is invoked.
// Provider-level failures never surface through it; those live in Outcome.
type Error struct {
	Code   ErrorCode
	Reason string
	Err    error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err == nil {
		return fmt.Sprintf("solver: %s (%s)", e.Code, e.Reason)
	}
	return fmt.Sprintf("solver: %s (%s): %v", e.Code, e.Reason, e.Err)
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

func newError(code ErrorCode, reason string, err error) *Error {
	return &Error{Code: code, Reason: reason, Err: err}
}
