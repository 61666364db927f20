package engine

import (
	"errors"
	"fmt"
)

// ErrorCode classifies engine failures for callers. Codes surface in
// Result.ErrorCode and in rollback events.
type ErrorCode string

const (
	CodeInvalidInput       ErrorCode = "invalid_input"
	CodeNotYourTurn        ErrorCode = "not_your_turn"
	CodeIllegalAction      ErrorCode = "illegal_action"
	CodeInsufficientChips  ErrorCode = "insufficient_chips"
	CodePhaseError         ErrorCode = "phase_error"
	CodeInvariantViolation ErrorCode = "invariant_violation"
	CodeStateCorruption    ErrorCode = "state_corruption"
)

// Fatal reports whether the code represents a defect rather than a
// recoverable command error. Fatal failures always roll back.
func (c ErrorCode) Fatal() bool {
	return c == CodeInvariantViolation || c == CodeStateCorruption
}

func (c ErrorCode) String() string {
	return string(c)
}

// Error is the engine's typed error. It carries an ErrorCode and optionally
// wraps an underlying cause.
type Error struct {
	Code ErrorCode
	msg  string
	err  error
}

func (e *Error) Error() string {
	if e.err != nil {
		return fmt.Sprintf("%s: %v", e.msg, e.err)
	}
	return e.msg
}

func (e *Error) Unwrap() error {
	return e.err
}

// Is allows errors.Is matching against another *Error by code.
func (e *Error) Is(target error) bool {
	var other *Error
	if errors.As(target, &other) {
		return e.Code == other.Code
	}
	return false
}

func newError(code ErrorCode, format string, args ...any) *Error {
	return &Error{Code: code, msg: fmt.Sprintf(format, args...)}
}

func wrapError(code ErrorCode, err error, format string, args ...any) *Error {
	return &Error{Code: code, msg: fmt.Sprintf(format, args...), err: err}
}

// CodeOf extracts the ErrorCode from err, or empty when err carries none.
func CodeOf(err error) ErrorCode {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}
