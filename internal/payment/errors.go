package payment

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a payment failure.
type ErrorKind string

// Failure kinds.
const (
	KindFormat      ErrorKind = "format"
	KindInvalid     ErrorKind = "invalid"
	KindRateLimited ErrorKind = "rate_limited"
	KindNoSession   ErrorKind = "no_session"
	KindExpired     ErrorKind = "expired"
	KindBadCode     ErrorKind = "bad_code"
)

// Sentinel errors matching each kind, for errors.Is.
var (
	ErrFormat      = errors.New("invalid phone number format")
	ErrInvalid     = errors.New("invalid payment request")
	ErrRateLimited = errors.New("too many payment attempts")
	ErrNoSession   = errors.New("no payment session")
	ErrExpired     = errors.New("payment session expired")
	ErrBadCode     = errors.New("incorrect confirmation code")
)

var kindErrors = map[ErrorKind]error{
	KindFormat:      ErrFormat,
	KindInvalid:     ErrInvalid,
	KindRateLimited: ErrRateLimited,
	KindNoSession:   ErrNoSession,
	KindExpired:     ErrExpired,
	KindBadCode:     ErrBadCode,
}

// Error is a typed payment failure.
type Error struct {
	Kind   ErrorKind
	Detail string
	Err    error
}

func (e *Error) Error() string {
	msg := kindErrors[e.Kind].Error()
	if e.Detail != "" {
		msg = fmt.Sprintf("%s: %s", msg, e.Detail)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

// Unwrap exposes the kind's sentinel and the underlying cause.
func (e *Error) Unwrap() []error {
	errs := []error{kindErrors[e.Kind]}
	if e.Err != nil {
		errs = append(errs, e.Err)
	}
	return errs
}

// KindOf extracts the failure kind from err, or "" if err is not a payment error.
func KindOf(err error) ErrorKind {
	var pe *Error
	if errors.As(err, &pe) {
		return pe.Kind
	}
	return ""
}
