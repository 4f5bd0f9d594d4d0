// Package errors provides the structured error type shared by every layer
//
// Import it as perr. Guards, repositories and services return *Error values
// whose code decides the transport status; nothing below the HTTP layer
// writes status codes directly
package errors

import (
	stderrs "errors"
	"fmt"
	"net/http"
	"time"
)

// FieldIssue describes one offending input field
type FieldIssue struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Error is the structured error with code, optional field details and cause
type Error struct {
	orig       error
	msg        string
	code       ErrorCode
	field      string
	op         string
	issues     []FieldIssue
	retryAfter time.Duration
}

// Wire is the JSON form returned by the API
type Wire struct {
	Code       ErrorCode    `json:"code"`
	Kind       string       `json:"kind"`
	Message    string       `json:"message"`
	Field      string       `json:"field,omitempty"`
	Issues     []FieldIssue `json:"issues,omitempty"`
	RetryAfter int          `json:"retry_after_seconds,omitempty"`
}

// Error implements error
func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.orig != nil {
		return fmt.Sprintf("%s: %v", e.msg, e.orig)
	}
	return e.msg
}

// Unwrap returns the wrapped cause
func (e *Error) Unwrap() error { return e.orig }

// Code returns the error code
func (e *Error) Code() ErrorCode { return e.code }

// Field returns the offending field, if any
func (e *Error) Field() string { return e.field }

// Op returns the operation label, if set
func (e *Error) Op() string { return e.op }

// Issues returns per-field validation details
func (e *Error) Issues() []FieldIssue { return append([]FieldIssue(nil), e.issues...) }

// ToWire converts an *Error to its wire payload
func (e *Error) ToWire() Wire {
	w := Wire{Code: e.code, Kind: e.code.String(), Message: e.msg, Field: e.field, Issues: e.Issues()}
	if e.retryAfter > 0 {
		w.RetryAfter = int((e.retryAfter + time.Second - 1) / time.Second)
	}
	return w
}

// WireFrom converts any error into a wire payload
// Foreign errors are reported as unknown with a generic message so driver text never leaks
func WireFrom(err error) Wire {
	if err == nil {
		return Wire{}
	}
	if e, ok := As(err); ok {
		return e.ToWire()
	}
	return Wire{Code: ErrorCodeUnknown, Kind: ErrorCodeUnknown.String(), Message: "internal error"}
}

// As unwraps and returns (*Error, true) if err is one of ours
func As(err error) (*Error, bool) {
	var e *Error
	if stderrs.As(err, &e) {
		return e, true
	}
	return nil, false
}

// Root returns the deepest wrapped cause
func Root(err error) error {
	for err != nil {
		u := stderrs.Unwrap(err)
		if u == nil {
			return err
		}
		err = u
	}
	return nil
}

// CodeOf extracts the ErrorCode of err, defaulting to Unknown
func CodeOf(err error) ErrorCode {
	if e, ok := As(err); ok {
		return e.code
	}
	return ErrorCodeUnknown
}

// IsCode reports whether err carries code
func IsCode(err error, code ErrorCode) bool { return err != nil && CodeOf(err) == code }

// HTTPStatus returns the mapped HTTP status for any error
func HTTPStatus(err error) int {
	if err == nil {
		return http.StatusOK
	}
	return HTTPStatusCode(CodeOf(err))
}

// HTTP bundles status and wire payload for handlers
func HTTP(err error) (int, Wire) {
	if err == nil {
		return http.StatusOK, Wire{}
	}
	return HTTPStatus(err), WireFrom(err)
}

// WithField returns a copy of err with field set; foreign errors pass through
func WithField(err error, field string) error {
	if e, ok := As(err); ok {
		c := *e
		c.field = field
		return &c
	}
	return err
}

// WithOp returns a copy of err labelled with op; foreign errors pass through
func WithOp(err error, op string) error {
	if e, ok := As(err); ok {
		c := *e
		c.op = op
		return &c
	}
	return err
}

// New returns an *Error with code and message
func New(code ErrorCode, msg string) error { return &Error{code: code, msg: msg} }

// Newf returns an *Error with code and formatted message
func Newf(code ErrorCode, format string, a ...any) error {
	return &Error{code: code, msg: fmt.Sprintf(format, a...)}
}

// Wrap returns an *Error wrapping orig
func Wrap(orig error, code ErrorCode, msg string) error {
	return &Error{code: code, msg: msg, orig: orig}
}

// Wrapf returns an *Error wrapping orig with a formatted message
func Wrapf(orig error, code ErrorCode, format string, a ...any) error {
	return &Error{code: code, msg: fmt.Sprintf(format, a...), orig: orig}
}

// WrapIf wraps only when err != nil
func WrapIf(err error, code ErrorCode, msg string) error {
	if err == nil {
		return nil
	}
	return Wrap(err, code, msg)
}

// Retryable reports whether err is a transient backend condition
func Retryable(err error) bool {
	if IsCode(err, ErrorCodeUnavailable) {
		return true
	}
	return IsRetryable(err)
}
