package errors

import (
	"fmt"
	"time"
)

// accessDenied is the only message an authorization failure ever carries
// Wrong tenant, missing permission and residency mismatch all read the same
const accessDenied = "access denied"

// ErrAccessDenied is the authorization failure sentinel
var ErrAccessDenied = New(ErrorCodeForbidden, accessDenied)

// ErrNotFound is a sentinel not found error
var ErrNotFound = New(ErrorCodeNotFound, "not found")

// Denied returns an authorization failure labelled with the guard that raised it
// The label is for logs only and never reaches the wire
func Denied(op string) error { return &Error{code: ErrorCodeForbidden, msg: accessDenied, op: op} }

// IsAuthorization reports whether err is an authorization failure
func IsAuthorization(err error) bool { return IsCode(err, ErrorCodeForbidden) }

// Invalid returns a validation error carrying per-field issues
func Invalid(issues ...FieldIssue) error {
	msg := "validation failed"
	field := ""
	if len(issues) == 1 {
		msg = issues[0].Message
		field = issues[0].Field
	}
	return &Error{code: ErrorCodeValidation, msg: msg, field: field, issues: issues}
}

// Validationf returns a single-field validation error
func Validationf(field, format string, a ...any) error {
	return Invalid(FieldIssue{Field: field, Message: fmt.Sprintf(format, a...)})
}

// RateLimited returns a throttling error with a retry hint
func RateLimited(retryAfter time.Duration) error {
	if retryAfter < time.Second {
		retryAfter = time.Second
	}
	return &Error{code: ErrorCodeTooManyRequests, msg: "too many requests", retryAfter: retryAfter}
}

// RetryAfter returns the retry hint carried by a throttling error
func RetryAfter(err error) (time.Duration, bool) {
	if e, ok := As(err); ok && e.retryAfter > 0 {
		return e.retryAfter, true
	}
	return 0, false
}

// Infra wraps a backend failure (store, cache, network) as unavailable
func Infra(orig error, msg string) error {
	if orig == nil {
		return nil
	}
	if e, ok := As(orig); ok && e.code != ErrorCodeUnknown {
		return orig
	}
	return Wrap(orig, ErrorCodeUnavailable, msg)
}

// NotFoundf returns a not found error
func NotFoundf(format string, a ...any) error { return Newf(ErrorCodeNotFound, format, a...) }

// InvalidArgf returns an invalid argument error
func InvalidArgf(format string, a ...any) error { return Newf(ErrorCodeInvalidArgument, format, a...) }

// DuplicateKeyf returns a duplicate key error
func DuplicateKeyf(format string, a ...any) error { return Newf(ErrorCodeDuplicateKey, format, a...) }

// DBf returns a general database error
func DBf(format string, a ...any) error { return Newf(ErrorCodeDB, format, a...) }

// JSONErrf returns a JSON error
func JSONErrf(format string, a ...any) error { return Newf(ErrorCodeJSON, format, a...) }

// PanicErrf returns a panic error
func PanicErrf(format string, a ...any) error { return Newf(ErrorCodePanic, format, a...) }

// Unauthorizedf returns an unauthenticated error
func Unauthorizedf(format string, a ...any) error { return Newf(ErrorCodeUnauthorized, format, a...) }

// Forbiddenf returns a forbidden error with a custom message
// Prefer Denied for guard failures
func Forbiddenf(format string, a ...any) error { return Newf(ErrorCodeForbidden, format, a...) }

// Conflictf returns a conflict error
func Conflictf(format string, a ...any) error { return Newf(ErrorCodeConflict, format, a...) }

// Unavailablef returns an unavailable error
func Unavailablef(format string, a ...any) error { return Newf(ErrorCodeUnavailable, format, a...) }

// Internalf returns a generic internal error
func Internalf(format string, a ...any) error { return Newf(ErrorCodeUnknown, format, a...) }
