package net

import (
	"net/http"
	"strconv"

	perr "orgcore/internal/platform/errors"
)

// Wire is the body every endpoint answers with
type Wire struct {
	StatusCode int               `json:"status_code"`
	Status     string            `json:"status"`
	Code       perr.ErrorCode    `json:"code,omitempty"`
	Kind       string            `json:"kind,omitempty"`
	Error      string            `json:"error,omitempty"`
	Field      string            `json:"field,omitempty"`
	Issues     []perr.FieldIssue `json:"issues,omitempty"`
	RetryAfter int               `json:"retry_after_seconds,omitempty"`
	RequestID  string            `json:"request_id,omitempty"`
	Data       any               `json:"data,omitempty"`
}

// Success builds a data envelope with status
func Success(status int, data any, reqID string) (int, Wire) {
	return status, Wire{
		StatusCode: status,
		Status:     http.StatusText(status),
		RequestID:  reqID,
		Data:       data,
	}
}

// OK builds a 200 envelope
func OK(data any, reqID string) (int, Wire) { return Success(http.StatusOK, data, reqID) }

// Error builds an error envelope; foreign errors are reported as internal
func Error(err error, reqID string) (int, Wire) {
	if err == nil {
		return OK(nil, reqID)
	}
	status, w := perr.HTTP(err)
	return status, Wire{
		StatusCode: status,
		Status:     http.StatusText(status),
		Code:       w.Code,
		Kind:       w.Kind,
		Error:      w.Message,
		Field:      w.Field,
		Issues:     w.Issues,
		RetryAfter: w.RetryAfter,
		RequestID:  reqID,
	}
}

// ErrorHeaders sets the headers an error response needs before the status is written
func ErrorHeaders(h http.Header, err error) {
	if s := perr.WireFrom(err).RetryAfter; s > 0 {
		h.Set("Retry-After", strconv.Itoa(s))
	}
}
