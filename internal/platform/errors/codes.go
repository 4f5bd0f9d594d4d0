package errors

import "net/http"

// ErrorCode is the machine facing classification carried on every *Error
// Values are part of the wire contract; append only
type ErrorCode uint16

const (
	// ErrorCodeUnknown is for unclassified errors
	ErrorCodeUnknown ErrorCode = iota
	// ErrorCodePanic is for panics recovered by middleware
	ErrorCodePanic
	// ErrorCodeUnavailable is for infrastructure failures where a retry may succeed
	ErrorCodeUnavailable
	// ErrorCodeTooManyRequests is for throttled mutations
	ErrorCodeTooManyRequests
	// ErrorCodeConflict is for optimistic concurrency losses
	ErrorCodeConflict
	// ErrorCodeUnauthorized is for missing or invalid credentials
	ErrorCodeUnauthorized
	// ErrorCodeForbidden is for authorization denials
	ErrorCodeForbidden
	// ErrorCodeInvalidArgument is for well formed input that breaks a domain rule
	ErrorCodeInvalidArgument
	// ErrorCodeValidation is for malformed input
	ErrorCodeValidation
	// ErrorCodeJSON is for undecodable request bodies
	ErrorCodeJSON
	// ErrorCodeNotFound is for missing resources inside the caller's tenant
	ErrorCodeNotFound
	// ErrorCodeDuplicateKey is for unique constraint violations
	ErrorCodeDuplicateKey
	// ErrorCodeDB is for general database errors
	ErrorCodeDB
)

var codeNames = map[ErrorCode]string{
	ErrorCodeUnknown:         "unknown",
	ErrorCodePanic:           "panic",
	ErrorCodeUnavailable:     "unavailable",
	ErrorCodeTooManyRequests: "rate_limited",
	ErrorCodeConflict:        "conflict",
	ErrorCodeUnauthorized:    "unauthorized",
	ErrorCodeForbidden:       "forbidden",
	ErrorCodeInvalidArgument: "invalid_argument",
	ErrorCodeValidation:      "validation",
	ErrorCodeJSON:            "json",
	ErrorCodeNotFound:        "not_found",
	ErrorCodeDuplicateKey:    "duplicate_key",
	ErrorCodeDB:              "db",
}

// String returns the stable snake_case name of the code
func (c ErrorCode) String() string {
	if s, ok := codeNames[c]; ok {
		return s
	}
	return "unknown"
}

// HTTPStatusCode maps an ErrorCode onto the transport status
func HTTPStatusCode(c ErrorCode) int {
	switch c {
	case ErrorCodeNotFound:
		return http.StatusNotFound
	case ErrorCodeInvalidArgument:
		return http.StatusUnprocessableEntity
	case ErrorCodeDuplicateKey, ErrorCodeConflict:
		return http.StatusConflict
	case ErrorCodeValidation, ErrorCodeJSON:
		return http.StatusBadRequest
	case ErrorCodeUnauthorized:
		return http.StatusUnauthorized
	case ErrorCodeForbidden:
		return http.StatusForbidden
	case ErrorCodeTooManyRequests:
		return http.StatusTooManyRequests
	case ErrorCodeUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
