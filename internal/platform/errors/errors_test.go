package errors

import (
	stderrs "errors"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
)

func TestHTTPStatusCodeMapping(t *testing.T) {
	cases := []struct {
		code ErrorCode
		want int
	}{
		{ErrorCodeNotFound, http.StatusNotFound},
		{ErrorCodeInvalidArgument, http.StatusUnprocessableEntity},
		{ErrorCodeDuplicateKey, http.StatusConflict},
		{ErrorCodeConflict, http.StatusConflict},
		{ErrorCodeValidation, http.StatusBadRequest},
		{ErrorCodeJSON, http.StatusBadRequest},
		{ErrorCodeUnauthorized, http.StatusUnauthorized},
		{ErrorCodeForbidden, http.StatusForbidden},
		{ErrorCodeTooManyRequests, http.StatusTooManyRequests},
		{ErrorCodeUnavailable, http.StatusServiceUnavailable},
		{ErrorCodeDB, http.StatusInternalServerError},
		{ErrorCodeUnknown, http.StatusInternalServerError},
		{9999, http.StatusInternalServerError},
	}
	for _, c := range cases {
		if got := HTTPStatusCode(c.code); got != c.want {
			t.Fatalf("HTTPStatusCode(%v) = %d, want %d", c.code, got, c.want)
		}
	}
}

func TestDeniedIsUniform(t *testing.T) {
	a := Denied("tenant_write")
	b := Denied("residency")
	if a.Error() != b.Error() {
		t.Fatalf("denials differ: %q vs %q", a.Error(), b.Error())
	}
	if !IsAuthorization(a) || HTTPStatus(a) != http.StatusForbidden {
		t.Fatalf("denial should be 403 authorization, got %d", HTTPStatus(a))
	}
	e, _ := As(a)
	if e.Op() != "tenant_write" {
		t.Fatalf("op = %q", e.Op())
	}
	if w := WireFrom(b); w.Message != "access denied" || w.Kind != "forbidden" {
		t.Fatalf("wire = %+v", w)
	}
}

func TestRateLimitedCarriesRetryAfter(t *testing.T) {
	err := fmt.Errorf("wrapped: %w", RateLimited(1500*time.Millisecond))
	d, ok := RetryAfter(err)
	if !ok || d != 1500*time.Millisecond {
		t.Fatalf("RetryAfter = %v %v", d, ok)
	}
	if w := WireFrom(err); w.RetryAfter != 2 {
		t.Fatalf("wire retry = %d, want 2", w.RetryAfter)
	}
	if d, _ := RetryAfter(RateLimited(0)); d != time.Second {
		t.Fatalf("min retry = %v", d)
	}
	if _, ok := RetryAfter(ErrNotFound); ok {
		t.Fatalf("not found should carry no retry hint")
	}
}

func TestInvalidIssues(t *testing.T) {
	one := Validationf("effectiveFrom", "must be before %s", "effectiveTo")
	e, ok := As(one)
	if !ok || e.Field() != "effectiveFrom" || e.Error() != "must be before effectiveTo" {
		t.Fatalf("single issue = %+v", e)
	}
	many := Invalid(FieldIssue{"a", "x"}, FieldIssue{"b", "y"})
	w := WireFrom(many)
	if w.Message != "validation failed" || len(w.Issues) != 2 || w.Field != "" {
		t.Fatalf("multi wire = %+v", w)
	}
}

func TestInfraAndForeignErrors(t *testing.T) {
	if Infra(nil, "x") != nil {
		t.Fatalf("Infra(nil) should be nil")
	}
	raw := stderrs.New("dial tcp: refused")
	err := Infra(raw, "settings load")
	if CodeOf(err) != ErrorCodeUnavailable || !stderrs.Is(err, raw) {
		t.Fatalf("Infra = %v", err)
	}
	if Infra(ErrAccessDenied, "x") != ErrAccessDenied {
		t.Fatalf("Infra must not rewrap classified errors")
	}
	if w := WireFrom(raw); w.Message != "internal error" {
		t.Fatalf("foreign error leaked: %+v", w)
	}
	if !Retryable(err) {
		t.Fatalf("unavailable should be retryable")
	}
}

func TestWithFieldWithOpCopyOnWrite(t *testing.T) {
	base := New(ErrorCodeConflict, "stale")
	f := WithField(base, "updatedAt")
	o := WithOp(f, "docstore.save")
	if e, _ := As(base); e.Field() != "" || e.Op() != "" {
		t.Fatalf("base mutated")
	}
	if e, _ := As(o); e.Field() != "updatedAt" || e.Op() != "docstore.save" {
		t.Fatalf("copy = %+v", e)
	}
	foreign := stderrs.New("x")
	if WithField(foreign, "f") != foreign {
		t.Fatalf("foreign should pass through")
	}
}

func TestRootAndCodeOf(t *testing.T) {
	src := stderrs.New("root")
	wrapped := fmt.Errorf("outer: %w", Wrap(src, ErrorCodeDB, "db"))
	if Root(wrapped) != src {
		t.Fatalf("Root mismatch")
	}
	if !IsCode(wrapped, ErrorCodeDB) || IsCode(nil, ErrorCodeUnknown) {
		t.Fatalf("IsCode mismatch")
	}
	if ErrorCodeTooManyRequests.String() != "rate_limited" || ErrorCode(999).String() != "unknown" {
		t.Fatalf("String mismatch")
	}
}

func TestFromPostgres(t *testing.T) {
	cases := []struct {
		code string
		want ErrorCode
	}{
		{"23505", ErrorCodeDuplicateKey},
		{"23503", ErrorCodeInvalidArgument},
		{"23514", ErrorCodeValidation},
		{"57P03", ErrorCodeUnavailable},
		{"XXXXX", ErrorCodeDB},
	}
	for _, c := range cases {
		err := FromPostgres(&pgconn.PgError{Code: c.code, ColumnName: "org_id"}, "insert")
		if CodeOf(err) != c.want {
			t.Fatalf("FromPostgres(%s) = %v, want %v", c.code, CodeOf(err), c.want)
		}
		if e, _ := As(err); e.Field() != "org_id" {
			t.Fatalf("field not attached for %s", c.code)
		}
	}
	if CodeOf(FromPostgres(stderrs.New("pool closed"), "q")) != ErrorCodeUnavailable {
		t.Fatalf("non-pg driver error should be unavailable")
	}
	if FromPostgres(ErrAccessDenied, "q") != ErrAccessDenied {
		t.Fatalf("classified errors pass through")
	}
	if !IsRetryable(&pgconn.PgError{Code: "40001"}) || IsRetryable(&pgconn.PgError{Code: "23505"}) {
		t.Fatalf("IsRetryable mismatch")
	}
	if !IsDuplicateKey(fmt.Errorf("x: %w", &pgconn.PgError{Code: "23505"})) {
		t.Fatalf("IsDuplicateKey through wrap")
	}
}
