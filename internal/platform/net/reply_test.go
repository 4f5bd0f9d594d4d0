package net

import (
	"errors"
	"net/http"
	"testing"
	"time"

	perr "orgcore/internal/platform/errors"
)

func TestErrorEnvelope(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name   string
		err    error
		status int
		msg    string
	}{
		{"denied", perr.Denied("tenant_mismatch"), http.StatusForbidden, "access denied"},
		{"conflict", perr.Conflictf("stale"), http.StatusConflict, "stale"},
		{"foreign", errors.New("pq: password authentication failed"), http.StatusInternalServerError, "internal error"},
		{"infra", perr.Infra(errors.New("dial tcp"), "load document"), http.StatusServiceUnavailable, "load document"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			status, w := Error(tc.err, "req-1")
			if status != tc.status || w.StatusCode != tc.status {
				t.Fatalf("status = %d/%d, want %d", status, w.StatusCode, tc.status)
			}
			if w.Error != tc.msg {
				t.Fatalf("error = %q, want %q", w.Error, tc.msg)
			}
			if w.RequestID != "req-1" {
				t.Fatalf("request id = %q", w.RequestID)
			}
		})
	}
}

func TestValidationIssuesSurvive(t *testing.T) {
	t.Parallel()

	err := perr.Invalid(
		perr.FieldIssue{Field: "currency", Message: "currency is required"},
		perr.FieldIssue{Field: "amountCents", Message: "amountCents must be at least 0"},
	)
	status, w := Error(err, "")
	if status != http.StatusBadRequest {
		t.Fatalf("status = %d", status)
	}
	if len(w.Issues) != 2 || w.Issues[0].Field != "currency" {
		t.Fatalf("issues = %+v", w.Issues)
	}
	if w.Kind != "validation" {
		t.Fatalf("kind = %q", w.Kind)
	}
}

func TestRetryAfterHeader(t *testing.T) {
	t.Parallel()

	h := http.Header{}
	err := perr.RateLimited(1500 * time.Millisecond)
	ErrorHeaders(h, err)
	if got := h.Get("Retry-After"); got != "2" {
		t.Fatalf("Retry-After = %q, want 2", got)
	}
	_, w := Error(err, "")
	if w.RetryAfter != 2 {
		t.Fatalf("retry_after_seconds = %d", w.RetryAfter)
	}

	h = http.Header{}
	ErrorHeaders(h, perr.Denied("x"))
	if h.Get("Retry-After") != "" {
		t.Fatal("unexpected Retry-After on a non throttling error")
	}
}

func TestPrincipalRoundTrip(t *testing.T) {
	t.Parallel()

	req, _ := http.NewRequest(http.MethodGet, "/", nil)
	if _, ok := PrincipalFrom(req.Context()); ok {
		t.Fatal("unexpected principal on a bare context")
	}
	ctx := WithPrincipal(req.Context(), Principal{UserID: "u1", OrgID: "o1", MFAVerified: true})
	p, ok := PrincipalFrom(ctx)
	if !ok || p.UserID != "u1" || p.OrgID != "o1" || !p.MFAVerified {
		t.Fatalf("principal = %+v ok=%v", p, ok)
	}
	if RequestID(WithRequestID(ctx, "abc")) != "abc" {
		t.Fatal("request id not stored")
	}
}

func TestClientIP(t *testing.T) {
	t.Parallel()

	req, _ := http.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "10.1.2.3:5555"
	if got := ClientIP(req); got != "10.1.2.3" {
		t.Fatalf("ClientIP = %q", got)
	}
	req.RemoteAddr = "10.1.2.4"
	if got := ClientIP(req); got != "10.1.2.4" {
		t.Fatalf("ClientIP = %q", got)
	}
}
