// Package net carries request scoped identity and the transport envelope
package net

import (
	"context"
	"net"
	"net/http"
	"strings"

	chimw "github.com/go-chi/chi/v5/middleware"
)

// Principal is the caller proven by the bearer token, before any org lookup
type Principal struct {
	UserID      string
	OrgID       string
	MFAVerified bool
}

type principalKey struct{}

// WithPrincipal stores p on ctx
func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

// PrincipalFrom returns the authenticated principal, if any
func PrincipalFrom(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(principalKey{}).(Principal)
	return p, ok && p.UserID != ""
}

// RequestID returns the chi request id on ctx
func RequestID(ctx context.Context) string { return chimw.GetReqID(ctx) }

// WithRequestID sets the request id the same way chi does
func WithRequestID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, chimw.RequestIDKey, id)
}

// ClientIP returns the caller address; RealIP middleware has already applied forwarding headers
func ClientIP(r *http.Request) string {
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return strings.TrimSpace(r.RemoteAddr)
}
