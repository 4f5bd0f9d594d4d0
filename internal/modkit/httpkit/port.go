package httpkit

import (
	"net/http"
	"strings"

	perr "orgcore/internal/platform/errors"
	pnet "orgcore/internal/platform/net"
)

// TokenFunc verifies a raw bearer token
type TokenFunc func(token string) (pnet.Principal, error)

// Port implements middleware.AuthPort over a TokenFunc
type Port struct {
	parse TokenFunc
}

// NewPortFunc builds a Port from a token parser
func NewPortFunc(fn TokenFunc) *Port { return &Port{parse: fn} }

// Bearer returns the raw token from the Authorization header
func Bearer(r *http.Request) (string, error) {
	h := strings.TrimSpace(r.Header.Get("Authorization"))
	const prefix = "bearer "
	if len(h) <= len(prefix) || !strings.EqualFold(h[:len(prefix)], prefix) {
		return "", perr.Unauthorizedf("missing bearer token")
	}
	raw := strings.TrimSpace(h[len(prefix):])
	if raw == "" {
		return "", perr.Unauthorizedf("missing bearer token")
	}
	return raw, nil
}

// Parse authenticates the request; every parser failure reads the same to the caller
func (p *Port) Parse(r *http.Request) (pnet.Principal, error) {
	raw, err := Bearer(r)
	if err != nil {
		return pnet.Principal{}, err
	}
	if p == nil || p.parse == nil {
		return pnet.Principal{}, perr.Unauthorizedf("invalid bearer token")
	}
	principal, err := p.parse(raw)
	if err != nil || principal.UserID == "" {
		return pnet.Principal{}, perr.Unauthorizedf("invalid bearer token")
	}
	return principal, nil
}
