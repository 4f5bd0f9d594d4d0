// Package http provides the identity transport: the per request authorizer and /me
package http

import (
	stdhttp "net/http"

	"orgcore/internal/core/authz"
	"orgcore/internal/modkit/httpkit"
	perr "orgcore/internal/platform/errors"
	"orgcore/internal/platform/logger"
	pnet "orgcore/internal/platform/net"
	"orgcore/internal/services/identity/domain"
)

// Authorizer builds the authorization context for an authenticated request
func Authorizer(b domain.Builder) httpkit.Authorizer {
	return func(r *stdhttp.Request) (*stdhttp.Request, error) {
		p, ok := pnet.PrincipalFrom(r.Context())
		if !ok {
			return nil, perr.Unauthorizedf("missing bearer token")
		}
		a, err := b.Build(r.Context(), domain.Identity{
			UserID:        p.UserID,
			OrgID:         p.OrgID,
			IP:            pnet.ClientIP(r),
			UserAgent:     r.UserAgent(),
			CorrelationID: pnet.RequestID(r.Context()),
			MFAVerified:   p.MFAVerified,
			AuditSource:   authz.SourceAPI,
		})
		if err != nil {
			return nil, err
		}
		ctx, err := authz.Attach(r.Context(), a)
		if err != nil {
			return nil, err
		}
		ctx = logger.WithActor(ctx, a.OrgID(), a.UserID())
		return r.WithContext(ctx), nil
	}
}

// Register mounts identity endpoints
func Register(r httpkit.Router) {
	httpkit.GetJSON(r, "/me", me)
}

// swagger:route GET /identity/me Identity identityMe
// @Summary Return the caller's authorization context
// @Tags Identity
// @Produce json
// @Success 200 {object} authz.Snapshot "ok"
// @Security BearerAuth
// @Router /identity/me [get]
func me(r *stdhttp.Request) (any, error) {
	a, err := httpkit.Authz(r)
	if err != nil {
		return nil, err
	}
	return a.Snapshot(), nil
}
