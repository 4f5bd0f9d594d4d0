package middleware

import (
	"net/http"

	"orgcore/internal/platform/logger"
	pnet "orgcore/internal/platform/net"
)

// AuthPort turns a request into an authenticated principal
type AuthPort interface {
	Parse(r *http.Request) (pnet.Principal, error)
}

// Writer renders an error response
type Writer func(w http.ResponseWriter, r *http.Request, err error)

// Auth rejects requests the port cannot authenticate and stores the principal on the context
func Auth(p AuthPort, write Writer) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal, err := p.Parse(r)
			if err != nil {
				write(w, r, err)
				return
			}
			ctx := pnet.WithPrincipal(r.Context(), principal)
			ctx = logger.WithActor(ctx, principal.OrgID, principal.UserID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
