package middleware

import (
	"context"
	"log/slog"
	"net/http"

	h "teamup/internal/delivery/http/helpers"
	"teamup/internal/domain"
)

type contextKey string

const principalKey contextKey = "principal"

// SetPrincipal returns a context carrying the authenticated caller. Used by auth middleware.
func SetPrincipal(ctx context.Context, p *domain.Principal) context.Context {
	return context.WithValue(ctx, principalKey, p)
}

// PrincipalFromContext returns the authenticated caller, if present.
func PrincipalFromContext(ctx context.Context) (*domain.Principal, bool) {
	p, ok := ctx.Value(principalKey).(*domain.Principal)
	return p, ok && p != nil
}

// RequireAuth returns a wrapper that authenticates the Authorization header and
// sets the principal in the request context. Unauthenticated requests get 401
// and next is not called. A revocation cache outage is reported as 500.
func RequireAuth(gatekeeper domain.Gatekeeper, logger *slog.Logger) func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			principal, err := gatekeeper.Authenticate(r.Context(), r.Header.Get("Authorization"))
			if err != nil {
				h.WriteDomainError(w, r, logger, err)
				return
			}
			next(w, r.WithContext(SetPrincipal(r.Context(), principal)))
		}
	}
}
