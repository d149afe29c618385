package guard

import (
	"context"
	"net/http"

	"github.com/aussiebroadwan/gatekeeper/internal/iam/domain"
	"github.com/aussiebroadwan/gatekeeper/pkg/httpx"
)

type principalCtxKey struct{}

// ContextWithPrincipal attaches the resolved principal to the context.
func ContextWithPrincipal(ctx context.Context, p domain.Principal) context.Context {
	return context.WithValue(ctx, principalCtxKey{}, p)
}

// PrincipalFromContext returns the request principal, or the zero
// principal when the route authenticated as None.
func PrincipalFromContext(ctx context.Context) domain.Principal {
	p, _ := ctx.Value(principalCtxKey{}).(domain.Principal)
	return p
}

// Authenticate builds middleware that resolves the request's credentials
// against the given auth types and stores the principal in the context.
// Failure ends the request with 401 and a WWW-Authenticate challenge.
func Authenticate(d *Dispatcher, types ...AuthType) httpx.Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal, err := d.Authenticate(r.Context(), CredentialsFromRequest(r), types)
			if err != nil {
				w.Header().Set("WWW-Authenticate", `Bearer realm="gatekeeper"`)
				httpx.WriteError(w, http.StatusUnauthorized, "unauthorized", "authentication required")
				return
			}

			next.ServeHTTP(w, r.WithContext(ContextWithPrincipal(r.Context(), principal)))
		})
	}
}

// RequireRoles builds middleware gating the route on the principal's role.
// It must sit inside Authenticate in the chain.
func RequireRoles(roles ...domain.Role) httpx.Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if err := Authorize(PrincipalFromContext(r.Context()), roles); err != nil {
				httpx.WriteError(w, http.StatusForbidden, "forbidden", "insufficient role")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
