package api

import (
	"net/http"

	"workorderpro/internal/auth"
)

// SessionAuth attaches the verified caller identity to the request context.
// The verification strategy is injected at startup (token or header based).
func SessionAuth(v auth.Verifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, err := v.Verify(r)
			if err != nil {
				WriteError(w, http.StatusUnauthorized, "UNAUTHORIZED", "invalid or missing session")
				return
			}
			next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), id)))
		})
	}
}

// RequireInternal restricts a route group to admin/employee callers.
func RequireInternal(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := IdentityFromContext(r.Context())
		if !id.IsInternal() {
			WriteError(w, http.StatusForbidden, "FORBIDDEN", "internal role required")
			return
		}
		next.ServeHTTP(w, r)
	})
}
