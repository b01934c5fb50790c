package middleware

import (
	"net/http"

	"github.com/go-account-api/internal/domain"
	"github.com/go-chi/chi/v5"
)

// RequireOwnerOrRole allows the request when the caller's user id equals the
// {param} URL segment, or when the caller holds one of roles.
func RequireOwnerOrRole(param string, roles ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, ok := ClaimsFromContext(r.Context())
			if !ok {
				writeJSONError(w, http.StatusUnauthorized, domain.ErrUnauthorized.Error())
				return
			}
			if claims.UserID == chi.URLParam(r, param) {
				next.ServeHTTP(w, r)
				return
			}
			for _, role := range roles {
				if domain.HasRole(claims.Roles, role) {
					next.ServeHTTP(w, r)
					return
				}
			}
			writeJSONError(w, http.StatusForbidden, domain.ErrForbidden.Error())
		})
	}
}
