package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/lilights/tunedeck/internal/api"
)

type ctxClaimsKey struct{}

// ClaimsFromContext returns the token claims RequireUser stored, if any.
func ClaimsFromContext(ctx context.Context) (*TokenClaims, bool) {
	claims, ok := ctx.Value(ctxClaimsKey{}).(*TokenClaims)
	return claims, ok
}

// RequireUser authenticates the bearer token and rejects requests whose
// token identifies a different user than the {userId} route parameter.
func (s *Server) RequireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if header == "" {
			api.WriteError(w, http.StatusUnauthorized, api.KindUnauthorized, "missing Authorization header")
			return
		}
		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			api.WriteError(w, http.StatusUnauthorized, api.KindUnauthorized, "invalid Authorization header")
			return
		}

		claims, err := s.parseToken(parts[1])
		if err != nil {
			api.WriteError(w, http.StatusUnauthorized, api.KindUnauthorized, "invalid token")
			return
		}

		if userID := chi.URLParam(r, "userId"); userID != "" && userID != claims.UserID {
			api.WriteError(w, http.StatusForbidden, api.KindForbidden, "token does not match user")
			return
		}

		ctx := context.WithValue(r.Context(), ctxClaimsKey{}, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
