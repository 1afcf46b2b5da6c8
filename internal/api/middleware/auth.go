package middleware

import (
	"context"
	"net/http"

	"github.com/ratiba-events/server/internal/api/problem"
	"github.com/ratiba-events/server/internal/auth"
)

type contextKeyAuth string

const organizerClaimsKey contextKeyAuth = "organizerClaims"

// JWTAuth accepts a Bearer token carrying a role allowed to manage events.
func JWTAuth(manager *auth.JWTManager, env string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if manager == nil {
				problem.Write(w, r, http.StatusUnauthorized, problem.TypeUnauthorized, "Unauthorized", problem.ErrUnauthorized, env)
				return
			}

			token, err := auth.TokenFromHeader(r.Header.Get("Authorization"))
			if err != nil {
				problem.Write(w, r, http.StatusUnauthorized, problem.TypeUnauthorized, "Missing or malformed bearer token", err, env)
				return
			}

			claims, err := manager.Validate(token)
			if err != nil {
				problem.Write(w, r, http.StatusUnauthorized, problem.TypeUnauthorized, "Invalid token", err, env)
				return
			}

			if !auth.CanManageEvents(claims.Role) {
				problem.Write(w, r, http.StatusForbidden, problem.TypeForbidden, "Insufficient permissions", problem.ErrForbidden, env)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithClaims(r.Context(), claims)))
		})
	}
}

// WithClaims stores organizer claims on ctx.
func WithClaims(ctx context.Context, claims *auth.Claims) context.Context {
	return context.WithValue(ctx, organizerClaimsKey, claims)
}

// Claims returns the token claims stored by JWTAuth, or nil.
func Claims(r *http.Request) *auth.Claims {
	if r == nil {
		return nil
	}
	claims, _ := r.Context().Value(organizerClaimsKey).(*auth.Claims)
	return claims
}
