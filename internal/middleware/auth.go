package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/beifitycom/backend/internal/models"
	"github.com/beifitycom/backend/internal/service"
)

type contextKey int

const (
	contextKeyAuthPayload contextKey = iota
)

// Auth extracts the bearer token, verifies it and stores the payload in the
// request context.
func Auth(ts service.TokenService) func(handler http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			tokenString, found := strings.CutPrefix(header, "Bearer ")
			if !found || tokenString == "" {
				http.Error(w, "missing bearer token", http.StatusUnauthorized)
				return
			}

			payload, err := ts.VerifyToken(tokenString)
			if err != nil {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), contextKeyAuthPayload, payload)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAdmin rejects requests whose verified token does not carry the
// admin role. Must run after Auth.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		payload, ok := AuthPayload(r.Context())
		if !ok || payload.Role != models.RoleAdmin {
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// WithAuthPayload returns a context carrying the token payload the way Auth
// stores it.
func WithAuthPayload(ctx context.Context, payload *models.TokenPayload) context.Context {
	return context.WithValue(ctx, contextKeyAuthPayload, payload)
}

// AuthPayload extracts the verified token payload from the context.
func AuthPayload(ctx context.Context) (*models.TokenPayload, bool) {
	payload, ok := ctx.Value(contextKeyAuthPayload).(*models.TokenPayload)
	return payload, ok
}
