package middleware

import (
	"context"
	"net/http"
	"strings"

	"go.uber.org/zap"
)

type contextKey string

const principalContextKey contextKey = "principal_id"

// Authenticator validates bearer JWTs and loads the authenticated user id
// into the request context. Requests without a valid token are rejected
// before any handler runs.
func Authenticator(secret string, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				http.Error(w, "missing authorization header", http.StatusUnauthorized)
				return
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
				http.Error(w, "invalid authorization header", http.StatusUnauthorized)
				return
			}

			userID, err := ParseToken(secret, parts[1])
			if err != nil {
				logger.Debug("token rejected", zap.Error(err))
				http.Error(w, "invalid token", http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), principalContextKey, userID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// PrincipalID extracts the authenticated user id from the request context
func PrincipalID(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(principalContextKey).(string)
	return id, ok && id != ""
}

// WithPrincipal returns a context carrying the given user id. Test helper.
func WithPrincipal(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, principalContextKey, userID)
}
