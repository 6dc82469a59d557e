package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/edvin/borgwatch/internal/api/response"
	"github.com/edvin/borgwatch/internal/auth"
)

type contextKey string

const (
	userKey   contextKey = "user"
	apiKeyKey contextKey = "api_key"
)

// JWTAuth returns middleware that validates Bearer JWTs and injects the
// authenticated username into the request context.
func JWTAuth(svc *auth.Service) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := bearerToken(r)
			if !ok {
				response.WriteError(w, http.StatusUnauthorized, "missing or malformed authorization header")
				return
			}

			user, err := svc.ValidateToken(token)
			if err != nil {
				response.WriteError(w, http.StatusUnauthorized, err.Error())
				return
			}

			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), user)))
		})
	}
}

// APIKeyAuth returns middleware for push endpoints. It only checks that the
// Bearer value is a known key; per-job scoping happens in the handler once
// the target job id is decoded from the body.
func APIKeyAuth(svc *auth.Service) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key, ok := bearerToken(r)
			if !ok {
				response.WriteError(w, http.StatusUnauthorized, "missing or malformed authorization header")
				return
			}

			if !svc.VerifyAPIKey(key) {
				response.WriteError(w, http.StatusUnauthorized, "invalid API key")
				return
			}

			next.ServeHTTP(w, r.WithContext(WithAPIKey(r.Context(), key)))
		})
	}
}

func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return "", false
	}
	token := strings.TrimPrefix(header, "Bearer ")
	if token == header || token == "" {
		return "", false
	}
	return token, true
}

// WithUser records the authenticated username on the context.
func WithUser(ctx context.Context, user string) context.Context {
	return context.WithValue(ctx, userKey, user)
}

// WithAPIKey records the authenticated push key on the context.
func WithAPIKey(ctx context.Context, key string) context.Context {
	return context.WithValue(ctx, apiKeyKey, key)
}

// GetUser extracts the authenticated username from the request context.
func GetUser(ctx context.Context) string {
	user, _ := ctx.Value(userKey).(string)
	return user
}

// GetAPIKey extracts the authenticated push key from the request context.
func GetAPIKey(ctx context.Context) string {
	key, _ := ctx.Value(apiKeyKey).(string)
	return key
}
