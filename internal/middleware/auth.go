// AngelaMos | 2026
// auth.go

package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/a32fred/Qr-Code-Generation/internal/core"
)

const (
	APIKeyHeader     = "X-API-Key"
	AdminTokenHeader = "X-Admin-Token"

	APIKeyKey contextKey = "api_key"
)

// RequireAPIKey only checks that a credential was presented and stores it on
// the context. Whether it belongs to an account is decided by the services.
func RequireAPIKey(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := ExtractAPIKey(r)
		if key == "" {
			core.JSONError(w, core.UnauthorizedError("API key required"))
			return
		}

		ctx := context.WithValue(r.Context(), APIKeyKey, key)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireAdminToken guards operator routes with a static shared token. An
// empty token disables the routes entirely.
func RequireAdminToken(token string) func(http.Handler) http.Handler {
	tokenHash := core.HashToken(token)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if token == "" {
				core.NotFound(w, "resource")
				return
			}

			presented := r.Header.Get(AdminTokenHeader)
			if presented == "" {
				presented = ExtractToken(r)
			}
			if presented == "" {
				core.JSONError(w, core.UnauthorizedError("admin token required"))
				return
			}

			if !core.CompareTokenHash(presented, tokenHash) {
				core.JSONError(w, core.ForbiddenError("invalid admin token"))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func ExtractAPIKey(r *http.Request) string {
	if key := strings.TrimSpace(r.Header.Get(APIKeyHeader)); key != "" {
		return key
	}
	return ExtractToken(r)
}

func ExtractToken(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return ""
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return ""
	}

	return strings.TrimSpace(parts[1])
}

func GetAPIKey(ctx context.Context) string {
	if key, ok := ctx.Value(APIKeyKey).(string); ok {
		return key
	}
	return ""
}
