// internal/middleware/auth.go
package middleware

import (
	"net/http"
	"strings"

	"github.com/autopay/backend/internal/api/httpx"
	"github.com/autopay/backend/internal/auth"
)

type AuthMiddleware struct {
	TM      *auth.TokenManager
	Key     string
	KeyHash string
}

func NewAuthMiddleware(tm *auth.TokenManager, key, keyHash string) *AuthMiddleware {
	return &AuthMiddleware{TM: tm, Key: key, KeyHash: keyHash}
}

// RequireMonitoring admits bearers of a valid monitoring-scope token, or
// callers presenting the monitoring key directly in X-Monitoring-Key.
func (m *AuthMiddleware) RequireMonitoring(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if ah := r.Header.Get("Authorization"); ah != "" {
			if !strings.HasPrefix(strings.ToLower(ah), "bearer ") {
				httpx.WriteError(w, http.StatusUnauthorized, "invalid_token", "malformed authorization header", nil)
				return
			}
			token := strings.TrimSpace(ah[len("Bearer "):])
			claims, err := m.TM.Parse(token)
			if err != nil || claims.Scope != auth.ScopeMonitoring {
				httpx.WriteError(w, http.StatusUnauthorized, "invalid_token", "invalid monitoring token", nil)
				return
			}
			next.ServeHTTP(w, r)
			return
		}

		if key := r.Header.Get("X-Monitoring-Key"); key != "" {
			if !auth.VerifyMonitoringKey(key, m.Key, m.KeyHash) {
				httpx.WriteError(w, http.StatusForbidden, "forbidden", "invalid monitoring credentials", nil)
				return
			}
			next.ServeHTTP(w, r)
			return
		}

		httpx.WriteError(w, http.StatusUnauthorized, "missing_token", "missing bearer token", nil)
	})
}
