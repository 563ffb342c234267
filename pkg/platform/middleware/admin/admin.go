// Package admin guards the admin bridge with the host's shared token.
package admin

import (
	"crypto/subtle"
	"log/slog"
	"net/http"

	"termcolor/pkg/platform/httputil"
	"termcolor/pkg/requestcontext"
)

// HeaderToken carries the shared admin token.
const HeaderToken = "X-Admin-Token"

// RequireAdminToken rejects requests whose token does not match. An empty
// expected token rejects everything.
func RequireAdminToken(expectedToken string, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := r.Header.Get(HeaderToken)
			// Use constant-time comparison to prevent timing attacks
			if expectedToken == "" || subtle.ConstantTimeCompare([]byte(token), []byte(expectedToken)) != 1 {
				ctx := r.Context()
				logger.WarnContext(ctx, "admin token mismatch",
					"request_id", requestcontext.RequestID(ctx),
					"path", r.URL.Path,
				)
				httputil.WriteJSON(w, http.StatusUnauthorized, map[string]string{
					"error":             "unauthorized",
					"error_description": "admin token required",
				})
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
