package middleware

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/webboss/bio/internal/auth"
)

// SessionCookie is the cookie the dashboard may carry the session token in
// when it cannot set an Authorization header.
const SessionCookie = "bio_session"

// SessionVerifier validates a provider-issued session token.
type SessionVerifier interface {
	Verify(token string) (*auth.Session, error)
}

// AuthConfig holds configuration for the auth middleware.
type AuthConfig struct {
	Logger   *slog.Logger
	Verifier SessionVerifier
}

// Auth returns a middleware that authenticates dashboard requests.
// It extracts the session token, verifies it, and injects the session
// into the request context.
func Auth(cfg AuthConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			session, err := cfg.Verifier.Verify(extractSessionToken(r))
			if err != nil {
				reason := "invalid_token"
				if errors.Is(err, auth.ErrMissingToken) {
					reason = "missing_token"
				}
				cfg.Logger.Warn("authentication failed",
					slog.String("reason", reason),
					slog.String("ip", ClientIP(r)),
					slog.String("endpoint", r.Method+" "+r.URL.Path),
					slog.String("request_id", GetRequestID(r.Context())),
				)
				writeAuthError(w)
				return
			}

			if sink := userSink(r.Context()); sink != nil {
				*sink = session.UserID
			}

			ctx := auth.ContextWithSession(r.Context(), session)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// extractSessionToken reads "Authorization: Bearer <token>", falling back to
// the session cookie.
func extractSessionToken(r *http.Request) string {
	if h := r.Header.Get("Authorization"); strings.HasPrefix(h, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))
	}
	if c, err := r.Cookie(SessionCookie); err == nil {
		return c.Value
	}
	return ""
}

// writeAuthError writes a 401 Unauthorized response.
// Uses the same message for all auth failures.
func writeAuthError(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_, _ = w.Write([]byte(`{"error":"invalid or missing session","code":"UNAUTHORIZED"}`))
}
