package middleware

import (
	"net/http"
)

// SecurityConfig holds configuration for security headers.
type SecurityConfig struct {
	// IsDevelopment disables HSTS in dev environments.
	IsDevelopment bool
}

// Security returns a middleware that applies security headers to all responses.
// Apply it early in the chain; handlers may still override Cache-Control
// afterwards, as the public page does.
//
// Headers applied:
//   - X-Content-Type-Options: nosniff
//   - X-Frame-Options: DENY
//   - X-XSS-Protection: 0 (legacy filter off, CSP covers it)
//   - Referrer-Policy: strict-origin-when-cross-origin
//   - Content-Security-Policy: JSON plus the QR PNG only
//   - Permissions-Policy: geolocation, microphone and camera disabled
//   - Strict-Transport-Security: production only
//   - Cache-Control: no-store unless the handler says otherwise
func Security(cfg SecurityConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := w.Header()

			// === Prevent MIME type sniffing ===
			h.Set("X-Content-Type-Options", "nosniff")

			// === Prevent clickjacking ===
			h.Set("X-Frame-Options", "DENY")

			// === Disable legacy XSS filter ===
			// "0" avoids false positives in older browsers.
			h.Set("X-XSS-Protection", "0")

			// === Control referrer information ===
			h.Set("Referrer-Policy", "strict-origin-when-cross-origin")

			// === Content Security Policy ===
			// Responses are JSON, except the profile QR code which is a PNG.
			h.Set("Content-Security-Policy", "default-src 'none'; img-src 'self' data:; frame-ancestors 'none'")

			// === Permissions Policy (disable unused browser features) ===
			h.Set("Permissions-Policy", "geolocation=(), microphone=(), camera=()")

			// === HSTS (only in production with HTTPS) ===
			// max-age=31536000 = 1 year
			if !cfg.IsDevelopment {
				h.Set("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
			}

			// === Prevent caching dashboard data ===
			// The public page replaces this with a public max-age.
			h.Set("Cache-Control", "no-store")

			next.ServeHTTP(w, r)
		})
	}
}

// MaxBodySize returns a middleware that limits request body size.
// A declared Content-Length over the limit is rejected up front; otherwise
// the body is wrapped so reads past the limit fail with *http.MaxBytesError.
func MaxBodySize(maxBytes int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Body != nil && r.ContentLength > maxBytes {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusRequestEntityTooLarge)
				_, _ = w.Write([]byte(`{"error":"request body too large","code":"PAYLOAD_TOO_LARGE"}`))
				return
			}
			// Wrap body with MaxBytesReader for streaming protection
			if r.Body != nil {
				r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
			}

			next.ServeHTTP(w, r)
		})
	}
}
