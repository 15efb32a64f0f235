package main

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/webboss/bio/internal/analytics"
	"github.com/webboss/bio/internal/auth"
	"github.com/webboss/bio/internal/cache"
	"github.com/webboss/bio/internal/config"
	"github.com/webboss/bio/internal/handler"
	"github.com/webboss/bio/internal/metrics"
)

type denyLimiter struct{}

func (denyLimiter) CheckIPRateLimit(context.Context, string, string, int, int) (*cache.RateLimitResult, error) {
	return &cache.RateLimitResult{Allowed: false, RetryAfter: 2 * time.Second}, nil
}

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	cfg := &config.Config{
		AppEnv:                "test",
		MaxRequestBodySize:    1 << 20,
		RateLimitTrackEnabled: true,
		RateLimitTrackRPS:     1,
		RateLimitTrackBurst:   1,
	}
	rec := metrics.NewInMemory()
	return setupRouter(routerDeps{
		cfg:       cfg,
		logger:    logger,
		metrics:   rec,
		limiter:   denyLimiter{},
		verifier:  auth.NewVerifier("test-secret", ""),
		health:    handler.NewHealthHandler(nil, nil),
		public:    handler.NewPublicHandler(nil, nil, analytics.NewEnricher(nil), time.Minute, logger),
		profiles:  handler.NewProfileHandler(nil, logger),
		links:     handler.NewLinkHandler(nil, logger),
		products:  handler.NewProductHandler(nil, logger),
		analytics: handler.NewAnalyticsHandler(nil, logger),
		metricsH:  handler.NewMetricsHandler(rec),
	})
}

func TestRouter(t *testing.T) {
	router := newTestRouter(t)

	tests := []struct {
		name       string
		method     string
		path       string
		wantStatus int
	}{
		{"liveness", http.MethodGet, "/healthz", http.StatusOK},
		{"metrics", http.MethodGet, "/metrics", http.StatusOK},
		{"unknown route", http.MethodGet, "/nope/nope", http.StatusNotFound},
		{"dashboard needs session", http.MethodGet, "/api/v1/profile", http.StatusUnauthorized},
		{"analytics needs session", http.MethodGet, "/api/v1/analytics", http.StatusUnauthorized},
		{"tracking is rate limited", http.MethodPost, "/p/shop/views", http.StatusTooManyRequests},
		{"wrong method", http.MethodDelete, "/healthz", http.StatusMethodNotAllowed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, httptest.NewRequest(tt.method, tt.path, nil))

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if rec.Header().Get("X-Request-ID") == "" {
				t.Error("missing X-Request-ID")
			}
			if rec.Header().Get("X-Content-Type-Options") != "nosniff" {
				t.Error("missing security headers")
			}
		})
	}
}

func TestRedactURL(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"postgres://bio:s3cret@db:5432/bio?sslmode=disable", "postgres://bio@db:5432/bio?sslmode=disable"},
		{"redis://:s3cret@cache:6379/0", "redis://redacted@cache:6379/0"},
		{"redis://cache:6379", "redis://cache:6379"},
	}
	for _, tt := range tests {
		if got := redactURL(tt.in); got != tt.want {
			t.Errorf("redactURL(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestSanitizeError(t *testing.T) {
	dsn := "postgres://bio:s3cret@db:5432/bio"
	err := errors.New("dial " + dsn + " failed: password=s3cret rejected")

	got := sanitizeError(err, dsn)
	want := "dial postgres://bio@db:5432/bio failed: password=redacted rejected"
	if got != want {
		t.Errorf("sanitizeError() = %q, want %q", got, want)
	}
	if sanitizeError(nil) != "" {
		t.Error("nil error should sanitize to empty")
	}
}

func TestParseLogLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug": slog.LevelDebug,
		"WARN":  slog.LevelWarn,
		"error": slog.LevelError,
		"info":  slog.LevelInfo,
		"bogus": slog.LevelInfo,
	}
	for in, want := range tests {
		if got := parseLogLevel(in); got != want {
			t.Errorf("parseLogLevel(%q) = %v, want %v", in, got, want)
		}
	}
}
