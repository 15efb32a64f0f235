package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
)

const testSecret = "test-secret-at-least-32-bytes-long!!"

func TestVerifier_RoundTrip(t *testing.T) {
	v := NewVerifier(testSecret, "https://auth.example.com")

	token, err := v.Issue("user-123", "ada@example.com", time.Hour)
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}

	s, err := v.Verify(token)
	if err != nil {
		t.Fatalf("Verify() error = %v", err)
	}
	if s.UserID != "user-123" || s.Email != "ada@example.com" {
		t.Errorf("unexpected session: %+v", s)
	}
	if time.Until(s.ExpiresAt) <= 0 {
		t.Errorf("ExpiresAt should be in the future: %v", s.ExpiresAt)
	}
}

func TestVerifier_Rejects(t *testing.T) {
	v := NewVerifier(testSecret, "issuer-a")

	expired := NewVerifier(testSecret, "issuer-a")
	expired.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	expiredToken, _ := expired.Issue("user", "", time.Hour)

	wrongKey, _ := NewVerifier("another-secret-another-secret-0000", "issuer-a").Issue("user", "", time.Hour)
	wrongIssuer, _ := NewVerifier(testSecret, "issuer-b").Issue("user", "", time.Hour)
	noSubject, _ := v.Issue("", "", time.Hour)

	noExpiry, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: "user", Issuer: "issuer-a"},
	}).SignedString([]byte(testSecret))

	noneAlg, _ := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: "user", ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))},
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)

	tests := []struct {
		name  string
		token string
	}{
		{"garbage", "not.a.token"},
		{"expired", expiredToken},
		{"wrong key", wrongKey},
		{"wrong issuer", wrongIssuer},
		{"no subject", noSubject},
		{"no expiry", noExpiry},
		{"alg none", noneAlg},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := v.Verify(tt.token); !errors.Is(err, ErrInvalidToken) {
				t.Errorf("Verify() error = %v, want ErrInvalidToken", err)
			}
		})
	}

	if _, err := v.Verify(""); !errors.Is(err, ErrMissingToken) {
		t.Errorf("Verify(\"\") error = %v, want ErrMissingToken", err)
	}
}

func TestVerifier_AnyIssuer(t *testing.T) {
	token, _ := NewVerifier(testSecret, "whoever").Issue("user", "", time.Hour)
	if _, err := NewVerifier(testSecret, "").Verify(token); err != nil {
		t.Errorf("empty issuer should accept any issuer, got %v", err)
	}
}

func TestSessionContext(t *testing.T) {
	ctx := context.Background()
	if SessionFromContext(ctx) != nil || UserIDFromContext(ctx) != "" {
		t.Fatal("empty context must carry no session")
	}

	ctx = ContextWithSession(ctx, &Session{UserID: "u1"})
	if got := UserIDFromContext(ctx); got != "u1" {
		t.Errorf("UserIDFromContext() = %q, want u1", got)
	}
	if MustSessionFromContext(ctx).UserID != "u1" {
		t.Error("MustSessionFromContext returned wrong session")
	}

	defer func() {
		if recover() == nil {
			t.Error("MustSessionFromContext should panic without a session")
		}
	}()
	MustSessionFromContext(context.Background())
}
