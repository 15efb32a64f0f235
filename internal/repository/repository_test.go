package repository

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
)

func TestMapClickError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
	}{
		{
			name: "missing profile",
			err:  &pgconn.PgError{Code: codeForeignKeyViolation, ConstraintName: "clicks_profile_id_fkey"},
			want: ErrProfileNotFound,
		},
		{
			name: "missing link",
			err:  &pgconn.PgError{Code: codeForeignKeyViolation, ConstraintName: "clicks_link_id_fkey"},
			want: ErrClickTargetNotFound,
		},
		{
			name: "wrapped missing product",
			err:  fmt.Errorf("commit: %w", &pgconn.PgError{Code: codeForeignKeyViolation, ConstraintName: "clicks_product_id_fkey"}),
			want: ErrClickTargetNotFound,
		},
		{
			name: "both targets",
			err:  &pgconn.PgError{Code: codeCheckViolation, ConstraintName: "clicks_single_target"},
			want: ErrInvalidClickTarget,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := mapClickError(tt.err); !errors.Is(got, tt.want) {
				t.Errorf("mapClickError() = %v, want %v", got, tt.want)
			}
		})
	}

	other := errors.New("connection reset")
	if got := mapClickError(other); !errors.Is(got, other) {
		t.Errorf("unrelated errors must stay wrapped, got %v", got)
	}
}

func TestIsUniqueViolation(t *testing.T) {
	err := &pgconn.PgError{Code: codeUniqueViolation, ConstraintName: "profiles_username_key"}

	if !isUniqueViolation(err, "") {
		t.Error("expected match without constraint filter")
	}
	if !isUniqueViolation(err, "profiles_username_key") {
		t.Error("expected match on constraint name")
	}
	if isUniqueViolation(err, "profiles_user_id_key") {
		t.Error("unexpected match on other constraint")
	}
	if isUniqueViolation(errors.New("23505"), "") {
		t.Error("plain errors are not unique violations")
	}
}

func TestNullableString(t *testing.T) {
	if nullableString("") != nil {
		t.Error("empty string should map to nil")
	}
	if got := nullableString("x"); got == nil || *got != "x" {
		t.Errorf("nullableString(x) = %v", got)
	}
}

func TestMigrationsEmbedded(t *testing.T) {
	entries, err := migrationsFS.ReadDir("migrations")
	if err != nil {
		t.Fatalf("read embedded migrations: %v", err)
	}
	if len(entries) == 0 || len(entries)%2 != 0 {
		t.Fatalf("expected paired up/down migrations, got %d files", len(entries))
	}
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
