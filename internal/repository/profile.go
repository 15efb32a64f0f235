package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/webboss/bio/internal/model"
)

const profileColumns = `
	id, user_id, username, full_name, bio, profile_image, email, phone,
	whatsapp, location, theme_id, is_verified, plan, created_at, updated_at
`

// CreateProfile inserts a new profile. ID and timestamps are set by the database.
func (r *Repository) CreateProfile(ctx context.Context, p *model.Profile) error {
	query := `
		INSERT INTO profiles (user_id, username, full_name, bio, profile_image, email, phone, whatsapp, location, theme_id, plan)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id, is_verified, created_at, updated_at
	`

	err := r.pool.QueryRow(ctx, query,
		p.UserID,
		p.Username,
		p.FullName,
		p.Bio,
		p.ProfileImage,
		p.Email,
		p.Phone,
		p.WhatsApp,
		p.Location,
		p.ThemeID,
		p.Plan,
	).Scan(&p.ID, &p.IsVerified, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		switch {
		case isUniqueViolation(err, "profiles_username_key"):
			return ErrUsernameTaken
		case isUniqueViolation(err, "profiles_user_id_key"):
			return ErrProfileExists
		}
		return fmt.Errorf("failed to create profile: %w", err)
	}

	return nil
}

// GetProfileByID retrieves a profile by its ID.
func (r *Repository) GetProfileByID(ctx context.Context, id string) (*model.Profile, error) {
	query := `SELECT ` + profileColumns + ` FROM profiles WHERE id = $1`
	return r.getProfile(ctx, query, id)
}

// GetProfileByUsername retrieves a profile by its public username.
// This is the hot path for public pages.
func (r *Repository) GetProfileByUsername(ctx context.Context, username string) (*model.Profile, error) {
	query := `SELECT ` + profileColumns + ` FROM profiles WHERE username = $1`
	return r.getProfile(ctx, query, username)
}

// GetProfileByUserID retrieves the profile owned by an auth-provider user.
func (r *Repository) GetProfileByUserID(ctx context.Context, userID string) (*model.Profile, error) {
	query := `SELECT ` + profileColumns + ` FROM profiles WHERE user_id = $1`
	return r.getProfile(ctx, query, userID)
}

// UpdateProfile updates a profile's mutable fields.
func (r *Repository) UpdateProfile(ctx context.Context, p *model.Profile) error {
	query := `
		UPDATE profiles
		SET username = $2, full_name = $3, bio = $4, profile_image = $5, email = $6,
		    phone = $7, whatsapp = $8, location = $9, theme_id = $10, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at
	`

	err := r.pool.QueryRow(ctx, query,
		p.ID,
		p.Username,
		p.FullName,
		p.Bio,
		p.ProfileImage,
		p.Email,
		p.Phone,
		p.WhatsApp,
		p.Location,
		p.ThemeID,
	).Scan(&p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrProfileNotFound
		}
		if isUniqueViolation(err, "profiles_username_key") {
			return ErrUsernameTaken
		}
		return fmt.Errorf("failed to update profile: %w", err)
	}

	return nil
}

// DeleteProfile removes a profile. Links, products and events cascade.
func (r *Repository) DeleteProfile(ctx context.Context, id string) error {
	result, err := r.pool.Exec(ctx, `DELETE FROM profiles WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete profile: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrProfileNotFound
	}
	return nil
}

func (r *Repository) getProfile(ctx context.Context, query string, arg any) (*model.Profile, error) {
	var p model.Profile
	err := r.pool.QueryRow(ctx, query, arg).Scan(
		&p.ID,
		&p.UserID,
		&p.Username,
		&p.FullName,
		&p.Bio,
		&p.ProfileImage,
		&p.Email,
		&p.Phone,
		&p.WhatsApp,
		&p.Location,
		&p.ThemeID,
		&p.IsVerified,
		&p.Plan,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrProfileNotFound
		}
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}
	return &p, nil
}
