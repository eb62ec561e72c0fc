// Package repository provides SQLite data access for users, profiles and
// chat messages.
package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/friend-ai/backend/internal/model"
)

// UserRepository provides data access for users and their profiles.
type UserRepository struct {
	db *sql.DB
}

// NewUserRepository creates a new UserRepository.
func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db: db}
}

// Create inserts a user and its profile in one transaction.
func (r *UserRepository) Create(ctx context.Context, user *model.User) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO users (id, email, username, hashed_password, full_name, is_active, is_verified, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		user.ID,
		user.Email,
		user.Username,
		user.HashedPassword,
		user.FullName,
		user.IsActive,
		user.IsVerified,
		user.CreatedAt,
		user.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}

	if user.Profile != nil {
		prefs, err := json.Marshal(user.Profile.Prefs)
		if err != nil {
			return fmt.Errorf("failed to serialize preferences: %w", err)
		}
		settings, err := json.Marshal(user.Profile.Settings)
		if err != nil {
			return fmt.Errorf("failed to serialize settings: %w", err)
		}

		_, err = tx.ExecContext(ctx, `
			INSERT INTO user_profiles (user_id, avatar_url, bio, preferences, settings, timezone, language, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		`,
			user.ID,
			user.Profile.AvatarURL,
			user.Profile.Bio,
			string(prefs),
			string(settings),
			user.Profile.Timezone,
			user.Profile.Language,
			user.Profile.CreatedAt,
			user.Profile.UpdatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to create profile: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit user creation: %w", err)
	}
	return nil
}

const userColumns = `id, email, username, hashed_password, full_name, is_active, is_verified, created_at, updated_at, last_login`

func (r *UserRepository) scanUser(row *sql.Row) (*model.User, error) {
	user := &model.User{}
	var fullName sql.NullString
	var lastLogin sql.NullTime

	err := row.Scan(
		&user.ID,
		&user.Email,
		&user.Username,
		&user.HashedPassword,
		&fullName,
		&user.IsActive,
		&user.IsVerified,
		&user.CreatedAt,
		&user.UpdatedAt,
		&lastLogin,
	)
	if err == sql.ErrNoRows {
		return nil, model.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	if fullName.Valid {
		user.FullName = fullName.String
	}
	if lastLogin.Valid {
		t := lastLogin.Time
		user.LastLogin = &t
	}
	return user, nil
}

// GetByID retrieves a user by ID, profile included.
func (r *UserRepository) GetByID(ctx context.Context, id string) (*model.User, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id)
	user, err := r.scanUser(row)
	if err != nil {
		return nil, err
	}
	if err := r.attachProfile(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// GetByEmail retrieves a user by email.
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE email = ?`, email)
	return r.scanUser(row)
}

// GetByUsername retrieves a user by username.
func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE username = ?`, username)
	return r.scanUser(row)
}

func (r *UserRepository) attachProfile(ctx context.Context, user *model.User) error {
	profile := &model.Profile{UserID: user.ID}
	var avatarURL, bio sql.NullString
	var prefs, settings string

	err := r.db.QueryRowContext(ctx, `
		SELECT avatar_url, bio, preferences, settings, timezone, language, created_at, updated_at
		FROM user_profiles WHERE user_id = ?
	`, user.ID).Scan(
		&avatarURL,
		&bio,
		&prefs,
		&settings,
		&profile.Timezone,
		&profile.Language,
		&profile.CreatedAt,
		&profile.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to get profile: %w", err)
	}

	if avatarURL.Valid {
		profile.AvatarURL = avatarURL.String
	}
	if bio.Valid {
		profile.Bio = bio.String
	}
	if err := json.Unmarshal([]byte(prefs), &profile.Prefs); err != nil {
		return fmt.Errorf("failed to parse preferences: %w", err)
	}
	if err := json.Unmarshal([]byte(settings), &profile.Settings); err != nil {
		return fmt.Errorf("failed to parse settings: %w", err)
	}

	user.Profile = profile
	return nil
}

// UpdatePassword replaces a user's password hash.
func (r *UserRepository) UpdatePassword(ctx context.Context, id, hashedPassword string) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE users SET hashed_password = ?, updated_at = ? WHERE id = ?
	`, hashedPassword, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return model.ErrUserNotFound
	}
	return nil
}

// UpdateLastLogin stamps the user's last successful login.
func (r *UserRepository) UpdateLastLogin(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE users SET last_login = ?, updated_at = ? WHERE id = ?
	`, time.Now(), time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to update last login: %w", err)
	}
	return nil
}
