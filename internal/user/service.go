// Package user implements account management on top of the user repository:
// registration, authentication and password changes.
package user

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/friend-ai/backend/internal/auth"
	"github.com/friend-ai/backend/internal/model"
	"github.com/friend-ai/backend/internal/repository"
)

// Service manages user accounts.
type Service struct {
	repo *repository.UserRepository
}

// NewService creates a new user Service.
func NewService(repo *repository.UserRepository) *Service {
	return &Service{repo: repo}
}

// RegisterRequest carries the data for creating an account.
type RegisterRequest struct {
	Email    string `json:"email" binding:"required"`
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
	FullName string `json:"full_name"`
}

// Validate normalizes and checks the request fields.
func (r *RegisterRequest) Validate() error {
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
	r.Username = strings.ToLower(strings.TrimSpace(r.Username))

	if !strings.Contains(r.Email, "@") {
		return fmt.Errorf("invalid email address")
	}
	if len(r.Username) < 3 || len(r.Username) > 50 {
		return fmt.Errorf("username must be 3-50 characters")
	}
	for _, c := range r.Username {
		if !isUsernameChar(c) {
			return fmt.Errorf("username may only contain letters, digits, underscore and hyphen")
		}
	}
	return auth.ValidatePasswordStrength(r.Password)
}

func isUsernameChar(c rune) bool {
	return c == '_' || c == '-' ||
		(c >= 'a' && c <= 'z') || (c >= '0' && c <= '9')
}

// Register creates a new account with a default profile.
func (s *Service) Register(ctx context.Context, req *RegisterRequest) (*model.User, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	if _, err := s.repo.GetByEmail(ctx, req.Email); err == nil {
		return nil, model.ErrEmailTaken
	} else if !errors.Is(err, model.ErrUserNotFound) {
		return nil, err
	}
	if _, err := s.repo.GetByUsername(ctx, req.Username); err == nil {
		return nil, model.ErrUsernameTaken
	} else if !errors.Is(err, model.ErrUserNotFound) {
		return nil, err
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	now := time.Now()
	user := &model.User{
		ID:             uuid.New().String(),
		Email:          req.Email,
		Username:       req.Username,
		HashedPassword: hash,
		FullName:       req.FullName,
		IsActive:       true,
		IsVerified:     false,
		CreatedAt:      now,
		UpdatedAt:      now,
		Profile: &model.Profile{
			Prefs: map[string]interface{}{},
			Settings: map[string]interface{}{
				"theme":         "light",
				"language":      "en",
				"notifications": true,
			},
			Timezone:  "UTC",
			Language:  "en",
			CreatedAt: now,
			UpdatedAt: now,
		},
	}
	user.Profile.UserID = user.ID

	if err := s.repo.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Authenticate verifies credentials and stamps the last login. It returns
// ErrInvalidCredentials for both unknown email and wrong password so callers
// leak nothing about which one failed.
func (s *Service) Authenticate(ctx context.Context, email, password string) (*model.User, error) {
	user, err := s.repo.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, model.ErrUserNotFound) {
			return nil, model.ErrInvalidCredentials
		}
		return nil, err
	}

	if !auth.VerifyPassword(password, user.HashedPassword) {
		return nil, model.ErrInvalidCredentials
	}
	if !user.IsActive {
		return nil, model.ErrInactiveUser
	}

	if err := s.repo.UpdateLastLogin(ctx, user.ID); err != nil {
		return nil, err
	}
	return user, nil
}

// GetByID retrieves an account.
func (s *Service) GetByID(ctx context.Context, id string) (*model.User, error) {
	return s.repo.GetByID(ctx, id)
}

// ChangePassword verifies the old password and installs a new one.
func (s *Service) ChangePassword(ctx context.Context, userID, oldPassword, newPassword string) error {
	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return err
	}

	if !auth.VerifyPassword(oldPassword, user.HashedPassword) {
		return model.ErrInvalidCredentials
	}
	if err := auth.ValidatePasswordStrength(newPassword); err != nil {
		return err
	}

	hash, err := auth.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	return s.repo.UpdatePassword(ctx, userID, hash)
}
