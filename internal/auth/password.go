package auth

import (
	"unicode"

	"golang.org/x/crypto/bcrypt"

	"github.com/friend-ai/backend/internal/model"
)

// PasswordMinLength is the minimum accepted password length.
const PasswordMinLength = 8

// HashPassword returns the bcrypt hash of a plaintext password.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// VerifyPassword reports whether the plaintext matches the stored hash.
func VerifyPassword(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// ValidatePasswordStrength enforces the password policy: minimum length
// plus at least one upper-case letter, one lower-case letter and one digit.
func ValidatePasswordStrength(password string) error {
	if len(password) < PasswordMinLength {
		return model.ErrWeakPassword
	}
	var hasUpper, hasLower, hasDigit bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsDigit(r):
			hasDigit = true
		}
	}
	if !hasUpper || !hasLower || !hasDigit {
		return model.ErrWeakPassword
	}
	return nil
}
