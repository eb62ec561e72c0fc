// Package auth provides credential verification: JWT issuance/validation,
// password hashing and the gin middleware protecting authenticated routes.
package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/friend-ai/backend/internal/model"
)

const (
	// TokenTypeAccess marks short-lived tokens used on API requests.
	TokenTypeAccess = "access"
	// TokenTypeRefresh marks long-lived tokens exchanged for new pairs.
	TokenTypeRefresh = "refresh"
)

// Claims is the JWT payload carried by both token types.
type Claims struct {
	Email     string `json:"email,omitempty"`
	TokenType string `json:"type"`
	jwt.RegisteredClaims
}

// TokenManager mints and verifies HS256 JWTs.
type TokenManager struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
}

// NewTokenManager creates a TokenManager with the given signing secret and
// lifetimes.
func NewTokenManager(secret string, accessTTL, refreshTTL time.Duration) *TokenManager {
	return &TokenManager{
		secret:     []byte(secret),
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
	}
}

// AccessTTL returns the access token lifetime.
func (m *TokenManager) AccessTTL() time.Duration { return m.accessTTL }

// IssueAccess mints an access token for the user.
func (m *TokenManager) IssueAccess(userID, email string) (string, error) {
	return m.issue(userID, email, TokenTypeAccess, m.accessTTL)
}

// IssueRefresh mints a refresh token for the user.
func (m *TokenManager) IssueRefresh(userID string) (string, error) {
	return m.issue(userID, "", TokenTypeRefresh, m.refreshTTL)
}

func (m *TokenManager) issue(userID, email, tokenType string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := &Claims{
		Email:     email,
		TokenType: tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
}

// Verify validates a token of the expected type and returns its claims.
// Expired, malformed, mis-signed or wrong-type tokens all yield
// model.ErrInvalidToken.
func (m *TokenManager) Verify(tokenString, expectedType string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, model.ErrInvalidToken
		}
		return m.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, model.ErrInvalidToken
	}
	if claims.TokenType != expectedType || claims.Subject == "" {
		return nil, model.ErrInvalidToken
	}
	return claims, nil
}
