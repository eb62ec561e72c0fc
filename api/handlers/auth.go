package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/friend-ai/backend/internal/auth"
	"github.com/friend-ai/backend/internal/model"
	"github.com/friend-ai/backend/internal/user"
)

// AuthHandler handles registration, login and token lifecycle requests.
type AuthHandler struct {
	users  *user.Service
	tokens *auth.TokenManager
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(users *user.Service, tokens *auth.TokenManager) *AuthHandler {
	return &AuthHandler{
		users:  users,
		tokens: tokens,
	}
}

// RegisterRequest is the body of POST /api/auth/register.
type RegisterRequest struct {
	user.RegisterRequest
	ConfirmPassword string `json:"confirm_password" binding:"required"`
}

// UserResponse represents a user in API responses.
type UserResponse struct {
	ID         string         `json:"id"`
	Email      string         `json:"email"`
	Username   string         `json:"username"`
	FullName   string         `json:"full_name,omitempty"`
	IsActive   bool           `json:"is_active"`
	IsVerified bool           `json:"is_verified"`
	CreatedAt  string         `json:"created_at"`
	UpdatedAt  string         `json:"updated_at"`
	LastLogin  *string        `json:"last_login,omitempty"`
	Profile    *model.Profile `json:"profile,omitempty"`
}

// TokenResponse is the body returned by login and refresh.
type TokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int    `json:"expires_in"`
}

func toUserResponse(u *model.User) *UserResponse {
	resp := &UserResponse{
		ID:         u.ID,
		Email:      u.Email,
		Username:   u.Username,
		FullName:   u.FullName,
		IsActive:   u.IsActive,
		IsVerified: u.IsVerified,
		CreatedAt:  u.CreatedAt.Format(time.RFC3339),
		UpdatedAt:  u.UpdatedAt.Format(time.RFC3339),
		Profile:    u.Profile,
	}
	if u.LastLogin != nil {
		s := u.LastLogin.Format(time.RFC3339)
		resp.LastLogin = &s
	}
	return resp
}

// Register handles POST /api/auth/register.
func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		sendError(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}
	if req.Password != req.ConfirmPassword {
		sendError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Passwords do not match")
		return
	}

	created, err := h.users.Register(c.Request.Context(), &req.RegisterRequest)
	if err != nil {
		switch {
		case errors.Is(err, model.ErrEmailTaken), errors.Is(err, model.ErrUsernameTaken), errors.Is(err, model.ErrWeakPassword):
			sendError(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		default:
			sendError(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to register: "+err.Error())
		}
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"user":    toUserResponse(created),
		"message": "Registration complete. Please verify your email.",
	})
}

// LoginRequest is the body of POST /api/auth/login.
type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Login handles POST /api/auth/login.
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		sendError(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	account, err := h.users.Authenticate(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, model.ErrInvalidCredentials):
			c.Header("WWW-Authenticate", "Bearer")
			sendError(c, http.StatusUnauthorized, "INVALID_CREDENTIALS", "Invalid email or password")
		case errors.Is(err, model.ErrInactiveUser):
			sendError(c, http.StatusBadRequest, "INACTIVE_USER", "Account is deactivated")
		default:
			sendError(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Login failed: "+err.Error())
		}
		return
	}

	h.issueTokens(c, account)
}

// RefreshRequest is the body of POST /api/auth/refresh.
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// Refresh handles POST /api/auth/refresh.
func (h *AuthHandler) Refresh(c *gin.Context) {
	var req RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		sendError(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	claims, err := h.tokens.Verify(req.RefreshToken, auth.TokenTypeRefresh)
	if err != nil {
		c.Header("WWW-Authenticate", "Bearer")
		sendError(c, http.StatusUnauthorized, "INVALID_TOKEN", "Invalid refresh token")
		return
	}

	account, err := h.users.GetByID(c.Request.Context(), claims.Subject)
	if err != nil || !account.IsActive {
		c.Header("WWW-Authenticate", "Bearer")
		sendError(c, http.StatusUnauthorized, "INVALID_TOKEN", "User not found or deactivated")
		return
	}

	h.issueTokens(c, account)
}

func (h *AuthHandler) issueTokens(c *gin.Context, account *model.User) {
	accessToken, err := h.tokens.IssueAccess(account.ID, account.Email)
	if err != nil {
		sendError(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to issue token")
		return
	}
	refreshToken, err := h.tokens.IssueRefresh(account.ID)
	if err != nil {
		sendError(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to issue token")
		return
	}

	c.JSON(http.StatusOK, TokenResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		TokenType:    "bearer",
		ExpiresIn:    int(h.tokens.AccessTTL().Seconds()),
	})
}

// Me handles GET /api/auth/me.
func (h *AuthHandler) Me(c *gin.Context) {
	account, err := h.users.GetByID(c.Request.Context(), getUserID(c))
	if err != nil {
		if errors.Is(err, model.ErrUserNotFound) {
			sendError(c, http.StatusNotFound, "USER_NOT_FOUND", "User not found")
			return
		}
		sendError(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to get user: "+err.Error())
		return
	}
	c.JSON(http.StatusOK, toUserResponse(account))
}

// ChangePasswordRequest is the body of POST /api/auth/change-password.
type ChangePasswordRequest struct {
	OldPassword string `json:"old_password" binding:"required"`
	NewPassword string `json:"new_password" binding:"required"`
}

// ChangePassword handles POST /api/auth/change-password.
func (h *AuthHandler) ChangePassword(c *gin.Context) {
	var req ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		sendError(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	err := h.users.ChangePassword(c.Request.Context(), getUserID(c), req.OldPassword, req.NewPassword)
	if err != nil {
		switch {
		case errors.Is(err, model.ErrInvalidCredentials):
			sendError(c, http.StatusBadRequest, "INVALID_CREDENTIALS", "Old password is incorrect")
		case errors.Is(err, model.ErrWeakPassword):
			sendError(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		default:
			sendError(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to change password: "+err.Error())
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Password changed successfully"})
}

// Logout handles POST /api/auth/logout. Tokens are stateless; the client
// discards them.
func (h *AuthHandler) Logout(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message": "Logged out. Discard tokens on the client.",
		"user_id": getUserID(c),
	})
}

// RegisterRoutes registers the auth routes on a Gin router group.
func (h *AuthHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/auth/register", h.Register)
	rg.POST("/auth/login", h.Login)
	rg.POST("/auth/refresh", h.Refresh)

	authed := rg.Group("", auth.RequireAuth(h.tokens))
	authed.GET("/auth/me", h.Me)
	authed.POST("/auth/change-password", h.ChangePassword)
	authed.POST("/auth/logout", h.Logout)
}
