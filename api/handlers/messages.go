package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/friend-ai/backend/internal/auth"
	"github.com/friend-ai/backend/internal/model"
	"github.com/friend-ai/backend/internal/repository"
)

// MessageHandler serves persisted conversation history.
type MessageHandler struct {
	messages *repository.MessageRepository
	tokens   *auth.TokenManager
}

// NewMessageHandler creates a new MessageHandler.
func NewMessageHandler(messages *repository.MessageRepository, tokens *auth.TokenManager) *MessageHandler {
	return &MessageHandler{
		messages: messages,
		tokens:   tokens,
	}
}

// ListSessions handles GET /api/chat/sessions.
func (h *MessageHandler) ListSessions(c *gin.Context) {
	sessions, err := h.messages.ListSessions(c.Request.Context(), getUserID(c))
	if err != nil {
		sendError(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to list sessions: "+err.Error())
		return
	}
	if sessions == nil {
		sessions = []*model.ChatSession{}
	}
	c.JSON(http.StatusOK, gin.H{"sessions": sessions})
}

// ListMessages handles GET /api/chat/sessions/:id/messages.
func (h *MessageHandler) ListMessages(c *gin.Context) {
	sessionID := c.Param("id")

	session, err := h.messages.GetSession(c.Request.Context(), sessionID)
	if err != nil {
		if errors.Is(err, model.ErrSessionNotFound) {
			sendError(c, http.StatusNotFound, "SESSION_NOT_FOUND", "Chat session "+sessionID+" not found")
			return
		}
		sendError(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to get session: "+err.Error())
		return
	}

	if session.UserID != getUserID(c) {
		sendError(c, http.StatusForbidden, "FORBIDDEN", "Access to chat session denied")
		return
	}

	msgs, err := h.messages.ListMessages(c.Request.Context(), sessionID)
	if err != nil {
		sendError(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to list messages: "+err.Error())
		return
	}
	if msgs == nil {
		msgs = []*model.ChatMessage{}
	}
	c.JSON(http.StatusOK, gin.H{"session": session, "messages": msgs})
}

// RegisterRoutes registers the history routes on a Gin router group.
func (h *MessageHandler) RegisterRoutes(rg *gin.RouterGroup) {
	authed := rg.Group("", auth.RequireAuth(h.tokens))
	authed.GET("/chat/sessions", h.ListSessions)
	authed.GET("/chat/sessions/:id/messages", h.ListMessages)
}
