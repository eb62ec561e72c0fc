package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/friend-ai/backend/internal/model"
	"github.com/friend-ai/backend/internal/realtime"
)

// RealtimeHandler exposes the WebSocket, SSE and connection observability
// endpoints.
type RealtimeHandler struct {
	service *realtime.Service
}

// NewRealtimeHandler creates a new RealtimeHandler.
func NewRealtimeHandler(service *realtime.Service) *RealtimeHandler {
	return &RealtimeHandler{service: service}
}

// Connect handles GET /api/ws and GET /api/ws/:user_id - the bidirectional
// assistant channel. A missing user_id segment gives an anonymous
// connection, registered by handle only.
func (h *RealtimeHandler) Connect(c *gin.Context) {
	userID := c.Param("user_id")

	if err := h.service.HandleConnection(c.Writer, c.Request, userID); err != nil {
		// Upgrade failed; the upgrader already wrote the HTTP error.
		return
	}
}

// sseWriter adapts gin's response writer to the publisher's EventWriter,
// one `data: <json>` frame per event.
type sseWriter struct {
	w gin.ResponseWriter
}

func (s sseWriter) WriteEvent(data []byte) error {
	if _, err := fmt.Fprintf(s.w, "data: %s\n\n", data); err != nil {
		return err
	}
	s.w.Flush()
	return nil
}

// Stream handles GET /api/sse/:user_id - the unidirectional streaming path.
func (h *RealtimeHandler) Stream(c *gin.Context) {
	userID := c.Param("user_id")

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")

	h.service.Publisher().Run(c.Request.Context(), sseWriter{w: c.Writer}, userID)
}

// ConnectionStatus handles GET /api/connections/status.
func (h *RealtimeHandler) ConnectionStatus(c *gin.Context) {
	snap := h.service.Registry().Snapshot()
	c.JSON(http.StatusOK, gin.H{
		"active_connections": snap.ConnectionCount,
		"user_sessions":      snap.UserCount,
		"connections":        snap.ConnectionIDs,
		"users":              snap.UserIDs,
		"timestamp":          time.Now().Format(time.RFC3339),
	})
}

// SendMessage handles POST /api/send-message/:user_id - REST push of a
// system envelope to a connected user.
func (h *RealtimeHandler) SendMessage(c *gin.Context) {
	userID := c.Param("user_id")

	var payload map[string]interface{}
	if err := c.ShouldBindJSON(&payload); err != nil {
		sendError(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	if err := h.service.SendToUser(userID, payload); err != nil {
		if errors.Is(err, model.ErrUserNotConnected) {
			sendError(c, http.StatusNotFound, "USER_NOT_CONNECTED", "User "+userID+" is not connected")
			return
		}
		sendError(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to send message: "+err.Error())
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":    "success",
		"message":   "Message sent to user " + userID,
		"timestamp": time.Now().Format(time.RFC3339),
	})
}

// RegisterRoutes registers the realtime routes on a Gin router group.
func (h *RealtimeHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/ws", h.Connect)
	rg.GET("/ws/:user_id", h.Connect)
	rg.GET("/sse/:user_id", h.Stream)
	rg.GET("/connections/status", h.ConnectionStatus)
	rg.POST("/send-message/:user_id", h.SendMessage)
}
