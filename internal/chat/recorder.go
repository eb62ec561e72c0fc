// Package chat persists conversation history produced by the real-time
// layer.
package chat

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/friend-ai/backend/internal/model"
	"github.com/friend-ai/backend/internal/repository"
)

// Recorder stores completed exchanges through the message repository. It
// implements realtime.Recorder; persistence failures are logged and never
// surfaced to the session.
type Recorder struct {
	messages *repository.MessageRepository
}

// NewRecorder creates a Recorder.
func NewRecorder(messages *repository.MessageRepository) *Recorder {
	return &Recorder{messages: messages}
}

// RecordExchange stores one user turn and the assistant's reply. An empty
// sessionID starts a new chat session titled after the first message.
func (r *Recorder) RecordExchange(ctx context.Context, userID, sessionID string, msg *model.UserMessage, resp *model.GeneratedResponse) {
	sessionID, err := r.ensureSession(ctx, userID, sessionID, msg.Content)
	if err != nil {
		log.Printf("chat: failed to ensure session for user %s: %v", userID, err)
		return
	}

	now := time.Now()
	if err := r.messages.Append(ctx, &model.ChatMessage{
		ID:        uuid.New().String(),
		SessionID: sessionID,
		UserID:    userID,
		Role:      model.MessageRoleUser,
		Content:   msg.Content,
		CreatedAt: now,
	}); err != nil {
		log.Printf("chat: failed to record user message: %v", err)
		return
	}

	metadata, err := json.Marshal(map[string]interface{}{
		"message_id":         resp.MessageID,
		"actions":            resp.Actions,
		"confidence_score":   resp.ConfidenceScore,
		"processing_time_ms": resp.ProcessingTimeMS,
	})
	if err != nil {
		log.Printf("chat: failed to serialize response metadata: %v", err)
		metadata = nil
	}

	if err := r.messages.Append(ctx, &model.ChatMessage{
		ID:        uuid.New().String(),
		SessionID: sessionID,
		UserID:    userID,
		Role:      model.MessageRoleAssistant,
		Content:   resp.ResponseText,
		Metadata:  metadata,
		CreatedAt: now.Add(time.Millisecond),
	}); err != nil {
		log.Printf("chat: failed to record assistant message: %v", err)
	}
}

// ensureSession resolves the target chat session, creating one when the
// client did not name any.
func (r *Recorder) ensureSession(ctx context.Context, userID, sessionID, firstMessage string) (string, error) {
	if sessionID != "" {
		_, err := r.messages.GetSession(ctx, sessionID)
		if err == nil {
			return sessionID, nil
		}
		if !errors.Is(err, model.ErrSessionNotFound) {
			return "", err
		}
		// Fall through and create it under the client-chosen ID.
	} else {
		sessionID = uuid.New().String()
	}

	// Truncate on rune boundaries so multi-byte content stays valid UTF-8.
	title := firstMessage
	if runes := []rune(title); len(runes) > 80 {
		title = string(runes[:80])
	}

	now := time.Now()
	err := r.messages.CreateSession(ctx, &model.ChatSession{
		ID:        sessionID,
		UserID:    userID,
		Title:     title,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		return "", err
	}
	return sessionID, nil
}
