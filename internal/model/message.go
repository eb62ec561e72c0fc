package model

import (
	"encoding/json"
	"fmt"
	"time"
)

// EnvelopeKind identifies the kind of a real-time wire message.
type EnvelopeKind string

const (
	EnvelopeUserMessage EnvelopeKind = "user_message"
	EnvelopeAIResponse  EnvelopeKind = "ai_response"
	EnvelopeSystem      EnvelopeKind = "system"
	EnvelopeError       EnvelopeKind = "error"
	EnvelopeTyping      EnvelopeKind = "typing"
)

// Envelope is the tagged wrapper around all real-time traffic. The shape of
// Data is fully determined by Type.
type Envelope struct {
	Type         EnvelopeKind    `json:"type"`
	Data         json.RawMessage `json:"data"`
	Timestamp    time.Time       `json:"timestamp"`
	ConnectionID string          `json:"connection_id,omitempty"`
}

// NewEnvelope wraps a payload in an envelope of the given kind, stamping the
// current time. It fails only if the payload cannot be serialized.
func NewEnvelope(kind EnvelopeKind, payload interface{}) (*Envelope, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s payload: %w", kind, err)
	}
	return &Envelope{
		Type:      kind,
		Data:      data,
		Timestamp: time.Now(),
	}, nil
}

// ParseEnvelope decodes a raw inbound frame. A frame that is not a JSON
// envelope, or whose type tag is not one of the five kinds, is rejected.
func ParseEnvelope(raw []byte) (*Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, ErrMalformedFrame
	}
	switch env.Type {
	case EnvelopeUserMessage, EnvelopeAIResponse, EnvelopeSystem,
		EnvelopeError, EnvelopeTyping:
		return &env, nil
	default:
		return nil, ErrUnknownEnvelopeKind
	}
}

// UserMessage is the payload of an inbound user_message envelope.
type UserMessage struct {
	Content     string    `json:"content"`
	MessageType string    `json:"message_type"` // "text", "voice" or "image"
	Timestamp   time.Time `json:"timestamp,omitempty"`
	UserID      string    `json:"user_id,omitempty"`
	SessionID   string    `json:"session_id,omitempty"`
}

// Validate checks the payload invariants of an inbound user message.
func (m *UserMessage) Validate() error {
	if m.Content == "" {
		return ErrEmptyMessage
	}
	switch m.MessageType {
	case "", "text", "voice", "image":
		return nil
	default:
		return fmt.Errorf("invalid message_type %q", m.MessageType)
	}
}

// GeneratedResponse is the result of one response-generation call and the
// payload of an outbound ai_response envelope.
type GeneratedResponse struct {
	MessageID        string     `json:"message_id"`
	ResponseText     string     `json:"response_text"`
	Actions          ActionList `json:"actions"`
	ConfidenceScore  *float64   `json:"confidence_score,omitempty"`
	ProcessingTimeMS int64      `json:"processing_time_ms,omitempty"`
	Timestamp        time.Time  `json:"timestamp"`
}

// TypingPayload is the payload of a typing envelope.
type TypingPayload struct {
	IsTyping bool   `json:"is_typing"`
	Message  string `json:"message,omitempty"`
}

// SystemPayload is the payload of a system envelope. Action distinguishes
// protocol-level markers (ping, pong) from plain notices.
type SystemPayload struct {
	Action       string `json:"action,omitempty"`
	Message      string `json:"message,omitempty"`
	ConnectionID string `json:"connection_id,omitempty"`
	UserID       string `json:"user_id,omitempty"`
	Timestamp    string `json:"timestamp,omitempty"`
}

// ErrorPayload is the payload of an error envelope. ReceivedData echoes the
// offending raw input when the frame could not be parsed at all.
type ErrorPayload struct {
	Error        string `json:"error"`
	ReceivedData string `json:"received_data,omitempty"`
}
