package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/friend-ai/backend/internal/model"
	"github.com/friend-ai/backend/internal/registry"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer.
	maxMessageSize = 8192

	// Outbound envelope buffer per session.
	sendQueueSize = 256

	// Inbound user messages awaiting generation. The receive loop blocks
	// when the queue is full, which keeps arrival order intact.
	inboundQueueSize = 16
)

// Recorder persists a completed exchange. Implementations must tolerate
// being called from many sessions at once; failures stay internal to the
// recorder (logged, not surfaced).
type Recorder interface {
	RecordExchange(ctx context.Context, userID, sessionID string, msg *model.UserMessage, resp *model.GeneratedResponse)
}

// Session owns one live WebSocket connection: it registers with the
// connection registry, runs the receive loop, dispatches user messages
// through the pipeline one at a time and writes outbound envelopes.
type Session struct {
	conn     *websocket.Conn
	registry *registry.Registry
	pipeline *Pipeline
	recorder Recorder

	handle string
	userID string

	send    chan []byte
	inbound chan *model.UserMessage

	ctx    context.Context
	cancel context.CancelFunc

	finalize sync.Once
	mu       sync.Mutex
	closed   bool
}

// NewSession registers the connection and prepares its loops. userID may be
// empty for anonymous connections, which stay routable by handle only.
func NewSession(conn *websocket.Conn, reg *registry.Registry, pipeline *Pipeline, recorder Recorder, userID string) *Session {
	ctx, cancel := context.WithCancel(context.Background())
	s := &Session{
		conn:     conn,
		registry: reg,
		pipeline: pipeline,
		recorder: recorder,
		userID:   userID,
		send:     make(chan []byte, sendQueueSize),
		inbound:  make(chan *model.UserMessage, inboundQueueSize),
		ctx:      ctx,
		cancel:   cancel,
	}
	s.handle = reg.Register(s, userID)
	return s
}

// Handle returns the connection handle assigned at registration.
func (s *Session) Handle() string { return s.handle }

// Send queues a serialized envelope for delivery. It never blocks; a full
// queue means the peer stopped draining and the session is torn down.
func (s *Session) Send(data []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}
	select {
	case s.send <- data:
	default:
		s.closeSendLocked()
	}
}

func (s *Session) closeSendLocked() {
	if s.closed {
		return
	}
	s.closed = true
	close(s.send)
}

// Run drives the session until the transport fails or the peer disconnects.
// It blocks; callers run it in the connection's goroutine.
func (s *Session) Run() {
	go s.writePump()
	go s.processLoop()

	s.sendSystem(&model.SystemPayload{
		Message:      fmt.Sprintf("Connected to AI assistant (ID: %s)", s.handle),
		ConnectionID: s.handle,
		UserID:       s.userID,
	})

	s.readPump()
}

// teardown is the single finalization step: it unregisters the handle,
// cancels in-flight work and closes the transport. Safe to reach from any
// error path, it runs exactly once.
func (s *Session) teardown() {
	s.finalize.Do(func() {
		s.registry.Unregister(s.handle)
		s.cancel()
		s.mu.Lock()
		s.closeSendLocked()
		s.mu.Unlock()
		s.conn.Close()
		log.Printf("realtime: connection %s closed (user: %s)", s.handle, s.userID)
	})
}

// readPump pumps frames from the WebSocket connection into the session.
func (s *Session) readPump() {
	defer s.teardown()

	s.conn.SetReadLimit(maxMessageSize)
	s.conn.SetReadDeadline(time.Now().Add(pongWait))
	s.conn.SetPongHandler(func(string) error {
		s.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, raw, err := s.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				log.Printf("realtime: read error on %s: %v", s.handle, err)
			}
			return
		}
		s.handleFrame(raw)
	}
}

// handleFrame parses and dispatches one inbound frame. Failures here are
// answered with an error envelope and never terminate the session.
func (s *Session) handleFrame(raw []byte) {
	env, err := model.ParseEnvelope(raw)
	if err != nil {
		if err == model.ErrUnknownEnvelopeKind {
			log.Printf("realtime: ignoring unknown envelope kind on %s", s.handle)
			return
		}
		s.sendError("invalid JSON format", string(raw))
		return
	}

	switch env.Type {
	case model.EnvelopeUserMessage:
		var msg model.UserMessage
		if err := json.Unmarshal(env.Data, &msg); err != nil {
			s.sendError("invalid user_message payload: "+err.Error(), "")
			return
		}
		if err := msg.Validate(); err != nil {
			s.sendError(err.Error(), "")
			return
		}
		if s.userID != "" {
			msg.UserID = s.userID
		}
		// Blocks when the queue is full so arrival order is preserved.
		select {
		case s.inbound <- &msg:
		case <-s.ctx.Done():
		}

	case model.EnvelopeSystem:
		var sys model.SystemPayload
		if err := json.Unmarshal(env.Data, &sys); err != nil {
			s.sendError("invalid system payload: "+err.Error(), "")
			return
		}
		if sys.Action == "ping" {
			s.sendSystem(&model.SystemPayload{
				Action:    "pong",
				Timestamp: time.Now().Format(time.RFC3339),
			})
		}

	default:
		// Clients have no business sending ai_response, typing or error.
		log.Printf("realtime: ignoring inbound %s envelope on %s", env.Type, s.handle)
	}
}

// processLoop drains the inbound queue one message at a time, which gives
// each message its own typing(true)/typing(false)/ai_response sequence with
// no interleaving between in-flight responses on one session.
func (s *Session) processLoop() {
	for {
		select {
		case <-s.ctx.Done():
			return
		case msg := <-s.inbound:
			s.process(msg)
		}
	}
}

func (s *Session) process(msg *model.UserMessage) {
	s.sendTyping(true, "AI is generating a response...")

	resp, err := s.pipeline.Handle(s.ctx, msg)
	if s.ctx.Err() != nil {
		// Transport went away during generation; the result has no
		// destination and is discarded.
		return
	}

	s.sendTyping(false, "")

	if err != nil {
		log.Printf("realtime: pipeline failure on %s: %v", s.handle, err)
		s.sendError("error processing message: "+err.Error(), "")
		return
	}

	if s.recorder != nil && s.userID != "" {
		s.recorder.RecordExchange(s.ctx, s.userID, msg.SessionID, msg, resp)
	}

	s.sendEnvelope(model.EnvelopeAIResponse, resp)
}

func (s *Session) sendTyping(isTyping bool, message string) {
	s.sendEnvelope(model.EnvelopeTyping, &model.TypingPayload{
		IsTyping: isTyping,
		Message:  message,
	})
}

func (s *Session) sendSystem(payload *model.SystemPayload) {
	s.sendEnvelope(model.EnvelopeSystem, payload)
}

func (s *Session) sendError(errMsg, receivedData string) {
	s.sendEnvelope(model.EnvelopeError, &model.ErrorPayload{
		Error:        errMsg,
		ReceivedData: receivedData,
	})
}

func (s *Session) sendEnvelope(kind model.EnvelopeKind, payload interface{}) {
	env, err := model.NewEnvelope(kind, payload)
	if err != nil {
		log.Printf("realtime: failed to encode %s envelope: %v", kind, err)
		return
	}
	env.ConnectionID = s.handle

	data, err := json.Marshal(env)
	if err != nil {
		log.Printf("realtime: failed to marshal envelope: %v", err)
		return
	}
	s.Send(data)
}

// writePump pumps envelopes from the send queue to the WebSocket connection,
// one frame per envelope, with ping keepalive.
func (s *Session) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		s.teardown()
	}()

	for {
		select {
		case data, ok := <-s.send:
			s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				s.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := s.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}
		case <-ticker.C:
			s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
