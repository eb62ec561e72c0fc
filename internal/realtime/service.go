package realtime

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/friend-ai/backend/internal/generator"
	"github.com/friend-ai/backend/internal/model"
	"github.com/friend-ai/backend/internal/registry"
)

// Service wires the connection registry, pipeline and publisher together
// and owns the WebSocket upgrader. The composition root creates exactly one
// Service and hands it to the HTTP handlers.
type Service struct {
	registry  *registry.Registry
	pipeline  *Pipeline
	publisher *Publisher
	recorder  Recorder
	upgrader  websocket.Upgrader
}

// Config configures a Service.
type Config struct {
	Generator      generator.ResponseGenerator
	Recorder       Recorder // optional
	StreamInterval time.Duration
	CheckOrigin    func(r *http.Request) bool
}

// NewService creates a Service with its own registry instance.
func NewService(cfg Config) *Service {
	checkOrigin := cfg.CheckOrigin
	if checkOrigin == nil {
		checkOrigin = func(r *http.Request) bool { return true }
	}
	return &Service{
		registry:  registry.New(),
		pipeline:  NewPipeline(cfg.Generator),
		publisher: NewPublisher(cfg.StreamInterval),
		recorder:  cfg.Recorder,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     checkOrigin,
		},
	}
}

// Registry exposes the connection registry for observability endpoints.
func (s *Service) Registry() *registry.Registry {
	return s.registry
}

// Publisher exposes the streaming publisher.
func (s *Service) Publisher() *Publisher {
	return s.publisher
}

// HandleConnection upgrades the request and runs a session until the peer
// disconnects. userID may be empty for anonymous connections.
func (s *Service) HandleConnection(w http.ResponseWriter, r *http.Request, userID string) error {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return err
	}

	session := NewSession(conn, s.registry, s.pipeline, s.recorder, userID)
	session.Run()
	return nil
}

// SendToUser pushes a system envelope to the identity's live connection.
func (s *Service) SendToUser(userID string, payload interface{}) error {
	env, err := model.NewEnvelope(model.EnvelopeSystem, payload)
	if err != nil {
		return err
	}
	data, err := json.Marshal(env)
	if err != nil {
		return err
	}
	return s.registry.SendToUser(userID, data)
}
