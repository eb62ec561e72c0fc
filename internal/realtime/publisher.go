package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"
)

// DefaultStreamInterval is the pause between status_update emissions.
const DefaultStreamInterval = 5 * time.Second

// EventWriter delivers one serialized event to the streaming client.
type EventWriter interface {
	WriteEvent(data []byte) error
}

// StreamStatus is the data field of a status_update event.
type StreamStatus struct {
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
	UserID    string `json:"user_id"`
}

// StreamEvent is one event on the unidirectional streaming channel.
type StreamEvent struct {
	Type      string        `json:"type"`
	UserID    string        `json:"user_id,omitempty"`
	Timestamp string        `json:"timestamp,omitempty"`
	Data      *StreamStatus `json:"data,omitempty"`
	Error     string        `json:"error,omitempty"`
}

// Publisher drives one unidirectional push channel per subscribing client.
// It holds no registry entry and shares no state with bidirectional
// sessions; each subscription is an independent loop terminated only by
// client disappearance or process shutdown.
type Publisher struct {
	Interval time.Duration
}

// NewPublisher creates a Publisher with the given emission interval.
// A non-positive interval falls back to the default.
func NewPublisher(interval time.Duration) *Publisher {
	if interval <= 0 {
		interval = DefaultStreamInterval
	}
	return &Publisher{Interval: interval}
}

// Run emits the event stream for one subscriber until ctx is canceled
// (client gone) or an emission fails. The client-side liveness probe runs
// before every emission; once the client is gone no further emission is
// attempted.
func (p *Publisher) Run(ctx context.Context, w EventWriter, userID string) {
	if err := p.emit(ctx, w, &StreamEvent{
		Type:      "connected",
		UserID:    userID,
		Timestamp: time.Now().Format(time.RFC3339),
	}); err != nil {
		p.fail(ctx, w, userID, err)
		return
	}

	counter := 0
	for {
		counter++
		err := p.emit(ctx, w, &StreamEvent{
			Type: "status_update",
			Data: &StreamStatus{
				Message:   fmt.Sprintf("Live update #%d", counter),
				Timestamp: time.Now().Format(time.RFC3339),
				UserID:    userID,
			},
		})
		if err != nil {
			p.fail(ctx, w, userID, err)
			return
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(p.Interval):
		}
	}
}

// emit probes liveness, then writes one event. A canceled context is
// reported as ctx.Err() without touching the writer.
func (p *Publisher) emit(ctx context.Context, w EventWriter, event *StreamEvent) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to encode stream event: %w", err)
	}
	return w.WriteEvent(data)
}

// fail terminates the stream. If the client may still be reachable, one
// final error event is attempted; its own failure is ignored.
func (p *Publisher) fail(ctx context.Context, w EventWriter, userID string, err error) {
	if ctx.Err() != nil {
		// Client disappeared; nothing left to tell it.
		return
	}
	log.Printf("realtime: stream error for user %s: %v", userID, err)
	data, mErr := json.Marshal(&StreamEvent{Type: "error", Error: err.Error()})
	if mErr != nil {
		return
	}
	_ = w.WriteEvent(data)
}
