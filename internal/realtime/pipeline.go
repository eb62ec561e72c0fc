package realtime

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/friend-ai/backend/internal/generator"
	"github.com/friend-ai/backend/internal/model"
)

// Pipeline orchestrates one response-generation call. It delegates to the
// ResponseGenerator capability, measures elapsed time and fills in the
// fields the generator left empty. It never retries: a generator failure
// propagates to the caller, which turns it into an error envelope.
type Pipeline struct {
	generator generator.ResponseGenerator
}

// NewPipeline creates a Pipeline around the given generator.
func NewPipeline(g generator.ResponseGenerator) *Pipeline {
	return &Pipeline{generator: g}
}

// Handle generates a response for one inbound user message.
func (p *Pipeline) Handle(ctx context.Context, msg *model.UserMessage) (*model.GeneratedResponse, error) {
	start := time.Now()

	resp, err := p.generator.Generate(ctx, msg)
	if err != nil {
		return nil, fmt.Errorf("response generation failed: %w", err)
	}

	if resp.MessageID == "" {
		resp.MessageID = uuid.New().String()
	}
	if resp.ProcessingTimeMS == 0 {
		resp.ProcessingTimeMS = time.Since(start).Milliseconds()
	}
	if resp.Timestamp.IsZero() {
		resp.Timestamp = time.Now()
	}
	return resp, nil
}
