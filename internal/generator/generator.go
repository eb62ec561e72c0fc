// Package generator defines the response-generation capability consumed by
// the real-time layer, plus the default keyword-matching implementation used
// until a real model backend is wired in.
package generator

import (
	"context"

	"github.com/friend-ai/backend/internal/model"
)

// ResponseGenerator produces a structured response for one inbound user
// message. Implementations must honor ctx cancellation: a canceled call may
// return early with ctx.Err().
type ResponseGenerator interface {
	Generate(ctx context.Context, msg *model.UserMessage) (*model.GeneratedResponse, error)
}
