package generator

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/friend-ai/backend/internal/model"
)

// KeywordGenerator is the stub ResponseGenerator. It matches keywords in the
// message content and fabricates a plausible response with one action block.
// Production deployments swap in a real model client behind the same
// interface.
type KeywordGenerator struct {
	// Delay simulates model latency. Zero means no artificial delay.
	Delay time.Duration
}

// NewKeywordGenerator creates a KeywordGenerator with the default simulated
// latency of the reference implementation.
func NewKeywordGenerator() *KeywordGenerator {
	return &KeywordGenerator{Delay: 500 * time.Millisecond}
}

func meta(t model.ActionType, title, description string) model.ActionMeta {
	return model.ActionMeta{
		Type:        t,
		Title:       title,
		Description: description,
		CreatedAt:   time.Now(),
	}
}

// Generate produces a keyword-matched response. The simulated delay is
// interruptible: a canceled context returns ctx.Err() instead of a response.
func (g *KeywordGenerator) Generate(ctx context.Context, msg *model.UserMessage) (*model.GeneratedResponse, error) {
	content := strings.ToLower(msg.Content)

	var (
		responseText string
		action       model.Action
	)

	switch {
	case containsAny(content, "music", "song", "play"):
		responseText = "Sure, I'll put some music on!"
		action = &model.MusicAction{
			ActionMeta: meta(model.ActionTypeMusic, "Play music", "Plays the requested music"),
			SongTitle:  "Good Vibes",
			Artist:     "AI Artist",
			Duration:   180,
			URL:        "https://example.com/music/sample.mp3",
		}

	case containsAny(content, "schedule", "calendar", "meeting"):
		responseText = "Let me set that up in your calendar."
		action = &model.ScheduleAction{
			ActionMeta: meta(model.ActionTypeSchedule, "Create event", "Creates a new calendar event"),
			EventTitle: "New event",
			StartTime:  time.Now().Add(time.Hour),
			Location:   "Meeting room A",
		}

	case containsAny(content, "remind", "reminder"):
		responseText = "I'll remind you."
		action = &model.ReminderAction{
			ActionMeta:   meta(model.ActionTypeReminder, "Create reminder", "Schedules a reminder"),
			ReminderText: msg.Content,
			RemindAt:     time.Now().Add(time.Hour),
		}

	case containsAny(content, "weather", "forecast"):
		responseText = "Here is the current weather."
		temp := 21.5
		action = &model.WeatherAction{
			ActionMeta:  meta(model.ActionTypeWeather, "Weather", "Reports current conditions"),
			Location:    "Current location",
			CurrentTemp: &temp,
			Condition:   "Partly cloudy",
		}

	case containsAny(content, "timer", "countdown"):
		responseText = "Timer started."
		action = &model.TimerAction{
			ActionMeta:      meta(model.ActionTypeTimer, "Start timer", "Starts a countdown timer"),
			DurationSeconds: 300,
			TimerName:       "Timer",
			IsActive:        true,
		}

	case containsAny(content, "search", "look up", "find"):
		responseText = "Searching for that now."
		action = &model.SearchAction{
			ActionMeta: meta(model.ActionTypeSearch, "Search", "Runs a web search"),
			Query:      msg.Content,
			SearchType: "web",
		}

	case containsAny(content, "calculate", "compute", "="):
		responseText = "Here is the result."
		action = &model.CalculateAction{
			ActionMeta: meta(model.ActionTypeCalculate, "Calculate", "Evaluates an expression"),
			Expression: msg.Content,
			Result:     "42",
		}

	case containsAny(content, "hello", "hi", "hey"):
		responseText = "Hello! I'm your AI assistant. How can I help you today?"
		action = &model.TextAction{
			ActionMeta: meta(model.ActionTypeText, "Greeting", "Greets the user"),
			Content:    responseText,
		}

	default:
		responseText = fmt.Sprintf("I understood %q. Could you be more specific so I can help?", msg.Content)
		action = &model.TextAction{
			ActionMeta: meta(model.ActionTypeText, "General response", "General reply to the user's message"),
			Content:    responseText,
		}
	}

	if g.Delay > 0 {
		timer := time.NewTimer(g.Delay)
		defer timer.Stop()
		select {
		case <-timer.C:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	confidence := 0.85
	return &model.GeneratedResponse{
		MessageID:       uuid.New().String(),
		ResponseText:    responseText,
		Actions:         model.ActionList{action},
		ConfidenceScore: &confidence,
		Timestamp:       time.Now(),
	}, nil
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
