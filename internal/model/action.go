package model

import (
	"encoding/json"
	"fmt"
	"time"
)

// ActionType identifies the kind of action block attached to a response.
type ActionType string

const (
	ActionTypeText      ActionType = "text"
	ActionTypeMusic     ActionType = "music"
	ActionTypeSchedule  ActionType = "schedule"
	ActionTypeReminder  ActionType = "reminder"
	ActionTypeSearch    ActionType = "search"
	ActionTypeWeather   ActionType = "weather"
	ActionTypeNews      ActionType = "news"
	ActionTypeCall      ActionType = "call"
	ActionTypeMessage   ActionType = "message"
	ActionTypeEmail     ActionType = "email"
	ActionTypeNote      ActionType = "note"
	ActionTypeTimer     ActionType = "timer"
	ActionTypeAlarm     ActionType = "alarm"
	ActionTypeCalculate ActionType = "calculate"
)

// Action is a structured instruction the assistant attaches to a response.
// Each implementation carries the common fields of ActionMeta plus its own
// kind-specific fields; the Type discriminant and the concrete Go type must
// always agree.
type Action interface {
	ActionType() ActionType
}

// ActionMeta holds the fields shared by every action kind.
type ActionMeta struct {
	Type        ActionType             `json:"type"`
	Title       string                 `json:"title"`
	Description string                 `json:"description,omitempty"`
	CreatedAt   time.Time              `json:"created_at"`
	Metadata    map[string]interface{} `json:"metadata,omitempty"`
}

// ActionType returns the discriminant tag.
func (m ActionMeta) ActionType() ActionType { return m.Type }

// TextAction carries plain response text.
type TextAction struct {
	ActionMeta
	Content     string `json:"content"`
	IsStreaming bool   `json:"is_streaming,omitempty"`
}

// MusicAction requests playback of a song.
type MusicAction struct {
	ActionMeta
	SongTitle string `json:"song_title"`
	Artist    string `json:"artist,omitempty"`
	Album     string `json:"album,omitempty"`
	Duration  int    `json:"duration,omitempty"` // seconds
	URL       string `json:"url,omitempty"`
	Thumbnail string `json:"thumbnail,omitempty"`
}

// ScheduleAction creates a calendar event.
type ScheduleAction struct {
	ActionMeta
	EventTitle      string     `json:"event_title"`
	StartTime       time.Time  `json:"start_time"`
	EndTime         *time.Time `json:"end_time,omitempty"`
	Location        string     `json:"location,omitempty"`
	Attendees       []string   `json:"attendees,omitempty"`
	ReminderMinutes int        `json:"reminder_minutes,omitempty"`
}

// ReminderAction schedules a reminder.
type ReminderAction struct {
	ActionMeta
	ReminderText      string    `json:"reminder_text"`
	RemindAt          time.Time `json:"remind_at"`
	IsRecurring       bool      `json:"is_recurring,omitempty"`
	RecurrencePattern string    `json:"recurrence_pattern,omitempty"`
}

// SearchAction runs a search query.
type SearchAction struct {
	ActionMeta
	Query      string                   `json:"query"`
	SearchType string                   `json:"search_type"`
	Results    []map[string]interface{} `json:"results,omitempty"`
}

// WeatherAction reports weather for a location.
type WeatherAction struct {
	ActionMeta
	Location    string                   `json:"location"`
	CurrentTemp *float64                 `json:"current_temp,omitempty"`
	Condition   string                   `json:"condition,omitempty"`
	Humidity    *int                     `json:"humidity,omitempty"`
	WindSpeed   *float64                 `json:"wind_speed,omitempty"`
	Forecast    []map[string]interface{} `json:"forecast,omitempty"`
}

// TimerAction starts a countdown timer.
type TimerAction struct {
	ActionMeta
	DurationSeconds int    `json:"duration_seconds"`
	TimerName       string `json:"timer_name,omitempty"`
	IsActive        bool   `json:"is_active"`
}

// CalculateAction carries an evaluated expression.
type CalculateAction struct {
	ActionMeta
	Expression string `json:"expression"`
	Result     string `json:"result"`
}

// BasicAction covers the action kinds that define no fields beyond the
// common ones (news, call, message, email, note, alarm).
type BasicAction struct {
	ActionMeta
}

// ErrUnknownActionType is returned when decoding an action whose type tag is
// not one of the fourteen known kinds.
type ErrUnknownActionType struct {
	Type string
}

func (e *ErrUnknownActionType) Error() string {
	return fmt.Sprintf("unknown action type: %q", e.Type)
}

// DecodeAction parses a single action object, selecting the concrete variant
// from its "type" discriminant.
func DecodeAction(raw json.RawMessage) (Action, error) {
	var tag struct {
		Type ActionType `json:"type"`
	}
	if err := json.Unmarshal(raw, &tag); err != nil {
		return nil, fmt.Errorf("failed to read action type: %w", err)
	}

	var (
		action Action
		err    error
	)
	switch tag.Type {
	case ActionTypeText:
		a := &TextAction{}
		err = json.Unmarshal(raw, a)
		action = a
	case ActionTypeMusic:
		a := &MusicAction{}
		err = json.Unmarshal(raw, a)
		action = a
	case ActionTypeSchedule:
		a := &ScheduleAction{}
		err = json.Unmarshal(raw, a)
		action = a
	case ActionTypeReminder:
		a := &ReminderAction{}
		err = json.Unmarshal(raw, a)
		action = a
	case ActionTypeSearch:
		a := &SearchAction{}
		err = json.Unmarshal(raw, a)
		action = a
	case ActionTypeWeather:
		a := &WeatherAction{}
		err = json.Unmarshal(raw, a)
		action = a
	case ActionTypeTimer:
		a := &TimerAction{}
		err = json.Unmarshal(raw, a)
		action = a
	case ActionTypeCalculate:
		a := &CalculateAction{}
		err = json.Unmarshal(raw, a)
		action = a
	case ActionTypeNews, ActionTypeCall, ActionTypeMessage,
		ActionTypeEmail, ActionTypeNote, ActionTypeAlarm:
		a := &BasicAction{}
		err = json.Unmarshal(raw, a)
		action = a
	default:
		return nil, &ErrUnknownActionType{Type: string(tag.Type)}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s action: %w", tag.Type, err)
	}
	return action, nil
}

// ActionList is an ordered sequence of actions that round-trips through JSON
// preserving each element's concrete variant.
type ActionList []Action

// UnmarshalJSON decodes each element through DecodeAction.
func (l *ActionList) UnmarshalJSON(data []byte) error {
	var raws []json.RawMessage
	if err := json.Unmarshal(data, &raws); err != nil {
		return err
	}

	actions := make(ActionList, 0, len(raws))
	for _, raw := range raws {
		action, err := DecodeAction(raw)
		if err != nil {
			return err
		}
		actions = append(actions, action)
	}
	*l = actions
	return nil
}
