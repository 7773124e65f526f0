// Package events defines the event payloads emitted by the session coordinator
// for downstream consumers (stats aggregation, social feed, coaching triggers).
package events

import "time"

// Event is implemented by every outbound payload. EventType identifies the
// schema and Key selects the Kafka partition.
type Event interface {
	EventType() string
	Key() string
}

// ParticipantJoined is emitted when a user joins a session roster.
type ParticipantJoined struct {
	SessionID string    `json:"session_id"`
	UserID    string    `json:"user_id"`
	UserName  string    `json:"user_name"`
	Role      string    `json:"role"`
	JoinedAt  time.Time `json:"joined_at"`
}

func (e ParticipantJoined) EventType() string { return "session.participant_joined" }
func (e ParticipantJoined) Key() string       { return e.SessionID }

// ParticipantLeft is emitted when a participant leaves the roster.
type ParticipantLeft struct {
	SessionID string    `json:"session_id"`
	UserID    string    `json:"user_id"`
	LeftAt    time.Time `json:"left_at"`
}

func (e ParticipantLeft) EventType() string { return "session.participant_left" }
func (e ParticipantLeft) Key() string       { return e.SessionID }

// ActivityCompleted is emitted each time an activity in the plan is finished.
type ActivityCompleted struct {
	SessionID       string    `json:"session_id"`
	UserID          string    `json:"user_id"`
	ActivityIndex   int       `json:"activity_index"`
	ActivityType    string    `json:"activity_type"`
	DurationSeconds int       `json:"duration_seconds"`
	CompletedAt     time.Time `json:"completed_at"`
}

func (e ActivityCompleted) EventType() string { return "session.activity_completed" }
func (e ActivityCompleted) Key() string       { return e.SessionID }

// SessionPaused is emitted when the owner pauses the session.
type SessionPaused struct {
	SessionID string    `json:"session_id"`
	UserID    string    `json:"user_id"`
	PausedAt  time.Time `json:"paused_at"`
}

func (e SessionPaused) EventType() string { return "session.paused" }
func (e SessionPaused) Key() string       { return e.SessionID }

// SessionResumed is emitted when a paused session resumes.
type SessionResumed struct {
	SessionID          string    `json:"session_id"`
	UserID             string    `json:"user_id"`
	ResumedAt          time.Time `json:"resumed_at"`
	TotalPausedSeconds int       `json:"total_paused_seconds"`
}

func (e SessionResumed) EventType() string { return "session.resumed" }
func (e SessionResumed) Key() string       { return e.SessionID }

// WorkoutCompleted carries the archived record summary so stats and social
// consumers can react without re-reading the full session.
type WorkoutCompleted struct {
	SessionID            string    `json:"session_id"`
	WorkoutID            string    `json:"workout_id"`
	UserID               string    `json:"user_id"`
	WorkoutType          string    `json:"workout_type"`
	DurationSeconds      int       `json:"duration_seconds"`
	ActivitiesCompleted  int       `json:"activities_completed"`
	TotalActivities      int       `json:"total_activities"`
	CompletionPercentage float64   `json:"completion_percentage"`
	RecordedAt           time.Time `json:"recorded_at"`
}

func (e WorkoutCompleted) EventType() string { return "session.workout_completed" }
func (e WorkoutCompleted) Key() string       { return e.UserID }

// SessionAbandoned is emitted on terminal abandonment. No workout record is
// produced for abandoned sessions.
type SessionAbandoned struct {
	SessionID   string    `json:"session_id"`
	UserID      string    `json:"user_id"`
	Reason      string    `json:"reason"`
	AbandonedAt time.Time `json:"abandoned_at"`
}

func (e SessionAbandoned) EventType() string { return "session.abandoned" }
func (e SessionAbandoned) Key() string       { return e.SessionID }
