package domain

import "time"

// VerificationState tracks whether a completed workout has been verified by
// an external collaborator (GPS, wearable, witness). The archiver always
// produces unverified records.
type VerificationState string

const (
	VerificationUnverified VerificationState = "unverified"
	VerificationPending    VerificationState = "pending"
	VerificationVerified   VerificationState = "verified"
)

// WorkoutVerification holds the verification status of a completed workout.
type WorkoutVerification struct {
	State      VerificationState `json:"state"`
	Method     string            `json:"method,omitempty"`
	VerifiedAt *time.Time        `json:"verified_at,omitempty"`
}

// WorkoutPerformance summarises the session's outcome.
type WorkoutPerformance struct {
	DurationSeconds      int                   `json:"duration_seconds"`
	TotalActivities      int                   `json:"total_activities"`
	ActivitiesCompleted  int                   `json:"activities_completed"`
	CompletionPercentage float64               `json:"completion_percentage"`
	TotalPausedSeconds   int                   `json:"total_paused_seconds"`
	Activities           []ActivityPerformance `json:"activities"`
}

// CompletedWorkout is the immutable record produced exactly once when a
// session reaches the completed state.
type CompletedWorkout struct {
	ID                   string              `json:"id"`
	UserID               string              `json:"user_id"`
	PlanID               string              `json:"plan_id,omitempty"`
	WorkoutType          string              `json:"workout_type"`
	Performance          WorkoutPerformance  `json:"performance"`
	Verification         WorkoutVerification `json:"verification"`
	Reactions            []FeedReaction      `json:"reactions,omitempty"`
	IsPublic             bool                `json:"is_public"`
	MultiplayerSessionID string              `json:"multiplayer_session_id,omitempty"`
	RecordedAt           time.Time           `json:"recorded_at"`
}

// Archive folds a completed session into a CompletedWorkout. Abandoned
// sessions produce no record, so the only accepted state is completed.
func Archive(session *WorkoutSession, now time.Time, newID func() string) (*CompletedWorkout, error) {
	if session.State != StateCompleted {
		return nil, &InvalidTransitionError{From: session.State, Attempted: "archive"}
	}

	now = now.UTC()
	total := len(session.Activities)
	completed := len(session.CompletedActivities)
	percentage := 0.0
	if total > 0 {
		percentage = float64(completed) / float64(total)
	}

	record := &CompletedWorkout{
		ID:          newID(),
		UserID:      session.OwnerID,
		PlanID:      session.PlanID,
		WorkoutType: session.WorkoutType,
		Performance: WorkoutPerformance{
			DurationSeconds:      int(session.ActiveDuration(now) / time.Second),
			TotalActivities:      total,
			ActivitiesCompleted:  completed,
			CompletionPercentage: percentage,
			TotalPausedSeconds:   session.TotalPausedSeconds,
			Activities:           append([]ActivityPerformance(nil), session.CompletedActivities...),
		},
		Verification: WorkoutVerification{State: VerificationUnverified},
		RecordedAt:   now,
	}
	if session.Configuration.IsMultiplayer {
		record.MultiplayerSessionID = session.ID
	}
	return record, nil
}
