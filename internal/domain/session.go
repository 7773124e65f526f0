// Package domain defines the workout session aggregate and the business
// rules of the live session coordinator.
package domain

import (
	"strings"
	"time"
)

// SessionState represents the lifecycle state of a workout session.
type SessionState string

const (
	StatePreparing  SessionState = "preparing"
	StateInProgress SessionState = "in_progress"
	StatePaused     SessionState = "paused"
	StateCompleted  SessionState = "completed"
	StateAbandoned  SessionState = "abandoned"
)

// Terminal reports whether the state accepts no further mutation.
func (s SessionState) Terminal() bool {
	return s == StateCompleted || s == StateAbandoned
}

// SessionConfiguration is fixed at creation and never changes.
type SessionConfiguration struct {
	IsMultiplayer   bool `json:"is_multiplayer"`
	MaxParticipants int  `json:"max_participants"`
	AllowSpectators bool `json:"allow_spectators"`
	ChatEnabled     bool `json:"chat_enabled"`
	VoiceEnabled    bool `json:"voice_enabled"`
	AutoAdvance     bool `json:"auto_advance"`
}

// WorkoutSession is the aggregate root for one in-progress workout. All
// mutation happens through the session's actor, one command at a time, so the
// methods below never need internal locking.
type WorkoutSession struct {
	ID                   string                    `json:"id"`
	OwnerID              string                    `json:"owner_id"`
	WorkoutType          string                    `json:"workout_type"`
	PlanID               string                    `json:"plan_id,omitempty"`
	Activities           []WorkoutActivity         `json:"activities"`
	State                SessionState              `json:"state"`
	CurrentActivityIndex int                       `json:"current_activity_index"`
	LiveProgress         *LiveActivityProgress     `json:"live_progress,omitempty"`
	CompletedActivities  []ActivityPerformance     `json:"completed_activities"`
	Configuration        SessionConfiguration      `json:"configuration"`
	Participants         []SessionParticipant      `json:"participants"`
	ActivityFeed         []SessionFeedItem         `json:"activity_feed"`
	FeedReactions        map[string][]FeedReaction `json:"feed_reactions,omitempty"`
	StartedAt            *time.Time                `json:"started_at,omitempty"`
	PausedAt             *time.Time                `json:"paused_at,omitempty"`
	ResumedAt            *time.Time                `json:"resumed_at,omitempty"`
	CompletedAt          *time.Time                `json:"completed_at,omitempty"`
	AbandonedAt          *time.Time                `json:"abandoned_at,omitempty"`
	AbandonReason        string                    `json:"abandon_reason,omitempty"`
	TotalPausedSeconds   int                       `json:"total_paused_seconds"`
	CreatedAt            time.Time                 `json:"created_at"`
	UpdatedAt            time.Time                 `json:"updated_at"`
}

// CreateSessionInput is the immutable session definition supplied by the
// upstream planning collaborator.
type CreateSessionInput struct {
	OwnerID       string
	OwnerName     string
	OwnerAvatar   string
	WorkoutType   string
	PlanID        string
	Activities    []WorkoutActivity
	Configuration SessionConfiguration
}

// NewSession creates a session in the preparing state with the owner already
// on the roster. The id generator and clock are injected so tests can supply
// deterministic values.
func NewSession(input CreateSessionInput, now time.Time, newID func() string) (*WorkoutSession, error) {
	if strings.TrimSpace(input.OwnerID) == "" {
		return nil, &ValidationError{Field: "owner_id", Reason: "is required"}
	}
	if strings.TrimSpace(input.WorkoutType) == "" {
		return nil, &ValidationError{Field: "workout_type", Reason: "is required"}
	}
	cfg := input.Configuration
	if !cfg.IsMultiplayer {
		cfg.MaxParticipants = 1
	}
	if cfg.IsMultiplayer && cfg.MaxParticipants < 1 {
		return nil, &ValidationError{Field: "max_participants", Reason: "must be >= 1"}
	}

	now = now.UTC()
	session := &WorkoutSession{
		ID:                  newID(),
		OwnerID:             input.OwnerID,
		WorkoutType:         input.WorkoutType,
		PlanID:              input.PlanID,
		Activities:          append([]WorkoutActivity(nil), input.Activities...),
		State:               StatePreparing,
		CompletedActivities: []ActivityPerformance{},
		Configuration:       cfg,
		ActivityFeed:        []SessionFeedItem{},
		CreatedAt:           now,
		UpdatedAt:           now,
	}
	session.Participants = []SessionParticipant{{
		UserID:   input.OwnerID,
		UserName: input.OwnerName,
		Avatar:   input.OwnerAvatar,
		Role:     RoleOwner,
		Status:   ParticipantActive,
		JoinedAt: now,
	}}
	return session, nil
}

// guardMutable rejects any command once the session is terminal.
func (s *WorkoutSession) guardMutable() error {
	if s.State.Terminal() {
		return &SessionTerminatedError{State: s.State}
	}
	return nil
}

// Start transitions preparing -> in_progress and initialises live progress
// for the first activity.
func (s *WorkoutSession) Start(now time.Time) error {
	if err := s.guardMutable(); err != nil {
		return err
	}
	if s.State != StatePreparing {
		return &InvalidTransitionError{From: s.State, Attempted: "start"}
	}
	if len(s.Activities) == 0 {
		return &ValidationError{Field: "activities", Reason: "must not be empty"}
	}
	now = now.UTC()
	s.State = StateInProgress
	s.StartedAt = &now
	s.LiveProgress = newProgressForActivity(s.Activities[0], 0, len(s.Activities), now)
	return nil
}

// Pause transitions in_progress -> paused and freezes live progress.
func (s *WorkoutSession) Pause(now time.Time) error {
	if err := s.guardMutable(); err != nil {
		return err
	}
	if s.State != StateInProgress {
		return &InvalidTransitionError{From: s.State, Attempted: "pause"}
	}
	now = now.UTC()
	s.recordPause(now)
	if s.LiveProgress != nil {
		s.LiveProgress.freeze(now)
	}
	s.State = StatePaused
	return nil
}

// Resume transitions paused -> in_progress, folding the closed pause interval
// into TotalPausedSeconds.
func (s *WorkoutSession) Resume(now time.Time) error {
	if err := s.guardMutable(); err != nil {
		return err
	}
	if s.State != StatePaused {
		return &InvalidTransitionError{From: s.State, Attempted: "resume"}
	}
	now = now.UTC()
	if err := s.recordResume(now); err != nil {
		return err
	}
	if s.LiveProgress != nil {
		s.LiveProgress.rebase(now)
	}
	s.State = StateInProgress
	return nil
}

// CompleteActivity records a performance for the current activity, advances
// the cursor, and auto-completes the session once the last activity is logged.
// The returned bool reports whether the session reached the completed state.
func (s *WorkoutSession) CompleteActivity(userID string, perf ActivityPerformance, now time.Time, newID func() string) (bool, error) {
	if err := s.guardMutable(); err != nil {
		return false, err
	}
	if s.State != StateInProgress {
		return false, &InvalidTransitionError{From: s.State, Attempted: "complete_activity"}
	}
	participant, ok := s.findParticipant(userID)
	if !ok || participant.Status == ParticipantLeft {
		return false, &ParticipantNotFoundError{UserID: userID}
	}
	if participant.Role == RoleSpectator {
		return false, &ValidationError{Field: "role", Reason: "spectators cannot report activity completion"}
	}
	if err := perf.Validate(); err != nil {
		return false, err
	}
	if s.CurrentActivityIndex < 0 || s.CurrentActivityIndex >= len(s.Activities) {
		return false, &ActivityIndexOutOfRangeError{Index: s.CurrentActivityIndex, Len: len(s.Activities)}
	}

	now = now.UTC()
	activity := s.Activities[s.CurrentActivityIndex]
	perf.ActivityIndex = s.CurrentActivityIndex
	perf.ActivityType = activity.ActivityType
	perf.UserID = userID
	perf.CompletedAt = now
	s.CompletedActivities = append(s.CompletedActivities, perf)

	participant.CompletedActivities++
	s.appendSystemFeedItem(FeedActivityCompleted, *participant, activity.Name, now, newID)

	before := float64(len(s.CompletedActivities)-1) / float64(len(s.Activities))
	after := float64(len(s.CompletedActivities)) / float64(len(s.Activities))
	if before < 0.5 && after >= 0.5 && after < 1.0 {
		s.appendSystemFeedItem(FeedMilestoneAchieved, *participant, "halfway through the workout", now, newID)
	}

	if len(s.CompletedActivities) == len(s.Activities) {
		s.appendSystemFeedItem(FeedMilestoneAchieved, *participant, "all activities completed", now, newID)
		s.CurrentActivityIndex = len(s.Activities) - 1
		s.complete(now)
		return true, nil
	}

	s.CurrentActivityIndex++
	next := s.Activities[s.CurrentActivityIndex]
	s.LiveProgress = newProgressForActivity(next, s.CurrentActivityIndex, len(s.Activities), now)
	participant.CurrentActivity = next.Name
	return false, nil
}

// CompleteSession ends the workout early, before every activity is logged.
func (s *WorkoutSession) CompleteSession(now time.Time) error {
	if err := s.guardMutable(); err != nil {
		return err
	}
	if s.State != StateInProgress && s.State != StatePaused {
		return &InvalidTransitionError{From: s.State, Attempted: "complete_session"}
	}
	now = now.UTC()
	if s.State == StatePaused {
		// Close the open pause interval so activeDuration stays correct.
		if err := s.foldOpenPause(now); err != nil {
			return err
		}
	}
	s.complete(now)
	return nil
}

func (s *WorkoutSession) complete(now time.Time) {
	s.State = StateCompleted
	s.CompletedAt = &now
	s.LiveProgress = nil
}

// Abandon terminates the session without producing a workout record. It is
// accepted from any non-terminal state.
func (s *WorkoutSession) Abandon(reason string, now time.Time) error {
	if err := s.guardMutable(); err != nil {
		return err
	}
	now = now.UTC()
	if s.State == StatePaused {
		if err := s.foldOpenPause(now); err != nil {
			return err
		}
	}
	s.State = StateAbandoned
	s.AbandonedAt = &now
	s.AbandonReason = reason
	s.LiveProgress = nil
	return nil
}

// Clone returns a deep copy of the session. The actor mutates a clone and
// swaps it in only after the snapshot is durably persisted; callers of the
// read query receive clones so the actor's copy is never shared.
func (s *WorkoutSession) Clone() *WorkoutSession {
	clone := *s
	clone.Activities = append([]WorkoutActivity(nil), s.Activities...)
	clone.CompletedActivities = append([]ActivityPerformance(nil), s.CompletedActivities...)
	clone.Participants = append([]SessionParticipant(nil), s.Participants...)
	for i := range clone.Participants {
		clone.Participants[i].LeftAt = copyTime(s.Participants[i].LeftAt)
	}
	clone.ActivityFeed = append([]SessionFeedItem(nil), s.ActivityFeed...)
	for i := range clone.ActivityFeed {
		if s.ActivityFeed[i].Metadata != nil {
			meta := make(map[string]string, len(s.ActivityFeed[i].Metadata))
			for k, v := range s.ActivityFeed[i].Metadata {
				meta[k] = v
			}
			clone.ActivityFeed[i].Metadata = meta
		}
	}
	if s.FeedReactions != nil {
		clone.FeedReactions = make(map[string][]FeedReaction, len(s.FeedReactions))
		for id, reactions := range s.FeedReactions {
			clone.FeedReactions[id] = append([]FeedReaction(nil), reactions...)
		}
	}
	if s.LiveProgress != nil {
		clone.LiveProgress = s.LiveProgress.clone()
	}
	clone.StartedAt = copyTime(s.StartedAt)
	clone.PausedAt = copyTime(s.PausedAt)
	clone.ResumedAt = copyTime(s.ResumedAt)
	clone.CompletedAt = copyTime(s.CompletedAt)
	clone.AbandonedAt = copyTime(s.AbandonedAt)
	return &clone
}

func copyTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}
