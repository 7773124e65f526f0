package domain

import (
	"strings"
	"time"
)

// ParticipantRole distinguishes the session owner, regular participants, and
// spectators. Spectators never count against capacity.
type ParticipantRole string

const (
	RoleOwner       ParticipantRole = "owner"
	RoleParticipant ParticipantRole = "participant"
	RoleSpectator   ParticipantRole = "spectator"
)

// ParticipantStatus tracks a single participant's own progress without
// affecting the session-level state machine.
type ParticipantStatus string

const (
	ParticipantActive    ParticipantStatus = "active"
	ParticipantPaused    ParticipantStatus = "paused"
	ParticipantCompleted ParticipantStatus = "completed"
	ParticipantLeft      ParticipantStatus = "left"
)

// SessionParticipant is one member of the session roster.
type SessionParticipant struct {
	UserID              string            `json:"user_id"`
	UserName            string            `json:"user_name"`
	Avatar              string            `json:"avatar,omitempty"`
	Role                ParticipantRole   `json:"role"`
	Status              ParticipantStatus `json:"status"`
	JoinedAt            time.Time         `json:"joined_at"`
	LeftAt              *time.Time        `json:"left_at,omitempty"`
	CurrentActivity     string            `json:"current_activity,omitempty"`
	CompletedActivities int               `json:"completed_activities"`
}

// JoinInput describes a user joining the roster.
type JoinInput struct {
	UserID   string
	UserName string
	Avatar   string
	Role     ParticipantRole
}

func (s *WorkoutSession) findParticipant(userID string) (*SessionParticipant, bool) {
	for i := range s.Participants {
		if s.Participants[i].UserID == userID {
			return &s.Participants[i], true
		}
	}
	return nil, false
}

// activeParticipantCount counts roster members occupying capacity. The owner
// is always present and does not consume a slot; spectators and participants
// who have left are excluded.
func (s *WorkoutSession) activeParticipantCount() int {
	count := 0
	for i := range s.Participants {
		p := &s.Participants[i]
		if p.Role == RoleParticipant && p.Status != ParticipantLeft {
			count++
		}
	}
	return count
}

// Join adds a user to the roster. Spectators bypass the capacity check but
// require AllowSpectators. A participant who previously left may rejoin.
func (s *WorkoutSession) Join(input JoinInput, now time.Time, newID func() string) error {
	if err := s.guardMutable(); err != nil {
		return err
	}
	if strings.TrimSpace(input.UserID) == "" {
		return &ValidationError{Field: "user_id", Reason: "is required"}
	}
	role := input.Role
	if role == "" {
		role = RoleParticipant
	}
	if role == RoleOwner && input.UserID != s.OwnerID {
		return &ValidationError{Field: "role", Reason: "owner role is reserved"}
	}
	if role == RoleSpectator && !s.Configuration.AllowSpectators {
		return &ValidationError{Field: "role", Reason: "session does not allow spectators"}
	}
	if !s.Configuration.IsMultiplayer && input.UserID != s.OwnerID {
		return &SessionFullError{MaxParticipants: s.Configuration.MaxParticipants}
	}

	now = now.UTC()
	if existing, ok := s.findParticipant(input.UserID); ok {
		if existing.Status != ParticipantLeft {
			return &DuplicateParticipantError{UserID: input.UserID}
		}
		if existing.Role != RoleSpectator && s.activeParticipantCount() >= s.Configuration.MaxParticipants {
			return &SessionFullError{MaxParticipants: s.Configuration.MaxParticipants}
		}
		existing.Status = ParticipantActive
		existing.JoinedAt = now
		existing.LeftAt = nil
		s.appendSystemFeedItem(FeedUserJoined, *existing, "rejoined the session", now, newID)
		return nil
	}

	if role != RoleSpectator && s.activeParticipantCount() >= s.Configuration.MaxParticipants {
		return &SessionFullError{MaxParticipants: s.Configuration.MaxParticipants}
	}

	participant := SessionParticipant{
		UserID:   input.UserID,
		UserName: input.UserName,
		Avatar:   input.Avatar,
		Role:     role,
		Status:   ParticipantActive,
		JoinedAt: now,
	}
	s.Participants = append(s.Participants, participant)
	s.appendSystemFeedItem(FeedUserJoined, participant, "joined the session", now, newID)
	return nil
}

// Leave marks the participant as left. The owner leaving does not terminate
// the session; ownership stays with the original owner id.
func (s *WorkoutSession) Leave(userID string, now time.Time, newID func() string) error {
	if err := s.guardMutable(); err != nil {
		return err
	}
	participant, ok := s.findParticipant(userID)
	if !ok || participant.Status == ParticipantLeft {
		return &ParticipantNotFoundError{UserID: userID}
	}
	now = now.UTC()
	participant.Status = ParticipantLeft
	participant.LeftAt = &now
	s.appendSystemFeedItem(FeedUserLeft, *participant, "left the session", now, newID)
	return nil
}

// UpdateParticipantStatus reflects a participant's own pause or completion.
// One participant pausing does not pause the session for everyone; only the
// session-level Pause does.
func (s *WorkoutSession) UpdateParticipantStatus(userID string, status ParticipantStatus, currentActivity string) error {
	if err := s.guardMutable(); err != nil {
		return err
	}
	switch status {
	case ParticipantActive, ParticipantPaused, ParticipantCompleted:
	default:
		return &ValidationError{Field: "status", Reason: "must be active, paused, or completed"}
	}
	participant, ok := s.findParticipant(userID)
	if !ok || participant.Status == ParticipantLeft {
		return &ParticipantNotFoundError{UserID: userID}
	}
	participant.Status = status
	if currentActivity != "" {
		participant.CurrentActivity = currentActivity
	}
	return nil
}
