package domain

import (
	"strings"
	"time"
	"unicode/utf8"
)

// FeedItemType enumerates the kinds of entries in the session activity feed.
type FeedItemType string

const (
	FeedUserJoined        FeedItemType = "user_joined"
	FeedUserLeft          FeedItemType = "user_left"
	FeedActivityCompleted FeedItemType = "activity_completed"
	FeedSetCompleted      FeedItemType = "set_completed"
	FeedMilestoneAchieved FeedItemType = "milestone_achieved"
	FeedEncouragement     FeedItemType = "encouragement"
	FeedChatMessage       FeedItemType = "chat_message"
)

const maxFeedContentLength = 500

// SessionFeedItem is one immutable, timestamped entry in the session feed.
// Items are never mutated or deleted; reactions live in a separate map keyed
// by item id.
type SessionFeedItem struct {
	ID        string            `json:"id"`
	Type      FeedItemType      `json:"type"`
	UserID    string            `json:"user_id"`
	UserName  string            `json:"user_name"`
	Content   string            `json:"content"`
	Timestamp time.Time         `json:"timestamp"`
	Metadata  map[string]string `json:"metadata,omitempty"`
}

// FeedReaction is a lightweight reaction to a feed item.
type FeedReaction struct {
	UserID    string    `json:"user_id"`
	Emoji     string    `json:"emoji"`
	ReactedAt time.Time `json:"reacted_at"`
}

// nextFeedTimestamp assigns the item timestamp. The log owns timestamps so
// ordering stays strictly increasing even when two commands carry the same
// logical time; the tie-break is arrival order at the actor.
func (s *WorkoutSession) nextFeedTimestamp(now time.Time) time.Time {
	ts := now.UTC()
	if n := len(s.ActivityFeed); n > 0 {
		last := s.ActivityFeed[n-1].Timestamp
		if !ts.After(last) {
			ts = last.Add(time.Microsecond)
		}
	}
	return ts
}

func (s *WorkoutSession) appendSystemFeedItem(itemType FeedItemType, participant SessionParticipant, content string, now time.Time, newID func() string) {
	s.ActivityFeed = append(s.ActivityFeed, SessionFeedItem{
		ID:        newID(),
		Type:      itemType,
		UserID:    participant.UserID,
		UserName:  participant.UserName,
		Content:   content,
		Timestamp: s.nextFeedTimestamp(now),
	})
}

// PostFeedItem appends a caller-originated feed item. Spectators may only
// post chat and encouragement; progress item types are reserved for active
// participants.
func (s *WorkoutSession) PostFeedItem(userID string, itemType FeedItemType, content string, metadata map[string]string, now time.Time, newID func() string) error {
	if err := s.guardMutable(); err != nil {
		return err
	}
	participant, ok := s.findParticipant(userID)
	if !ok || participant.Status == ParticipantLeft {
		return &ParticipantNotFoundError{UserID: userID}
	}

	switch itemType {
	case FeedChatMessage, FeedEncouragement:
		if itemType == FeedChatMessage && !s.Configuration.ChatEnabled {
			return &ValidationError{Field: "type", Reason: "chat is disabled for this session"}
		}
	case FeedSetCompleted, FeedActivityCompleted, FeedMilestoneAchieved:
		if participant.Role == RoleSpectator {
			return &ValidationError{Field: "type", Reason: "spectators may only post chat or encouragement"}
		}
	default:
		return &ValidationError{Field: "type", Reason: "cannot be posted directly"}
	}

	trimmed := strings.TrimSpace(content)
	if trimmed == "" {
		return &ValidationError{Field: "content", Reason: "must not be empty"}
	}
	if utf8.RuneCountInString(trimmed) > maxFeedContentLength {
		return &ValidationError{Field: "content", Reason: "must be at most 500 characters"}
	}

	var meta map[string]string
	if len(metadata) > 0 {
		meta = make(map[string]string, len(metadata))
		for k, v := range metadata {
			meta[k] = v
		}
	}

	s.ActivityFeed = append(s.ActivityFeed, SessionFeedItem{
		ID:        newID(),
		Type:      itemType,
		UserID:    participant.UserID,
		UserName:  participant.UserName,
		Content:   trimmed,
		Timestamp: s.nextFeedTimestamp(now),
		Metadata:  meta,
	})
	return nil
}

// React records a reaction against an existing feed item. The item itself is
// never mutated.
func (s *WorkoutSession) React(userID, feedItemID, emoji string, now time.Time) error {
	if err := s.guardMutable(); err != nil {
		return err
	}
	participant, ok := s.findParticipant(userID)
	if !ok || participant.Status == ParticipantLeft {
		return &ParticipantNotFoundError{UserID: userID}
	}
	if strings.TrimSpace(emoji) == "" {
		return &ValidationError{Field: "emoji", Reason: "is required"}
	}

	found := false
	for i := range s.ActivityFeed {
		if s.ActivityFeed[i].ID == feedItemID {
			found = true
			break
		}
	}
	if !found {
		return &ValidationError{Field: "feed_item_id", Reason: "does not reference a feed item"}
	}

	if s.FeedReactions == nil {
		s.FeedReactions = make(map[string][]FeedReaction)
	}
	s.FeedReactions[feedItemID] = append(s.FeedReactions[feedItemID], FeedReaction{
		UserID:    userID,
		Emoji:     emoji,
		ReactedAt: now.UTC(),
	})
	return nil
}
