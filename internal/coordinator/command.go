package coordinator

import (
	"example.com/session/internal/domain"
)

type commandKind string

const (
	cmdStart            commandKind = "start"
	cmdPause            commandKind = "pause"
	cmdResume           commandKind = "resume"
	cmdCompleteActivity commandKind = "complete_activity"
	cmdCompleteSet      commandKind = "complete_set"
	cmdCompleteSession  commandKind = "complete_session"
	cmdAbandon          commandKind = "abandon"
	cmdJoin             commandKind = "join"
	cmdLeave            commandKind = "leave"
	cmdUpdateStatus     commandKind = "update_status"
	cmdPostFeedItem     commandKind = "post_feed_item"
	cmdReact            commandKind = "react"
	cmdTick             commandKind = "tick"
	cmdView             commandKind = "view"
)

// command is the envelope delivered to a session actor. Exactly one payload
// group is populated depending on the kind.
type command struct {
	kind   commandKind
	userID string

	join            domain.JoinInput
	performance     domain.ActivityPerformance
	status          domain.ParticipantStatus
	currentActivity string
	feedType        domain.FeedItemType
	content         string
	metadata        map[string]string
	feedItemID      string
	emoji           string
	reps            int
	weightKg        float64
	reason          string

	reply chan result
}

type result struct {
	view *domain.WorkoutSession
	err  error
}
