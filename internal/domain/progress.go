package domain

import (
	"fmt"
	"time"
)

// ProgressKind keys the shape of sub-progress within the current activity.
// Exactly one of the shape pointers is set for its kind.
type ProgressKind string

const (
	ProgressInterval ProgressKind = "interval"
	ProgressExercise ProgressKind = "exercise"
	ProgressNone     ProgressKind = "none"
)

// IntervalProgress tracks position within a timed work/rest cycle.
type IntervalProgress struct {
	CurrentInterval int  `json:"current_interval"`
	TotalIntervals  int  `json:"total_intervals"`
	ElapsedSeconds  int  `json:"elapsed_seconds"`
	Resting         bool `json:"resting"`
}

// ExerciseProgress tracks position within set/rep based strength work.
type ExerciseProgress struct {
	CurrentSet           int     `json:"current_set"`
	TotalSets            int     `json:"total_sets"`
	Reps                 int     `json:"reps"`
	WeightKg             float64 `json:"weight_kg,omitempty"`
	RestRemainingSeconds int     `json:"rest_remaining_seconds"`
}

// LiveActivityProgress is the frequently-refreshed sub-state for the current
// activity. Present only while the session is in_progress or paused.
type LiveActivityProgress struct {
	ActivityType              string            `json:"activity_type"`
	ActivityIndex             int               `json:"activity_index"`
	TotalActivities           int               `json:"total_activities"`
	Kind                      ProgressKind      `json:"kind"`
	Interval                  *IntervalProgress `json:"interval,omitempty"`
	Exercise                  *ExerciseProgress `json:"exercise,omitempty"`
	ActivityStartedAt         time.Time         `json:"activity_started_at"`
	ElapsedSeconds            int               `json:"elapsed_seconds"`
	EstimatedRemainingSeconds int               `json:"estimated_remaining_seconds,omitempty"`
}

// newProgressForActivity derives the progress shape from the activity's
// structure: interval activities get interval progress, set/rep activities
// get exercise progress, anything else gets neither.
func newProgressForActivity(activity WorkoutActivity, index, total int, now time.Time) *LiveActivityProgress {
	progress := &LiveActivityProgress{
		ActivityType:      activity.ActivityType,
		ActivityIndex:     index,
		TotalActivities:   total,
		Kind:              ProgressNone,
		ActivityStartedAt: now.UTC(),
	}
	switch activity.Structure {
	case StructureInterval:
		progress.Kind = ProgressInterval
		progress.Interval = &IntervalProgress{
			CurrentInterval: 1,
			TotalIntervals:  activity.Intervals,
		}
	case StructureSetRep:
		progress.Kind = ProgressExercise
		progress.Exercise = &ExerciseProgress{
			CurrentSet: 1,
			TotalSets:  activity.Sets,
			Reps:       activity.Reps,
			WeightKg:   activity.WeightKg,
		}
	}
	if activity.EstimatedSeconds > 0 {
		progress.EstimatedRemainingSeconds = activity.EstimatedSeconds
	}
	return progress
}

func (p *LiveActivityProgress) clone() *LiveActivityProgress {
	clone := *p
	if p.Interval != nil {
		interval := *p.Interval
		clone.Interval = &interval
	}
	if p.Exercise != nil {
		exercise := *p.Exercise
		clone.Exercise = &exercise
	}
	return &clone
}

// freeze pins ElapsedSeconds at pause time so the paused interval does not
// bleed into activity elapsed time.
func (p *LiveActivityProgress) freeze(now time.Time) {
	elapsed := int(now.Sub(p.ActivityStartedAt) / time.Second)
	if elapsed < 0 {
		elapsed = 0
	}
	p.ElapsedSeconds = elapsed
}

// rebase shifts ActivityStartedAt after a resume so that elapsed time picks
// up exactly where freeze left it.
func (p *LiveActivityProgress) rebase(now time.Time) {
	p.ActivityStartedAt = now.UTC().Add(-time.Duration(p.ElapsedSeconds) * time.Second)
}

// Tick refreshes elapsed and estimated-remaining time for the current
// activity. It is the only high-frequency command and touches nothing but
// the progress snapshot.
func (s *WorkoutSession) Tick(now time.Time) error {
	if s.State != StateInProgress || s.LiveProgress == nil {
		return nil
	}
	activity, err := s.CurrentActivity()
	if err != nil {
		return err
	}
	now = now.UTC()
	p := s.LiveProgress

	elapsed := int(now.Sub(p.ActivityStartedAt) / time.Second)
	if elapsed < 0 {
		elapsed = 0
	}
	p.ElapsedSeconds = elapsed

	if activity.EstimatedSeconds > 0 {
		remaining := activity.EstimatedSeconds - elapsed
		if remaining < 0 {
			remaining = 0
		}
		p.EstimatedRemainingSeconds = remaining
	}

	if p.Kind == ProgressInterval && p.Interval != nil {
		cycle := activity.IntervalSeconds + activity.RestSeconds
		if cycle > 0 {
			current := elapsed/cycle + 1
			if p.Interval.TotalIntervals > 0 && current > p.Interval.TotalIntervals {
				current = p.Interval.TotalIntervals
			}
			offset := elapsed % cycle
			p.Interval.CurrentInterval = current
			p.Interval.Resting = offset >= activity.IntervalSeconds
			p.Interval.ElapsedSeconds = elapsed
		}
	}
	return nil
}

// CurrentActivity returns the activity the cursor points at.
func (s *WorkoutSession) CurrentActivity() (WorkoutActivity, error) {
	if s.CurrentActivityIndex < 0 || s.CurrentActivityIndex >= len(s.Activities) {
		return WorkoutActivity{}, &ActivityIndexOutOfRangeError{Index: s.CurrentActivityIndex, Len: len(s.Activities)}
	}
	return s.Activities[s.CurrentActivityIndex], nil
}

// CompleteSet advances exercise progress by one set and records a
// set_completed feed item on behalf of the participant.
func (s *WorkoutSession) CompleteSet(userID string, reps int, weightKg float64, now time.Time, newID func() string) error {
	if err := s.guardMutable(); err != nil {
		return err
	}
	if s.State != StateInProgress {
		return &InvalidTransitionError{From: s.State, Attempted: "complete_set"}
	}
	participant, ok := s.findParticipant(userID)
	if !ok || participant.Status == ParticipantLeft {
		return &ParticipantNotFoundError{UserID: userID}
	}
	if participant.Role == RoleSpectator {
		return &ValidationError{Field: "role", Reason: "spectators cannot report set completion"}
	}
	if s.LiveProgress == nil || s.LiveProgress.Kind != ProgressExercise || s.LiveProgress.Exercise == nil {
		return &ValidationError{Field: "activity", Reason: "current activity is not set/rep based"}
	}
	if reps < 0 {
		return &ValidationError{Field: "reps", Reason: "must be >= 0"}
	}

	now = now.UTC()
	exercise := s.LiveProgress.Exercise
	activity, err := s.CurrentActivity()
	if err != nil {
		return err
	}
	if weightKg > 0 {
		exercise.WeightKg = weightKg
	}
	if exercise.CurrentSet < exercise.TotalSets {
		exercise.CurrentSet++
		exercise.RestRemainingSeconds = activity.SetRestSeconds
	} else {
		exercise.RestRemainingSeconds = 0
	}

	s.appendSystemFeedItem(FeedSetCompleted, *participant,
		fmt.Sprintf("completed a set of %d reps", reps), now, newID)
	return nil
}
