package domain

import "time"

// Pause time accounting. PausedAt marks the open interval while the session
// is paused; closed intervals accumulate into TotalPausedSeconds, which never
// decreases.

func (s *WorkoutSession) recordPause(now time.Time) {
	s.PausedAt = &now
}

func (s *WorkoutSession) recordResume(now time.Time) error {
	if err := s.foldOpenPause(now); err != nil {
		return err
	}
	s.ResumedAt = &now
	return nil
}

// foldOpenPause closes the open pause interval into TotalPausedSeconds
// without recording a resume. Terminal transitions use it directly so a
// session completed or abandoned while paused never claims it resumed.
func (s *WorkoutSession) foldOpenPause(now time.Time) error {
	if s.PausedAt == nil {
		return &InvalidTransitionError{From: s.State, Attempted: "resume"}
	}
	delta := now.Sub(*s.PausedAt)
	if delta < 0 {
		// Clock skew: never let paused time go backwards.
		delta = 0
	}
	s.TotalPausedSeconds += int(delta / time.Second)
	s.PausedAt = nil
	return nil
}

// ActiveDuration is the wall-clock time the session has spent in_progress:
// total elapsed minus accumulated pauses, with the currently-open pause
// interval (if any) excluded. Never negative.
func (s *WorkoutSession) ActiveDuration(now time.Time) time.Duration {
	if s.StartedAt == nil {
		return 0
	}
	end := now.UTC()
	switch {
	case s.CompletedAt != nil:
		end = *s.CompletedAt
	case s.AbandonedAt != nil:
		end = *s.AbandonedAt
	}

	active := end.Sub(*s.StartedAt) - time.Duration(s.TotalPausedSeconds)*time.Second
	if s.State == StatePaused && s.PausedAt != nil {
		open := end.Sub(*s.PausedAt)
		if open > 0 {
			active -= open
		}
	}
	if active < 0 {
		return 0
	}
	return active
}
