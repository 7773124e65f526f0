package domain

import "time"

// ActivityStructure describes how progress within an activity is shaped.
type ActivityStructure string

const (
	// StructureInterval is timed work/rest cycles (e.g. HIIT rounds).
	StructureInterval ActivityStructure = "interval"
	// StructureSetRep is strength work tracked as sets and reps.
	StructureSetRep ActivityStructure = "set_rep"
	// StructureFreeform has no sub-progress (e.g. a warmup walk).
	StructureFreeform ActivityStructure = "freeform"
)

// CompletionCriteria describes when an activity may be auto-completed.
type CompletionCriteria struct {
	AutoVerifiable   bool `json:"auto_verifiable"`
	MinEffortSeconds int  `json:"min_effort_seconds,omitempty"`
}

// WorkoutActivity is one scheduled unit of work within a session. The activity
// list is fixed at session creation and never reordered.
type WorkoutActivity struct {
	Name             string             `json:"name"`
	ActivityType     string             `json:"activity_type"`
	Structure        ActivityStructure  `json:"structure"`
	Intervals        int                `json:"intervals,omitempty"`
	IntervalSeconds  int                `json:"interval_seconds,omitempty"`
	RestSeconds      int                `json:"rest_seconds,omitempty"`
	Sets             int                `json:"sets,omitempty"`
	Reps             int                `json:"reps,omitempty"`
	WeightKg         float64            `json:"weight_kg,omitempty"`
	SetRestSeconds   int                `json:"set_rest_seconds,omitempty"`
	EstimatedSeconds int                `json:"estimated_seconds,omitempty"`
	Completion       CompletionCriteria `json:"completion"`
}

// ActivityPerformance records the outcome of one finished activity.
type ActivityPerformance struct {
	ActivityIndex     int       `json:"activity_index"`
	ActivityType      string    `json:"activity_type"`
	UserID            string    `json:"user_id"`
	DurationSeconds   int       `json:"duration_seconds"`
	SetsCompleted     int       `json:"sets_completed,omitempty"`
	RepsCompleted     int       `json:"reps_completed,omitempty"`
	WeightKg          float64   `json:"weight_kg,omitempty"`
	DistanceMeters    float64   `json:"distance_meters,omitempty"`
	CaloriesBurned    int       `json:"calories_burned,omitempty"`
	PerceivedExertion int       `json:"perceived_exertion,omitempty"`
	CompletedAt       time.Time `json:"completed_at"`
}

// Validate checks the caller-supplied fields of a performance report.
func (p ActivityPerformance) Validate() error {
	if p.DurationSeconds < 0 {
		return &ValidationError{Field: "duration_seconds", Reason: "must be >= 0"}
	}
	if p.PerceivedExertion < 0 || p.PerceivedExertion > 10 {
		return &ValidationError{Field: "perceived_exertion", Reason: "must be between 0 and 10"}
	}
	if p.SetsCompleted < 0 || p.RepsCompleted < 0 {
		return &ValidationError{Field: "sets_completed", Reason: "must be >= 0"}
	}
	return nil
}
