package outbox

// Session events share one topic and one permissive envelope schema; the
// event_type header selects the concrete payload. The workout_completed
// topic carries a single strict payload for stats consumers.

const sessionEventsSchema = `{
  "type": "object",
  "title": "SessionEvent",
  "properties": {
    "session_id": {"type": "string"},
    "user_id": {"type": "string"},
    "user_name": {"type": "string"},
    "role": {"type": "string"},
    "reason": {"type": "string"},
    "activity_index": {"type": "integer"},
    "activity_type": {"type": "string"},
    "duration_seconds": {"type": "integer"},
    "total_paused_seconds": {"type": "integer"},
    "joined_at": {"type": "string", "format": "date-time"},
    "left_at": {"type": "string", "format": "date-time"},
    "paused_at": {"type": "string", "format": "date-time"},
    "resumed_at": {"type": "string", "format": "date-time"},
    "completed_at": {"type": "string", "format": "date-time"},
    "abandoned_at": {"type": "string", "format": "date-time"}
  },
  "required": ["session_id"],
  "additionalProperties": false
}`

const workoutCompletedSchema = `{
  "type": "object",
  "title": "WorkoutCompleted",
  "properties": {
    "session_id": {"type": "string"},
    "workout_id": {"type": "string"},
    "user_id": {"type": "string"},
    "workout_type": {"type": "string"},
    "duration_seconds": {"type": "integer"},
    "activities_completed": {"type": "integer"},
    "total_activities": {"type": "integer"},
    "completion_percentage": {"type": "number"},
    "recorded_at": {"type": "string", "format": "date-time"}
  },
  "required": ["session_id", "workout_id", "user_id", "workout_type", "duration_seconds", "activities_completed", "total_activities", "completion_percentage", "recorded_at"],
  "additionalProperties": false
}`

var schemaCatalog = map[string]string{
	"session_events-value":    sessionEventsSchema,
	"workout_completed-value": workoutCompletedSchema,
}
