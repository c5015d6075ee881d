package outbox

const workoutLoggedSchema = `{
  "type": "object",
  "title": "WorkoutLogged",
  "properties": {
    "workout_id": {"type": "string"},
    "slot": {"type": "string"},
    "workout_type": {"type": "string", "enum": ["running", "cycling"]},
    "description": {"type": "string"},
    "latitude": {"type": "number"},
    "longitude": {"type": "number"},
    "distance_km": {"type": "number", "exclusiveMinimum": 0},
    "duration_min": {"type": "number", "exclusiveMinimum": 0},
    "cadence": {"type": "number"},
    "pace": {"type": "number"},
    "elevation_gain": {"type": "number", "minimum": 0},
    "speed": {"type": "number"},
    "logged_at": {"type": "string", "format": "date-time"}
  },
  "required": ["workout_id", "slot", "workout_type", "description", "latitude", "longitude", "distance_km", "duration_min", "logged_at"],
  "additionalProperties": false
}`

const workoutsResetSchema = `{
  "type": "object",
  "title": "WorkoutsReset",
  "properties": {
    "slot": {"type": "string"},
    "discarded": {"type": "integer", "minimum": 0},
    "reset_at": {"type": "string", "format": "date-time"}
  },
  "required": ["slot", "discarded", "reset_at"],
  "additionalProperties": false
}`
