// Package events defines the payloads exported when the workout log changes.
package events

import "time"

const (
	// TypeWorkoutLogged is emitted when a workout is appended to the log.
	TypeWorkoutLogged = "workout.logged"
	// TypeWorkoutsReset is emitted when the stored log is cleared.
	TypeWorkoutsReset = "workouts.reset"
)

// WorkoutLogged represents the message emitted when a new workout is accepted.
type WorkoutLogged struct {
	WorkoutID     string    `json:"workout_id"`
	Slot          string    `json:"slot"`
	WorkoutType   string    `json:"workout_type"`
	Description   string    `json:"description"`
	Latitude      float64   `json:"latitude"`
	Longitude     float64   `json:"longitude"`
	DistanceKm    float64   `json:"distance_km"`
	DurationMin   float64   `json:"duration_min"`
	Cadence       *float64  `json:"cadence,omitempty"`
	Pace          *float64  `json:"pace,omitempty"`
	ElevationGain *float64  `json:"elevation_gain,omitempty"`
	Speed         *float64  `json:"speed,omitempty"`
	LoggedAt      time.Time `json:"logged_at"`
}

// WorkoutsReset records that every stored workout was discarded.
type WorkoutsReset struct {
	Slot      string    `json:"slot"`
	Discarded int       `json:"discarded"`
	ResetAt   time.Time `json:"reset_at"`
}
