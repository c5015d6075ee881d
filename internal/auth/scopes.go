package auth

// Scopes understood by the workout map host.
const (
	// ScopeWorkoutsReset allows discarding the whole stored log.
	ScopeWorkoutsReset = "workouts:reset"
)
