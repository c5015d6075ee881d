// Package domain defines the workout records logged on the map.
package domain

import (
	"fmt"
	"time"
)

// Kind is the variant discriminant of a workout.
type Kind string

const (
	KindRunning Kind = "running"
	KindCycling Kind = "cycling"
)

// ParseKind returns the Kind named by value.
func ParseKind(value string) (Kind, error) {
	switch Kind(value) {
	case KindRunning, KindCycling:
		return Kind(value), nil
	}
	return "", fmt.Errorf("unknown workout type %q", value)
}

// Title returns the capitalised variant name used in descriptions.
func (k Kind) Title() string {
	switch k {
	case KindRunning:
		return "Running"
	case KindCycling:
		return "Cycling"
	}
	return string(k)
}

// Icon returns the emoji shown in popups and list entries.
func (k Kind) Icon() string {
	if k == KindRunning {
		return "🏃"
	}
	return "🚴"
}

// Coordinates is a latitude/longitude pair.
type Coordinates struct {
	Lat float64
	Lng float64
}

func (c Coordinates) String() string {
	return fmt.Sprintf("%.6f,%.6f", c.Lat, c.Lng)
}

// RunningMetrics holds the running-only measurement and its derived pace.
type RunningMetrics struct {
	Cadence float64 // steps/min
	Pace    float64 // min/km
}

// CyclingMetrics holds the cycling-only measurement and its derived speed.
type CyclingMetrics struct {
	ElevationGain float64 // m
	Speed         float64 // km/h
}

// Workout is one logged activity. Exactly one of Running and Cycling is set,
// matching Kind.
type Workout struct {
	ID           string
	CreatedAt    time.Time
	Coords       Coordinates
	DistanceKm   float64
	DurationMin  float64
	Description  string
	Interactions int
	Kind         Kind
	Running      *RunningMetrics
	Cycling      *CyclingMetrics
}

// NewRunning builds a running workout. Inputs must already be validated.
func NewRunning(id string, createdAt time.Time, coords Coordinates, distanceKm, durationMin, cadence float64) Workout {
	w := newWorkout(KindRunning, id, createdAt, coords, distanceKm, durationMin)
	w.Running = &RunningMetrics{
		Cadence: cadence,
		Pace:    durationMin / distanceKm,
	}
	return w
}

// NewCycling builds a cycling workout. Inputs must already be validated.
func NewCycling(id string, createdAt time.Time, coords Coordinates, distanceKm, durationMin, elevationGain float64) Workout {
	w := newWorkout(KindCycling, id, createdAt, coords, distanceKm, durationMin)
	w.Cycling = &CyclingMetrics{
		ElevationGain: elevationGain,
		Speed:         distanceKm / (durationMin / 60),
	}
	return w
}

func newWorkout(kind Kind, id string, createdAt time.Time, coords Coordinates, distanceKm, durationMin float64) Workout {
	return Workout{
		ID:          id,
		CreatedAt:   createdAt,
		Coords:      coords,
		DistanceKm:  distanceKm,
		DurationMin: durationMin,
		Description: Describe(kind, createdAt),
		Kind:        kind,
	}
}

// Describe formats the label for a workout of the given kind created at t,
// e.g. "Running on April 14".
func Describe(kind Kind, t time.Time) string {
	return fmt.Sprintf("%s on %s %d", kind.Title(), t.Month(), t.Day())
}

// Select records that the workout was picked from the list.
func (w *Workout) Select() {
	w.Interactions++
}

// Metric returns the derived value and its unit: pace for running, speed for cycling.
func (w Workout) Metric() (float64, string) {
	if w.Running != nil {
		return w.Running.Pace, "min/km"
	}
	if w.Cycling != nil {
		return w.Cycling.Speed, "km/h"
	}
	return 0, ""
}

// Measurement returns the variant-specific input and its unit: cadence for
// running, elevation gain for cycling.
func (w Workout) Measurement() (float64, string) {
	if w.Running != nil {
		return w.Running.Cadence, "spm"
	}
	if w.Cycling != nil {
		return w.Cycling.ElevationGain, "m"
	}
	return 0, ""
}
