package domain

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// storedWorkout is the persisted layout of a workout. Derived fields are
// stored so they come back unchanged after a reload.
type storedWorkout struct {
	ID            string     `json:"id"`
	Date          time.Time  `json:"date"`
	Coords        [2]float64 `json:"coords"`
	Distance      float64    `json:"distance"`
	Duration      float64    `json:"duration"`
	Description   string     `json:"description"`
	Clicks        int        `json:"clicks"`
	Type          Kind       `json:"type"`
	Cadence       *float64   `json:"cadence,omitempty"`
	Pace          *float64   `json:"pace,omitempty"`
	ElevationGain *float64   `json:"elevationGain,omitempty"`
	Speed         *float64   `json:"speed,omitempty"`
}

// MarshalJSON encodes the workout with its type discriminant.
func (w Workout) MarshalJSON() ([]byte, error) {
	out := storedWorkout{
		ID:          w.ID,
		Date:        w.CreatedAt,
		Coords:      [2]float64{w.Coords.Lat, w.Coords.Lng},
		Distance:    w.DistanceKm,
		Duration:    w.DurationMin,
		Description: w.Description,
		Clicks:      w.Interactions,
		Type:        w.Kind,
	}
	switch w.Kind {
	case KindRunning:
		if w.Running == nil {
			return nil, errors.New("running workout without running metrics")
		}
		out.Cadence = &w.Running.Cadence
		out.Pace = &w.Running.Pace
	case KindCycling:
		if w.Cycling == nil {
			return nil, errors.New("cycling workout without cycling metrics")
		}
		out.ElevationGain = &w.Cycling.ElevationGain
		out.Speed = &w.Cycling.Speed
	default:
		return nil, fmt.Errorf("unknown workout type %q", w.Kind)
	}
	return json.Marshal(out)
}

// decodedWorkout mirrors storedWorkout with every field optional so that
// absent fields can be told apart from zero values.
type decodedWorkout struct {
	ID            string     `json:"id"`
	Date          *time.Time `json:"date"`
	Coords        []float64  `json:"coords"`
	Distance      *float64   `json:"distance"`
	Duration      *float64   `json:"duration"`
	Description   *string    `json:"description"`
	Clicks        int        `json:"clicks"`
	Type          Kind       `json:"type"`
	Cadence       *float64   `json:"cadence"`
	Pace          *float64   `json:"pace"`
	ElevationGain *float64   `json:"elevationGain"`
	Speed         *float64   `json:"speed"`
}

// UnmarshalJSON decodes a persisted workout directly into its variant. Any
// missing common field rejects the record.
func (w *Workout) UnmarshalJSON(data []byte) error {
	var in decodedWorkout
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	if in.ID == "" {
		return errors.New("workout without id")
	}
	switch {
	case in.Date == nil:
		return fmt.Errorf("workout %s missing date", in.ID)
	case len(in.Coords) != 2:
		return fmt.Errorf("workout %s needs coords as [lat, lng]", in.ID)
	case in.Distance == nil || *in.Distance <= 0:
		return fmt.Errorf("workout %s missing a positive distance", in.ID)
	case in.Duration == nil || *in.Duration <= 0:
		return fmt.Errorf("workout %s missing a positive duration", in.ID)
	case in.Description == nil:
		return fmt.Errorf("workout %s missing description", in.ID)
	}

	decoded := Workout{
		ID:           in.ID,
		CreatedAt:    *in.Date,
		Coords:       Coordinates{Lat: in.Coords[0], Lng: in.Coords[1]},
		DistanceKm:   *in.Distance,
		DurationMin:  *in.Duration,
		Description:  *in.Description,
		Interactions: in.Clicks,
		Kind:         in.Type,
	}

	switch in.Type {
	case KindRunning:
		if in.Cadence == nil || in.Pace == nil {
			return fmt.Errorf("running workout %s missing cadence or pace", in.ID)
		}
		decoded.Running = &RunningMetrics{Cadence: *in.Cadence, Pace: *in.Pace}
	case KindCycling:
		if in.ElevationGain == nil || in.Speed == nil {
			return fmt.Errorf("cycling workout %s missing elevationGain or speed", in.ID)
		}
		decoded.Cycling = &CyclingMetrics{ElevationGain: *in.ElevationGain, Speed: *in.Speed}
	default:
		return fmt.Errorf("workout %s has unknown type %q", in.ID, in.Type)
	}

	*w = decoded
	return nil
}
