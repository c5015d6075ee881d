package domain

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// ErrInvalidInput indicates the form fields are non-numeric or out of range.
var ErrInvalidInput = errors.New("invalid input")

// FormInput carries the raw text of the entry form fields.
type FormInput struct {
	Type      string `json:"type"`
	Distance  string `json:"distance"`
	Duration  string `json:"duration"`
	Cadence   string `json:"cadence,omitempty"`
	Elevation string `json:"elevation,omitempty"`
}

// Measurements are validated numeric form values.
type Measurements struct {
	Kind        Kind
	DistanceKm  float64
	DurationMin float64
	Cadence     float64
	Elevation   float64
}

// ParseFormInput coerces and validates the form. Only the fourth field that
// matches the selected type is read.
func ParseFormInput(in FormInput) (Measurements, error) {
	kind, err := ParseKind(strings.TrimSpace(in.Type))
	if err != nil {
		return Measurements{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	m := Measurements{Kind: kind}
	if m.DistanceKm, err = positive("distance", in.Distance); err != nil {
		return Measurements{}, err
	}
	if m.DurationMin, err = positive("duration", in.Duration); err != nil {
		return Measurements{}, err
	}

	switch kind {
	case KindRunning:
		if m.Cadence, err = positive("cadence", in.Cadence); err != nil {
			return Measurements{}, err
		}
	case KindCycling:
		if m.Elevation, err = number("elevation", in.Elevation); err != nil {
			return Measurements{}, err
		}
		if m.Elevation < 0 {
			return Measurements{}, fmt.Errorf("%w: elevation must be >= 0", ErrInvalidInput)
		}
	}
	return m, nil
}

// Build constructs the workout variant matching the measurements.
func (m Measurements) Build(id string, createdAt time.Time, coords Coordinates) Workout {
	if m.Kind == KindCycling {
		return NewCycling(id, createdAt, coords, m.DistanceKm, m.DurationMin, m.Elevation)
	}
	return NewRunning(id, createdAt, coords, m.DistanceKm, m.DurationMin, m.Cadence)
}

func number(field, raw string) (float64, error) {
	value, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || math.IsNaN(value) || math.IsInf(value, 0) {
		return 0, fmt.Errorf("%w: %s must be a finite number", ErrInvalidInput, field)
	}
	return value, nil
}

func positive(field, raw string) (float64, error) {
	value, err := number(field, raw)
	if err != nil {
		return 0, err
	}
	if value <= 0 {
		return 0, fmt.Errorf("%w: %s must be > 0", ErrInvalidInput, field)
	}
	return value, nil
}
