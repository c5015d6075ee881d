package app

import (
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"example.com/workoutmap/internal/domain"
	"example.com/workoutmap/internal/mapview"
)

// Phase is the entry-form state.
type Phase string

const (
	// PhaseIdle means no form is shown.
	PhaseIdle Phase = "idle"
	// PhaseAwaitingInput means the form is visible for a pending map click.
	PhaseAwaitingInput Phase = "awaiting_input"
)

// Form field names.
const (
	FieldDistance  = "distance"
	FieldCadence   = "cadence"
	FieldElevation = "elevation"
)

// Form is the presentation state of the entry form.
type Form struct {
	Visible          bool                `json:"visible"`
	Type             domain.Kind         `json:"type"`
	MeasurementField string              `json:"measurement_field"` // cadence or elevation, following Type
	Pending          *domain.Coordinates `json:"-"`
	Draft            domain.FormInput    `json:"draft"`
	FocusedField     string              `json:"focused_field,omitempty"`
	InteractableAt   time.Time           `json:"interactable_at"`
}

// ListEntry is one rendered row of the workout list.
type ListEntry struct {
	ID              string      `json:"id"`
	Type            domain.Kind `json:"type"`
	Title           string      `json:"title"`
	Icon            string      `json:"icon"`
	Distance        string      `json:"distance"`
	Duration        string      `json:"duration"`
	Metric          string      `json:"metric"`
	MetricUnit      string      `json:"metric_unit"`
	Measurement     string      `json:"measurement"`
	MeasurementUnit string      `json:"measurement_unit"`
	Interactions    int         `json:"interactions"`
}

// State is a point-in-time view of the controller.
type State struct {
	Phase    Phase                  `json:"phase"`
	Form     Form                   `json:"form"`
	Entries  []ListEntry            `json:"entries"`
	MapReady bool                   `json:"map_ready"`
	Map      *mapview.ViewportState `json:"-"`
}

// ViewSource is implemented by canvases that can report what they show.
type ViewSource interface {
	State() mapview.ViewportState
}

var entryPrinter = message.NewPrinter(language.English)

// RenderEntry formats w as a list row.
func RenderEntry(w domain.Workout) ListEntry {
	metric, metricUnit := w.Metric()
	measurement, measurementUnit := w.Measurement()
	return ListEntry{
		ID:              w.ID,
		Type:            w.Kind,
		Title:           w.Description,
		Icon:            w.Kind.Icon(),
		Distance:        entryPrinter.Sprintf("%v", w.DistanceKm),
		Duration:        entryPrinter.Sprintf("%v", w.DurationMin),
		Metric:          entryPrinter.Sprintf("%.1f", metric),
		MetricUnit:      metricUnit,
		Measurement:     entryPrinter.Sprintf("%v", measurement),
		MeasurementUnit: measurementUnit,
		Interactions:    w.Interactions,
	}
}

func measurementField(kind domain.Kind) string {
	if kind == domain.KindCycling {
		return FieldElevation
	}
	return FieldCadence
}
