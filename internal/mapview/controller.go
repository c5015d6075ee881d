// Package mapview owns the map widget lifecycle: the initial view, markers,
// recentering, and turning map clicks into entry requests.
package mapview

import (
	"errors"
	"time"

	"example.com/workoutmap/internal/domain"
)

// ErrMapUnavailable is returned when the map is used before it exists.
var ErrMapUnavailable = errors.New("map is not available")

// DefaultFocusDuration is the animation length used by FocusOn.
const DefaultFocusDuration = time.Second

// Popup describes the label bound to a marker.
type Popup struct {
	Content      string `json:"content"`
	ClassName    string `json:"class_name"`
	MaxWidth     int    `json:"max_width"`
	MinWidth     int    `json:"min_width"`
	AutoClose    bool   `json:"auto_close"`
	CloseOnClick bool   `json:"close_on_click"`
}

// Marker is an annotation pinned to a workout location.
type Marker struct {
	WorkoutID string             `json:"workout_id"`
	Position  domain.Coordinates `json:"-"`
	Popup     Popup              `json:"popup"`
}

// Canvas is the rendering surface supplied by the mapping library.
type Canvas interface {
	SetView(center domain.Coordinates, zoom int)
	AddMarker(marker Marker)
	FlyTo(center domain.Coordinates, zoom int, duration time.Duration)
	Clear()
}

// ClickHandler receives the coordinates of a map click.
type ClickHandler func(domain.Coordinates)

// Option configures optional behaviour for the Controller.
type Option func(*Controller)

// WithFocusDuration overrides the FocusOn animation length.
func WithFocusDuration(d time.Duration) Option {
	return func(c *Controller) {
		if d > 0 {
			c.focusDuration = d
		}
	}
}

// Controller drives a Canvas. It is not safe for concurrent use; callers
// serialise access.
type Controller struct {
	canvas        Canvas
	ready         bool
	onClick       ClickHandler
	focusDuration time.Duration
}

// NewController constructs a Controller over canvas.
func NewController(canvas Canvas, opts ...Option) *Controller {
	c := &Controller{
		canvas:        canvas,
		focusDuration: DefaultFocusDuration,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Initialize creates the view centered on center.
func (c *Controller) Initialize(center domain.Coordinates, zoom int) {
	c.canvas.SetView(center, zoom)
	c.ready = true
}

// Ready reports whether the map view exists.
func (c *Controller) Ready() bool {
	return c.ready
}

// OnMapClicked registers the handler invoked for map clicks, replacing any
// previous one.
func (c *Controller) OnMapClicked(handler ClickHandler) {
	c.onClick = handler
}

// Click delivers a click at coords from the host.
func (c *Controller) Click(coords domain.Coordinates) error {
	if !c.ready || c.onClick == nil {
		return ErrMapUnavailable
	}
	c.onClick(coords)
	return nil
}

// PlaceMarker pins w on the map with an open popup.
func (c *Controller) PlaceMarker(w domain.Workout) error {
	if !c.ready {
		return ErrMapUnavailable
	}
	c.canvas.AddMarker(MarkerFor(w))
	return nil
}

// FocusOn pans and zooms to coords using the fixed animation length.
func (c *Controller) FocusOn(coords domain.Coordinates, zoom int) error {
	if !c.ready {
		return ErrMapUnavailable
	}
	c.canvas.FlyTo(coords, zoom, c.focusDuration)
	return nil
}

// Reset drops the view and the click handler.
func (c *Controller) Reset() {
	c.canvas.Clear()
	c.ready = false
	c.onClick = nil
}

// MarkerFor builds the marker shown for w.
func MarkerFor(w domain.Workout) Marker {
	return Marker{
		WorkoutID: w.ID,
		Position:  w.Coords,
		Popup: Popup{
			Content:   w.Kind.Icon() + " " + w.Description,
			ClassName: string(w.Kind) + "-popup",
			MaxWidth:  250,
			MinWidth:  100,
		},
	}
}
