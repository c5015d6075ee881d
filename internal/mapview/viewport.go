package mapview

import (
	"time"

	"example.com/workoutmap/internal/domain"
)

// Flight records the most recent FlyTo request.
type Flight struct {
	Target   domain.Coordinates
	Zoom     int
	Duration time.Duration
}

// ViewportState is a copy of what the map currently shows.
type ViewportState struct {
	Initialized bool
	Center      domain.Coordinates
	Zoom        int
	Markers     []Marker
	LastFlight  *Flight
}

// Viewport is an in-process Canvas that records the view so a remote page
// can mirror it with its own mapping library.
type Viewport struct {
	state ViewportState
}

// NewViewport constructs an empty Viewport.
func NewViewport() *Viewport {
	return &Viewport{}
}

// SetView implements Canvas.
func (v *Viewport) SetView(center domain.Coordinates, zoom int) {
	v.state.Initialized = true
	v.state.Center = center
	v.state.Zoom = zoom
}

// AddMarker implements Canvas.
func (v *Viewport) AddMarker(marker Marker) {
	v.state.Markers = append(v.state.Markers, marker)
}

// FlyTo implements Canvas.
func (v *Viewport) FlyTo(center domain.Coordinates, zoom int, duration time.Duration) {
	v.state.Center = center
	v.state.Zoom = zoom
	v.state.LastFlight = &Flight{Target: center, Zoom: zoom, Duration: duration}
}

// Clear implements Canvas.
func (v *Viewport) Clear() {
	v.state = ViewportState{}
}

// State returns a copy of the current view.
func (v *Viewport) State() ViewportState {
	out := v.state
	out.Markers = append([]Marker(nil), v.state.Markers...)
	if v.state.LastFlight != nil {
		flight := *v.state.LastFlight
		out.LastFlight = &flight
	}
	return out
}
