package mapview

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"example.com/workoutmap/internal/domain"
)

func TestClickBeforeInitializeFails(t *testing.T) {
	c := NewController(NewViewport())
	c.OnMapClicked(func(domain.Coordinates) { t.Fatal("handler must not run") })

	require.ErrorIs(t, c.Click(domain.Coordinates{Lat: 1, Lng: 2}), ErrMapUnavailable)
}

func TestClickWithoutHandlerFails(t *testing.T) {
	c := NewController(NewViewport())
	c.Initialize(domain.Coordinates{}, 15)

	require.ErrorIs(t, c.Click(domain.Coordinates{}), ErrMapUnavailable)
}

func TestClickDeliversCoordinates(t *testing.T) {
	c := NewController(NewViewport())
	c.Initialize(domain.Coordinates{Lat: 40, Lng: -73}, 15)

	var got domain.Coordinates
	c.OnMapClicked(func(pos domain.Coordinates) { got = pos })

	require.NoError(t, c.Click(domain.Coordinates{Lat: 40.01, Lng: -73.02}))
	require.Equal(t, domain.Coordinates{Lat: 40.01, Lng: -73.02}, got)
}

func TestPlaceMarkerAccumulates(t *testing.T) {
	view := NewViewport()
	c := NewController(view)
	created := time.Date(2026, time.April, 14, 8, 0, 0, 0, time.UTC)
	run := domain.NewRunning("run-1", created, domain.Coordinates{Lat: 1, Lng: 2}, 5, 25, 180)
	ride := domain.NewCycling("ride-1", created, domain.Coordinates{Lat: 3, Lng: 4}, 20, 60, 0)

	require.ErrorIs(t, c.PlaceMarker(run), ErrMapUnavailable)

	c.Initialize(domain.Coordinates{}, 15)
	require.NoError(t, c.PlaceMarker(run))
	require.NoError(t, c.PlaceMarker(ride))

	state := view.State()
	require.Len(t, state.Markers, 2)
	require.Equal(t, "🏃 Running on April 14", state.Markers[0].Popup.Content)
	require.Equal(t, "running-popup", state.Markers[0].Popup.ClassName)
	require.Equal(t, "🚴 Cycling on April 14", state.Markers[1].Popup.Content)
	require.Equal(t, domain.Coordinates{Lat: 3, Lng: 4}, state.Markers[1].Position)
	require.Equal(t, 250, state.Markers[1].Popup.MaxWidth)
	require.False(t, state.Markers[1].Popup.AutoClose)
}

func TestFocusOnUsesFixedAnimation(t *testing.T) {
	view := NewViewport()
	c := NewController(view, WithFocusDuration(750*time.Millisecond))
	c.Initialize(domain.Coordinates{}, 13)

	require.NoError(t, c.FocusOn(domain.Coordinates{Lat: 5, Lng: 6}, 15))

	state := view.State()
	require.NotNil(t, state.LastFlight)
	require.Equal(t, 750*time.Millisecond, state.LastFlight.Duration)
	require.Equal(t, domain.Coordinates{Lat: 5, Lng: 6}, state.Center)
	require.Equal(t, 15, state.Zoom)
}

func TestResetDropsView(t *testing.T) {
	view := NewViewport()
	c := NewController(view)
	c.Initialize(domain.Coordinates{Lat: 1, Lng: 1}, 15)
	c.OnMapClicked(func(domain.Coordinates) {})

	c.Reset()

	require.False(t, c.Ready())
	require.False(t, view.State().Initialized)
	require.ErrorIs(t, c.Click(domain.Coordinates{}), ErrMapUnavailable)
}

func TestStaticLocator(t *testing.T) {
	_, err := StaticLocator{}.Locate(context.Background())
	require.ErrorIs(t, err, ErrGeolocationUnavailable)

	pos, err := ParseCoordinates(" 40.7, -73.9 ")
	require.NoError(t, err)
	got, err := StaticLocator{Position: pos}.Locate(context.Background())
	require.NoError(t, err)
	require.Equal(t, domain.Coordinates{Lat: 40.7, Lng: -73.9}, got)
}

func TestParseCoordinatesRejectsMalformed(t *testing.T) {
	for _, raw := range []string{"40.7", "abc,1", "1,abc", "91,0", "0,181"} {
		_, err := ParseCoordinates(raw)
		require.Error(t, err, raw)
	}
	pos, err := ParseCoordinates("")
	require.NoError(t, err)
	require.Nil(t, pos)
}
