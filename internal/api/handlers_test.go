package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"example.com/workoutmap/internal/app"
	"example.com/workoutmap/internal/auth"
	"example.com/workoutmap/internal/mapview"
	"example.com/workoutmap/internal/snapshot"
)

var authConfig = auth.Config{Secret: "test-secret", Issuer: "workoutmap.test"}

type testServer struct {
	handler http.Handler
	slot    *snapshot.MemorySlot
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	quiet := log.New(io.Discard, "", 0)
	slot := snapshot.NewMemorySlot()
	alerts := app.NewAlertQueue()
	ctrl := app.NewController(
		snapshot.NewStore(slot, "", snapshot.WithLogger(quiet)),
		mapview.NewViewport(),
		alerts,
		app.WithLogger(quiet),
		app.WithClock(func() time.Time { return time.Date(2026, time.October, 15, 9, 0, 0, 0, time.UTC) }),
	)
	require.NoError(t, ctrl.Start(context.Background()))

	mux := http.NewServeMux()
	NewHandler(ctrl, alerts).RegisterRoutes(mux)
	return &testServer{
		handler: auth.NewMiddleware(authConfig, "/v1/reset").Wrap(mux),
		slot:    slot,
	}
}

func (s *testServer) do(t *testing.T, method, path string, body any, header ...string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	for i := 0; i+1 < len(header); i += 2 {
		req.Header.Set(header[i], header[i+1])
	}
	rr := httptest.NewRecorder()
	s.handler.ServeHTTP(rr, req)
	return rr
}

func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &out), rr.Body.String())
	return out
}

func (s *testServer) locate(t *testing.T) {
	t.Helper()
	rr := s.do(t, http.MethodPost, "/v1/geolocation", GeolocationRequest{Position: &Position{Lat: 40, Lng: -73}})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
}

func (s *testServer) logRun(t *testing.T, lat, lng float64) WorkoutView {
	t.Helper()
	rr := s.do(t, http.MethodPost, "/v1/map/clicks", Position{Lat: lat, Lng: lng})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	rr = s.do(t, http.MethodPost, "/v1/workouts", map[string]string{
		"type": "running", "distance": "5", "duration": "25", "cadence": "180",
	})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	return decode[WorkoutView](t, rr)
}

func TestClickAndSubmitFlow(t *testing.T) {
	s := newTestServer(t)
	s.locate(t)

	rr := s.do(t, http.MethodPost, "/v1/map/clicks", Position{Lat: 40.01, Lng: -73.02})
	require.Equal(t, http.StatusOK, rr.Code)
	st := decode[StateResponse](t, rr)
	require.Equal(t, app.PhaseAwaitingInput, st.Phase)
	require.NotNil(t, st.Form.Pending)
	require.Equal(t, 40.01, st.Form.Pending.Lat)

	rr = s.do(t, http.MethodPost, "/v1/workouts", map[string]string{
		"type": "cycling", "distance": "20", "duration": "60", "elevation": "0",
	})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	view := decode[WorkoutView](t, rr)
	require.Equal(t, "cycling", view.Type)
	require.NotNil(t, view.Speed)
	require.InDelta(t, 20.0, *view.Speed, 1e-9)
	require.Equal(t, "Cycling on October 15", view.Description)

	rr = s.do(t, http.MethodGet, "/v1/state", nil)
	st = decode[StateResponse](t, rr)
	require.Equal(t, app.PhaseIdle, st.Phase)
	require.Len(t, st.Entries, 1)
	require.NotNil(t, st.Map)
	require.Len(t, st.Map.Markers, 1)
	require.Equal(t, "🚴 Cycling on October 15", st.Map.Markers[0].Popup.Content)
}

func TestSubmitInvalidInput(t *testing.T) {
	s := newTestServer(t)
	s.locate(t)
	require.Equal(t, http.StatusOK, s.do(t, http.MethodPost, "/v1/map/clicks", Position{Lat: 1, Lng: 1}).Code)

	rr := s.do(t, http.MethodPost, "/v1/workouts", map[string]string{
		"type": "running", "distance": "5", "duration": "0", "cadence": "180",
	})
	require.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	require.Equal(t, "validation_failed", decode[map[string]string](t, rr)["type"])

	st := decode[StateResponse](t, s.do(t, http.MethodGet, "/v1/state", nil))
	require.Equal(t, app.PhaseAwaitingInput, st.Phase)
	require.Equal(t, []string{app.AlertInvalidInput}, st.Alerts)
	require.Empty(t, st.Entries)
}

func TestSubmitWithoutClickConflicts(t *testing.T) {
	s := newTestServer(t)
	s.locate(t)

	rr := s.do(t, http.MethodPost, "/v1/workouts", map[string]string{"type": "running"})
	require.Equal(t, http.StatusConflict, rr.Code)
}

func TestClickBeforeGeolocationConflicts(t *testing.T) {
	s := newTestServer(t)

	rr := s.do(t, http.MethodPost, "/v1/map/clicks", Position{Lat: 1, Lng: 1})
	require.Equal(t, http.StatusConflict, rr.Code)

	rr = s.do(t, http.MethodGet, "/v1/state", nil)
	require.Equal(t, []string{app.AlertMapUnavailable}, decode[StateResponse](t, rr).Alerts)
}

func TestGeolocationFailureAlerts(t *testing.T) {
	s := newTestServer(t)

	rr := s.do(t, http.MethodPost, "/v1/geolocation", GeolocationRequest{Error: "permission denied"})
	require.Equal(t, http.StatusOK, rr.Code)
	st := decode[StateResponse](t, rr)
	require.False(t, st.MapReady)
	require.Equal(t, []string{app.AlertNoPosition}, st.Alerts)
}

func TestFormTypeAndCancel(t *testing.T) {
	s := newTestServer(t)
	s.locate(t)
	require.Equal(t, http.StatusOK, s.do(t, http.MethodPost, "/v1/map/clicks", Position{Lat: 1, Lng: 1}).Code)

	rr := s.do(t, http.MethodPut, "/v1/form/type", FormTypeRequest{Type: "cycling"})
	require.Equal(t, http.StatusOK, rr.Code)
	st := decode[StateResponse](t, rr)
	require.Equal(t, app.FieldElevation, st.Form.MeasurementField)

	rr = s.do(t, http.MethodPut, "/v1/form/type", FormTypeRequest{Type: "rowing"})
	require.Equal(t, http.StatusUnprocessableEntity, rr.Code)

	rr = s.do(t, http.MethodPost, "/v1/form/cancel", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	require.Equal(t, app.PhaseIdle, decode[StateResponse](t, rr).Phase)
}

func TestFormTypeRequiresPendingLocation(t *testing.T) {
	s := newTestServer(t)
	s.locate(t)

	rr := s.do(t, http.MethodPut, "/v1/form/type", FormTypeRequest{Type: "cycling"})
	require.Equal(t, http.StatusConflict, rr.Code)

	rr = s.do(t, http.MethodGet, "/v1/state", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	require.Equal(t, app.FieldCadence, decode[StateResponse](t, rr).Form.MeasurementField)
}

func TestListPaginatesWithCursor(t *testing.T) {
	s := newTestServer(t)
	s.locate(t)
	first := s.logRun(t, 1, 1)
	second := s.logRun(t, 2, 2)
	third := s.logRun(t, 3, 3)

	rr := s.do(t, http.MethodGet, "/v1/workouts?limit=2", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	page := decode[ListWorkoutsResponse](t, rr)
	require.Len(t, page.Items, 2)
	require.Equal(t, first.ID, page.Items[0].ID)
	require.Equal(t, second.ID, page.Items[1].ID)
	require.NotEmpty(t, page.NextCursor)

	rr = s.do(t, http.MethodGet, "/v1/workouts?limit=2&cursor="+page.NextCursor, nil)
	page = decode[ListWorkoutsResponse](t, rr)
	require.Len(t, page.Items, 1)
	require.Equal(t, third.ID, page.Items[0].ID)
	require.Empty(t, page.NextCursor)

	rr = s.do(t, http.MethodGet, "/v1/workouts?cursor=bad*cursor", nil)
	require.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestGetAndSelectWorkout(t *testing.T) {
	s := newTestServer(t)
	s.locate(t)
	logged := s.logRun(t, 3, 4)

	rr := s.do(t, http.MethodGet, "/v1/workouts/"+logged.ID, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	require.Equal(t, logged.ID, decode[WorkoutView](t, rr).ID)

	rr = s.do(t, http.MethodPost, "/v1/workouts/"+logged.ID+"/select", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	require.Equal(t, 1, decode[WorkoutView](t, rr).Interactions)

	st := decode[StateResponse](t, s.do(t, http.MethodGet, "/v1/state", nil))
	require.NotNil(t, st.Map.LastFlight)
	require.Equal(t, Position{Lat: 3, Lng: 4}, st.Map.LastFlight.Target)
	require.Equal(t, int64(1000), st.Map.LastFlight.DurationMS)

	require.Equal(t, http.StatusNotFound, s.do(t, http.MethodGet, "/v1/workouts/missing", nil).Code)
	require.Equal(t, http.StatusNotFound, s.do(t, http.MethodPost, "/v1/workouts/missing/select", nil).Code)
	require.Equal(t, http.StatusMethodNotAllowed, s.do(t, http.MethodDelete, "/v1/workouts/"+logged.ID, nil).Code)
}

func TestResetRequiresScope(t *testing.T) {
	s := newTestServer(t)
	s.locate(t)
	s.logRun(t, 1, 1)

	require.Equal(t, http.StatusUnauthorized, s.do(t, http.MethodPost, "/v1/reset", nil).Code)

	rr := s.do(t, http.MethodPost, "/v1/reset", nil, "Authorization", "Bearer "+signed(t, "other:scope"))
	require.Equal(t, http.StatusForbidden, rr.Code)

	resetToken, err := auth.IssueResetToken(authConfig, "local-user", time.Minute)
	require.NoError(t, err)
	rr = s.do(t, http.MethodPost, "/v1/reset", nil, "Authorization", "Bearer "+resetToken)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	st := decode[StateResponse](t, rr)
	require.Empty(t, st.Entries)
	require.False(t, st.MapReady)

	_, err = s.slot.Read(context.Background(), snapshot.DefaultKey)
	require.ErrorIs(t, err, snapshot.ErrSlotEmpty)
}

func signed(t *testing.T, scopes ...string) string {
	t.Helper()
	token, err := auth.Sign(authConfig, "local-user", scopes, time.Minute)
	require.NoError(t, err)
	return token
}

func TestHealthz(t *testing.T) {
	s := newTestServer(t)
	rr := s.do(t, http.MethodGet, "/healthz", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	require.Equal(t, "ok", rr.Body.String())
}
