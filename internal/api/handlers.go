// Package api exposes the workout log to the browser page over HTTP.
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"example.com/workoutmap/internal/app"
	"example.com/workoutmap/internal/auth"
	"example.com/workoutmap/internal/domain"
	"example.com/workoutmap/internal/mapview"
	"example.com/workoutmap/internal/persistence"
)

const (
	defaultPageSize = 50
	maxPageSize     = 200
)

// Handler translates page events into controller calls.
type Handler struct {
	ctrl   *app.Controller
	alerts *app.AlertQueue
}

// NewHandler builds a Handler. alerts is drained into every state response.
func NewHandler(ctrl *app.Controller, alerts *app.AlertQueue) *Handler {
	return &Handler{ctrl: ctrl, alerts: alerts}
}

// RegisterRoutes wires endpoints to the mux.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/v1/state", h.state)
	mux.HandleFunc("/v1/geolocation", h.geolocation)
	mux.HandleFunc("/v1/map/clicks", h.mapClicks)
	mux.HandleFunc("/v1/form/type", h.formType)
	mux.HandleFunc("/v1/form/cancel", h.formCancel)
	mux.HandleFunc("/v1/workouts", h.workouts)
	mux.HandleFunc("/v1/workouts/", h.workoutByID)
	mux.HandleFunc("/v1/reset", h.reset)
	mux.HandleFunc("/healthz", healthz)
}

// healthz reports a simple OK status for container health checks.
func healthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (h *Handler) state(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
		return
	}
	h.writeState(w, http.StatusOK)
}

func (h *Handler) geolocation(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
		return
	}

	var req GeolocationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "unable to parse body")
		return
	}

	if req.Error != "" || req.Position == nil {
		reason := req.Error
		if reason == "" {
			reason = "position missing"
		}
		h.ctrl.LocationFailed(errors.New(reason))
		h.writeState(w, http.StatusOK)
		return
	}
	if err := req.Position.Validate(); err != nil {
		writeError(w, http.StatusUnprocessableEntity, "validation_failed", err.Error())
		return
	}
	if err := h.ctrl.LocationResolved(req.Position.Coordinates()); err != nil {
		writeControllerError(w, err)
		return
	}
	h.writeState(w, http.StatusOK)
}

func (h *Handler) mapClicks(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
		return
	}

	var req Position
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "unable to parse body")
		return
	}
	if err := req.Validate(); err != nil {
		writeError(w, http.StatusUnprocessableEntity, "validation_failed", err.Error())
		return
	}
	if err := h.ctrl.Click(req.Coordinates()); err != nil {
		writeControllerError(w, err)
		return
	}
	h.writeState(w, http.StatusOK)
}

func (h *Handler) formType(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPut {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
		return
	}

	var req FormTypeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "unable to parse body")
		return
	}
	if err := h.ctrl.ToggleType(domain.Kind(strings.TrimSpace(req.Type))); err != nil {
		writeControllerError(w, err)
		return
	}
	h.writeState(w, http.StatusOK)
}

func (h *Handler) formCancel(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
		return
	}
	h.ctrl.Cancel()
	h.writeState(w, http.StatusOK)
}

func (h *Handler) workouts(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		h.submitWorkout(w, r)
	case http.MethodGet:
		h.listWorkouts(w, r)
	default:
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
	}
}

func (h *Handler) workoutByID(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/v1/workouts/")
	id, action, _ := strings.Cut(rest, "/")
	if id == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "missing workout id")
		return
	}

	switch {
	case action == "" && r.Method == http.MethodGet:
		h.getWorkout(w, id)
	case action == "select" && r.Method == http.MethodPost:
		h.selectWorkout(w, id)
	case action == "" || action == "select":
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
	default:
		writeError(w, http.StatusNotFound, "not_found", "unknown workout action")
	}
}

func (h *Handler) submitWorkout(w http.ResponseWriter, r *http.Request) {
	var req domain.FormInput
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "unable to parse body")
		return
	}

	workout, err := h.ctrl.Submit(r.Context(), req)
	if err != nil {
		writeControllerError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toWorkoutView(workout))
}

func (h *Handler) listWorkouts(w http.ResponseWriter, r *http.Request) {
	limit := defaultPageSize
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			if parsed > maxPageSize {
				parsed = maxPageSize
			}
			limit = parsed
		}
	}

	cursor, err := persistence.DecodeCursor(r.URL.Query().Get("cursor"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "validation_failed", "invalid cursor")
		return
	}

	page, next, err := h.ctrl.Page(cursor, limit)
	if err != nil {
		if errors.Is(err, domain.ErrStaleCursor) {
			writeError(w, http.StatusBadRequest, "validation_failed", "invalid cursor")
			return
		}
		writeError(w, http.StatusInternalServerError, "server_error", err.Error())
		return
	}

	resp := ListWorkoutsResponse{
		Items:      make([]WorkoutView, 0, len(page)),
		NextCursor: persistence.EncodeCursor(next),
	}
	for _, workout := range page {
		resp.Items = append(resp.Items, toWorkoutView(workout))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) getWorkout(w http.ResponseWriter, id string) {
	workout, err := h.ctrl.Find(id)
	if err != nil {
		writeControllerError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toWorkoutView(workout))
}

func (h *Handler) selectWorkout(w http.ResponseWriter, id string) {
	workout, ok := h.ctrl.Select(id)
	if !ok {
		writeError(w, http.StatusNotFound, "not_found", "workout not found")
		return
	}
	writeJSON(w, http.StatusOK, toWorkoutView(workout))
}

func (h *Handler) reset(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
		return
	}

	claims, ok := auth.FromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "missing bearer token")
		return
	}
	if !claims.HasScope(auth.ScopeWorkoutsReset) {
		writeError(w, http.StatusForbidden, "forbidden", "scope workouts:reset required")
		return
	}

	if err := h.ctrl.Reset(r.Context()); err != nil {
		writeError(w, http.StatusInternalServerError, "server_error", err.Error())
		return
	}
	h.writeState(w, http.StatusOK)
}

func (h *Handler) writeState(w http.ResponseWriter, status int) {
	writeJSON(w, status, toStateResponse(h.ctrl.State(), h.alerts.Drain()))
}

// Position is a coordinate pair sent by the page.
type Position struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Validate ensures the position is on the globe.
func (p Position) Validate() error {
	if p.Lat < -90 || p.Lat > 90 {
		return errors.New("lat must be within [-90, 90]")
	}
	if p.Lng < -180 || p.Lng > 180 {
		return errors.New("lng must be within [-180, 180]")
	}
	return nil
}

// Coordinates converts the payload to domain coordinates.
func (p Position) Coordinates() domain.Coordinates {
	return domain.Coordinates{Lat: p.Lat, Lng: p.Lng}
}

func toPosition(c domain.Coordinates) Position {
	return Position{Lat: c.Lat, Lng: c.Lng}
}

// GeolocationRequest reports the outcome of the page's position lookup.
type GeolocationRequest struct {
	Position *Position `json:"position,omitempty"`
	Error    string    `json:"error,omitempty"`
}

// FormTypeRequest is the payload for PUT /v1/form/type.
type FormTypeRequest struct {
	Type string `json:"type"`
}

// WorkoutView exposes full details about a workout.
type WorkoutView struct {
	ID            string    `json:"id"`
	Type          string    `json:"type"`
	Description   string    `json:"description"`
	CreatedAt     time.Time `json:"created_at"`
	Position      Position  `json:"position"`
	DistanceKm    float64   `json:"distance_km"`
	DurationMin   float64   `json:"duration_min"`
	Cadence       *float64  `json:"cadence,omitempty"`
	Pace          *float64  `json:"pace,omitempty"`
	ElevationGain *float64  `json:"elevation_gain,omitempty"`
	Speed         *float64  `json:"speed,omitempty"`
	Interactions  int       `json:"interactions"`
}

// ListWorkoutsResponse packages list results.
type ListWorkoutsResponse struct {
	Items      []WorkoutView `json:"items"`
	NextCursor string        `json:"next_cursor,omitempty"`
}

// MarkerView is a marker the page should draw.
type MarkerView struct {
	WorkoutID string        `json:"workout_id"`
	Position  Position      `json:"position"`
	Popup     mapview.Popup `json:"popup"`
}

// FlightView is the most recent recentering request.
type FlightView struct {
	Target     Position `json:"target"`
	Zoom       int      `json:"zoom"`
	DurationMS int64    `json:"duration_ms"`
}

// MapView mirrors the server-side viewport.
type MapView struct {
	Center     Position     `json:"center"`
	Zoom       int          `json:"zoom"`
	Markers    []MarkerView `json:"markers"`
	LastFlight *FlightView  `json:"last_flight,omitempty"`
}

// FormView is the entry form as the page should render it.
type FormView struct {
	app.Form
	Pending *Position `json:"pending,omitempty"`
}

// StateResponse is the full page state plus alerts raised since the last poll.
type StateResponse struct {
	Phase    app.Phase       `json:"phase"`
	Form     FormView        `json:"form"`
	Entries  []app.ListEntry `json:"entries"`
	MapReady bool            `json:"map_ready"`
	Map      *MapView        `json:"map,omitempty"`
	Alerts   []string        `json:"alerts"`
}

func toStateResponse(st app.State, alerts []string) StateResponse {
	resp := StateResponse{
		Phase:    st.Phase,
		Form:     FormView{Form: st.Form},
		Entries:  st.Entries,
		MapReady: st.MapReady,
		Alerts:   alerts,
	}
	if st.Form.Pending != nil {
		pending := toPosition(*st.Form.Pending)
		resp.Form.Pending = &pending
	}
	if st.Map != nil && st.Map.Initialized {
		view := &MapView{
			Center:  toPosition(st.Map.Center),
			Zoom:    st.Map.Zoom,
			Markers: make([]MarkerView, 0, len(st.Map.Markers)),
		}
		for _, m := range st.Map.Markers {
			view.Markers = append(view.Markers, MarkerView{
				WorkoutID: m.WorkoutID,
				Position:  toPosition(m.Position),
				Popup:     m.Popup,
			})
		}
		if f := st.Map.LastFlight; f != nil {
			view.LastFlight = &FlightView{
				Target:     toPosition(f.Target),
				Zoom:       f.Zoom,
				DurationMS: f.Duration.Milliseconds(),
			}
		}
		resp.Map = view
	}
	return resp
}

func toWorkoutView(w domain.Workout) WorkoutView {
	view := WorkoutView{
		ID:           w.ID,
		Type:         string(w.Kind),
		Description:  w.Description,
		CreatedAt:    w.CreatedAt,
		Position:     toPosition(w.Coords),
		DistanceKm:   w.DistanceKm,
		DurationMin:  w.DurationMin,
		Interactions: w.Interactions,
	}
	if w.Running != nil {
		cadence, pace := w.Running.Cadence, w.Running.Pace
		view.Cadence, view.Pace = &cadence, &pace
	}
	if w.Cycling != nil {
		elevation, speed := w.Cycling.ElevationGain, w.Cycling.Speed
		view.ElevationGain, view.Speed = &elevation, &speed
	}
	return view
}

func writeControllerError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		writeError(w, http.StatusUnprocessableEntity, "validation_failed", err.Error())
	case errors.Is(err, app.ErrNoPendingLocation), errors.Is(err, mapview.ErrMapUnavailable), errors.Is(err, app.ErrNotStarted):
		writeError(w, http.StatusConflict, "conflict", err.Error())
	case errors.Is(err, domain.ErrWorkoutNotFound):
		writeError(w, http.StatusNotFound, "not_found", "workout not found")
	default:
		writeError(w, http.StatusInternalServerError, "server_error", err.Error())
	}
}

func writeError(w http.ResponseWriter, status int, code, detail string) {
	payload := map[string]string{
		"type":   code,
		"detail": detail,
	}
	writeJSON(w, status, payload)
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
