// Package app orchestrates the workout log: it owns the collection, drives the
// entry form state machine and keeps the map and the stored snapshot in step.
package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"example.com/workoutmap/internal/domain"
	"example.com/workoutmap/internal/mapview"
	"example.com/workoutmap/internal/observability"
	"example.com/workoutmap/internal/snapshot"
)

// ErrNoPendingLocation is returned when the form is used without a map click.
var ErrNoPendingLocation = errors.New("no pending map location")

// ErrNotStarted is returned when an operation needs the stored log to be loaded first.
var ErrNotStarted = errors.New("controller not started")

const (
	defaultZoom         = 15
	defaultFormCooldown = time.Second
)

// Option configures optional behaviour for the Controller.
type Option func(*Controller)

// WithLogger overrides the controller logger.
func WithLogger(logger *log.Logger) Option {
	return func(c *Controller) {
		c.logger = logger
	}
}

// WithClock overrides the time source used for new workouts.
func WithClock(now func() time.Time) Option {
	return func(c *Controller) {
		c.now = now
	}
}

// WithIDGenerator overrides the workout identifier generator.
func WithIDGenerator(next func() string) Option {
	return func(c *Controller) {
		c.newID = next
	}
}

// WithLocator sets the geolocation source used by Locate.
func WithLocator(locator mapview.Geolocator) Option {
	return func(c *Controller) {
		c.locator = locator
	}
}

// WithZoom overrides the zoom level used for the initial view and for focusing.
func WithZoom(zoom int) Option {
	return func(c *Controller) {
		if zoom > 0 {
			c.zoom = zoom
		}
	}
}

// WithFormCooldown overrides the delay before a hidden form is interactable again.
func WithFormCooldown(d time.Duration) Option {
	return func(c *Controller) {
		if d >= 0 {
			c.formCooldown = d
		}
	}
}

// WithFocusAnimation overrides the map focus animation length.
func WithFocusAnimation(d time.Duration) Option {
	return func(c *Controller) {
		c.focusAnimation = d
	}
}

// Controller is the single owner of the workout collection. Every event
// handler runs under one mutex, so handlers never interleave.
type Controller struct {
	mu sync.Mutex

	store   *snapshot.Store
	canvas  mapview.Canvas
	mapView *mapview.Controller
	alerter Alerter
	locator mapview.Geolocator
	logger  *log.Logger

	now            func() time.Time
	newID          func() string
	zoom           int
	formCooldown   time.Duration
	focusAnimation time.Duration

	started  bool
	workouts *domain.Collection
	phase    Phase
	form     Form
}

// NewController wires the controller to its store, map canvas and alert sink.
func NewController(store *snapshot.Store, canvas mapview.Canvas, alerter Alerter, opts ...Option) *Controller {
	c := &Controller{
		store:        store,
		canvas:       canvas,
		alerter:      alerter,
		logger:       log.New(log.Writer(), "[app] ", log.LstdFlags|log.Lshortfile),
		now:          time.Now,
		newID:        uuid.NewString,
		zoom:         defaultZoom,
		formCooldown: defaultFormCooldown,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.mapView = mapview.NewController(canvas, mapview.WithFocusDuration(c.focusAnimation))
	c.resetLocked()
	return c
}

// Start loads the stored log. Entries become visible immediately; markers are
// placed once the map exists.
func (c *Controller) Start(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.startLocked(ctx)
}

func (c *Controller) startLocked(ctx context.Context) error {
	stored, ok, err := c.store.Load(ctx)
	if err != nil {
		observability.CaptureError(err, map[string]any{"operation": "load", "slot": c.store.Key()})
		return err
	}
	workouts, err := domain.NewCollection(stored)
	if err != nil {
		return fmt.Errorf("restore workouts: %w", err)
	}
	c.workouts = workouts
	c.started = true
	if ok {
		c.logger.Printf("restored %d workouts from slot %s", workouts.Len(), c.store.Key())
	}
	return nil
}

// Locate asks the configured geolocator for the position and initialises the
// map with it. Without a locator the host reports the position itself through
// LocationResolved or LocationFailed.
func (c *Controller) Locate(ctx context.Context) error {
	if c.locator == nil {
		return nil
	}
	pos, err := c.locator.Locate(ctx)
	if err != nil {
		c.LocationFailed(err)
		return err
	}
	return c.LocationResolved(pos)
}

// LocationResolved creates the map at pos and places the markers of every
// workout loaded so far. A second report is ignored while the map exists.
func (c *Controller) LocationResolved(pos domain.Coordinates) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.started {
		return ErrNotStarted
	}
	if c.mapView.Ready() {
		return nil
	}
	geolocationCounter.WithLabelValues("resolved").Inc()

	c.mapView.Initialize(pos, c.zoom)
	c.mapView.OnMapClicked(c.showForm)
	for _, w := range c.workouts.All() {
		if err := c.mapView.PlaceMarker(w); err != nil {
			return err
		}
	}
	return nil
}

// LocationFailed reports that the position is unavailable. The app keeps
// working without a map.
func (c *Controller) LocationFailed(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	geolocationCounter.WithLabelValues("failed").Inc()
	c.logger.Printf("geolocation failed: %v", err)
	c.alerter.Alert(AlertNoPosition)
}

// Click forwards a map click at coords. A click before the map exists alerts
// the user and is otherwise ignored.
func (c *Controller) Click(coords domain.Coordinates) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	err := c.mapView.Click(coords)
	if errors.Is(err, mapview.ErrMapUnavailable) {
		c.alerter.Alert(AlertMapUnavailable)
	}
	return err
}

// showForm is the map click handler. It runs with c.mu held. A click while
// the form is already open replaces the pending coordinates.
func (c *Controller) showForm(coords domain.Coordinates) {
	pending := coords
	c.phase = PhaseAwaitingInput
	c.form.Visible = true
	c.form.Pending = &pending
	c.form.FocusedField = FieldDistance
}

// ToggleType switches which measurement field the open form asks for. The
// form keeps its type while no location is pending.
func (c *Controller) ToggleType(kind domain.Kind) error {
	if _, err := domain.ParseKind(string(kind)); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.phase != PhaseAwaitingInput {
		return ErrNoPendingLocation
	}
	c.form.Type = kind
	c.form.MeasurementField = measurementField(kind)
	c.form.Draft.Type = string(kind)
	return nil
}

// Submit validates the form and logs the workout at the pending location.
// The snapshot is written before any in-memory state changes, so a failed
// save leaves the collection, the map and the form exactly as they were.
func (c *Controller) Submit(ctx context.Context, in domain.FormInput) (domain.Workout, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.phase != PhaseAwaitingInput || c.form.Pending == nil {
		return domain.Workout{}, ErrNoPendingLocation
	}
	if in.Type == "" {
		in.Type = string(c.form.Type)
	}
	c.form.Draft = in

	m, err := domain.ParseFormInput(in)
	if err != nil {
		submissionsRejectedCounter.WithLabelValues("invalid_input").Inc()
		c.alerter.Alert(AlertInvalidInput)
		return domain.Workout{}, err
	}

	w := m.Build(c.newID(), c.now(), *c.form.Pending)
	if c.workouts.Contains(w.ID) {
		return domain.Workout{}, fmt.Errorf("%w: %s", domain.ErrDuplicateID, w.ID)
	}
	if err := c.store.Save(ctx, c.workouts.With(w), c.store.LoggedEvent(w)); err != nil {
		submissionsRejectedCounter.WithLabelValues("persistence").Inc()
		observability.CaptureError(err, map[string]any{"operation": "save", "slot": c.store.Key()})
		c.alerter.Alert(AlertSaveFailed)
		return domain.Workout{}, err
	}

	if err := c.workouts.Append(w); err != nil {
		return domain.Workout{}, err
	}
	if err := c.mapView.PlaceMarker(w); err != nil {
		c.logger.Printf("place marker for %s: %v", w.ID, err)
	}
	c.hideForm()
	workoutsLoggedCounter.WithLabelValues(string(w.Kind)).Inc()
	return w, nil
}

// Cancel hides the form and drops the pending location.
func (c *Controller) Cancel() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.hideForm()
}

func (c *Controller) hideForm() {
	c.phase = PhaseIdle
	c.form.Visible = false
	c.form.Pending = nil
	c.form.FocusedField = ""
	c.form.Draft = domain.FormInput{Type: string(c.form.Type)}
	c.form.InteractableAt = c.now().Add(c.formCooldown)
}

// Select picks a workout from the list and moves the map to it. An unknown
// id is ignored and reported as false.
func (c *Controller) Select(id string) (domain.Workout, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.workouts == nil {
		return domain.Workout{}, false
	}
	w, err := c.workouts.Select(id)
	if err != nil {
		selectionsCounter.WithLabelValues("miss").Inc()
		return domain.Workout{}, false
	}
	selectionsCounter.WithLabelValues("hit").Inc()
	if c.mapView.Ready() {
		if err := c.mapView.FocusOn(w.Coords, c.zoom); err != nil {
			c.logger.Printf("focus on %s: %v", w.ID, err)
		}
	}
	return w, true
}

// Workouts returns the logged workouts in display order.
func (c *Controller) Workouts() []domain.Workout {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.workouts == nil {
		return nil
	}
	return c.workouts.All()
}

// Page returns a slice of the list following after.
func (c *Controller) Page(after *domain.Cursor, limit int) ([]domain.Workout, *domain.Cursor, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.workouts.Page(after, limit)
}

// Find returns the workout with the given id.
func (c *Controller) Find(id string) (domain.Workout, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.workouts == nil {
		return domain.Workout{}, domain.ErrWorkoutNotFound
	}
	return c.workouts.Find(id)
}

// Reset clears the stored slot, discards every piece of in-memory state
// including the map, then starts over as on a fresh launch.
func (c *Controller) Reset(ctx context.Context) error {
	c.mu.Lock()
	discarded := 0
	if c.workouts != nil {
		discarded = c.workouts.Len()
	}
	if err := c.store.Clear(ctx, c.store.ResetEvent(discarded, c.now())); err != nil {
		c.mu.Unlock()
		observability.CaptureError(err, map[string]any{"operation": "clear", "slot": c.store.Key()})
		return err
	}
	c.mapView.Reset()
	c.resetLocked()
	err := c.startLocked(ctx)
	c.mu.Unlock()
	if err != nil {
		return err
	}

	resetsCounter.Inc()
	c.logger.Printf("reset slot %s, discarded %d workouts", c.store.Key(), discarded)
	if err := c.Locate(ctx); err != nil && !errors.Is(err, mapview.ErrGeolocationUnavailable) {
		return err
	}
	return nil
}

func (c *Controller) resetLocked() {
	c.started = false
	c.workouts = &domain.Collection{}
	c.phase = PhaseIdle
	c.form = Form{
		Type:             domain.KindRunning,
		MeasurementField: FieldCadence,
		Draft:            domain.FormInput{Type: string(domain.KindRunning)},
	}
}

// State returns a copy of the phase, form, list and map.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()

	form := c.form
	if c.form.Pending != nil {
		pending := *c.form.Pending
		form.Pending = &pending
	}
	st := State{
		Phase:    c.phase,
		Form:     form,
		Entries:  make([]ListEntry, 0, c.workouts.Len()),
		MapReady: c.mapView.Ready(),
	}
	for _, w := range c.workouts.All() {
		st.Entries = append(st.Entries, RenderEntry(w))
	}
	if src, ok := c.canvas.(ViewSource); ok {
		view := src.State()
		st.Map = &view
	}
	return st
}
