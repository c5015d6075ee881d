package domain

import (
	"errors"
	"fmt"
)

// ErrWorkoutNotFound is returned when no workout carries the requested identifier.
var ErrWorkoutNotFound = errors.New("workout not found")

// ErrDuplicateID is returned when appending a workout whose identifier is already taken.
var ErrDuplicateID = errors.New("duplicate workout id")

// Collection is the ordered set of workouts for a session. Insertion order is
// chronological and display order.
type Collection struct {
	items []Workout
	index map[string]int
}

// NewCollection builds a collection from previously stored workouts.
func NewCollection(workouts []Workout) (*Collection, error) {
	c := &Collection{index: make(map[string]int, len(workouts))}
	for _, w := range workouts {
		if err := c.Append(w); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// Append adds a workout at the end of the collection.
func (c *Collection) Append(w Workout) error {
	if c.index == nil {
		c.index = make(map[string]int)
	}
	if _, exists := c.index[w.ID]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateID, w.ID)
	}
	c.index[w.ID] = len(c.items)
	c.items = append(c.items, w)
	return nil
}

// Len reports the number of workouts.
func (c *Collection) Len() int {
	return len(c.items)
}

// All returns a copy of the workouts in display order.
func (c *Collection) All() []Workout {
	out := make([]Workout, len(c.items))
	copy(out, c.items)
	return out
}

// With returns the workouts plus w appended, leaving the collection untouched.
func (c *Collection) With(w Workout) []Workout {
	out := make([]Workout, len(c.items), len(c.items)+1)
	copy(out, c.items)
	return append(out, w)
}

// Contains reports whether id is present.
func (c *Collection) Contains(id string) bool {
	_, ok := c.index[id]
	return ok
}

// Find returns the workout with the given id.
func (c *Collection) Find(id string) (Workout, error) {
	i, ok := c.index[id]
	if !ok {
		return Workout{}, ErrWorkoutNotFound
	}
	return c.items[i], nil
}

// Select increments the interaction counter of the workout with the given id
// and returns the updated workout.
func (c *Collection) Select(id string) (Workout, error) {
	i, ok := c.index[id]
	if !ok {
		return Workout{}, ErrWorkoutNotFound
	}
	c.items[i].Select()
	return c.items[i], nil
}
