package domain

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestCollectionKeepsInsertionOrder(t *testing.T) {
	now := time.Now()
	c, err := NewCollection(nil)
	require.NoError(t, err)

	require.NoError(t, c.Append(NewRunning("b", now, Coordinates{}, 5, 25, 180)))
	require.NoError(t, c.Append(NewCycling("a", now, Coordinates{}, 20, 60, 0)))

	all := c.All()
	require.Len(t, all, 2)
	require.Equal(t, "b", all[0].ID)
	require.Equal(t, "a", all[1].ID)
}

func TestCollectionRejectsDuplicateID(t *testing.T) {
	now := time.Now()
	_, err := NewCollection([]Workout{
		NewRunning("x", now, Coordinates{}, 5, 25, 180),
		NewRunning("x", now, Coordinates{}, 6, 30, 170),
	})
	require.ErrorIs(t, err, ErrDuplicateID)
}

func TestCollectionWithDoesNotMutate(t *testing.T) {
	now := time.Now()
	c, err := NewCollection([]Workout{NewRunning("x", now, Coordinates{}, 5, 25, 180)})
	require.NoError(t, err)

	next := c.With(NewCycling("y", now, Coordinates{}, 20, 60, 0))
	require.Len(t, next, 2)
	require.Equal(t, 1, c.Len())
	require.False(t, c.Contains("y"))
}

func TestCollectionSelectAndLookupMiss(t *testing.T) {
	now := time.Now()
	c, err := NewCollection([]Workout{NewRunning("x", now, Coordinates{Lat: 3, Lng: 4}, 5, 25, 180)})
	require.NoError(t, err)

	w, err := c.Select("x")
	require.NoError(t, err)
	require.Equal(t, 1, w.Interactions)

	found, err := c.Find("x")
	require.NoError(t, err)
	require.Equal(t, 1, found.Interactions)

	_, err = c.Select("missing")
	require.ErrorIs(t, err, ErrWorkoutNotFound)
}

func TestCollectionPage(t *testing.T) {
	created := time.Date(2026, time.October, 15, 8, 0, 0, 0, time.UTC)
	var workouts []Workout
	for i := 0; i < 5; i++ {
		workouts = append(workouts, NewRunning(fmt.Sprintf("w-%d", i), created.Add(time.Duration(i)*time.Minute), Coordinates{}, 5, 25, 180))
	}
	c, err := NewCollection(workouts)
	require.NoError(t, err)

	page, next, err := c.Page(nil, 2)
	require.NoError(t, err)
	require.Equal(t, []string{"w-0", "w-1"}, ids(page))
	require.NotNil(t, next)

	page, next, err = c.Page(next, 2)
	require.NoError(t, err)
	require.Equal(t, []string{"w-2", "w-3"}, ids(page))

	page, next, err = c.Page(next, 2)
	require.NoError(t, err)
	require.Equal(t, []string{"w-4"}, ids(page))
	require.Nil(t, next)

	all, next, err := c.Page(nil, 0)
	require.NoError(t, err)
	require.Len(t, all, 5)
	require.Nil(t, next)

	_, _, err = c.Page(&Cursor{ID: "w-1"}, 2)
	require.ErrorIs(t, err, ErrStaleCursor)
}

func ids(workouts []Workout) []string {
	out := make([]string, 0, len(workouts))
	for _, w := range workouts {
		out = append(out, w.ID)
	}
	return out
}
