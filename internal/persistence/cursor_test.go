package persistence

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"example.com/workoutmap/internal/domain"
)

func TestCursorRoundTrip(t *testing.T) {
	in := &domain.Cursor{CreatedAt: time.Date(2026, time.October, 15, 8, 0, 0, 123, time.UTC), ID: "w|1"}

	out, err := DecodeCursor(EncodeCursor(in))
	require.NoError(t, err)
	require.True(t, in.CreatedAt.Equal(out.CreatedAt))
	require.Equal(t, in.ID, out.ID)
}

func TestDecodeCursorEdgeCases(t *testing.T) {
	c, err := DecodeCursor("")
	require.NoError(t, err)
	require.Nil(t, c)
	require.Equal(t, "", EncodeCursor(nil))

	_, err = DecodeCursor("%%%")
	require.ErrorIs(t, err, ErrInvalidCursor)

	_, err = DecodeCursor("bm90IGpzb24")
	require.ErrorIs(t, err, ErrInvalidCursor)

	_, err = DecodeCursor(EncodeCursor(&domain.Cursor{ID: ""}))
	require.ErrorIs(t, err, ErrInvalidCursor)
}
