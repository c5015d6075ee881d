package mapview

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"example.com/workoutmap/internal/domain"
)

// ErrGeolocationUnavailable indicates the position could not be determined.
var ErrGeolocationUnavailable = errors.New("geolocation unavailable")

// Geolocator resolves the user's current position.
type Geolocator interface {
	Locate(ctx context.Context) (domain.Coordinates, error)
}

// StaticLocator reports a fixed position. A nil position means location
// services are unavailable.
type StaticLocator struct {
	Position *domain.Coordinates
}

// Locate implements Geolocator.
func (s StaticLocator) Locate(ctx context.Context) (domain.Coordinates, error) {
	if err := ctx.Err(); err != nil {
		return domain.Coordinates{}, err
	}
	if s.Position == nil {
		return domain.Coordinates{}, ErrGeolocationUnavailable
	}
	return *s.Position, nil
}

// ParseCoordinates parses "lat,lng". An empty string yields nil.
func ParseCoordinates(value string) (*domain.Coordinates, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, nil
	}
	parts := strings.SplitN(value, ",", 2)
	if len(parts) != 2 {
		return nil, fmt.Errorf("coordinates %q: expected lat,lng", value)
	}
	lat, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return nil, fmt.Errorf("coordinates %q: latitude: %w", value, err)
	}
	lng, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return nil, fmt.Errorf("coordinates %q: longitude: %w", value, err)
	}
	if lat < -90 || lat > 90 || lng < -180 || lng > 180 {
		return nil, fmt.Errorf("coordinates %q: out of range", value)
	}
	return &domain.Coordinates{Lat: lat, Lng: lng}, nil
}
