package weather

import (
	"context"
	"errors"
)

var (
	// ErrNotFound is returned when no provider knows the requested city.
	ErrNotFound = errors.New("city not found")
	// ErrUnavailable is returned when every provider failed to answer.
	ErrUnavailable = errors.New("weather providers unavailable")
)

// Reading is one provider's answer for a city.
type Reading struct {
	ProviderName string
	Snapshot     Snapshot
}

// Provider abstracts an upstream weather source queried by city name.
// Implementations return ErrNotFound (possibly wrapped) when the city is unknown.
type Provider interface {
	Name() string
	Fetch(ctx context.Context, city string) (Snapshot, error)
}
