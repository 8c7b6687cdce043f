// Package places runs the progressive radius search for nearby help.
package places

import (
	"context"
	"errors"
	"fmt"

	"go-safeher/types"
)

// ErrNotConfigured is returned when no places provider credential is set.
var ErrNotConfigured = errors.New("places provider not configured")

// DefaultTiers is the escalation ladder, smallest radius first.
var DefaultTiers = []types.SearchTier{
	{RadiusMeters: 5000, Limit: 5},
	{RadiusMeters: 10000, Limit: 5},
	{RadiusMeters: 50000, Limit: 10},
}

// Query is a single provider request.
type Query struct {
	Category     types.CategoryID
	Origin       types.Coordinate
	RadiusMeters int
	Limit        int
}

// Provider performs one nearby search. An empty result with a nil error
// means nothing was found within the radius.
type Provider interface {
	Nearby(ctx context.Context, q Query) ([]types.PlaceRecord, error)
}

type Status int

const (
	StatusFound Status = iota
	StatusNotFound
)

func (s Status) String() string {
	if s == StatusFound {
		return "found"
	}
	return "not_found"
}

// Outcome is the result of a completed search. Places is non-empty exactly
// when Status is StatusFound.
type Outcome struct {
	Status   Status
	Places   []types.PlaceRecord
	RadiusKm int
}

// TransportError reports a provider failure at a given tier. It is never
// used for an empty result.
type TransportError struct {
	RadiusMeters int
	Err          error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("places search at %dm: %v", e.RadiusMeters, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// Notifier receives intermediate progress text while a search escalates.
type Notifier func(text string)
