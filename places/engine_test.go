package places

import (
	"context"
	"errors"
	"testing"
	"time"

	"go-safeher/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubProvider answers from a per-radius table and records every query.
type stubProvider struct {
	results map[int][]types.PlaceRecord
	errs    map[int]error
	queries []Query
}

func (s *stubProvider) Nearby(_ context.Context, q Query) ([]types.PlaceRecord, error) {
	s.queries = append(s.queries, q)
	if err := s.errs[q.RadiusMeters]; err != nil {
		return nil, err
	}
	return s.results[q.RadiusMeters], nil
}

func (s *stubProvider) radii() []int {
	out := make([]int, 0, len(s.queries))
	for _, q := range s.queries {
		out = append(out, q.RadiusMeters)
	}
	return out
}

var origin = types.Coordinate{Lat: 12.9716, Lon: 77.5946}

func TestSearchEscalatesToLastTier(t *testing.T) {
	provider := &stubProvider{results: map[int][]types.PlaceRecord{
		50000: {{Name: "District Hospital", DistanceMeters: 32000}},
	}}
	engine := NewEngine(provider, EngineConfig{}, nil)

	var notices []string
	outcome, err := engine.Search(context.Background(), "healthcare.hospital", origin, func(text string) {
		notices = append(notices, text)
	})
	require.NoError(t, err)

	assert.Equal(t, []int{5000, 10000, 50000}, provider.radii())
	assert.Equal(t, StatusFound, outcome.Status)
	assert.Equal(t, 50, outcome.RadiusKm)
	require.Len(t, outcome.Places, 1)
	assert.Equal(t, "District Hospital", outcome.Places[0].Name)

	assert.Equal(t, []string{
		"No hospital found within 5km. Expanding search to 10km...",
		"No hospital found within 10km. Expanding search to 50km...",
	}, notices)
}

func TestSearchNotFoundAfterThreeRequests(t *testing.T) {
	provider := &stubProvider{}
	engine := NewEngine(provider, EngineConfig{}, nil)

	outcome, err := engine.Search(context.Background(), "service.police", origin, nil)
	require.NoError(t, err)

	assert.Equal(t, StatusNotFound, outcome.Status)
	assert.Empty(t, outcome.Places)
	assert.Equal(t, 50, outcome.RadiusKm)
	assert.Len(t, provider.queries, 3)
}

func TestSearchStopsAtFirstTierWithResults(t *testing.T) {
	provider := &stubProvider{results: map[int][]types.PlaceRecord{
		5000:  {{Name: "A"}},
		10000: {{Name: "B"}},
	}}
	engine := NewEngine(provider, EngineConfig{}, nil)

	outcome, err := engine.Search(context.Background(), "service.police", origin, func(string) {
		t.Fatal("no notice expected when the first tier succeeds")
	})
	require.NoError(t, err)
	assert.Equal(t, []int{5000}, provider.radii())
	assert.Equal(t, 5, outcome.RadiusKm)
	assert.Equal(t, "A", outcome.Places[0].Name)
}

func TestSearchUsesTierLimits(t *testing.T) {
	many := make([]types.PlaceRecord, 12)
	provider := &stubProvider{results: map[int][]types.PlaceRecord{50000: many}}
	engine := NewEngine(provider, EngineConfig{}, nil)

	outcome, err := engine.Search(context.Background(), "service.police", origin, nil)
	require.NoError(t, err)

	limits := []int{}
	for _, q := range provider.queries {
		limits = append(limits, q.Limit)
		assert.Equal(t, origin, q.Origin)
		assert.Equal(t, types.CategoryID("service.police"), q.Category)
	}
	assert.Equal(t, []int{5, 5, 10}, limits)
	assert.Len(t, outcome.Places, 10)
}

func TestSearchTransportErrorIsDistinct(t *testing.T) {
	boom := errors.New("connection reset")
	provider := &stubProvider{errs: map[int]error{10000: boom}}
	engine := NewEngine(provider, EngineConfig{}, nil)

	_, err := engine.Search(context.Background(), "service.police", origin, nil)
	require.Error(t, err)

	var te *TransportError
	require.ErrorAs(t, err, &te)
	assert.Equal(t, 10000, te.RadiusMeters)
	assert.ErrorIs(t, err, boom)
	assert.Len(t, provider.queries, 2, "no further tiers after a transport error")
}

func TestSearchNotConfigured(t *testing.T) {
	_, err := NewEngine(nil, EngineConfig{}, nil).Search(context.Background(), "service.police", origin, nil)
	assert.ErrorIs(t, err, ErrNotConfigured)

	provider := &stubProvider{errs: map[int]error{5000: ErrNotConfigured}}
	_, err = NewEngine(provider, EngineConfig{}, nil).Search(context.Background(), "service.police", origin, nil)
	assert.ErrorIs(t, err, ErrNotConfigured)

	var te *TransportError
	assert.False(t, errors.As(err, &te))
}

type slowProvider struct{}

func (slowProvider) Nearby(ctx context.Context, _ Query) ([]types.PlaceRecord, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

func TestSearchTierTimeout(t *testing.T) {
	engine := NewEngine(slowProvider{}, EngineConfig{Timeout: 10 * time.Millisecond}, nil)

	_, err := engine.Search(context.Background(), "service.police", origin, nil)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestSearchCustomTiers(t *testing.T) {
	provider := &stubProvider{}
	tiers := []types.SearchTier{{RadiusMeters: 1000, Limit: 1}, {RadiusMeters: 2000, Limit: 2}}
	engine := NewEngine(provider, EngineConfig{Tiers: tiers}, nil)

	outcome, err := engine.Search(context.Background(), "service.police", origin, nil)
	require.NoError(t, err)
	assert.Equal(t, []int{1000, 2000}, provider.radii())
	assert.Equal(t, 2, outcome.RadiusKm)
}

func TestHaversineDistance(t *testing.T) {
	assert.InDelta(t, 0, haversineDistance(1, 1, 1, 1), 1e-9)
	// Paris to London is roughly 344km.
	assert.InDelta(t, 344, haversineDistance(48.8566, 2.3522, 51.5074, -0.1278), 2)
}
