package location

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go-safeher/config"
	"go-safeher/geocode"
	"go-safeher/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"googlemaps.github.io/maps"
)

type failingProvider struct{}

func (failingProvider) Locate(context.Context) (types.Coordinate, error) {
	return types.Coordinate{}, errors.New("permission denied")
}

func TestAcquire(t *testing.T) {
	coord, ok := Acquire(context.Background(), Static{Lat: 28.61, Lon: 77.2}, zap.NewNop())
	assert.True(t, ok)
	assert.Equal(t, types.Coordinate{Lat: 28.61, Lon: 77.2}, coord)

	_, ok = Acquire(context.Background(), failingProvider{}, zap.NewNop())
	assert.False(t, ok)

	_, ok = Acquire(context.Background(), nil, nil)
	assert.False(t, ok)

	_, ok = Acquire(context.Background(), Static{Lat: 120}, nil)
	assert.False(t, ok)
}

func TestAddressProvider(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Connaught Place", r.URL.Query().Get("address"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"OK","results":[{"formatted_address":"Connaught Place, New Delhi",
			"geometry":{"location":{"lat":28.6315,"lng":77.2167}}}]}`))
	}))
	defer srv.Close()

	client, err := geocode.NewClient("AIza-test", maps.WithBaseURL(srv.URL))
	require.NoError(t, err)

	coord, err := Address{Client: client, Address: "Connaught Place"}.Locate(context.Background())
	require.NoError(t, err)
	assert.Equal(t, types.Coordinate{Lat: 28.6315, Lon: 77.2167}, coord)
}

func TestAddressProviderUnconfigured(t *testing.T) {
	_, err := Address{}.Locate(context.Background())
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestFromConfig(t *testing.T) {
	assert.Equal(t, Static{Lat: 12.97, Lon: 77.59}, FromConfig(config.Config{HomeLat: "12.97", HomeLon: "77.59"}, nil))
	assert.Nil(t, FromConfig(config.Config{}, nil))
	assert.IsType(t, Address{}, FromConfig(config.Config{HomeAddress: "Somewhere", GoogleMapsKey: "AIza-test"}, nil))
}

func TestFromConfigUnusableSettingsAreNotFatal(t *testing.T) {
	tests := map[string]config.Config{
		"address without maps key":   {HomeAddress: "Park Street, Kolkata"},
		"latitude without longitude": {HomeLat: "12.97"},
		"latitude not a number":      {HomeLat: "north", HomeLon: "77.59"},
	}
	for name, cfg := range tests {
		t.Run(name, func(t *testing.T) {
			p := FromConfig(cfg, nil)
			require.NotNil(t, p)

			_, err := p.Locate(context.Background())
			assert.ErrorIs(t, err, ErrUnavailable)

			_, ok := Acquire(context.Background(), p, zap.NewNop())
			assert.False(t, ok)
		})
	}
}

type stalledProvider struct{}

func (stalledProvider) Locate(ctx context.Context) (types.Coordinate, error) {
	<-ctx.Done()
	return types.Coordinate{}, ctx.Err()
}

func TestAcquireTimesOut(t *testing.T) {
	prev := AcquireTimeout
	AcquireTimeout = 20 * time.Millisecond
	t.Cleanup(func() { AcquireTimeout = prev })

	start := time.Now()
	_, ok := Acquire(context.Background(), stalledProvider{}, nil)
	assert.False(t, ok)
	assert.Less(t, time.Since(start), 2*time.Second)
}
