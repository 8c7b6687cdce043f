// Package geocode resolves a street address to a coordinate with the Google
// Maps geocoding API.
package geocode

import (
	"context"
	"errors"
	"fmt"

	"go-safeher/types"

	"googlemaps.github.io/maps"
)

var ErrNoResults = errors.New("address returned no geocoding results")

// NewClient creates a Google Maps client. Extra options such as
// maps.WithBaseURL are applied after the API key.
func NewClient(apiKey string, opts ...maps.ClientOption) (*maps.Client, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("google maps API key not set")
	}
	client, err := maps.NewClient(append([]maps.ClientOption{maps.WithAPIKey(apiKey)}, opts...)...)
	if err != nil {
		return nil, fmt.Errorf("failed to create maps client: %w", err)
	}
	return client, nil
}

// GeocodeAddress forward geocodes an address and returns the first match
// together with its formatted address.
func GeocodeAddress(ctx context.Context, client *maps.Client, address string) (types.Coordinate, string, error) {
	results, err := client.Geocode(ctx, &maps.GeocodingRequest{Address: address})
	if err != nil {
		return types.Coordinate{}, "", fmt.Errorf("geocoding %q: %w", address, err)
	}
	if len(results) == 0 {
		return types.Coordinate{}, "", ErrNoResults
	}

	loc := results[0].Geometry.Location
	return types.Coordinate{Lat: loc.Lat, Lon: loc.Lng}, results[0].FormattedAddress, nil
}
