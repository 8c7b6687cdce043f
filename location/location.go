// Package location acquires the user's coordinate once at startup.
package location

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go-safeher/config"
	"go-safeher/geocode"
	"go-safeher/types"

	"go.uber.org/zap"
	"googlemaps.github.io/maps"
)

var ErrUnavailable = errors.New("location unavailable")

// Provider supplies a single coordinate reading.
type Provider interface {
	Locate(ctx context.Context) (types.Coordinate, error)
}

// Static always returns the same coordinate.
type Static types.Coordinate

func (s Static) Locate(context.Context) (types.Coordinate, error) {
	c := types.Coordinate(s)
	if !c.Valid() {
		return types.Coordinate{}, fmt.Errorf("%w: %s out of range", ErrUnavailable, c)
	}
	return c, nil
}

// Address geocodes a fixed street address.
type Address struct {
	Client  *maps.Client
	Address string
	Logger  *zap.Logger
}

func (a Address) Locate(ctx context.Context) (types.Coordinate, error) {
	if a.Client == nil || a.Address == "" {
		return types.Coordinate{}, ErrUnavailable
	}
	coord, formatted, err := geocode.GeocodeAddress(ctx, a.Client, a.Address)
	if err != nil {
		return types.Coordinate{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if a.Logger != nil {
		a.Logger.Info("geocoded home address", zap.String("address", formatted), zap.Stringer("coordinate", coord))
	}
	return coord, nil
}

// AcquireTimeout bounds a single Acquire call.
var AcquireTimeout = 10 * time.Second

// Acquire asks p once. Any failure is logged and reported as ok == false so
// the caller continues without a location.
func Acquire(ctx context.Context, p Provider, logger *zap.Logger) (types.Coordinate, bool) {
	if p == nil {
		return types.Coordinate{}, false
	}
	ctx, cancel := context.WithTimeout(ctx, AcquireTimeout)
	defer cancel()

	coord, err := p.Locate(ctx)
	if err != nil {
		if logger != nil {
			logger.Warn("location unavailable, emergency search disabled", zap.Error(err))
		}
		return types.Coordinate{}, false
	}
	return coord, true
}

// Unavailable is a provider whose configuration could not be used. Locate
// always fails with ErrUnavailable.
type Unavailable struct {
	Reason error
}

func (u Unavailable) Locate(context.Context) (types.Coordinate, error) {
	return types.Coordinate{}, fmt.Errorf("%w: %v", ErrUnavailable, u.Reason)
}

// FromConfig picks a provider from HOME_LAT/HOME_LON or HOME_ADDRESS. It
// returns nil when neither is set. Unusable settings yield an Unavailable
// provider so startup continues without a location.
func FromConfig(cfg config.Config, logger *zap.Logger) Provider {
	if cfg.HomeLat != "" || cfg.HomeLon != "" {
		lat, err := strconv.ParseFloat(strings.TrimSpace(cfg.HomeLat), 64)
		if err != nil {
			return Unavailable{Reason: fmt.Errorf("invalid HOME_LAT: %w", err)}
		}
		lon, err := strconv.ParseFloat(strings.TrimSpace(cfg.HomeLon), 64)
		if err != nil {
			return Unavailable{Reason: fmt.Errorf("invalid HOME_LON: %w", err)}
		}
		return Static{Lat: lat, Lon: lon}
	}
	if cfg.HomeAddress != "" {
		client, err := geocode.NewClient(cfg.GoogleMapsKey)
		if err != nil {
			return Unavailable{Reason: fmt.Errorf("HOME_ADDRESS needs a Google Maps key: %w", err)}
		}
		return Address{Client: client, Address: cfg.HomeAddress, Logger: logger}
	}
	return nil
}
