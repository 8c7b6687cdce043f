package main

import (
	"context"
	"fmt"

	"go-safeher/advice"
	"go-safeher/category"
	"go-safeher/chat"
	"go-safeher/config"
	"go-safeher/geocode"
	"go-safeher/location"
	"go-safeher/places"
	"go-safeher/types"

	"go.uber.org/zap"
	"googlemaps.github.io/maps"
)

// app holds the collaborators shared by the server and the REPL.
type app struct {
	deps     chat.Deps
	advisor  *advice.Remote
	geocoder *maps.Client
	origin   *types.Coordinate
}

func buildApp(ctx context.Context, cfg config.Config, logger *zap.Logger) (*app, error) {
	resolver, err := loadResolver(cfg.CategoryKeywordsFile)
	if err != nil {
		return nil, err
	}
	fallback, err := loadFallback(cfg.AdviceKeywordsFile)
	if err != nil {
		return nil, err
	}

	var geocoder *maps.Client
	if cfg.GoogleMapsKey != "" {
		if geocoder, err = geocode.NewClient(cfg.GoogleMapsKey); err != nil {
			return nil, err
		}
	}

	provider, err := newPlacesProvider(cfg, geocoder, logger)
	if err != nil {
		return nil, err
	}
	if cfg.PlacesKey() == "" {
		logger.Warn("no places API key set, emergency search is disabled", zap.String("provider", cfg.PlacesProvider))
	}
	engine := places.NewEngine(provider, places.EngineConfig{Timeout: cfg.PlacesTimeout}, logger.Named("places"))

	if cfg.AdviceAPIKey == "" {
		logger.Warn("no advice API key set, advice mode will answer with the unconfigured message")
	}
	advisor := advice.NewRemote(advice.RemoteConfig{
		APIKey:   cfg.AdviceAPIKey,
		BaseURL:  cfg.AdviceBaseURL,
		Model:    cfg.AdviceModel,
		Timeout:  cfg.AdviceTimeout,
		AppURL:   cfg.AppURL,
		AppTitle: cfg.AppTitle,
	}, fallback, logger.Named("advice"))

	a := &app{
		deps: chat.Deps{
			Resolver: resolver,
			Searcher: engine,
			Advisor:  advisor,
			Logger:   logger.Named("chat"),
		},
		advisor:  advisor,
		geocoder: geocoder,
	}

	locator := location.FromConfig(cfg, logger)
	if coord, ok := location.Acquire(ctx, locator, logger); ok {
		logger.Info("location acquired", zap.Stringer("coordinate", coord))
		a.origin = &coord
	}
	return a, nil
}

func newPlacesProvider(cfg config.Config, geocoder *maps.Client, logger *zap.Logger) (places.Provider, error) {
	switch cfg.PlacesProvider {
	case config.ProviderGoogle:
		return places.NewGoogleProvider(geocoder, logger.Named("google")), nil
	case config.ProviderGeoapify:
		return places.NewGeoapifyProvider(places.GeoapifyConfig{
			APIKey:            cfg.GeoapifyAPIKey,
			RequestsPerSecond: cfg.PlacesRateLimit,
		}, logger.Named("geoapify")), nil
	}
	return nil, fmt.Errorf("unknown places provider %q", cfg.PlacesProvider)
}

func loadResolver(path string) (*category.Resolver, error) {
	if path == "" {
		return category.Default(), nil
	}
	table, err := category.LoadTable(path)
	if err != nil {
		return nil, err
	}
	return category.NewResolver(table)
}

func loadFallback(path string) (*advice.Fallback, error) {
	if path == "" {
		return advice.DefaultFallback(), nil
	}
	table, err := advice.LoadTable(path)
	if err != nil {
		return nil, err
	}
	return advice.NewFallback(table)
}
