package places

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"go-safeher/metrics"
	"go-safeher/types"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const tracerName = "go-safeher/places"

type EngineConfig struct {
	// Tiers defaults to DefaultTiers.
	Tiers []types.SearchTier
	// Timeout bounds each tier request. Zero disables the bound.
	Timeout time.Duration
}

// Engine escalates a search through its tiers, one request at a time.
type Engine struct {
	provider Provider
	tiers    []types.SearchTier
	timeout  time.Duration
	logger   *zap.Logger
}

func NewEngine(provider Provider, cfg EngineConfig, logger *zap.Logger) *Engine {
	tiers := cfg.Tiers
	if len(tiers) == 0 {
		tiers = DefaultTiers
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{
		provider: provider,
		tiers:    append([]types.SearchTier(nil), tiers...),
		timeout:  cfg.Timeout,
		logger:   logger,
	}
}

// Search tries each tier in order and stops at the first one with results.
// A provider error ends the search immediately as a *TransportError, except
// ErrNotConfigured which is returned as is.
func (e *Engine) Search(ctx context.Context, category types.CategoryID, origin types.Coordinate, notify Notifier) (Outcome, error) {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "places.Engine.Search",
		trace.WithAttributes(attribute.String("category", string(category))),
	)
	defer span.End()

	if e.provider == nil {
		metrics.PlacesSearches.WithLabelValues("not_configured").Inc()
		return Outcome{}, ErrNotConfigured
	}

	for i, tier := range e.tiers {
		found, err := e.queryTier(ctx, category, origin, tier)
		if err != nil {
			if errors.Is(err, ErrNotConfigured) {
				metrics.PlacesSearches.WithLabelValues("not_configured").Inc()
				return Outcome{}, err
			}
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			metrics.PlacesSearches.WithLabelValues("transport_error").Inc()
			e.logger.Warn("places provider failed",
				zap.String("category", string(category)),
				zap.Int("radius_m", tier.RadiusMeters),
				zap.Error(err),
			)
			return Outcome{}, &TransportError{RadiusMeters: tier.RadiusMeters, Err: err}
		}

		if len(found) > 0 {
			if len(found) > tier.Limit {
				found = found[:tier.Limit]
			}
			span.SetAttributes(attribute.Int("radius_km", tier.RadiusKm()), attribute.Int("results", len(found)))
			metrics.PlacesSearches.WithLabelValues(StatusFound.String()).Inc()
			return Outcome{Status: StatusFound, Places: found, RadiusKm: tier.RadiusKm()}, nil
		}

		if i+1 < len(e.tiers) && notify != nil {
			notify(fmt.Sprintf("No %s found within %dkm. Expanding search to %dkm...",
				category.Kind(), tier.RadiusKm(), e.tiers[i+1].RadiusKm()))
		}
	}

	last := e.tiers[len(e.tiers)-1]
	metrics.PlacesSearches.WithLabelValues(StatusNotFound.String()).Inc()
	e.logger.Info("no places found at max radius",
		zap.String("category", string(category)),
		zap.Int("radius_km", last.RadiusKm()),
	)
	return Outcome{Status: StatusNotFound, RadiusKm: last.RadiusKm()}, nil
}

func (e *Engine) queryTier(ctx context.Context, category types.CategoryID, origin types.Coordinate, tier types.SearchTier) ([]types.PlaceRecord, error) {
	if e.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}

	metrics.PlacesTierRequests.WithLabelValues(strconv.Itoa(tier.RadiusKm())).Inc()
	e.logger.Debug("places tier request",
		zap.String("category", string(category)),
		zap.Int("radius_m", tier.RadiusMeters),
		zap.Int("limit", tier.Limit),
	)

	return e.provider.Nearby(ctx, Query{
		Category:     category,
		Origin:       origin,
		RadiusMeters: tier.RadiusMeters,
		Limit:        tier.Limit,
	})
}
