package places

import (
	"context"
	"fmt"

	"go-safeher/types"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"
	"googlemaps.github.io/maps"
)

// googlePlaceTypes maps our categories onto Google place types. Categories
// without an entry are searched by keyword instead.
var googlePlaceTypes = map[types.CategoryID]maps.PlaceType{
	"healthcare.hospital":         "hospital",
	"healthcare.pharmacy":         "pharmacy",
	"healthcare.clinic_or_praxis": "doctor",
	"service.police":              "police",
	"service.fire_station":        "fire_station",
}

// GoogleProvider queries Google Places Nearby Search. Distances are computed
// locally since the API does not return them.
type GoogleProvider struct {
	client *maps.Client
	logger *zap.Logger
}

func NewGoogleProvider(client *maps.Client, logger *zap.Logger) *GoogleProvider {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GoogleProvider{client: client, logger: logger}
}

func (p *GoogleProvider) Nearby(ctx context.Context, q Query) ([]types.PlaceRecord, error) {
	if p.client == nil {
		return nil, ErrNotConfigured
	}

	ctx, span := otel.Tracer(tracerName).Start(ctx, "places.Google.Nearby")
	span.SetAttributes(attribute.Int("radius_m", q.RadiusMeters), attribute.Int("limit", q.Limit))
	defer span.End()

	req := &maps.NearbySearchRequest{
		Location: &maps.LatLng{Lat: q.Origin.Lat, Lng: q.Origin.Lon},
		Radius:   uint(q.RadiusMeters),
	}
	if placeType, ok := googlePlaceTypes[q.Category]; ok {
		req.Type = placeType
	} else {
		req.Keyword = q.Category.Kind()
	}

	resp, err := p.client.NearbySearch(ctx, req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("google nearby search: %w", err)
	}

	records := make([]types.PlaceRecord, 0, len(resp.Results))
	for _, r := range resp.Results {
		address := r.FormattedAddress
		if address == "" {
			address = r.Vicinity
		}
		loc := r.Geometry.Location
		records = append(records, types.PlaceRecord{
			Name:           r.Name,
			Address:        address,
			DistanceMeters: haversineDistance(q.Origin.Lat, q.Origin.Lon, loc.Lat, loc.Lng) * 1000,
		})
	}
	p.logger.Debug("google nearby search",
		zap.String("category", string(q.Category)),
		zap.Int("radius_m", q.RadiusMeters),
		zap.Int("results", len(records)),
	)
	return records, nil
}
