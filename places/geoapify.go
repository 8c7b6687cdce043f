package places

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"go-safeher/types"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const geoapifyURL = "https://api.geoapify.com/v2/places"

type GeoapifyConfig struct {
	APIKey  string
	BaseURL string
	// RequestsPerSecond throttles outbound calls. Zero disables throttling.
	RequestsPerSecond float64
	HTTPClient        *http.Client
}

// GeoapifyProvider queries the Geoapify Places API.
type GeoapifyProvider struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     *zap.Logger
}

func NewGeoapifyProvider(cfg GeoapifyConfig, logger *zap.Logger) *GeoapifyProvider {
	p := &GeoapifyProvider{
		apiKey:     cfg.APIKey,
		baseURL:    cfg.BaseURL,
		httpClient: cfg.HTTPClient,
		logger:     logger,
	}
	if p.baseURL == "" {
		p.baseURL = geoapifyURL
	}
	if p.httpClient == nil {
		p.httpClient = &http.Client{Timeout: 15 * time.Second}
	}
	if p.logger == nil {
		p.logger = zap.NewNop()
	}
	if cfg.RequestsPerSecond > 0 {
		p.limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), 1)
	}
	return p
}

type geoapifyResponse struct {
	Features []geoapifyFeature `json:"features"`
}

type geoapifyFeature struct {
	Properties geoapifyProperties `json:"properties"`
}

type geoapifyProperties struct {
	Name         string           `json:"name"`
	Formatted    string           `json:"formatted"`
	AddressLine2 string           `json:"address_line2"`
	Street       string           `json:"street"`
	Phone        string           `json:"phone"`
	Contact      *geoapifyContact `json:"contact,omitempty"`
	Distance     float64          `json:"distance"`
}

type geoapifyContact struct {
	Phone string `json:"phone"`
}

// Nearby issues exactly one request. A 200 response whose body is not a
// feature collection counts as zero results.
func (p *GeoapifyProvider) Nearby(ctx context.Context, q Query) ([]types.PlaceRecord, error) {
	if p.apiKey == "" {
		return nil, ErrNotConfigured
	}

	ctx, span := otel.Tracer(tracerName).Start(ctx, "places.Geoapify.Nearby")
	span.SetAttributes(attribute.Int("radius_m", q.RadiusMeters), attribute.Int("limit", q.Limit))
	defer span.End()

	if p.limiter != nil {
		if err := p.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("waiting for rate limiter: %w", err)
		}
	}

	lon := strconv.FormatFloat(q.Origin.Lon, 'f', -1, 64)
	lat := strconv.FormatFloat(q.Origin.Lat, 'f', -1, 64)
	params := url.Values{}
	params.Set("categories", string(q.Category))
	params.Set("filter", fmt.Sprintf("circle:%s,%s,%d", lon, lat, q.RadiusMeters))
	params.Set("bias", fmt.Sprintf("proximity:%s,%s", lon, lat))
	params.Set("limit", strconv.Itoa(q.Limit))
	params.Set("apiKey", p.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to call Geoapify: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read Geoapify response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("Geoapify returned status %d: %s", resp.StatusCode, truncate(string(body), 200))
	}

	var out geoapifyResponse
	if err := json.Unmarshal(body, &out); err != nil || out.Features == nil {
		p.logger.Warn("malformed Geoapify response, treating as empty",
			zap.String("category", string(q.Category)),
			zap.Int("radius_m", q.RadiusMeters),
			zap.Error(err),
		)
		return nil, nil
	}

	records := make([]types.PlaceRecord, 0, len(out.Features))
	for _, f := range out.Features {
		records = append(records, f.Properties.toRecord())
	}
	return records, nil
}

func (gp geoapifyProperties) toRecord() types.PlaceRecord {
	rec := types.PlaceRecord{
		Name:           gp.Name,
		Phone:          gp.Phone,
		DistanceMeters: gp.Distance,
	}
	switch {
	case gp.Formatted != "":
		rec.Address = gp.Formatted
	case gp.AddressLine2 != "":
		rec.Address = gp.AddressLine2
	default:
		rec.Address = gp.Street
	}
	if rec.Phone == "" && gp.Contact != nil {
		rec.Phone = gp.Contact.Phone
	}
	return rec
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
