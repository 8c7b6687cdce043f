// Package config loads runtime settings from the environment and an optional
// .env file.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	ProviderGeoapify = "geoapify"
	ProviderGoogle   = "google"
)

// Config holds every setting the server and the REPL need. Empty API keys are
// valid: the matching feature reports itself as not configured.
type Config struct {
	Port    string
	GinMode string

	PlacesProvider  string
	GeoapifyAPIKey  string
	GoogleMapsKey   string
	PlacesRateLimit float64
	PlacesTimeout   time.Duration

	AdviceAPIKey  string
	AdviceBaseURL string
	AdviceModel   string
	AdviceTimeout time.Duration
	AppURL        string
	AppTitle      string

	HomeLat     string
	HomeLon     string
	HomeAddress string

	SessionIdleTimeout   time.Duration
	SessionSweepSchedule string

	CategoryKeywordsFile string
	AdviceKeywordsFile   string

	LogLevel  string
	LogFormat string
}

// Load reads .env if present and then the process environment. It reports
// whether a .env file was loaded so the caller can log it.
func Load() (Config, bool, error) {
	loaded := godotenv.Load() == nil

	cfg := Config{
		Port:    getenv("PORT", "8080"),
		GinMode: os.Getenv("GIN_MODE"),

		PlacesProvider: strings.ToLower(getenv("PLACES_PROVIDER", ProviderGeoapify)),
		GeoapifyAPIKey: os.Getenv("GEOAPIFY_API_KEY"),
		GoogleMapsKey:  firstEnv("GOOGLE_MAPS_API_KEY", "MAPS_CREDENTIALS"),

		AdviceAPIKey:  firstEnv("OPENROUTER_API_KEY", "OPENAI_API_KEY"),
		AdviceBaseURL: os.Getenv("ADVICE_BASE_URL"),
		AdviceModel:   os.Getenv("ADVICE_MODEL"),
		AppURL:        os.Getenv("APP_URL"),
		AppTitle:      os.Getenv("APP_TITLE"),

		HomeLat:     os.Getenv("HOME_LAT"),
		HomeLon:     os.Getenv("HOME_LON"),
		HomeAddress: os.Getenv("HOME_ADDRESS"),

		SessionSweepSchedule: getenv("SESSION_SWEEP_SCHEDULE", "@every 5m"),

		CategoryKeywordsFile: os.Getenv("CATEGORY_KEYWORDS_FILE"),
		AdviceKeywordsFile:   os.Getenv("ADVICE_KEYWORDS_FILE"),

		LogLevel:  getenv("LOG_LEVEL", "info"),
		LogFormat: getenv("LOG_FORMAT", "console"),
	}

	switch cfg.PlacesProvider {
	case ProviderGeoapify, ProviderGoogle:
	default:
		return Config{}, loaded, fmt.Errorf("PLACES_PROVIDER must be %q or %q, got %q", ProviderGeoapify, ProviderGoogle, cfg.PlacesProvider)
	}

	var err error
	if cfg.PlacesRateLimit, err = floatEnv("PLACES_RATE_LIMIT", 5); err != nil {
		return Config{}, loaded, err
	}
	if cfg.PlacesTimeout, err = durationEnv("PLACES_TIMEOUT", 10*time.Second); err != nil {
		return Config{}, loaded, err
	}
	if cfg.AdviceTimeout, err = durationEnv("ADVICE_TIMEOUT", 20*time.Second); err != nil {
		return Config{}, loaded, err
	}
	if cfg.SessionIdleTimeout, err = durationEnv("SESSION_IDLE_TIMEOUT", 30*time.Minute); err != nil {
		return Config{}, loaded, err
	}
	return cfg, loaded, nil
}

// PlacesKey returns the credential for the selected places provider.
func (c Config) PlacesKey() string {
	if c.PlacesProvider == ProviderGoogle {
		return c.GoogleMapsKey
	}
	return c.GeoapifyAPIKey
}

func getenv(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func firstEnv(keys ...string) string {
	for _, k := range keys {
		if v := strings.TrimSpace(os.Getenv(k)); v != "" {
			return v
		}
	}
	return ""
}

func durationEnv(key string, def time.Duration) (time.Duration, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("invalid %s: must be positive", key)
	}
	return d, nil
}

func floatEnv(key string, def float64) (float64, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def, nil
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return f, nil
}
