package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// RateLimitConfig indicates how many requests are allowed within a given interval.
type RateLimitConfig struct {
	Requests int
	Interval time.Duration
}

// Config aggregates application-wide configuration values. It is loaded once
// at startup and read-only afterwards.
type Config struct {
	Port             string
	HFToken          string
	HFAPIURL         string
	NominatimBaseURL string
	OverpassBaseURL  string
	ContactEmail     string
	RateLimitChat    RateLimitConfig
	JWTSecret        string
	AuthAPIKey       string
	TokenTTL         time.Duration
	LogLevel         string
	LogFormat        string
}

// AuthEnabled reports whether bearer-token auth should guard the API.
func (c *Config) AuthEnabled() bool {
	return c.JWTSecret != "" && c.AuthAPIKey != ""
}

// UserAgent returns the identifying User-Agent sent to the OSM services.
func (c *Config) UserAgent() string {
	return fmt.Sprintf("Vietnam-Explorer/1.0 (contact: %s)", c.ContactEmail)
}

// Load reads configuration from environment variables and applies sane defaults.
func Load() (*Config, error) {
	cfg := &Config{
		Port:             getEnv("PORT", "8080"),
		HFToken:          os.Getenv("HF_TOKEN"),
		HFAPIURL:         getEnv("HF_API_URL", "https://router.huggingface.co/models/urchade/gliner_small-v2.1"),
		NominatimBaseURL: getEnv("NOMINATIM_BASE_URL", "https://nominatim.openstreetmap.org"),
		OverpassBaseURL:  getEnv("OVERPASS_BASE_URL", "https://overpass.kumi.systems/api/interpreter"),
		ContactEmail:     getEnv("CONTACT_EMAIL", "your-email@example.com"),
		JWTSecret:        os.Getenv("JWT_SECRET"),
		AuthAPIKey:       os.Getenv("AUTH_API_KEY"),
		TokenTTL:         parseDuration(getEnv("JWT_TTL", "24h")),
		LogLevel:         getEnv("LOG_LEVEL", "info"),
		LogFormat:        getEnv("LOG_FORMAT", "json"),
	}

	rl, err := parseRateLimit(getEnv("RATE_LIMIT_CHAT", "30/min"))
	if err != nil {
		return nil, fmt.Errorf("invalid RATE_LIMIT_CHAT value: %w", err)
	}
	cfg.RateLimitChat = rl

	return cfg, nil
}

func parseRateLimit(value string) (RateLimitConfig, error) {
	parts := strings.Split(value, "/")
	if len(parts) != 2 {
		return RateLimitConfig{}, fmt.Errorf("expected format <requests>/<interval>, got %q", value)
	}

	requests, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil || requests <= 0 {
		return RateLimitConfig{}, fmt.Errorf("invalid request count: %v", parts[0])
	}

	unit := strings.ToLower(strings.TrimSpace(parts[1]))
	var interval time.Duration
	switch unit {
	case "s", "sec", "second", "seconds":
		interval = time.Second
	case "m", "min", "minute", "minutes":
		interval = time.Minute
	case "h", "hr", "hour", "hours":
		interval = time.Hour
	default:
		return RateLimitConfig{}, fmt.Errorf("unsupported interval unit: %s", unit)
	}

	return RateLimitConfig{Requests: requests, Interval: interval}, nil
}

func getEnv(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok && val != "" {
		return val
	}
	return fallback
}

func parseDuration(input string) time.Duration {
	d, err := time.ParseDuration(input)
	if err != nil {
		return 24 * time.Hour
	}
	return d
}
