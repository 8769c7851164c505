package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	minSearchTimeout = 8 * time.Second
	maxSearchTimeout = 20 * time.Second
)

// RateLimitConfig indicates how many requests are allowed within a given interval.
type RateLimitConfig struct {
	Requests int
	Interval time.Duration
}

// Config aggregates application-wide configuration values.
type Config struct {
	Port        string
	ServiceName string
	LogLevel    string
	LogFormat   string

	DatabaseURL   string
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	SerpAPIKey     string
	SerpAPIURL     string
	GoogleAPIKey   string
	GoogleCSEID    string
	DuckDuckGoURL  string
	DuckDuckGoRate RateLimitConfig
	SearchTimeout  time.Duration
	SearchCacheTTL time.Duration

	ClassifierBaseURL string
	ClassifierToken   string
	ClassifierModel   string
	ClassifierTimeout time.Duration

	TierPolicy    string
	ResultCap     int
	PerCompanyCap int

	JWTSecret       string
	SessionTTL      time.Duration
	RateLimitSearch RateLimitConfig
	OutreachSender  string
}

// Load reads configuration from environment variables and applies sane defaults.
func Load() (*Config, error) {
	cfg := &Config{
		Port:        getEnv("PORT", "8080"),
		ServiceName: getEnv("SERVICE_NAME", "ICP Finder Backend"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		LogFormat:   getEnv("LOG_FORMAT", "json"),

		DatabaseURL:   os.Getenv("DATABASE_URL"),
		RedisAddr:     os.Getenv("REDIS_ADDR"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		RedisDB:       parseInt(getEnv("REDIS_DB", "0"), 0),

		SerpAPIKey:     os.Getenv("SERPAPI_KEY"),
		SerpAPIURL:     getEnv("SERPAPI_URL", "https://serpapi.com/search"),
		GoogleAPIKey:   os.Getenv("GOOGLE_API_KEY"),
		GoogleCSEID:    os.Getenv("GOOGLE_CSE_ID"),
		DuckDuckGoURL:  getEnv("DUCKDUCKGO_URL", "https://html.duckduckgo.com/html/"),
		SearchTimeout:  clampDuration(parseDuration(getEnv("SEARCH_TIMEOUT", "15s"), 15*time.Second), minSearchTimeout, maxSearchTimeout),
		SearchCacheTTL: parseDuration(getEnv("SEARCH_CACHE_TTL", "6h"), 6*time.Hour),

		ClassifierBaseURL: os.Getenv("CLASSIFIER_BASE_URL"),
		ClassifierToken:   os.Getenv("CLASSIFIER_TOKEN"),
		ClassifierModel:   os.Getenv("CLASSIFIER_MODEL"),
		ClassifierTimeout: parseDuration(getEnv("CLASSIFIER_TIMEOUT", "20s"), 20*time.Second),

		TierPolicy:    strings.ToLower(getEnv("TIER_POLICY", "first-match")),
		ResultCap:     parseInt(getEnv("RESULT_CAP", "8"), 8),
		PerCompanyCap: parseInt(getEnv("PER_COMPANY_CAP", "3"), 3),

		JWTSecret:      getEnv("JWT_SECRET", "dev-secret"),
		SessionTTL:     parseDuration(getEnv("SESSION_TTL", "24h"), 24*time.Hour),
		OutreachSender: getEnv("OUTREACH_SENDER", "Alex"),
	}

	if cfg.TierPolicy != "first-match" && cfg.TierPolicy != "drain" {
		return nil, fmt.Errorf("invalid TIER_POLICY value: %q", cfg.TierPolicy)
	}

	rl, err := parseRateLimit(getEnv("RATE_LIMIT_SEARCH", "30/min"))
	if err != nil {
		return nil, fmt.Errorf("invalid RATE_LIMIT_SEARCH value: %w", err)
	}
	cfg.RateLimitSearch = rl

	ddg, err := parseRateLimit(getEnv("DUCKDUCKGO_RATE", "20/min"))
	if err != nil {
		return nil, fmt.Errorf("invalid DUCKDUCKGO_RATE value: %w", err)
	}
	cfg.DuckDuckGoRate = ddg

	return cfg, nil
}

// ClassifierEnabled reports whether an LLM model was configured for intent parsing.
func (c *Config) ClassifierEnabled() bool {
	return c.ClassifierModel != ""
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

func parseDuration(input string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(input)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}

func parseInt(input string, fallback int) int {
	n, err := strconv.Atoi(strings.TrimSpace(input))
	if err != nil || n < 0 {
		return fallback
	}
	return n
}

func clampDuration(d, lo, hi time.Duration) time.Duration {
	if d < lo {
		return lo
	}
	if d > hi {
		return hi
	}
	return d
}
