package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	BaseURL      string
	Mode         string // "api" or "mock"
	Token        string
	SessionID    string
	CSRFToken    string
	UserAgent    string
	PollInterval time.Duration
	Timeout      time.Duration
	RatePerSec   float64
	TagsFile     string
	JournalPath  string
	Port         string
	Env          string // "local" or "prod"
	LogFile      string
	OtelEndpoint string

	DiscardStale   bool
	CancelInFlight bool
}

func Load() Config {
	return Config{
		BaseURL:        getEnv("DEVFEED_BASE_URL", "http://localhost:8000/"),
		Mode:           getEnv("DEVFEED_MODE", "api"),
		Token:          getEnv("DEVFEED_TOKEN", ""),
		SessionID:      getEnv("DEVFEED_SESSION_ID", ""),
		CSRFToken:      getEnv("DEVFEED_CSRF_TOKEN", ""),
		UserAgent:      getEnv("DEVFEED_USER_AGENT", "devfeed/1.0"),
		PollInterval:   getDuration("DEVFEED_POLL_INTERVAL", 30*time.Second),
		Timeout:        getDuration("DEVFEED_TIMEOUT", 10*time.Second),
		RatePerSec:     getFloat("DEVFEED_RATE", 5),
		TagsFile:       getEnv("DEVFEED_TAGS_FILE", ""),
		JournalPath:    getEnv("DEVFEED_JOURNAL", "data/current.json"),
		Port:           getEnv("PORT", "8080"),
		Env:            getEnv("DEVFEED_ENV", "local"),
		LogFile:        getEnv("DEVFEED_LOG_FILE", ""),
		OtelEndpoint:   getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
		DiscardStale:   getBool("DEVFEED_DISCARD_STALE", false),
		CancelInFlight: getBool("DEVFEED_CANCEL_IN_FLIGHT", false),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return strings.TrimSpace(v)
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(getEnv(key, ""))
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}

func getFloat(key string, fallback float64) float64 {
	f, err := strconv.ParseFloat(getEnv(key, ""), 64)
	if err != nil {
		return fallback
	}
	return f
}

func getBool(key string, fallback bool) bool {
	b, err := strconv.ParseBool(getEnv(key, ""))
	if err != nil {
		return fallback
	}
	return b
}
