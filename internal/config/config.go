package config

import (
	"log/slog"
	"os"
	"strconv"
	"time"
)

// Config holds all application configuration loaded from environment variables.
type Config struct {
	DatabaseURL         string
	HTTPPort            string
	CoinAPIURL          string
	CoinAPIKey          string
	RateRetryMax        int
	RateRetryBaseDelay  time.Duration
	RateCacheTTL        time.Duration
	RateRefreshInterval time.Duration
	MaxRedirects        int
}

// Load reads configuration from environment variables with sensible defaults.
func Load() Config {
	return Config{
		DatabaseURL:         envOrDefaultWarn("DATABASE_URL", ""),
		HTTPPort:            envOrDefault("HTTP_PORT", "8080"),
		CoinAPIURL:          envOrDefault("COINAPI_URL", "https://rest.coinapi.io"),
		CoinAPIKey:          envOrDefaultWarn("COINAPI_KEY", ""),
		RateRetryMax:        envOrDefaultInt("RATE_RETRY_MAX", 3),
		RateRetryBaseDelay:  envOrDefaultDuration("RATE_RETRY_BASE_DELAY", 2*time.Second),
		RateCacheTTL:        envOrDefaultDuration("RATE_CACHE_TTL", 30*time.Second),
		RateRefreshInterval: envOrDefaultDuration("RATE_REFRESH_INTERVAL", 0),
		MaxRedirects:        envOrDefaultInt("MAX_REDIRECTS", 5),
	}
}

func envOrDefault(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func envOrDefaultWarn(key, defaultVal string) string {
	v := envOrDefault(key, defaultVal)
	if v == "" {
		slog.Warn("required env var not set", "key", key)
	}
	return v
}

func envOrDefaultInt(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			slog.Warn("invalid integer env var, using default", "key", key, "value", v, "default", defaultVal)
			return defaultVal
		}
		return n
	}
	return defaultVal
}

func envOrDefaultDuration(key string, defaultVal time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			slog.Warn("invalid duration env var, using default", "key", key, "value", v, "default", defaultVal)
			return defaultVal
		}
		return d
	}
	return defaultVal
}
