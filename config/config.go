package config

import (
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/gamio/venue-booking/logger"
)

// LoadEnv loads variables from a .env file if one is present. Real
// deployments set the environment directly, so a missing file is fine.
func LoadEnv() {
	if err := godotenv.Load(); err != nil {
		logger.WarnLogger.Warn("No .env file found, relying on process environment")
	}
}

// GetEnv returns the value of key or fallback when unset.
func GetEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// GetDurationEnv parses key as a time.Duration (e.g. "1h", "15m"),
// falling back when unset or malformed.
func GetDurationEnv(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		logger.WarnLogger.Warnf("Invalid duration in %s: %q, using %v", key, v, fallback)
		return fallback
	}
	return d
}
