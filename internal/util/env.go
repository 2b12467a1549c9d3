package util

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/cristofima/maf-graphrag-series/pkg/logger"

	"github.com/joho/godotenv"
)

// LoadEnv loads .env files into the process environment. Variables already
// set win over file values.
func LoadEnv(files ...string) {
	if err := godotenv.Load(files...); err != nil {
		logger.Debug("No .env file found, using system environment variables")
	}
}

func GetEnv(key string) string {
	value, exists := os.LookupEnv(key)
	if !exists {
		return ""
	}
	return value
}

func GetEnvString(key string, defaultValue string) string {
	value, exists := os.LookupEnv(key)
	if !exists || strings.TrimSpace(value) == "" {
		return defaultValue
	}
	return value
}

func GetEnvInt(key string, defaultValue int) int {
	value, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		logger.Warn("Ignoring non-integer environment value", "key", key, "value", value)
		return defaultValue
	}
	return n
}

func GetEnvFloat(key string, defaultValue float64) float64 {
	value, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil {
		return defaultValue
	}
	return f
}

// GetEnvBool accepts the spellings understood by strconv.ParseBool.
func GetEnvBool(key string, defaultValue bool) bool {
	value, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}
	b, err := strconv.ParseBool(strings.TrimSpace(value))
	if err != nil {
		return defaultValue
	}
	return b
}

// GetEnvDuration parses Go duration strings ("30s") and falls back to whole
// seconds ("30").
func GetEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}
	value = strings.TrimSpace(value)
	if d, err := time.ParseDuration(value); err == nil {
		return d
	}
	if secs, err := strconv.Atoi(value); err == nil {
		return time.Duration(secs) * time.Second
	}
	return defaultValue
}
