package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port        string
	RedisURL    string
	DatabaseURL string
	Environment string

	// Audit trail is optional; without a database URL the service runs with
	// a no-op recorder.
	AuditEnabled bool

	// Per-operation timeout and retry policy applied at the domain
	// operations boundary for every store round trip.
	OpTimeout     time.Duration
	RetryAttempts int
	RetryBackoff  time.Duration

	Events EventConfig
}

func LoadConfig() (*Config, error) {
	// .env is optional outside development.
	_ = godotenv.Load()

	return &Config{
		Port:          getEnv("PORT", "8080"),
		RedisURL:      getEnv("REDIS_URL", "redis://localhost:6379"),
		DatabaseURL:   getEnv("DATABASE_URL", ""),
		Environment:   getEnv("ENVIRONMENT", "development"),
		AuditEnabled:  getBoolEnv("AUDIT_ENABLED", true),
		OpTimeout:     getDurationEnv("OP_TIMEOUT", 5*time.Second),
		RetryAttempts: getIntEnv("RETRY_ATTEMPTS", 3),
		RetryBackoff:  getDurationEnv("RETRY_BACKOFF", 200*time.Millisecond),
		Events: EventConfig{
			Enabled:      getBoolEnv("EVENTS_ENABLED", true),
			Publisher:    getEnv("EVENTS_PUBLISHER", "kafka"),
			KafkaBrokers: getEnv("KAFKA_BROKERS", "localhost:9092"),
			SafetyTopic:  getEnv("SAFETY_TOPIC", "safety-events"),
		},
	}, nil
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getBoolEnv(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return defaultValue
	}
	return parsed
}

func getIntEnv(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return parsed
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return defaultValue
	}
	return parsed
}
