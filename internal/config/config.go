package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	// Database
	DatabaseURL string

	// Kafka
	KafkaBrokers string
	KafkaTopic   string
	KafkaGroupID string

	// API Configuration
	APIPort string
	APIHost string

	// Validation
	ResultsMaxPayloadBytes int
	FallbackProductCap     int

	// Environment
	Env      string
	LogLevel string
}

func Load() (*Config, error) {
	// Load .env file
	godotenv.Load()

	return &Config{
		DatabaseURL:            getEnv("DATABASE_URL", "sqlite://feedlint.db"),
		KafkaBrokers:           getEnv("KAFKA_BROKERS", "localhost:9092"),
		KafkaTopic:             getEnv("KAFKA_TOPIC", "feed-events"),
		KafkaGroupID:           getEnv("KAFKA_GROUP_ID", "feedlint-worker"),
		APIPort:                getEnv("API_PORT", "8080"),
		APIHost:                getEnv("API_HOST", "0.0.0.0"),
		ResultsMaxPayloadBytes: getEnvAsInt("RESULTS_MAX_PAYLOAD_BYTES", 1<<20),
		FallbackProductCap:     getEnvAsInt("FALLBACK_PRODUCT_CAP", 500),
		Env:                    getEnv("ENV", "development"),
		LogLevel:               getEnv("LOG_LEVEL", "info"),
	}, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}
