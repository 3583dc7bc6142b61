// Package config loads application configuration from the environment.
package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

// Config holds application configuration.
type Config struct {
	Port             string
	Env              string
	OTLPEndpoint     string
	TelemetryEnabled bool
	GoogleMapsAPIKey string
	CampusDataDir    string
}

// Load reads configuration from a .env file (if present) and the process
// environment. Environment variables take precedence over the file.
func Load() (Config, error) {
	// Missing .env is fine; real deployments set variables directly.
	_ = godotenv.Load()

	cfg := Config{
		Port:             getEnvOrDefault("APP_PORT", "8080"),
		Env:              getEnvOrDefault("APP_ENV", "development"),
		OTLPEndpoint:     getEnvOrDefault("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),
		TelemetryEnabled: os.Getenv("OTEL_ENABLED") == "true",
		GoogleMapsAPIKey: os.Getenv("GOOGLE_MAPS_API_KEY"),
		CampusDataDir:    getEnvOrDefault("CAMPUS_DATA_DIR", "data/campuses"),
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks that required configuration is present.
func (c Config) Validate() error {
	if c.CampusDataDir == "" {
		return fmt.Errorf("CAMPUS_DATA_DIR must not be empty")
	}
	return nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
