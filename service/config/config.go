package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds all application configuration loaded from environment variables.
// All required fields are validated at startup to ensure fail-fast behavior.
type Config struct {
	// Server configuration
	ServerAddr string
	LogLevel   string

	// Database configuration
	DatabaseURL string

	// Upload configuration
	MaxUploadBytes int64

	// Import endpoint rate limiting
	ImportRateLimit float64
	ImportRateBurst int
}

// Load reads configuration from environment variables and validates all
// required fields. A .env file in the working directory is loaded first if
// present. Returns an error if any required configuration is missing or
// invalid.
func Load() (*Config, error) {
	// Optional .env file for local development; the environment wins.
	_ = godotenv.Load()

	cfg := &Config{}
	var errs []error

	// Server configuration
	cfg.ServerAddr = getEnvOrDefault("SERVER_ADDR", ":8080")
	cfg.LogLevel = getEnvOrDefault("LOG_LEVEL", "info")

	// Database configuration
	cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	if cfg.DatabaseURL == "" {
		errs = append(errs, fmt.Errorf("DATABASE_URL is required"))
	}

	// Upload configuration
	maxUpload, err := parseInt64("MAX_UPLOAD_BYTES", 10<<20)
	if err != nil {
		errs = append(errs, err)
	} else {
		cfg.MaxUploadBytes = maxUpload
	}

	// Rate limiting configuration
	rateLimit, err := parseFloat("IMPORT_RATE_LIMIT", 5)
	if err != nil {
		errs = append(errs, err)
	} else {
		cfg.ImportRateLimit = rateLimit
	}

	rateBurst, err := parseInt("IMPORT_RATE_BURST", 10)
	if err != nil {
		errs = append(errs, err)
	} else {
		cfg.ImportRateBurst = rateBurst
	}

	// Return all validation errors
	if len(errs) > 0 {
		return nil, fmt.Errorf("configuration validation failed: %v", errs)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// MustLoad is like Load but panics if configuration is invalid.
// Useful for server initialization where misconfiguration should halt startup.
func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		panic(fmt.Sprintf("failed to load configuration: %v", err))
	}
	return cfg
}

// Validate checks if the configuration is valid.
// This is useful for testing configuration without loading from env.
func (c *Config) Validate() error {
	var errs []error

	if c.DatabaseURL == "" {
		errs = append(errs, fmt.Errorf("DatabaseURL is required"))
	}

	if c.MaxUploadBytes <= 0 {
		errs = append(errs, fmt.Errorf("MaxUploadBytes must be positive"))
	}

	if c.ImportRateLimit <= 0 {
		errs = append(errs, fmt.Errorf("ImportRateLimit must be positive"))
	}

	if c.ImportRateBurst <= 0 {
		errs = append(errs, fmt.Errorf("ImportRateBurst must be positive"))
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed: %v", errs)
	}

	return nil
}

// getEnvOrDefault returns the environment variable value or a default if not set.
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// parseInt parses an integer from an environment variable or uses a default.
func parseInt(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	result, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("%s: invalid integer %q: %w", key, value, err)
	}
	return result, nil
}

// parseInt64 parses a 64-bit integer from an environment variable or uses a default.
func parseInt64(key string, defaultValue int64) (int64, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	result, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%s: invalid integer %q: %w", key, value, err)
	}
	return result, nil
}

// parseFloat parses a float from an environment variable or uses a default.
func parseFloat(key string, defaultValue float64) (float64, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	result, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, fmt.Errorf("%s: invalid number %q: %w", key, value, err)
	}
	return result, nil
}
