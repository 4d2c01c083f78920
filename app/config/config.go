package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Config holds all configuration for the pettracker service.
type Config struct {
	// Server
	Port     string `env:"PORT" default:"9700"`
	Host     string `env:"HOST" default:"0.0.0.0"`
	LogLevel string `env:"LOG_LEVEL" default:"info"`

	// Database
	DatabaseURL string `env:"DATABASE_URL" required:"true"`

	// Identity provider
	Region           string `env:"AWS_REGION" required:"true"`
	UserPoolID       string `env:"USER_POOL_ID" required:"true"`
	UserPoolClientID string `env:"USER_POOL_CLIENT_ID" required:"true"`
	IdentityPoolID   string `env:"IDENTITY_POOL_ID" required:"true"`

	// Optional static AWS credentials for local development against an
	// emulated endpoint. Production deployments rely on the default chain.
	AWSAccessKeyID     string `env:"AWS_ACCESS_KEY_ID" default:""`
	AWSSecretAccessKey string `env:"AWS_SECRET_ACCESS_KEY" default:""`

	// Object storage
	UserFilesBucket string `env:"USER_FILES_BUCKET" default:""`

	// Local cache
	CacheFile string `env:"CACHE_FILE" default:"app-data.json"`

	// Rate limiting
	RateLimitPerSecond float64 `env:"RATE_LIMIT_PER_SECOND" default:"10"`
	RateLimitBurst     int     `env:"RATE_LIMIT_BURST" default:"20"`
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	config := &Config{}

	// Server configuration
	config.Port = getEnvOrDefault("PORT", "9700")
	config.Host = getEnvOrDefault("HOST", "0.0.0.0")
	config.LogLevel = getEnvOrDefault("LOG_LEVEL", "info")

	// Database configuration
	config.DatabaseURL = os.Getenv("DATABASE_URL")
	if config.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	// Identity provider configuration
	config.Region = os.Getenv("AWS_REGION")
	if config.Region == "" {
		return nil, fmt.Errorf("AWS_REGION is required")
	}

	config.UserPoolID = os.Getenv("USER_POOL_ID")
	if config.UserPoolID == "" {
		return nil, fmt.Errorf("USER_POOL_ID is required")
	}

	config.UserPoolClientID = os.Getenv("USER_POOL_CLIENT_ID")
	if config.UserPoolClientID == "" {
		return nil, fmt.Errorf("USER_POOL_CLIENT_ID is required")
	}

	config.IdentityPoolID = os.Getenv("IDENTITY_POOL_ID")
	if config.IdentityPoolID == "" {
		return nil, fmt.Errorf("IDENTITY_POOL_ID is required")
	}

	config.AWSAccessKeyID = os.Getenv("AWS_ACCESS_KEY_ID")
	config.AWSSecretAccessKey = os.Getenv("AWS_SECRET_ACCESS_KEY")

	// Object storage configuration
	config.UserFilesBucket = os.Getenv("USER_FILES_BUCKET")

	// Local cache configuration
	config.CacheFile = getEnvOrDefault("CACHE_FILE", "app-data.json")

	// Rate limiting configuration
	var err error
	rpsStr := getEnvOrDefault("RATE_LIMIT_PER_SECOND", "10")
	config.RateLimitPerSecond, err = strconv.ParseFloat(rpsStr, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid RATE_LIMIT_PER_SECOND: %w", err)
	}

	burstStr := getEnvOrDefault("RATE_LIMIT_BURST", "20")
	burst, err := strconv.ParseInt(burstStr, 10, 32)
	if err != nil {
		return nil, fmt.Errorf("invalid RATE_LIMIT_BURST: %w", err)
	}
	config.RateLimitBurst = int(burst)

	// Validate configuration
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	port, err := strconv.ParseInt(c.Port, 10, 32)
	if err != nil {
		return fmt.Errorf("invalid port: %s", c.Port)
	}
	if port < 1 || port > 65535 {
		return fmt.Errorf("port must be between 1 and 65535: %s", c.Port)
	}

	validLogLevels := []string{"debug", "info", "warn", "error"}
	if !contains(validLogLevels, strings.ToLower(c.LogLevel)) {
		return fmt.Errorf("invalid log level: %s (must be one of: %s)", c.LogLevel, strings.Join(validLogLevels, ", "))
	}

	// The identity pool id embeds its region as a prefix.
	if !strings.HasPrefix(c.IdentityPoolID, c.Region+":") {
		return fmt.Errorf("identity pool id %q does not belong to region %q", c.IdentityPoolID, c.Region)
	}

	if c.RateLimitPerSecond <= 0 {
		return fmt.Errorf("rate limit must be positive, got: %v", c.RateLimitPerSecond)
	}
	if c.RateLimitBurst < 1 {
		return fmt.Errorf("rate limit burst must be at least 1, got: %d", c.RateLimitBurst)
	}

	return nil
}

// Helper functions

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func contains(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}
