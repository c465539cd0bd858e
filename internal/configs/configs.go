/*
Package configs is responsible for loading and parsing the application's configuration settings.

It reads operating system environment variables for the running environment, port, allowed
WebSocket origins and static asset directory, plus the optional connection settings of the
presence sinks (Redis, RabbitMQ, PostgreSQL) and of avatar object storage (S3).
*/
package configs

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// AppConfig contains all configuration parameters required for the application to run.
// All configuration values are loaded from environment variables.
type AppConfig struct {
	// General Server Settings
	Environment string
	Port        int
	StaticDir   string

	// SendBuffer is the number of outbound frames queued per connection before sends fail.
	SendBuffer int

	// Security Settings
	AllowedOrigins []string

	// Presence Sinks (optional; empty disables the sink)
	RedisURL    string
	AMQPURL     string
	DatabaseDSN string

	// S3 Storage Settings (optional; all four or none)
	S3BucketName      string
	S3Endpoint        string
	S3AccessKeyID     string
	S3SecretAccessKey string
}

// IsDevelopment reports whether the server runs in the development environment.
func (c *AppConfig) IsDevelopment() bool {
	return c.Environment == "development"
}

// StorageEnabled reports whether avatar object storage is configured.
func (c *AppConfig) StorageEnabled() bool {
	return c.S3BucketName != ""
}

// LoadConfig reads and parses the application configuration from environment variables.
// It applies defaults, performs type conversions and validation, and returns the first
// error encountered.
func LoadConfig() (*AppConfig, error) {
	cfg := &AppConfig{}

	// --- General Server Settings ---
	cfg.Environment = os.Getenv("ENVIRONMENT")
	if cfg.Environment == "" {
		cfg.Environment = "development"
	}

	port, err := intFromEnv("PORT", 3000)
	if err != nil {
		return nil, err
	}
	if port < 1024 || port > 65535 {
		return nil, fmt.Errorf("port number %d is outside the recommended range (%d-%d) to avoid privileged ports", port, 1024, 65535)
	}
	cfg.Port = port

	cfg.StaticDir = os.Getenv("STATIC_DIR")
	if cfg.StaticDir == "" {
		cfg.StaticDir = "public"
	}

	sendBuffer, err := intFromEnv("SEND_BUFFER", 256)
	if err != nil {
		return nil, err
	}
	if sendBuffer < 1 {
		return nil, fmt.Errorf("SEND_BUFFER must be positive, got %d", sendBuffer)
	}
	cfg.SendBuffer = sendBuffer

	// --- Security Settings ---
	cfg.AllowedOrigins = []string{}
	for _, origin := range strings.Split(os.Getenv("ALLOWED_ORIGINS"), ",") {
		if trimmed := strings.TrimSpace(origin); trimmed != "" {
			cfg.AllowedOrigins = append(cfg.AllowedOrigins, trimmed)
		}
	}

	if !cfg.IsDevelopment() && len(cfg.AllowedOrigins) == 0 {
		return nil, fmt.Errorf("ALLOWED_ORIGINS environment variable is required in %s environment", cfg.Environment)
	}

	// --- Presence Sinks ---
	cfg.RedisURL = os.Getenv("REDIS_URL")
	cfg.AMQPURL = os.Getenv("AMQP_URL")
	cfg.DatabaseDSN = os.Getenv("DATABASE_URL")

	// --- S3 Storage Settings ---
	cfg.S3BucketName = os.Getenv("S3_BUCKET_NAME")
	cfg.S3Endpoint = os.Getenv("S3_ENDPOINT")
	cfg.S3AccessKeyID = os.Getenv("S3_ACCESS_KEY_ID")
	cfg.S3SecretAccessKey = os.Getenv("S3_SECRET_ACCESS_KEY")

	if err := validateS3(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// intFromEnv parses the integer environment variable key, returning def when it is unset.
func intFromEnv(key string, def int) (int, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return def, nil
	}

	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s environment variable: %w", key, err)
	}

	return value, nil
}

// validateS3 requires the S3 settings to be either all present or all absent.
func validateS3(cfg *AppConfig) error {
	settings := []struct {
		name  string
		value string
	}{
		{"S3_BUCKET_NAME", cfg.S3BucketName},
		{"S3_ENDPOINT", cfg.S3Endpoint},
		{"S3_ACCESS_KEY_ID", cfg.S3AccessKeyID},
		{"S3_SECRET_ACCESS_KEY", cfg.S3SecretAccessKey},
	}

	set := 0
	for _, s := range settings {
		if s.value != "" {
			set++
		}
	}

	if set == 0 || set == len(settings) {
		return nil
	}

	for _, s := range settings {
		if s.value == "" {
			return fmt.Errorf("%s environment variable is required when S3 storage is configured", s.name)
		}
	}

	return nil
}
