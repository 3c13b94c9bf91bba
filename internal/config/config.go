package config

import (
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"time"
)

// Extractor backends accepted in EXTRACTOR_BACKEND
const (
	BackendNative = "native"
	BackendOpenCV = "opencv"
)

type Config struct {
	Host               string
	Port               string
	RequestTimeout     time.Duration
	ImageFetchTimeout  time.Duration
	AnalysisTimeout    time.Duration
	MaxRequestBodySize int64

	// Batch classification
	MaxBatchFiles int
	BatchWorkers  int

	ExtractorBackend string

	// Azure Blob Storage, optional. Blob URLs fall back to plain HTTP
	// when either value is empty.
	AzureStorageAccount string
	AzureStorageKey     string

	LogLevel  string
	LogFormat string
}

func (c *Config) ServerAddress() string {
	// Trim any whitespace from host and port
	host := strings.TrimSpace(c.Host)
	port := strings.TrimSpace(c.Port)
	return net.JoinHostPort(host, port)
}

// AzureEnabled reports whether blob credentials are configured
func (c *Config) AzureEnabled() bool {
	return c.AzureStorageAccount != "" && c.AzureStorageKey != ""
}

func LoadFromEnv() (*Config, error) {
	// Set defaults
	cfg := &Config{
		Host:                getEnvOrDefault("HOST", "0.0.0.0"),
		Port:                getEnvOrDefault("PORT", "8080"),
		RequestTimeout:      parseDurationOrDefault("REQUEST_TIMEOUT", 30*time.Second),
		ImageFetchTimeout:   parseDurationOrDefault("IMAGE_FETCH_TIMEOUT", 15*time.Second),
		AnalysisTimeout:     parseDurationOrDefault("ANALYSIS_TIMEOUT", 20*time.Second),
		MaxRequestBodySize:  parseIntOrDefault("MAX_REQUEST_BODY_SIZE", 10*1024*1024), // 10MB
		MaxBatchFiles:       int(parseIntOrDefault("MAX_BATCH_FILES", 16)),
		BatchWorkers:        int(parseIntOrDefault("BATCH_WORKERS", 0)), // 0 = one per CPU
		ExtractorBackend:    strings.ToLower(strings.TrimSpace(getEnvOrDefault("EXTRACTOR_BACKEND", BackendNative))),
		AzureStorageAccount: strings.TrimSpace(os.Getenv("AZURE_STORAGE_ACCOUNT")),
		AzureStorageKey:     strings.TrimSpace(os.Getenv("AZURE_STORAGE_KEY")),
		LogLevel:            strings.ToLower(strings.TrimSpace(getEnvOrDefault("LOG_LEVEL", "info"))),
		LogFormat:           strings.ToLower(strings.TrimSpace(getEnvOrDefault("LOG_FORMAT", "json"))),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks ranges and enumerated values
func (c *Config) Validate() error {
	// Validate port is numeric and in range
	p, err := strconv.Atoi(strings.TrimSpace(c.Port))
	if err != nil || p < 1 || p > 65535 {
		return fmt.Errorf("invalid PORT: %q", c.Port)
	}
	if c.MaxRequestBodySize <= 0 {
		return fmt.Errorf("MAX_REQUEST_BODY_SIZE must be > 0 (got %d)", c.MaxRequestBodySize)
	}
	if c.RequestTimeout <= 0 || c.ImageFetchTimeout <= 0 || c.AnalysisTimeout <= 0 {
		return fmt.Errorf("timeouts must be > 0 (got request=%s, fetch=%s, analysis=%s)",
			c.RequestTimeout, c.ImageFetchTimeout, c.AnalysisTimeout)
	}
	if c.MaxBatchFiles < 1 {
		return fmt.Errorf("MAX_BATCH_FILES must be >= 1 (got %d)", c.MaxBatchFiles)
	}
	if c.BatchWorkers < 0 {
		return fmt.Errorf("BATCH_WORKERS must be >= 0 (got %d)", c.BatchWorkers)
	}
	switch c.ExtractorBackend {
	case BackendNative, BackendOpenCV:
	default:
		return fmt.Errorf("invalid EXTRACTOR_BACKEND: %q (want %q or %q)", c.ExtractorBackend, BackendNative, BackendOpenCV)
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid LOG_LEVEL: %q", c.LogLevel)
	}
	switch c.LogFormat {
	case "json", "text":
	default:
		return fmt.Errorf("invalid LOG_FORMAT: %q", c.LogFormat)
	}
	return nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func parseDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(strings.TrimSpace(value)); err == nil && duration > 0 {
			return duration
		}
	}
	return defaultValue
}

func parseIntOrDefault(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64); err == nil {
			return intValue
		}
	}
	return defaultValue
}
