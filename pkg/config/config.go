// Package config loads service configuration from environment variables.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	// DefaultModel is used when DISPATCHER_MODEL is unset.
	DefaultModel = "claude-haiku-4-5-20251001"

	// DefaultMaxIterations caps the dispatcher conversation loop.
	DefaultMaxIterations = 20

	// DefaultMaxTokens bounds a single model response.
	DefaultMaxTokens = 4096
)

// DispatcherConfig holds settings for the dispatcher agent.
type DispatcherConfig struct {
	// APIKey authenticates against the model inference API.
	// Dispatch fails fast when empty.
	APIKey string

	// BaseURL of the model inference API.
	BaseURL string

	// Model identifier sent on every inference request.
	Model string

	// MaxTokens bounds a single model response.
	MaxTokens int

	// MaxIterations caps the number of model invocations per dispatch.
	MaxIterations int

	// RequestTimeout is the per-call network timeout on model requests.
	RequestTimeout time.Duration

	// AuditDir is where conversation transcripts are written.
	AuditDir string
}

// Config is the top-level service configuration.
type Config struct {
	HTTPPort       string
	AllowedOrigins []string
	Dispatcher     DispatcherConfig
}

// LoadFromEnv builds the configuration from environment variables,
// applying defaults for everything except credentials.
func LoadFromEnv() (*Config, error) {
	maxIter, err := intFromEnv("DISPATCHER_MAX_ITERATIONS", DefaultMaxIterations)
	if err != nil {
		return nil, err
	}
	maxTokens, err := intFromEnv("DISPATCHER_MAX_TOKENS", DefaultMaxTokens)
	if err != nil {
		return nil, err
	}
	timeoutSec, err := intFromEnv("DISPATCHER_REQUEST_TIMEOUT_SECONDS", 120)
	if err != nil {
		return nil, err
	}

	return &Config{
		HTTPPort:       getEnvOrDefault("HTTP_PORT", "8080"),
		AllowedOrigins: splitList(getEnvOrDefault("ALLOWED_ORIGINS", "http://localhost:5173,http://localhost:3000")),
		Dispatcher: DispatcherConfig{
			APIKey:         os.Getenv("ANTHROPIC_API_KEY"),
			BaseURL:        getEnvOrDefault("ANTHROPIC_BASE_URL", "https://api.anthropic.com"),
			Model:          getEnvOrDefault("DISPATCHER_MODEL", DefaultModel),
			MaxTokens:      maxTokens,
			MaxIterations:  maxIter,
			RequestTimeout: time.Duration(timeoutSec) * time.Second,
			AuditDir:       getEnvOrDefault("DISPATCHER_AUDIT_DIR", "logs/dispatcher"),
		},
	}, nil
}

func intFromEnv(key string, defaultVal int) (int, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultVal, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	if v <= 0 {
		return 0, fmt.Errorf("invalid %s: must be positive, got %d", key, v)
	}
	return v, nil
}

func getEnvOrDefault(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
