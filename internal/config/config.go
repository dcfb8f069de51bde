package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all service configuration, populated from the environment
type Config struct {
	Environment string
	HTTPPort    string
	MetricsPort string

	DatabaseURL string

	JWTSecret string

	// EnabledPaymentMethods is the deployment feature flag controlling which
	// registered methods are usable
	EnabledPaymentMethods []string

	// Secrets backend: "env", "aws" or "vault"
	SecretsBackend string
	AWSRegion      string
	AWSEndpoint    string
	VaultAddress   string
	VaultToken     string

	// Gateway settings
	PayPalBaseURL    string
	PayPalClientID   string
	PayPalSecretPath string
	CardMerchantID   string
	CardMACPath      string
	FakePaySync      bool

	// Notification hub
	WebhookEndpoint   string
	WebhookSecretPath string

	// Rate limiting for callback endpoints
	RateLimitPerSecond float64
	RateLimitBurst     int

	// Worker pool
	WorkerPollInterval time.Duration
	WorkerBatchSize    int
	WorkerConcurrency  int
	TaskMaxAttempts    int

	ShutdownTimeout time.Duration
}

// Load reads configuration from the environment. A .env file is loaded first
// when present (local development).
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Environment: getEnv("ENVIRONMENT", "development"),
		HTTPPort:    getEnv("HTTP_PORT", "8080"),
		MetricsPort: getEnv("METRICS_PORT", "9090"),

		DatabaseURL: getEnv("DATABASE_URL", ""),

		JWTSecret: getEnv("JWT_SECRET", ""),

		EnabledPaymentMethods: getEnvAsSlice("ENABLED_PAYMENT_METHODS", []string{"fake"}),

		SecretsBackend: getEnv("SECRETS_BACKEND", "env"),
		AWSRegion:      getEnv("AWS_REGION", "us-east-1"),
		AWSEndpoint:    getEnv("AWS_ENDPOINT", ""),
		VaultAddress:   getEnv("VAULT_ADDR", ""),
		VaultToken:     getEnv("VAULT_TOKEN", ""),

		PayPalBaseURL:    getEnv("PAYPAL_BASE_URL", "https://api-m.sandbox.paypal.com"),
		PayPalClientID:   getEnv("PAYPAL_CLIENT_ID", ""),
		PayPalSecretPath: getEnv("PAYPAL_SECRET_PATH", "gateways/paypal/client_secret"),
		CardMerchantID:   getEnv("CARD_MERCHANT_ID", ""),
		CardMACPath:      getEnv("CARD_MAC_PATH", "gateways/card/mac"),
		FakePaySync:      getEnvAsBool("FAKEPAY_SYNCHRONOUS", false),

		WebhookEndpoint:   getEnv("WEBHOOK_ENDPOINT", ""),
		WebhookSecretPath: getEnv("WEBHOOK_SECRET_PATH", "notifications/signing_key"),

		RateLimitPerSecond: getEnvAsFloat("RATE_LIMIT_PER_SECOND", 10),
		RateLimitBurst:     getEnvAsInt("RATE_LIMIT_BURST", 20),

		WorkerPollInterval: getEnvAsDuration("WORKER_POLL_INTERVAL", 2*time.Second),
		WorkerBatchSize:    getEnvAsInt("WORKER_BATCH_SIZE", 10),
		WorkerConcurrency:  getEnvAsInt("WORKER_CONCURRENCY", 2),
		TaskMaxAttempts:    getEnvAsInt("TASK_MAX_ATTEMPTS", 5),

		ShutdownTimeout: getEnvAsDuration("SHUTDOWN_TIMEOUT", 30*time.Second),
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}

	return cfg, nil
}

// IsProduction returns true when running in production
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return fallback
}

func getEnvAsFloat(key string, fallback float64) float64 {
	if value, ok := os.LookupEnv(key); ok {
		if parsed, err := strconv.ParseFloat(value, 64); err == nil {
			return parsed
		}
	}
	return fallback
}

func getEnvAsBool(key string, fallback bool) bool {
	if value, ok := os.LookupEnv(key); ok {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return fallback
}

func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	if value, ok := os.LookupEnv(key); ok {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return fallback
}

func getEnvAsSlice(key string, fallback []string) []string {
	value, ok := os.LookupEnv(key)
	if !ok || value == "" {
		return fallback
	}
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}
