package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	NewRelic NewRelicConfig
	Log      LogConfig
	Payment  PaymentConfig
	Provider ProviderConfig
	Webhook  WebhookConfig
	Kafka    KafkaConfig
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

// DatabaseConfig holds PostgreSQL configuration.
type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string

	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// RedisConfig holds Redis configuration.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// NewRelicConfig holds New Relic configuration.
type NewRelicConfig struct {
	AppName    string
	LicenseKey string
	Enabled    bool
}

// LogConfig holds logger configuration.
type LogConfig struct {
	Level       string
	Development bool
}

// PaymentConfig holds orchestrator settings.
type PaymentConfig struct {
	// LockTTL must exceed the expected provider submission latency.
	LockTTL  time.Duration
	CacheTTL time.Duration
	// GuardTerminal rejects webhook transitions out of SUCCESS/FAILED.
	// Off by default: webhooks overwrite unconditionally.
	GuardTerminal bool
}

// ProviderConfig holds payment provider settings.
type ProviderConfig struct {
	Variant       string // "simulated" or "http"
	BaseURL       string
	APIKey        string
	Timeout       time.Duration
	SubmitDelay   time.Duration
	ConfirmDelay  time.Duration
	QueryDelay    time.Duration
	FailureMarker string
	WebhookURL    string
}

// WebhookConfig holds the shared secret for provider confirmations.
type WebhookConfig struct {
	Header string
	Secret string
}

// KafkaConfig holds status event publishing settings. Empty Brokers disables publishing.
type KafkaConfig struct {
	Brokers     []string
	StatusTopic string
}

// Load loads configuration from environment variables.
// A .env file in the working directory is read first if present.
func Load() *Config {
	_ = godotenv.Load()

	port := getEnv("SERVER_PORT", "8080")

	return &Config{
		Server: ServerConfig{
			Port:            port,
			ReadTimeout:     getDurationEnv("SERVER_READ_TIMEOUT", 10*time.Second),
			WriteTimeout:    getDurationEnv("SERVER_WRITE_TIMEOUT", 10*time.Second),
			ShutdownTimeout: getDurationEnv("SERVER_SHUTDOWN_TIMEOUT", 5*time.Second),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			DBName:   getEnv("DB_NAME", "payments"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),

			MaxOpenConns:    getIntEnv("DB_MAX_OPEN_CONNS", 50),
			MaxIdleConns:    getIntEnv("DB_MAX_IDLE_CONNS", 25),
			ConnMaxLifetime: getDurationEnv("DB_CONN_MAX_LIFETIME", 30*time.Minute),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getIntEnv("REDIS_DB", 0),
		},
		NewRelic: NewRelicConfig{
			AppName:    getEnv("NEW_RELIC_APP_NAME", "payments-service"),
			LicenseKey: getEnv("NEW_RELIC_LICENSE_KEY", ""),
			Enabled:    getBoolEnv("NEW_RELIC_ENABLED", false),
		},
		Log: LogConfig{
			Level:       getEnv("LOG_LEVEL", "info"),
			Development: getBoolEnv("LOG_DEVELOPMENT", false),
		},
		Payment: PaymentConfig{
			LockTTL:       getDurationEnv("PAYMENT_LOCK_TTL", 30*time.Second),
			CacheTTL:      getDurationEnv("PAYMENT_CACHE_TTL", 30*time.Second),
			GuardTerminal: getBoolEnv("PAYMENT_GUARD_TERMINAL", false),
		},
		Provider: ProviderConfig{
			Variant:       getEnv("PAYMENT_PROVIDER", "simulated"),
			BaseURL:       getEnv("PROVIDER_BASE_URL", ""),
			APIKey:        getEnv("PROVIDER_API_KEY", ""),
			Timeout:       getDurationEnv("PROVIDER_TIMEOUT", 10*time.Second),
			SubmitDelay:   getDurationEnv("PROVIDER_SUBMIT_DELAY", 300*time.Millisecond),
			ConfirmDelay:  getDurationEnv("PROVIDER_CONFIRM_DELAY", 60*time.Second),
			QueryDelay:    getDurationEnv("PROVIDER_QUERY_DELAY", 200*time.Millisecond),
			FailureMarker: getEnv("PROVIDER_FAILURE_MARKER", "fail"),
			WebhookURL:    getEnv("PROVIDER_WEBHOOK_URL", "http://localhost:"+port+"/v1/payments/provider/webhook"),
		},
		Webhook: WebhookConfig{
			Header: getEnv("AUTHENTICATION_HEADER", "x-authentication"),
			Secret: getEnv("AUTHENTICATION_KEY", ""),
		},
		Kafka: KafkaConfig{
			Brokers:     getListEnv("KAFKA_BROKERS"),
			StatusTopic: getEnv("KAFKA_STATUS_TOPIC", "payments.status"),
		},
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// getListEnv splits a comma-separated variable, dropping empty entries.
func getListEnv(key string) []string {
	var out []string
	for _, part := range strings.Split(os.Getenv(key), ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
