package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration
type Config struct {
	// Server
	Port        string
	Environment string
	LogLevel    string

	// Database
	DatabaseURL string

	// JWT
	JWTSecret string

	// Background Workers
	WorkerCount      int
	ReminderInterval time.Duration

	// CORS
	AllowedOrigins []string

	// Email (Resend)
	EnableEmailNotifications bool
	ResendAPIKey             string
	FromEmail                string
	SchoolName               string

	// Sentry
	SentryDSN string

	// Reconciliation
	AcademicYearStartMonth time.Month
	PeriodNames            []string
	AmortizationPolicy     string
	ReconciliationCacheTTL time.Duration
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		Port:                     getEnv("PORT", "8080"),
		Environment:              getEnv("ENVIRONMENT", "development"),
		LogLevel:                 getEnv("LOG_LEVEL", "info"),
		DatabaseURL:              getEnv("DATABASE_URL", ""),
		JWTSecret:                getEnv("JWT_SECRET", ""),
		WorkerCount:              getEnvAsInt("WORKER_COUNT", 5),
		ReminderInterval:         time.Duration(getEnvAsInt("REMINDER_INTERVAL_HOURS", 24)) * time.Hour,
		AllowedOrigins:           getEnvAsSlice("ALLOWED_ORIGINS", []string{"*"}),
		EnableEmailNotifications: getEnvAsBool("ENABLE_EMAIL_NOTIFICATIONS", true),
		ResendAPIKey:             getEnv("RESEND_API_KEY", ""),
		FromEmail:                getEnv("FROM_EMAIL", "accounts@fintera.school"),
		SchoolName:               getEnv("SCHOOL_NAME", "Fintera School"),
		SentryDSN:                getEnv("SENTRY_DSN", ""),
		AcademicYearStartMonth:   time.Month(getEnvAsInt("ACADEMIC_YEAR_START_MONTH", 4)),
		PeriodNames:              getEnvAsSlice("PERIOD_NAMES", nil),
		AmortizationPolicy:       getEnv("AMORTIZATION_POLICY", "equal"),
		ReconciliationCacheTTL:   getEnvAsDuration("RECONCILIATION_CACHE_TTL", 10*time.Minute),
	}

	// Validate required configuration
	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	if cfg.JWTSecret == "" && cfg.Environment == "production" {
		return nil, fmt.Errorf("JWT_SECRET is required in production")
	}

	// Set default JWT secret for development
	if cfg.JWTSecret == "" {
		cfg.JWTSecret = "dev-secret-change-in-production"
	}

	if cfg.AcademicYearStartMonth < time.January || cfg.AcademicYearStartMonth > time.December {
		return nil, fmt.Errorf("ACADEMIC_YEAR_START_MONTH must be between 1 and 12, got %d", cfg.AcademicYearStartMonth)
	}

	if cfg.PeriodNames != nil && len(cfg.PeriodNames) != 12 {
		return nil, fmt.Errorf("PERIOD_NAMES must list 12 names, got %d", len(cfg.PeriodNames))
	}

	if cfg.ReminderInterval <= 0 {
		return nil, fmt.Errorf("REMINDER_INTERVAL_HOURS must be positive")
	}

	return cfg, nil
}

// getEnv reads an environment variable or returns a default value when unset or empty
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists && value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt reads an environment variable as integer
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

// getEnvAsBool reads an environment variable as boolean
func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

// getEnvAsDuration reads an environment variable as a Go duration ("10m", "1h")
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	value, err := time.ParseDuration(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

// getEnvAsSlice reads an environment variable as comma-separated slice
func getEnvAsSlice(key string, defaultValue []string) []string {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	parts := strings.Split(valueStr, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}
