package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Supported AI providers
const (
	ProviderGateway = "gateway"
	ProviderOpenAI  = "openai"
)

// Supported repository drivers
const (
	DriverMemory   = "memory"
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Supported archive backends
const (
	ArchiveNone = "none"
	ArchiveFile = "file"
	ArchiveR2   = "r2"
)

// Config holds all configuration for the application
type Config struct {
	// Server configuration
	Port            string        `json:"port"`
	Env             string        `json:"env"`
	ShutdownTimeout time.Duration `json:"shutdown_timeout"`
	HTTPTimeout     time.Duration `json:"http_timeout"`

	// AI Configuration
	AIProvider string        `json:"ai_provider"`
	AIApiKey   string        `json:"-"`
	AIBaseURL  string        `json:"ai_base_url"`
	AIModel    string        `json:"ai_model"`
	AITimeout  time.Duration `json:"ai_timeout"`

	// Database
	DBDriver    string `json:"db_driver"`
	DatabaseURL string `json:"-"`

	// Redis configuration
	RedisURL    string        `json:"redis_url"`
	RedisPrefix string        `json:"redis_prefix"`
	CacheTTL    time.Duration `json:"cache_ttl"`

	// Archive
	ArchiveBackend string `json:"archive_backend"`
	ArchivePath    string `json:"archive_path"`

	// CloudFlare R2 Configuration
	R2Endpoint  string `json:"r2_endpoint"`
	R2AccessKey string `json:"-"`
	R2SecretKey string `json:"-"`
	R2Bucket    string `json:"r2_bucket"`
	R2AccountID string `json:"r2_account_id"`

	// Dispatch
	DispatchInterval    time.Duration `json:"dispatch_interval"`
	DispatchConcurrency int           `json:"dispatch_concurrency"`

	// Logging
	LogLevel string `json:"log_level"`
	LogFile  string `json:"log_file"`

	// Security
	AdminAPIKey string `json:"-"`
}

// Load reads the configuration from the environment (and .env when present).
// The returned config has not been validated.
func Load() *Config {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("Warning: Error loading .env file: %v", err)
	}

	return &Config{
		Port:            getEnv("PORT", "8080"),
		Env:             getEnv("APP_ENV", "development"),
		ShutdownTimeout: getEnvAsDuration("SHUTDOWN_TIMEOUT", 10*time.Second),
		HTTPTimeout:     getEnvAsDuration("HTTP_TIMEOUT", 90*time.Second),

		AIProvider: strings.ToLower(getEnv("AI_PROVIDER", ProviderGateway)),
		AIApiKey:   getEnv("AI_API_KEY", ""),
		AIBaseURL:  getEnv("AI_BASE_URL", "https://ai.gateway.lovable.dev/v1"),
		AIModel:    getEnv("AI_MODEL", "google/gemini-2.5-flash"),
		AITimeout:  getEnvAsDuration("AI_TIMEOUT", 60*time.Second),

		DBDriver:    strings.ToLower(getEnv("DB_DRIVER", DriverMemory)),
		DatabaseURL: getEnv("DATABASE_URL", ""),

		RedisURL:    getEnv("REDIS_URL", ""),
		RedisPrefix: getEnv("REDIS_PREFIX", "repurpose:"),
		CacheTTL:    getEnvAsDuration("CACHE_TTL", 0),

		ArchiveBackend: strings.ToLower(getEnv("ARCHIVE_BACKEND", ArchiveNone)),
		ArchivePath:    getEnv("ARCHIVE_PATH", "./data/archive"),

		R2Endpoint:  getEnv("R2_ENDPOINT", ""),
		R2AccessKey: getEnv("R2_ACCESS_KEY", ""),
		R2SecretKey: getEnv("R2_SECRET_ACCESS_KEY", ""),
		R2Bucket:    getEnv("R2_BUCKET", "repurpose"),
		R2AccountID: getEnv("CLOUDFLARE_ACCOUNT_ID", ""),

		DispatchInterval:    getEnvAsDuration("DISPATCH_INTERVAL", 0),
		DispatchConcurrency: getEnvAsInt("DISPATCH_CONCURRENCY", 4),

		LogLevel: getEnv("LOG_LEVEL", "info"),
		LogFile:  getEnv("LOG_FILE", ""),

		AdminAPIKey: getEnv("ADMIN_API_KEY", ""),
	}
}

// ErrMissingAPIKey is returned by Validate when no model credential is configured.
var ErrMissingAPIKey = errors.New("AI_API_KEY is not configured")

// Validate checks the settings the process cannot run without.
func (c *Config) Validate() error {
	if c.AIApiKey == "" {
		return ErrMissingAPIKey
	}

	switch c.AIProvider {
	case ProviderGateway, ProviderOpenAI:
	default:
		return fmt.Errorf("unsupported AI_PROVIDER %q", c.AIProvider)
	}

	if c.AIModel == "" {
		return errors.New("AI_MODEL is required")
	}
	if c.AITimeout <= 0 {
		return errors.New("AI_TIMEOUT must be positive")
	}

	switch c.DBDriver {
	case DriverMemory:
	case DriverPostgres, DriverSQLite:
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required for DB_DRIVER %q", c.DBDriver)
		}
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.DBDriver)
	}

	switch c.ArchiveBackend {
	case ArchiveNone, ArchiveFile:
	case ArchiveR2:
		if c.R2Endpoint == "" && c.R2AccountID == "" {
			return errors.New("R2_ENDPOINT or CLOUDFLARE_ACCOUNT_ID is required for the r2 archive")
		}
	default:
		return fmt.Errorf("unsupported ARCHIVE_BACKEND %q", c.ArchiveBackend)
	}

	if c.DispatchConcurrency < 1 {
		c.DispatchConcurrency = 1
	}
	return nil
}

// IsProduction reports whether the service runs with APP_ENV=production.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// Helper functions for environment variable handling
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvAsInt(name string, defaultVal int) int {
	valueStr := getEnv(name, "")
	if valueStr == "" {
		return defaultVal
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		log.Printf("Invalid %s value: %v, using default: %d", name, err, defaultVal)
		return defaultVal
	}
	return value
}

func getEnvAsDuration(name string, defaultVal time.Duration) time.Duration {
	valueStr := getEnv(name, "")
	if valueStr == "" {
		return defaultVal
	}
	// bare integers are seconds
	if secs, err := strconv.Atoi(valueStr); err == nil {
		return time.Duration(secs) * time.Second
	}
	value, err := time.ParseDuration(valueStr)
	if err != nil {
		log.Printf("Invalid %s value: %v, using default: %v", name, err, defaultVal)
		return defaultVal
	}
	return value
}
