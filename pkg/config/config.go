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
	App          AppConfig
	Server       ServerConfig
	Redis        RedisConfig
	Typesense    TypesenseConfig
	Sources      SourcesConfig
	Regeneration RegenerationConfig
	OTEL         OTELConfig
}

// AppConfig holds process-wide settings
type AppConfig struct {
	Name string
	Env  string
	// LogLevel is a zerolog level name; empty picks debug in development
	// and info elsewhere.
	LogLevel string
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Host           string
	Port           int
	AllowedOrigins []string
	// ResponseCacheTTL bounds how long a cached API response lives in Redis;
	// entries are also keyed by dataset version.
	ResponseCacheTTL time.Duration
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Enabled  bool
	Host     string
	Port     int
	Password string
	DB       int
}

// TypesenseConfig holds Typesense configuration
type TypesenseConfig struct {
	Enabled bool
	URL     string
	APIKey  string
}

// SourcesConfig describes where the two CSV exports live and how they are delimited
type SourcesConfig struct {
	DoctorsURL      string
	InstitutionsURL string
	Delimiter       rune
	Timeout         time.Duration
}

// RegenerationConfig controls the periodic rebuild of the entity set
type RegenerationConfig struct {
	Interval    time.Duration
	SnapshotTTL time.Duration
}

// OTELConfig holds OpenTelemetry configuration
type OTELConfig struct {
	ServiceName    string
	ServiceVersion string
	Endpoint       string
	Enabled        bool
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		App: AppConfig{
			Name:     getEnv("APP_NAME", "doctor-directory"),
			Env:      getEnv("APP_ENV", "development"),
			LogLevel: getEnv("LOG_LEVEL", ""),
		},
		Server: ServerConfig{
			Host:             getEnv("SERVER_HOST", "0.0.0.0"),
			Port:             getEnvAsInt("SERVER_PORT", 8080),
			AllowedOrigins:   getEnvAsSlice("ALLOWED_ORIGINS", []string{"*"}),
			ResponseCacheTTL: getEnvAsDuration("RESPONSE_CACHE_TTL", 10*time.Minute),
		},
		Redis: RedisConfig{
			Enabled:  getEnvAsBool("REDIS_ENABLED", true),
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnvAsInt("REDIS_PORT", 6379),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
		},
		Typesense: TypesenseConfig{
			Enabled: getEnvAsBool("TYPESENSE_ENABLED", false),
			URL:     getEnv("TYPESENSE_URL", "http://localhost:8108"),
			APIKey:  getEnv("TYPESENSE_API_KEY", "xyz"),
		},
		Sources: SourcesConfig{
			DoctorsURL:      getEnv("DOCTORS_CSV_URL", ""),
			InstitutionsURL: getEnv("INSTITUTIONS_CSV_URL", ""),
			Delimiter:       getEnvAsRune("CSV_DELIMITER", ','),
			Timeout:         getEnvAsDuration("SOURCE_TIMEOUT", 15*time.Second),
		},
		Regeneration: RegenerationConfig{
			Interval:    getEnvAsDuration("REGENERATION_INTERVAL", 10*time.Minute),
			SnapshotTTL: getEnvAsDuration("SNAPSHOT_TTL", 24*time.Hour),
		},
		OTEL: OTELConfig{
			ServiceName:    getEnv("OTEL_SERVICE_NAME", "doctor-directory"),
			ServiceVersion: getEnv("OTEL_SERVICE_VERSION", "1.0.0"),
			Endpoint:       getEnv("OTEL_ENDPOINT", ""),
			Enabled:        getEnvAsBool("OTEL_ENABLED", false),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks settings that have no usable default
func (c *Config) Validate() error {
	if c.Sources.DoctorsURL == "" {
		return fmt.Errorf("DOCTORS_CSV_URL is required")
	}
	if c.Sources.InstitutionsURL == "" {
		return fmt.Errorf("INSTITUTIONS_CSV_URL is required")
	}
	if c.Regeneration.Interval <= 0 {
		return fmt.Errorf("REGENERATION_INTERVAL must be greater than zero")
	}
	return nil
}

// RedisAddr returns the Redis address
func (c *RedisConfig) RedisAddr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func getEnvAsSlice(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}

// getEnvAsRune reads a single-character value; "\t" and "tab" select a tab.
func getEnvAsRune(key string, defaultValue rune) rune {
	value := os.Getenv(key)
	switch value {
	case "":
		return defaultValue
	case `\t`, "tab":
		return '\t'
	}
	runes := []rune(value)
	if len(runes) != 1 {
		return defaultValue
	}
	return runes[0]
}
