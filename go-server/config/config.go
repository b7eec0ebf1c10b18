package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Config holds every runtime setting of the service.
type Config struct {
	HTTPAddr string

	DatabaseDriver   string
	PostgresURL      string
	PostgresHost     string
	PostgresPort     int
	PostgresDB       string
	PostgresUser     string
	PostgresPassword string
	PostgresSSLMode  string
	PostgresMaxConns int32
	SQLitePath       string

	RedisAddr     string
	RedisPassword string
	RedisDB       int
	RedisPoolSize int
	TitleCacheTTL time.Duration

	TitleFetchTimeout   time.Duration
	TitleMaxBodyBytes   int64
	TitleDebugTransport bool

	JWTSecret string
	JWTIssuer string

	RateLimitRequests int
	RateLimitWindow   time.Duration

	CORSAllowedOrigins []string

	ServiceName  string
	Environment  string
	OTLPEndpoint string
	LokiURL      string
	LokiDebug    bool
	LogLevel     string
}

// LoadConfig loads .env (if present) and the process environment into a Config.
func LoadConfig() (*Config, error) {
	// A missing .env file is normal outside local development.
	_ = godotenv.Load()

	config := &Config{
		HTTPAddr:         getEnvWithDefault("HTTP_ADDR", ":8080"),
		DatabaseDriver:   strings.ToLower(getEnvWithDefault("DATABASE_DRIVER", DriverPostgres)),
		PostgresURL:      os.Getenv("POSTGRES_URL"),
		PostgresHost:     os.Getenv("POSTGRES_HOST"),
		PostgresDB:       os.Getenv("POSTGRES_DB"),
		PostgresUser:     os.Getenv("POSTGRES_USER"),
		PostgresPassword: os.Getenv("POSTGRES_PASSWORD"),
		PostgresSSLMode:  getEnvWithDefault("POSTGRES_SSLMODE", "prefer"),
		SQLitePath:       getEnvWithDefault("SQLITE_PATH", "linkvault.db"),
		RedisAddr:        os.Getenv("REDIS_ADDR"),
		RedisPassword:    os.Getenv("REDIS_PASSWORD"),
		JWTSecret:        os.Getenv("JWT_SECRET"),
		JWTIssuer:        os.Getenv("JWT_ISSUER"),
		ServiceName:      getEnvWithDefault("SERVICE_NAME", "linkvault"),
		Environment:      getEnvWithDefault("ENV", "development"),
		OTLPEndpoint:     os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"),
		LokiURL:          os.Getenv("LOKI_URL"),
		LogLevel:         strings.ToLower(getEnvWithDefault("LOG_LEVEL", "info")),
	}

	var err error
	if config.PostgresPort, err = getEnvInt("POSTGRES_PORT", 5432); err != nil {
		return nil, err
	}
	if config.RedisDB, err = getEnvInt("REDIS_DB", 0); err != nil {
		return nil, err
	}
	if config.RedisPoolSize, err = getEnvInt("REDIS_POOL_SIZE", 10); err != nil {
		return nil, err
	}
	maxConns, err := getEnvInt("POSTGRES_MAX_CONNS", 10)
	if err != nil {
		return nil, err
	}
	config.PostgresMaxConns = int32(maxConns)
	if config.RateLimitRequests, err = getEnvInt("RATE_LIMIT_REQUESTS", 30); err != nil {
		return nil, err
	}
	maxBody, err := getEnvInt("TITLE_MAX_BODY_BYTES", 5*1024*1024)
	if err != nil {
		return nil, err
	}
	config.TitleMaxBodyBytes = int64(maxBody)

	if config.TitleCacheTTL, err = getEnvDuration("TITLE_CACHE_TTL", 24*time.Hour); err != nil {
		return nil, err
	}
	if config.TitleFetchTimeout, err = getEnvDuration("TITLE_FETCH_TIMEOUT", 10*time.Second); err != nil {
		return nil, err
	}
	if config.RateLimitWindow, err = getEnvDuration("RATE_LIMIT_WINDOW", time.Minute); err != nil {
		return nil, err
	}
	if config.TitleDebugTransport, err = getEnvBool("TITLE_DEBUG_TRANSPORT", false); err != nil {
		return nil, err
	}
	if config.LokiDebug, err = getEnvBool("LOKI_DEBUG", false); err != nil {
		return nil, err
	}

	config.CORSAllowedOrigins = splitList(getEnvWithDefault("CORS_ALLOWED_ORIGINS", "*"))

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// Validate checks required settings and derives the postgres URL when needed.
func (c *Config) Validate() error {
	switch c.DatabaseDriver {
	case DriverPostgres:
		if c.PostgresURL == "" {
			// If PostgresURL is not set, validate individual parameters
			if c.PostgresHost == "" || c.PostgresUser == "" || c.PostgresDB == "" {
				return fmt.Errorf("either POSTGRES_URL or POSTGRES_HOST, POSTGRES_USER, and POSTGRES_DB must be set")
			}
			c.PostgresURL = buildPostgresURL(c)
		}
	case DriverSQLite:
		if c.SQLitePath == "" {
			return fmt.Errorf("SQLITE_PATH must be set when DATABASE_DRIVER=sqlite")
		}
	default:
		return fmt.Errorf("unsupported DATABASE_DRIVER %q (want %q or %q)", c.DatabaseDriver, DriverPostgres, DriverSQLite)
	}

	if c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET not set")
	}
	if c.TitleFetchTimeout <= 0 {
		return fmt.Errorf("TITLE_FETCH_TIMEOUT must be positive")
	}
	if c.RateLimitRequests <= 0 || c.RateLimitWindow <= 0 {
		return fmt.Errorf("RATE_LIMIT_REQUESTS and RATE_LIMIT_WINDOW must be positive")
	}
	return nil
}

// CacheEnabled reports whether a redis address was configured.
func (c *Config) CacheEnabled() bool {
	return c.RedisAddr != ""
}

// getEnvWithDefault returns environment variable value or default if not set
func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) (int, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return v, nil
}

func getEnvDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue, nil
	}
	v, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return v, nil
}

func getEnvBool(key string, defaultValue bool) (bool, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("invalid %s: %w", key, err)
	}
	return v, nil
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// buildPostgresURL constructs PostgreSQL connection URL from individual parameters
func buildPostgresURL(config *Config) string {
	password := ""
	if config.PostgresPassword != "" {
		password = ":" + config.PostgresPassword
	}

	return fmt.Sprintf("postgres://%s%s@%s:%d/%s?sslmode=%s",
		config.PostgresUser,
		password,
		config.PostgresHost,
		config.PostgresPort,
		config.PostgresDB,
		config.PostgresSSLMode,
	)
}

// LoadJWTConfig reads only the token settings, for commands that never touch storage.
func LoadJWTConfig() (secret, issuer string, err error) {
	_ = godotenv.Load()

	secret = os.Getenv("JWT_SECRET")
	if secret == "" {
		return "", "", fmt.Errorf("JWT_SECRET not set")
	}
	return secret, os.Getenv("JWT_ISSUER"), nil
}
