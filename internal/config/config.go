package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	BackendPostgres = "postgres"
	BackendRedis    = "redis"
	BackendMemory   = "memory"
)

var (
	ErrMissingRequiredEnv = errors.New("missing required environment variable")
	ErrUnknownBackend     = errors.New("unknown backend")
	ErrInvalidEnv         = errors.New("invalid")
)

// Config holds all service configuration loaded from environment variables.
type Config struct {
	Port        string
	PostgresDSN string

	StoreBackend         string
	SessionBackend       string
	SessionTTL           time.Duration
	SessionPruneInterval time.Duration
	SessionSecureCookie  bool

	RedisAddr     string
	RedisPassword string

	// Empty MongoURI disables the activity journal.
	MongoURI string
	MongoDB  string

	// Empty MinioEndpoint disables exports.
	MinioEndpoint  string
	MinioAccessKey string
	MinioSecretKey string
	MinioBucket    string
	MinioUseSSL    bool

	AdminPassword string
	CORSOrigins   []string

	LogLevel string
	LogDev   bool
	LogFile  string
}

func Load() (*Config, error) {
	var env envParser
	cfg := &Config{
		Port:                 getenv("PORT", "5000"),
		PostgresDSN:          getenv("POSTGRES_DSN", ""),
		StoreBackend:         strings.ToLower(getenv("STORE_BACKEND", BackendPostgres)),
		SessionTTL:           env.duration("SESSION_TTL", 24*time.Hour),
		SessionPruneInterval: env.duration("SESSION_PRUNE_INTERVAL", 15*time.Minute),
		SessionSecureCookie:  env.boolean("SESSION_SECURE_COOKIE", false),
		RedisAddr:            getenv("REDIS_ADDR", "localhost:6379"),
		RedisPassword:        getenv("REDIS_PASSWORD", ""),
		MongoURI:             getenv("MONGO_URI", ""),
		MongoDB:              getenv("MONGO_DB", "argumetrics"),
		MinioEndpoint:        getenv("MINIO_ENDPOINT", ""),
		MinioAccessKey:       getenv("MINIO_ACCESS_KEY", ""),
		MinioSecretKey:       getenv("MINIO_SECRET_KEY", ""),
		MinioBucket:          getenv("MINIO_BUCKET", "argumetrics-exports"),
		MinioUseSSL:          env.boolean("MINIO_USE_SSL", false),
		AdminPassword:        getenv("ADMIN_PASSWORD", "admin123"),
		CORSOrigins:          getListEnv("CORS_ORIGINS", []string{"http://localhost:5173", "http://localhost:3000"}),
		LogLevel:             getenv("LOG_LEVEL", ""),
		LogDev:               env.boolean("LOG_DEV", false),
		LogFile:              getenv("LOG_FILE", ""),
	}

	defaultSessions := BackendPostgres
	if cfg.StoreBackend == BackendMemory {
		defaultSessions = BackendMemory
	}
	cfg.SessionBackend = strings.ToLower(getenv("SESSION_BACKEND", defaultSessions))

	if env.err != nil {
		return nil, env.err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.StoreBackend {
	case BackendPostgres, BackendMemory:
	default:
		return fmt.Errorf("%w: STORE_BACKEND=%q", ErrUnknownBackend, c.StoreBackend)
	}
	switch c.SessionBackend {
	case BackendPostgres, BackendRedis, BackendMemory:
	default:
		return fmt.Errorf("%w: SESSION_BACKEND=%q", ErrUnknownBackend, c.SessionBackend)
	}
	if c.PostgresDSN == "" && (c.StoreBackend == BackendPostgres || c.SessionBackend == BackendPostgres) {
		return fmt.Errorf("%w: POSTGRES_DSN", ErrMissingRequiredEnv)
	}
	if c.SessionTTL <= 0 {
		return fmt.Errorf("SESSION_TTL must be positive, got %s", c.SessionTTL)
	}
	if c.SessionPruneInterval <= 0 {
		return fmt.Errorf("SESSION_PRUNE_INTERVAL must be positive, got %s", c.SessionPruneInterval)
	}
	return nil
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// envParser reads typed variables and keeps the first parse failure.
type envParser struct {
	err error
}

func (p *envParser) duration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		p.fail(key, v)
		return fallback
	}
	return d
}

func (p *envParser) boolean(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		p.fail(key, v)
		return fallback
	}
	return b
}

func (p *envParser) fail(key, value string) {
	if p.err == nil {
		p.err = fmt.Errorf("%w %s: %q", ErrInvalidEnv, key, value)
	}
}

func getListEnv(key string, fallback []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
