package config

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/aquaroute/aquaroute-api/internal/pkg/env"
)

// Store drivers understood by DB_DRIVER.
const (
	DriverMongo  = "mongo"
	DriverMemory = "memory"
)

// Config holds all service settings, populated from the environment.
type Config struct {
	AppHost  string
	AppPort  string
	LogLevel string

	DBDriver  string
	MongoURL  string
	DBName    string
	DBTimeout time.Duration

	CORSAllowOrigins string
	BodyLimit        int
	ShutdownTimeout  time.Duration

	// Zero disables the background sweeper; the lazy sweep in list and the
	// TTL index still apply.
	ExpirySweepInterval time.Duration

	Cache CacheConfig
	Image ImageConfig
}

// CacheConfig configures the optional Redis-backed list cache.
type CacheConfig struct {
	Enabled  bool
	Host     string
	Port     int
	Password string
	Database int
	TTL      time.Duration
}

// ImageConfig bounds the transformation applied before upload.
type ImageConfig struct {
	MaxWidth  int
	MaxHeight int
	Quality   int
}

// Addr returns the listen address.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%s", c.AppHost, c.AppPort)
}

// Load reads configuration from the environment, applying defaults where unset.
func Load() (*Config, error) {
	dbTimeout, err := parseDuration("DB_TIMEOUT", "8s")
	if err != nil {
		return nil, err
	}
	shutdownTimeout, err := parseDuration("SHUTDOWN_TIMEOUT", "10s")
	if err != nil {
		return nil, err
	}
	sweepInterval, err := parseDuration("EXPIRY_SWEEP_INTERVAL", "5m")
	if err != nil {
		return nil, err
	}
	cacheTTL, err := parseDuration("CACHE_TTL", "15s")
	if err != nil {
		return nil, err
	}

	bodyLimitMB, err := parseInt("BODY_LIMIT_MB", "10")
	if err != nil {
		return nil, err
	}
	cachePort, err := parseInt("CACHE_PORT", "6379")
	if err != nil {
		return nil, err
	}
	cacheDB, err := parseInt("CACHE_DB", "0")
	if err != nil {
		return nil, err
	}
	maxWidth, err := parseInt("IMAGE_MAX_WIDTH", "800")
	if err != nil {
		return nil, err
	}
	maxHeight, err := parseInt("IMAGE_MAX_HEIGHT", "600")
	if err != nil {
		return nil, err
	}
	quality, err := parseInt("IMAGE_QUALITY", "80")
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		AppHost:  env.GetEnv("APP_HOST", "0.0.0.0"),
		AppPort:  env.GetEnv("APP_PORT", "8001"),
		LogLevel: strings.ToLower(env.GetEnv("LOG_LEVEL", "info")),

		DBDriver:  strings.ToLower(env.GetEnv("DB_DRIVER", DriverMongo)),
		MongoURL:  env.GetEnv("MONGO_URL", "mongodb://localhost:27017"),
		DBName:    env.GetEnv("DB_NAME", "aquaroute"),
		DBTimeout: dbTimeout,

		CORSAllowOrigins: env.GetEnv("CORS_ALLOW_ORIGINS", "*"),
		BodyLimit:        bodyLimitMB * 1024 * 1024,
		ShutdownTimeout:  shutdownTimeout,

		ExpirySweepInterval: sweepInterval,

		Cache: CacheConfig{
			Enabled:  env.GetEnv("CACHE_ENABLED", "false") == "true",
			Host:     env.GetEnv("CACHE_HOST", "localhost"),
			Port:     cachePort,
			Password: env.GetEnv("CACHE_PASSWORD", ""),
			Database: cacheDB,
			TTL:      cacheTTL,
		},
		Image: ImageConfig{
			MaxWidth:  maxWidth,
			MaxHeight: maxHeight,
			Quality:   quality,
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.DBDriver {
	case DriverMongo:
		if c.MongoURL == "" {
			return errors.New("MONGO_URL is required")
		}
		if c.DBName == "" {
			return errors.New("DB_NAME is required")
		}
	case DriverMemory:
	default:
		return fmt.Errorf("invalid DB_DRIVER %q (want %s or %s)", c.DBDriver, DriverMongo, DriverMemory)
	}

	switch c.LogLevel {
	case "trace", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid LOG_LEVEL %q", c.LogLevel)
	}

	if c.DBTimeout <= 0 {
		return errors.New("DB_TIMEOUT must be positive")
	}
	if c.BodyLimit <= 0 {
		return errors.New("BODY_LIMIT_MB must be positive")
	}
	if c.ExpirySweepInterval < 0 {
		return errors.New("EXPIRY_SWEEP_INTERVAL must not be negative")
	}
	if c.Cache.Enabled && c.Cache.TTL <= 0 {
		return errors.New("CACHE_TTL must be positive when the cache is enabled")
	}
	if c.Image.MaxWidth <= 0 || c.Image.MaxHeight <= 0 {
		return errors.New("IMAGE_MAX_WIDTH and IMAGE_MAX_HEIGHT must be positive")
	}
	if c.Image.Quality < 1 || c.Image.Quality > 100 {
		return errors.New("IMAGE_QUALITY must be between 1 and 100")
	}
	return nil
}

func parseDuration(key, def string) (time.Duration, error) {
	raw := env.GetEnv(key, def)
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, raw, err)
	}
	return d, nil
}

func parseInt(key, def string) (int, error) {
	raw := env.GetEnv(key, def)
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, raw, err)
	}
	return n, nil
}
