// Package config loads the service configuration from config.yaml, the
// environment and an optional .env file, and validates it.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const defaultJWTSecret = "cambie-este-secreto"

// Config holds all application configuration.
type Config struct {
	Environment string           `mapstructure:"environment"`
	Server      ServerConfig     `mapstructure:"server"`
	Database    DatabaseConfig   `mapstructure:"database"`
	Auth        AuthConfig       `mapstructure:"auth"`
	Cors        CorsConfig       `mapstructure:"cors"`
	RateLimiter RateLimitConfig  `mapstructure:"rate_limiter"`
	Redis       RedisConfig      `mapstructure:"redis"`
	Uploads     UploadsConfig    `mapstructure:"uploads"`
	Pagination  PaginationConfig `mapstructure:"pagination"`
	Logging     LoggingConfig    `mapstructure:"logging"`
}

type ServerConfig struct {
	Port            string        `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	IdleTimeout     time.Duration `mapstructure:"idle_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

type DatabaseConfig struct {
	URL            string `mapstructure:"url"` // postgres DSN; built from DB_* variables when empty
	MigrationsPath string `mapstructure:"migrations_path"`
	AutoMigrate    bool   `mapstructure:"auto_migrate"`
	MaxOpenConns   int    `mapstructure:"max_open_conns"`
	MaxIdleConns   int    `mapstructure:"max_idle_conns"`
}

type AuthConfig struct {
	JWTSecret            string        `mapstructure:"jwt_secret"`
	AccessTokenDuration  time.Duration `mapstructure:"access_token_duration"`
	RefreshTokenDuration time.Duration `mapstructure:"refresh_token_duration"`
	BcryptCost           int           `mapstructure:"bcrypt_cost"`
	// BootstrapPassword creates the "admin" user on an empty database.
	BootstrapPassword string `mapstructure:"bootstrap_password"`
}

type CorsConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

type RateLimitConfig struct {
	Enabled bool    `mapstructure:"enabled"`
	RPS     float64 `mapstructure:"rps"`
	Burst   int     `mapstructure:"burst"`
}

type RedisConfig struct {
	URL        string        `mapstructure:"url"` // empty disables the catalog cache
	CatalogTTL time.Duration `mapstructure:"catalog_ttl"`
}

type UploadsConfig struct {
	Dir     string `mapstructure:"dir"`
	MaxSize int64  `mapstructure:"max_size"`
}

type PaginationConfig struct {
	DefaultSize int `mapstructure:"default_size"`
	MaxSize     int `mapstructure:"max_size"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// Load reads .env (if present), config.yaml (if present) and APP_* environment variables.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("error loading .env file: %w", err)
	}
	return load(viper.New())
}

func load(v *viper.Viper) (*Config, error) {
	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	v.SetEnvPrefix("APP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	_ = v.BindEnv("auth.jwt_secret", "JWT_SECRET")
	_ = v.BindEnv("database.url", "DATABASE_URL")
	_ = v.BindEnv("redis.url", "REDIS_URL")
	_ = v.BindEnv("server.port", "PORT")

	var cfg Config
	err := v.Unmarshal(&cfg, func(c *mapstructure.DecoderConfig) {
		c.DecodeHook = mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		)
	})
	if err != nil {
		return nil, fmt.Errorf("error decoding config: %w", err)
	}

	if cfg.Database.URL == "" {
		cfg.Database.URL = dsnFromEnv()
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("environment", "development")
	v.SetDefault("server.port", "3000")
	v.SetDefault("server.read_timeout", "15s")
	v.SetDefault("server.write_timeout", "30s")
	v.SetDefault("server.idle_timeout", "120s")
	v.SetDefault("server.shutdown_timeout", "10s")
	v.SetDefault("database.url", "")
	v.SetDefault("database.migrations_path", "migrations")
	v.SetDefault("database.auto_migrate", true)
	v.SetDefault("database.max_open_conns", 25)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("auth.jwt_secret", defaultJWTSecret)
	v.SetDefault("auth.access_token_duration", "15m")
	v.SetDefault("auth.refresh_token_duration", "168h")
	v.SetDefault("auth.bcrypt_cost", 10)
	v.SetDefault("auth.bootstrap_password", "")
	v.SetDefault("cors.allowed_origins", []string{"http://localhost:4200"})
	v.SetDefault("rate_limiter.enabled", true)
	v.SetDefault("rate_limiter.rps", 1)
	v.SetDefault("rate_limiter.burst", 5)
	v.SetDefault("redis.url", "")
	v.SetDefault("redis.catalog_ttl", "10m")
	v.SetDefault("uploads.dir", "uploads")
	v.SetDefault("uploads.max_size", 10<<20)
	v.SetDefault("pagination.default_size", 6)
	v.SetDefault("pagination.max_size", 100)
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
}

// dsnFromEnv builds a lib/pq DSN from the DB_* variables used by earlier deployments.
func dsnFromEnv() string {
	host, port := os.Getenv("DB_HOST"), os.Getenv("DB_PORT")
	user, name := os.Getenv("DB_USER"), os.Getenv("DB_NAME")
	if host == "" || user == "" || name == "" {
		return ""
	}
	if port == "" {
		port = "5432"
	}
	sslMode := os.Getenv("DB_SSLMODE")
	if sslMode == "" {
		sslMode = "disable"
	}
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		host, port, user, os.Getenv("DB_PASSWORD"), name, sslMode)
}

// Validate checks the configuration for values the service cannot run with.
func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return errors.New("server.port is required")
	}
	if c.Database.URL == "" {
		return errors.New("database.url (or DB_HOST, DB_USER, DB_NAME) is required")
	}
	if c.Auth.JWTSecret == "" {
		return errors.New("auth.jwt_secret is required")
	}
	if c.IsProduction() {
		if c.Auth.JWTSecret == defaultJWTSecret || len(c.Auth.JWTSecret) < 32 {
			return errors.New("auth.jwt_secret must be set and ≥32 chars in production")
		}
	}
	if c.Auth.AccessTokenDuration <= 0 || c.Auth.RefreshTokenDuration <= 0 {
		return errors.New("auth token durations must be positive")
	}
	if c.Auth.RefreshTokenDuration <= c.Auth.AccessTokenDuration {
		return errors.New("auth.refresh_token_duration must be longer than auth.access_token_duration")
	}
	if p := c.Auth.BootstrapPassword; p != "" && len(p) < 8 {
		return errors.New("auth.bootstrap_password must be at least 8 characters")
	}
	if c.RateLimiter.Enabled && (c.RateLimiter.RPS <= 0 || c.RateLimiter.Burst <= 0) {
		return errors.New("rate_limiter.rps and rate_limiter.burst must be positive when enabled")
	}
	if c.Uploads.MaxSize <= 0 {
		return errors.New("uploads.max_size must be positive")
	}
	if c.Pagination.DefaultSize < 1 || c.Pagination.MaxSize < c.Pagination.DefaultSize {
		return errors.New("pagination sizes must satisfy 1 ≤ default_size ≤ max_size")
	}
	return nil
}
