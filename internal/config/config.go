package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Configuration keys
const (
	AppPort            = "APP_PORT"
	CORSAllowedOrigins = "CORS_ALLOWED_ORIGINS"
	BodyLimit          = "BODY_LIMIT"

	DBDriver    = "DB_DRIVER"
	DatabaseDSN = "DATABASE_DSN"

	JWTSecret = "JWT_SECRET"
	TokenTTL  = "TOKEN_TTL"

	RabbitMQURL = "RABBITMQ_URL"

	LockDriver    = "LOCK_DRIVER"
	LockTTL       = "LOCK_TTL"
	RedisAddr     = "REDIS_ADDR"
	RedisPassword = "REDIS_PASSWORD"
	RedisDB       = "REDIS_DB"

	LogLevel  = "LOG_LEVEL"
	LogFormat = "LOG_FORMAT"
)

// Store drivers
const (
	DriverMemory   = "memory"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Lock drivers
const (
	LockLocal = "local"
	LockRedis = "redis"
)

// Config holds all application configuration
type Config struct {
	App      AppConfig
	Database DatabaseConfig
	Auth     AuthConfig
	RabbitMQ RabbitMQConfig
	Lock     LockConfig
	Redis    RedisConfig
	Logging  LoggingConfig
}

// AppConfig holds HTTP server configuration
type AppConfig struct {
	Port string
	// CORSAllowedOrigins is a comma-separated origin list, "*" for any.
	CORSAllowedOrigins string
	// BodyLimit is the maximum request body size in bytes.
	BodyLimit int
}

// DatabaseConfig selects the auction and user store
type DatabaseConfig struct {
	Driver string
	DSN    string
}

// AuthConfig holds token signing configuration
type AuthConfig struct {
	JWTSecret string
	TokenTTL  time.Duration
}

// RabbitMQConfig holds the broker URL. An empty URL disables event publishing.
type RabbitMQConfig struct {
	URL string
}

// LockConfig selects how bids on one auction are serialized
type LockConfig struct {
	Driver string
	TTL    time.Duration
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string
	Format string
}

// Load reads configuration from the environment and an optional .env
// file found in one of paths (default: the working directory).
func Load(paths ...string) (*Config, error) {
	v := viper.New()
	v.SetConfigName(".env")
	v.SetConfigType("env")
	if len(paths) == 0 {
		paths = []string{"."}
	}
	for _, p := range paths {
		v.AddConfigPath(p)
	}

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	cfg := &Config{
		App: AppConfig{
			Port:               v.GetString(AppPort),
			CORSAllowedOrigins: v.GetString(CORSAllowedOrigins),
			BodyLimit:          v.GetInt(BodyLimit),
		},
		Database: DatabaseConfig{
			Driver: strings.ToLower(v.GetString(DBDriver)),
			DSN:    v.GetString(DatabaseDSN),
		},
		Auth: AuthConfig{
			JWTSecret: v.GetString(JWTSecret),
			TokenTTL:  v.GetDuration(TokenTTL),
		},
		RabbitMQ: RabbitMQConfig{
			URL: v.GetString(RabbitMQURL),
		},
		Lock: LockConfig{
			Driver: strings.ToLower(v.GetString(LockDriver)),
			TTL:    v.GetDuration(LockTTL),
		},
		Redis: RedisConfig{
			Addr:     v.GetString(RedisAddr),
			Password: v.GetString(RedisPassword),
			DB:       v.GetInt(RedisDB),
		},
		Logging: LoggingConfig{
			Level:  v.GetString(LogLevel),
			Format: v.GetString(LogFormat),
		},
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault(AppPort, ":3001")
	v.SetDefault(CORSAllowedOrigins, "*")
	v.SetDefault(BodyLimit, 10*1024*1024)

	v.SetDefault(DBDriver, DriverSQLite)
	v.SetDefault(DatabaseDSN, "lelang.db")

	v.SetDefault(JWTSecret, "your_jwt_secret")
	v.SetDefault(TokenTTL, time.Hour)

	v.SetDefault(RabbitMQURL, "")

	v.SetDefault(LockDriver, LockLocal)
	v.SetDefault(LockTTL, 5*time.Second)
	v.SetDefault(RedisAddr, "localhost:6379")
	v.SetDefault(RedisPassword, "")
	v.SetDefault(RedisDB, 0)

	v.SetDefault(LogLevel, "info")
	v.SetDefault(LogFormat, "json")
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.App.Port == "" {
		return fmt.Errorf("app port is required")
	}
	if c.App.BodyLimit <= 0 {
		return fmt.Errorf("body limit must be positive")
	}

	switch c.Database.Driver {
	case DriverMemory:
	case DriverSQLite, DriverPostgres:
		if c.Database.DSN == "" {
			return fmt.Errorf("database DSN is required for driver %q", c.Database.Driver)
		}
	default:
		return fmt.Errorf("unknown database driver %q", c.Database.Driver)
	}

	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("JWT secret is required")
	}
	if c.Auth.TokenTTL <= 0 {
		return fmt.Errorf("token TTL must be positive")
	}

	switch c.Lock.Driver {
	case LockLocal:
	case LockRedis:
		if c.Redis.Addr == "" {
			return fmt.Errorf("Redis address is required for the redis lock driver")
		}
		if c.Lock.TTL <= 0 {
			return fmt.Errorf("lock TTL must be positive")
		}
	default:
		return fmt.Errorf("unknown lock driver %q", c.Lock.Driver)
	}

	return nil
}
