package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

type Config struct {
	HTTPPort           string        `env:"SUPERSCAN_HTTP_PORT" envDefault:"8080"`
	RequestTimeout     time.Duration `env:"SUPERSCAN_REQUEST_TIMEOUT" envDefault:"30s"`
	ShutdownTimeout    time.Duration `env:"SUPERSCAN_SHUTDOWN_TIMEOUT" envDefault:"10s"`
	MaxRequestBodySize int64         `env:"SUPERSCAN_MAX_BODY_BYTES" envDefault:"1048576"`

	// StorageDriver is one of sqlite, postgres or memory.
	StorageDriver  string `env:"SUPERSCAN_STORAGE_DRIVER" envDefault:"sqlite"`
	SQLitePath     string `env:"SUPERSCAN_SQLITE_PATH" envDefault:"./superscan.db"`
	MigrationsPath string `env:"SUPERSCAN_MIGRATIONS_PATH" envDefault:"./internal/repository/migrations"`
	DBHost         string `env:"SUPERSCAN_DB_HOST" envDefault:"localhost"`
	DBPort         int    `env:"SUPERSCAN_DB_PORT" envDefault:"5432"`
	DBUser         string `env:"SUPERSCAN_DB_USER" envDefault:"superscan"`
	DBPassword     string `env:"SUPERSCAN_DB_PASSWORD"`
	DBName         string `env:"SUPERSCAN_DB_NAME" envDefault:"superscan"`

	// Empty MongoURI keeps carts in memory only.
	MongoURI      string `env:"SUPERSCAN_MONGO_URI"`
	MongoDatabase string `env:"SUPERSCAN_MONGO_DB" envDefault:"superscan"`
	RedisAddr     string `env:"SUPERSCAN_REDIS_ADDR"`
	RedisPassword string `env:"SUPERSCAN_REDIS_PASSWORD"`

	KafkaBrokers []string      `env:"SUPERSCAN_KAFKA_BROKERS" envSeparator:","`
	KafkaTopic   string        `env:"SUPERSCAN_KAFKA_TOPIC" envDefault:"transactions"`
	OutboxTick   time.Duration `env:"SUPERSCAN_OUTBOX_TICK" envDefault:"1s"`

	OTLPEndpoint string `env:"SUPERSCAN_OTLP_ENDPOINT"`
	ServiceName  string `env:"SUPERSCAN_SERVICE_NAME" envDefault:"superscan"`

	LogLevel       string `env:"SUPERSCAN_LOG_LEVEL" envDefault:"info"`
	LogDevelopment bool   `env:"SUPERSCAN_LOG_DEVELOPMENT" envDefault:"false"`

	Currency string `env:"SUPERSCAN_CURRENCY" envDefault:"NGN"`
}

// Load reads the configuration from the environment.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	switch cfg.StorageDriver {
	case "sqlite", "postgres", "memory":
	default:
		return nil, fmt.Errorf("unsupported storage driver %q", cfg.StorageDriver)
	}
	if cfg.OutboxTick <= 0 {
		return nil, fmt.Errorf("outbox tick must be positive, got %s", cfg.OutboxTick)
	}

	return cfg, nil
}
