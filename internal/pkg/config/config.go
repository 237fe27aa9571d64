package config

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/sethvargo/go-envconfig"
)

const (
	StoreMongo  = "mongo"
	StoreMemory = "memory"
)

type Config struct {
	Port      string `env:"PORT,      default=8080"`
	Env       string `env:"ENV,       default=development"`
	LogLevel  string `env:"LOG_LEVEL, default=info"`
	StoreKind string `env:"STORE_DRIVER, default=mongo"`

	Auth   AuthConfig
	Mongo  MongoConfig
	Redis  RedisConfig
	Rabbit RabbitConfig
	Events EventsConfig
}

type AuthConfig struct {
	JWTSecret        string        `env:"JWT_SECRET, required"`
	JWTExpirationMs  int64         `env:"JWT_EXPIRATION_MS,  default=86400000"`
	BcryptCost       int           `env:"BCRYPT_COST,        default=10"`
	LoginMaxAttempts int           `env:"LOGIN_MAX_ATTEMPTS, default=5"`
	LoginWindow      time.Duration `env:"LOGIN_WINDOW,       default=15m"`
	SeedDefaults     bool          `env:"SEED_DEFAULT_ACCOUNTS, default=true"`
	PhoneRegion      string        `env:"PHONE_REGION,       default=BR"`
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=usermanagement"`
}

// RedisConfig.Addr empty disables login throttling.
type RedisConfig struct {
	Addr string `env:"REDIS_ADDR"`
	DB   int    `env:"REDIS_DB, default=0"`
}

// RabbitConfig.URL empty disables broker publishing.
type RabbitConfig struct {
	URL   string `env:"RABBITMQ_URL"`
	Queue string `env:"RABBITMQ_QUEUE, default=account-events"`
}

type EventsConfig struct {
	Workers int `env:"EVENT_WORKERS, default=4"`
}

// TokenTTL is the configured token lifetime.
func (c *Config) TokenTTL() time.Duration {
	return time.Duration(c.Auth.JWTExpirationMs) * time.Millisecond
}

func (c *Config) IsDevelopment() bool {
	return strings.EqualFold(c.Env, "development")
}

// Load reads configuration from environment variables using go-envconfig.
// In development a .env file in the working directory is loaded first;
// variables already set in the environment win.
func Load(ctx context.Context) (*Config, error) {
	if strings.EqualFold(os.Getenv("ENV"), "development") || os.Getenv("ENV") == "" {
		_ = godotenv.Load()
	}
	return load(ctx, envconfig.OsLookuper())
}

func load(ctx context.Context, lookuper envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{
		Target:   &cfg,
		Lookuper: lookuper,
	}); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	switch cfg.StoreKind = strings.ToLower(strings.TrimSpace(cfg.StoreKind)); cfg.StoreKind {
	case StoreMongo, StoreMemory:
	default:
		return nil, fmt.Errorf("config: unknown STORE_DRIVER %q", cfg.StoreKind)
	}
	if cfg.Auth.JWTExpirationMs <= 0 {
		return nil, fmt.Errorf("config: JWT_EXPIRATION_MS must be positive, got %d", cfg.Auth.JWTExpirationMs)
	}
	return &cfg, nil
}
