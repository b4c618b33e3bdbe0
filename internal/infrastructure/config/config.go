package config

import (
	"context"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Port     string `env:"PORT,      default=8080"`
	Env      string `env:"ENV,       default=development"`
	LogLevel string `env:"LOG_LEVEL, default=info"`

	// JWTSecret and TokenTTL feed the credential service and the context
	// resolver; a missing secret is fatal at startup, never a request error.
	JWTSecret string        `env:"JWT_SECRET, required"`
	TokenTTL  time.Duration `env:"TOKEN_TTL,  default=24h"`

	Postgres PostgresConfig
	Redis    RedisConfig
}

type PostgresConfig struct {
	DSN          string        `env:"POSTGRES_DSN, default=postgres://localhost:5432/identity?sslmode=disable"`
	MaxConns     int32         `env:"POSTGRES_MAX_CONNS, default=10"`
	MinConns     int32         `env:"POSTGRES_MIN_CONNS, default=2"`
	ConnLifetime time.Duration `env:"POSTGRES_CONN_LIFETIME, default=1h"`
}

type RedisConfig struct {
	Addr string `env:"REDIS_ADDR, default=localhost:6379"`
	DB   int    `env:"REDIS_DB,   default=0"`
}

// Load reads configuration from environment variables using go-envconfig.
func Load() *Config {
	var cfg Config
	if err := envconfig.Process(context.Background(), &cfg); err != nil {
		panic(fmt.Sprintf("config: failed to load configuration: %v", err))
	}
	return &cfg
}
