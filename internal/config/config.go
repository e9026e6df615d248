package config

import (
	"errors"
	"time"

	"github.com/caarlos0/env/v11"
)

type Config struct {
	Environment string `env:"APP_ENV" envDefault:"development"`
	Server      struct {
		Port         string        `env:"PORT" envDefault:"3000"`
		APIPrefix    string        `env:"API_PREFIX"`
		ReadTimeout  time.Duration `env:"HTTP_READ_TIMEOUT" envDefault:"5s"`
		WriteTimeout time.Duration `env:"HTTP_WRITE_TIMEOUT" envDefault:"10s"`
		IdleTimeout  time.Duration `env:"HTTP_IDLE_TIMEOUT" envDefault:"60s"`
	}
	Database struct {
		Host        string `env:"HOST" envDefault:"localhost"`
		User        string `env:"USER" envDefault:"postgres"`
		Password    string `env:"PASSWORD"`
		Name        string `env:"NAME" envDefault:"salary"`
		Port        string `env:"PORT" envDefault:"5432"`
		SSLMode     string `env:"SSLMODE" envDefault:"disable"`
		MaxRetries  int    `env:"MAX_RETRIES" envDefault:"5"`
		AutoMigrate bool   `env:"AUTO_MIGRATE" envDefault:"true"`
	} `envPrefix:"DB_"`
	Redis struct {
		// kosong = cache dan idempotency dimatikan
		Addr string `env:"ADDR"`
	} `envPrefix:"REDIS_"`
	Kafka struct {
		Broker             string        `env:"KAFKA_BROKER"`
		OutboxEnabled      bool          `env:"OUTBOX_ENABLED" envDefault:"true"`
		OutboxPollInterval time.Duration `env:"OUTBOX_POLL_INTERVAL" envDefault:"3s"`
	}
	JWT struct {
		Secret string `env:"SECRET"`
	} `envPrefix:"JWT_"`
	RateLimit struct {
		RPS   float64 `env:"RPS" envDefault:"5"`
		Burst int     `env:"BURST" envDefault:"10"`
	} `envPrefix:"RATE_LIMIT_"`
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

func LoadConfig() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		aggErr := env.AggregateError{}
		if errors.As(err, &aggErr) && len(aggErr.Errors) > 0 {
			// first error only, keeps the startup log readable
			return nil, aggErr.Errors[0]
		}
		return nil, err
	}

	return cfg, nil
}
