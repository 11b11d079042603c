package config

import (
	"fmt"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"

	shared "github.com/globaledge/globaledge/shared/config"
)

// Config adds the notification settings to the shared infrastructure ones.
type Config struct {
	shared.CommonConfig

	ConsumerGroup string `env:"KAFKA_CONSUMER_GROUP" envDefault:"communications-group"`
	SupportEmail  string `env:"SUPPORT_EMAIL" envDefault:"support@globaledge.example"`
	Prefetch      int    `env:"RABBITMQ_PREFETCH" envDefault:"10"`
}

func LoadConfig() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse communications config: %w", err)
	}
	if cfg.Prefetch < 1 {
		return nil, fmt.Errorf("RABBITMQ_PREFETCH must be at least 1, got %d", cfg.Prefetch)
	}
	return cfg, nil
}
