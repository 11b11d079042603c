package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"

	shared "github.com/globaledge/globaledge/shared/config"
)

// Config holds the shipment service settings on top of the shared infrastructure ones.
type Config struct {
	shared.CommonConfig

	HTTPPort        string        `env:"HTTP_PORT" envDefault:"8080"`
	GRPCPort        string        `env:"GRPC_PORT" envDefault:"50051"`
	CORSOrigins     []string      `env:"CORS_ORIGINS" envSeparator:"," envDefault:"http://localhost:5173"`
	RateLimitPerMin int           `env:"RATE_LIMIT_PER_MIN" envDefault:"120"`
	DraftTTL        time.Duration `env:"DRAFT_TTL" envDefault:"2h"`

	GeocoderURL     string `env:"GEOCODER_URL"`
	CloudinaryURL   string `env:"CLOUDINARY_URL"`
	StripeSecretKey string `env:"STRIPE_SECRET_KEY"`
	AdminTokenHash  string `env:"ADMIN_TOKEN_HASH"`
}

// LoadConfig reads .env when present, then the environment.
func LoadConfig() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse shipment service config: %w", err)
	}
	if cfg.RateLimitPerMin < 0 {
		return nil, fmt.Errorf("RATE_LIMIT_PER_MIN must not be negative, got %d", cfg.RateLimitPerMin)
	}
	if cfg.DraftTTL <= 0 {
		return nil, fmt.Errorf("DRAFT_TTL must be positive, got %s", cfg.DraftTTL)
	}
	return cfg, nil
}
