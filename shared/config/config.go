// shared/config/config.go
package config

import (
	"fmt"
	"net/url"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
)

// CommonConfig holds infrastructure details used by more than one service.
// Every field is optional; a service falls back to in-memory implementations
// when a backing system is not configured.
type CommonConfig struct {
	Env      string `env:"ENV" envDefault:"development"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	// PostgreSQL
	DBUser     string `env:"DB_USER"`
	DBPassword string `env:"DB_PASSWORD"`
	DBName     string `env:"DB_NAME"`
	DBHost     string `env:"DB_HOST"`
	DBPort     string `env:"DB_PORT" envDefault:"5432"`

	// Kafka carries domain events between services.
	KafkaBroker string `env:"KAFKA_BROKER"`
	KafkaTopic  string `env:"KAFKA_TOPIC" envDefault:"globaledge.events"`

	// RabbitMQ carries notification jobs.
	RabbitMQUser     string `env:"RABBITMQ_USER" envDefault:"guest"`
	RabbitMQPassword string `env:"RABBITMQ_PASSWORD" envDefault:"guest"`
	RabbitMQHost     string `env:"RABBITMQ_HOST" envDefault:"localhost"`
	RabbitMQPort     string `env:"RABBITMQ_PORT" envDefault:"5672"`

	RedisAddr     string `env:"REDIS_ADDR"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0"`

	TemporalHostPort  string `env:"TEMPORAL_HOST_PORT"`
	TemporalTaskQueue string `env:"TEMPORAL_TASK_QUEUE" envDefault:"BOOKING_TASK_QUEUE"`
}

// LoadCommonConfig reads a local .env file when present and then parses the
// process environment.
func LoadCommonConfig() (*CommonConfig, error) {
	_ = godotenv.Load()

	cfg := &CommonConfig{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse common config: %w", err)
	}
	return cfg, nil
}

func (c *CommonConfig) IsProduction() bool {
	return c.Env == "production"
}

// HasDatabase reports whether enough is configured to reach PostgreSQL.
func (c *CommonConfig) HasDatabase() bool {
	return c.DBHost != "" && c.DBName != ""
}

func (c *CommonConfig) HasKafka() bool {
	return c.KafkaBroker != "" && c.KafkaTopic != ""
}

func (c *CommonConfig) HasRedis() bool {
	return c.RedisAddr != ""
}

func (c *CommonConfig) HasTemporal() bool {
	return c.TemporalHostPort != ""
}

// GetDBURL formats the config into a PostgreSQL connection string
func (c *CommonConfig) GetDBURL() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.DBUser, c.DBPassword),
		Host:     c.DBHost + ":" + c.DBPort,
		Path:     "/" + c.DBName,
		RawQuery: "sslmode=disable",
	}
	return u.String()
}

// GetRabbitMQURL formats the config into a RabbitMQ connection string
func (c *CommonConfig) GetRabbitMQURL() string {
	host := c.RabbitMQHost
	if host == "" {
		host = "localhost"
	}
	port := c.RabbitMQPort
	if port == "" {
		port = "5672"
	}
	return fmt.Sprintf("amqp://%s:%s@%s:%s/",
		url.QueryEscape(c.RabbitMQUser), url.QueryEscape(c.RabbitMQPassword), host, port)
}
