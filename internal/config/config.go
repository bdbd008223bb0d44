package config

import (
	"fmt"
	"os"
)

// Config holds the infrastructure settings shared by every binary
// (API server, temporal worker, notifier). Values come from the
// environment; mains call godotenv.Load() first so a local .env works too.
type Config struct {
	// PostgreSQL
	DB_USER     string
	DB_PASSWORD string
	DB_NAME     string
	DB_HOST     string
	DB_PORT     string
	// Kafka
	KAFKA_TOPIC  string
	KAFKA_BROKER string
	// RabbitMQ
	RABBITMQ_USER     string
	RABBITMQ_PASSWORD string
	RABBITMQ_HOST     string
	RABBITMQ_PORT     string
	// Redis (stop catalogue cache)
	REDIS_ADDR string
	// Temporal
	TEMPORAL_HOST_PORT string
	// HTTP
	HTTP_ADDR string
}

// Load reads the configuration from environment variables.
func Load() *Config {
	return &Config{
		DB_USER:     os.Getenv("DB_USER"),
		DB_PASSWORD: os.Getenv("DB_PASSWORD"),
		DB_HOST:     os.Getenv("DB_HOST"),
		DB_PORT:     os.Getenv("DB_PORT"),
		DB_NAME:     os.Getenv("DB_NAME"),

		KAFKA_TOPIC:  os.Getenv("KAFKA_TOPIC"),
		KAFKA_BROKER: os.Getenv("KAFKA_BROKER"),

		RABBITMQ_USER:     os.Getenv("RABBITMQ_USER"),
		RABBITMQ_PASSWORD: os.Getenv("RABBITMQ_PASSWORD"),
		RABBITMQ_HOST:     os.Getenv("RABBITMQ_HOST"),
		RABBITMQ_PORT:     os.Getenv("RABBITMQ_PORT"),

		REDIS_ADDR: os.Getenv("REDIS_ADDR"),

		TEMPORAL_HOST_PORT: os.Getenv("TEMPORAL_HOST_PORT"),

		HTTP_ADDR: os.Getenv("HTTP_ADDR"),
	}
}

// GetDBURL formats the config into a PostgreSQL connection string.
func (c *Config) GetDBURL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
		c.DB_USER, c.DB_PASSWORD, c.DB_HOST, c.DB_PORT, c.DB_NAME)
}

// GetRabbitMQURL formats the config into a RabbitMQ connection string.
// Missing host/port fall back to the standard local defaults.
func (c *Config) GetRabbitMQURL() string {
	host := c.RABBITMQ_HOST
	if host == "" {
		host = "localhost"
	}
	port := c.RABBITMQ_PORT
	if port == "" {
		port = "5672"
	}
	return fmt.Sprintf("amqp://%s:%s@%s:%s/", c.RABBITMQ_USER, c.RABBITMQ_PASSWORD, host, port)
}

// Addr returns the HTTP listen address for the API server.
func (c *Config) Addr() string {
	if c.HTTP_ADDR == "" {
		return ":8080"
	}
	return c.HTTP_ADDR
}
