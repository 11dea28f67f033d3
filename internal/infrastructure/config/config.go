package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	SSLMode  string
}

type KafkaConfig struct {
	Brokers []string
	Topic   string
	// PublishMode selects how domain events reach Kafka: "outbox" stores
	// them in the database and relays asynchronously, "direct" writes to
	// the broker inline.
	PublishMode string
	// RelayInterval is how often the outbox relay polls, in seconds.
	RelayInterval int
}

type Config struct {
	HTTPPort      int
	DB            DatabaseConfig
	Kafka         KafkaConfig
	ServiceName   string
	LogLevel      string
	LogFormat     string
	MigrationsDir string
	// SweepSchedule is the cron expression for the nightly penalty sweep.
	SweepSchedule string
}

func (c Config) Validate() {
	if c.DB.Password == "" {
		panic("DB_PASSWORD environment variable is required")
	}
}

func Load() Config {
	return Config{
		HTTPPort: getEnvInt("HTTP_PORT", 8093),
		DB: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnvInt("DB_PORT", 5432),
			User:     getEnv("DB_USER", "prestoras"),
			Password: getEnv("DB_PASSWORD", ""),
			Name:     getEnv("DB_NAME", "prestoras_ledger"),
			SSLMode:  getEnv("DB_SSLMODE", "require"),
		},
		Kafka: KafkaConfig{
			Brokers:       strings.Split(getEnv("KAFKA_BROKERS", "localhost:9092"), ","),
			Topic:         getEnv("KAFKA_TOPIC", "prestoras.loan-events"),
			PublishMode:   getEnv("EVENT_PUBLISH_MODE", "outbox"),
			RelayInterval: getEnvInt("OUTBOX_RELAY_INTERVAL_SECONDS", 5),
		},
		ServiceName:   "prestoras-ledger",
		LogLevel:      getEnv("LOG_LEVEL", "info"),
		LogFormat:     getEnv("LOG_FORMAT", "json"),
		MigrationsDir: getEnv("MIGRATIONS_DIR", "file://./migrations"),
		SweepSchedule: getEnv("SWEEP_SCHEDULE", "0 2 * * *"),
	}
}

func (c Config) HTTPAddr() string {
	return fmt.Sprintf(":%d", c.HTTPPort)
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}
