package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	HTTPPort      int
	StorageDriver string // "memory" or "postgres"

	DBConfig struct {
		Host     string
		Port     int
		User     string
		Password string
		Name     string
		SSLMode  string
	}
	MigrationsPath string

	JWTSecret string
	JWTTTL    time.Duration

	KafkaBrokerURL string
	KafkaTopic     string
}

func Load() (*Config, error) {
	cfg := &Config{}

	cfg.HTTPPort = getEnvAsInt("HTTP_PORT", 8080)
	cfg.StorageDriver = getEnvOrDefault("STORAGE_DRIVER", "memory")
	if cfg.StorageDriver != "memory" && cfg.StorageDriver != "postgres" {
		return nil, fmt.Errorf("unknown STORAGE_DRIVER %q", cfg.StorageDriver)
	}

	cfg.DBConfig.Host = getEnvOrDefault("DB_HOST", "localhost")
	cfg.DBConfig.Port = getEnvAsInt("DB_PORT", 5432)
	cfg.DBConfig.User = getEnvOrDefault("DB_USER", "finapi")
	cfg.DBConfig.Password = getEnvOrDefault("DB_PASSWORD", "finapi")
	cfg.DBConfig.Name = getEnvOrDefault("DB_NAME", "finapi")
	cfg.DBConfig.SSLMode = getEnvOrDefault("DB_SSLMODE", "disable")
	cfg.MigrationsPath = getEnvOrDefault("MIGRATIONS_PATH", "migrations")

	cfg.JWTSecret = getEnvOrDefault("JWT_SECRET", "")
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}
	cfg.JWTTTL = getEnvAsDuration("JWT_TTL", 24*time.Hour)

	cfg.KafkaBrokerURL = getEnvOrDefault("KAFKA_BROKER_URL", "")
	cfg.KafkaTopic = getEnvOrDefault("KAFKA_TOPIC", "statement_entry_recorded")

	return cfg, nil
}

func (c *Config) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.DBConfig.Host, c.DBConfig.Port, c.DBConfig.User, c.DBConfig.Password, c.DBConfig.Name, c.DBConfig.SSLMode)
}

func (c *Config) MigrateDSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.DBConfig.User, c.DBConfig.Password, c.DBConfig.Host, c.DBConfig.Port, c.DBConfig.Name, c.DBConfig.SSLMode)
}

func (c *Config) KafkaBrokers() []string {
	return strings.Split(c.KafkaBrokerURL, ",")
}

func getEnvOrDefault(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnvOrDefault(key, strconv.Itoa(defaultValue))
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnvOrDefault(key, defaultValue.String())
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultValue
}
