package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	StoreFile     = "file"
	StorePostgres = "postgres"
	StoreMemory   = "memory"
)

// Config holds runtime settings for the habit tracker.
type Config struct {
	DataFile         string
	Store            string
	ReminderInterval time.Duration
	RedisURL         string
	LogLevel         string
	LogFormat        string
	DB               DBConfig
}

type DBConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
}

func (c DBConfig) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
		c.User, c.Password, c.Host, c.Port, c.Name)
}

// Load reads configuration from the environment. A .env file in the working
// directory is applied first when present; real environment variables win.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		DataFile:  getEnv("KANSO_DATA_FILE", "habits-data.json"),
		Store:     strings.ToLower(getEnv("KANSO_STORE", StoreFile)),
		RedisURL:  getEnv("KANSO_REDIS_URL", ""),
		LogLevel:  getEnv("KANSO_LOG_LEVEL", "warn"),
		LogFormat: getEnv("KANSO_LOG_FORMAT", "console"),
		DB: DBConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", ""),
			Password: getEnv("DB_PASSWORD", ""),
			Name:     getEnv("DB_NAME", ""),
		},
	}

	interval, err := getEnvDuration("KANSO_REMINDER_INTERVAL", 10*time.Second)
	if err != nil {
		return nil, err
	}
	cfg.ReminderInterval = interval

	switch cfg.Store {
	case StoreFile, StoreMemory:
	case StorePostgres:
		if cfg.DB.User == "" || cfg.DB.Name == "" {
			return nil, fmt.Errorf("DB_USER and DB_NAME are required when KANSO_STORE=postgres")
		}
	default:
		return nil, fmt.Errorf("unknown KANSO_STORE %q (must be file, postgres or memory)", cfg.Store)
	}

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return defaultValue, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("%s must be a positive duration like 10s or 1m, got %q", key, raw)
	}
	return d, nil
}
