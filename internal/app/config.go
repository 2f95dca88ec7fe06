package app

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Бэкенды хранилища.
const (
	StorageMemory   = "memory"
	StoragePostgres = "postgres"
)

// Config описывает настройки запуска приложения.
type Config struct {
	MetricsAddr      string
	StorageBackend   string
	PostgresDSN      string
	ReturnWindowDays int
	RetentionMonths  int
}

// DefaultConfig возвращает настройки по умолчанию: память и метрики на :9090.
func DefaultConfig() Config {
	return Config{
		MetricsAddr:      ":9090",
		StorageBackend:   StorageMemory,
		ReturnWindowDays: 30,
		RetentionMonths:  6,
	}
}

// FromEnv читает конфигурацию из переменных окружения с префиксом RETAIL_.
func FromEnv() (Config, error) {
	cfg := DefaultConfig()

	if v := os.Getenv("RETAIL_METRICS_ADDR"); v != "" {
		cfg.MetricsAddr = v
	}
	if v := strings.ToLower(strings.TrimSpace(os.Getenv("RETAIL_STORAGE"))); v != "" {
		if v != StorageMemory && v != StoragePostgres {
			return Config{}, fmt.Errorf("unsupported RETAIL_STORAGE value: %s", v)
		}
		cfg.StorageBackend = v
	}
	cfg.PostgresDSN = os.Getenv("RETAIL_POSTGRES_DSN")

	if v := os.Getenv("RETAIL_RETURN_WINDOW_DAYS"); v != "" {
		days, err := strconv.Atoi(v)
		if err != nil || days <= 0 {
			return Config{}, fmt.Errorf("invalid RETAIL_RETURN_WINDOW_DAYS: %s", v)
		}
		cfg.ReturnWindowDays = days
	}
	if v := os.Getenv("RETAIL_RETENTION_MONTHS"); v != "" {
		months, err := strconv.Atoi(v)
		if err != nil || months <= 0 {
			return Config{}, fmt.Errorf("invalid RETAIL_RETENTION_MONTHS: %s", v)
		}
		cfg.RetentionMonths = months
	}

	return cfg.validate()
}

func (c Config) validate() (Config, error) {
	if c.StorageBackend == StoragePostgres && c.PostgresDSN == "" {
		return Config{}, fmt.Errorf("RETAIL_POSTGRES_DSN is required for postgres storage")
	}
	return c, nil
}
