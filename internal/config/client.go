package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/Vexcited/WebTimetableLimogesIUTCS/internal/model"
)

// ClientConfig настройки клиента табло свободных аудиторий.
// Загружается один раз при старте и передаётся по указателю.
type ClientConfig struct {
	APIBaseURL    string           `mapstructure:"API_BASE_URL"`
	TelegramToken string           `mapstructure:"TELEGRAM_TOKEN"`
	Environment   string           `mapstructure:"ENV"`
	LogLevel      string           `mapstructure:"LOG_LEVEL"`
	ReferenceYear model.CohortYear `mapstructure:"REFERENCE_YEAR"`
	ClockInterval time.Duration    `mapstructure:"CLIENT_CLOCK_INTERVAL"`
	CachePath     string           `mapstructure:"CLIENT_CACHE_PATH"`
	APITimeout    time.Duration    `mapstructure:"API_TIMEOUT"`
}

// LoadClient загружает конфигурацию клиента
func LoadClient() (*ClientConfig, error) {
	loadDotEnv()

	cfg := &ClientConfig{
		APIBaseURL:    strings.TrimRight(os.Getenv("API_BASE_URL"), "/"),
		TelegramToken: os.Getenv("TELEGRAM_TOKEN"),
		Environment:   getEnv("ENV", "development"),
		CachePath:     "data/timetables.db",
	}
	if value, ok := os.LookupEnv("CLIENT_CACHE_PATH"); ok {
		cfg.CachePath = strings.TrimSpace(value)
	}

	var err error
	if cfg.LogLevel, err = getEnvLogLevel("LOG_LEVEL"); err != nil {
		return nil, err
	}

	year, err := model.ParseCohortYear(getEnv("REFERENCE_YEAR", "A1"))
	if err != nil {
		return nil, fmt.Errorf("REFERENCE_YEAR: %w", err)
	}
	cfg.ReferenceYear = year

	if cfg.ClockInterval, err = getEnvDuration("CLIENT_CLOCK_INTERVAL", time.Second); err != nil {
		return nil, err
	}
	if cfg.ClockInterval <= 0 {
		return nil, fmt.Errorf("CLIENT_CLOCK_INTERVAL must be positive")
	}
	if cfg.APITimeout, err = getEnvDuration("API_TIMEOUT", 10*time.Second); err != nil {
		return nil, err
	}

	if cfg.APIBaseURL == "" {
		return nil, fmt.Errorf("API_BASE_URL is required but not set")
	}
	if cfg.TelegramToken == "" {
		return nil, fmt.Errorf("TELEGRAM_TOKEN is required but not set")
	}

	return cfg, nil
}
