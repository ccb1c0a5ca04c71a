package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap/zapcore"
)

const defaultDocumentationURL = "https://github.com/Vexcited/WebLimogesTimetableIUTCS/blob/main/README.md"

// Config конфигурация сервера расписаний
type Config struct {
	DBDSN            string        `mapstructure:"DB_DSN"`
	Environment      string        `mapstructure:"ENV"`
	LogLevel         string        `mapstructure:"LOG_LEVEL"`
	HTTPAddr         string        `mapstructure:"HTTP_ADDR"`
	SourceBaseURL    string        `mapstructure:"SOURCE_BASE_URL"`
	SourceTimeout    time.Duration `mapstructure:"SOURCE_TIMEOUT"`
	SourceRetries    uint64        `mapstructure:"SOURCE_RETRIES"`
	CatalogTTL       time.Duration `mapstructure:"CATALOG_TTL"`
	WarmInterval     time.Duration `mapstructure:"WARM_INTERVAL"`
	DocumentationURL string        `mapstructure:"DOCUMENTATION_URL"`
}

// Load загружает конфигурацию сервера из .env и переменных окружения
func Load() (*Config, error) {
	loadDotEnv()

	cfg := &Config{
		DBDSN:            os.Getenv("DB_DSN"),
		Environment:      getEnv("ENV", "development"),
		HTTPAddr:         getEnv("HTTP_ADDR", ":8080"),
		SourceBaseURL:    strings.TrimRight(os.Getenv("SOURCE_BASE_URL"), "/"),
		DocumentationURL: getEnv("DOCUMENTATION_URL", defaultDocumentationURL),
	}

	var err error
	if cfg.LogLevel, err = getEnvLogLevel("LOG_LEVEL"); err != nil {
		return nil, err
	}
	if cfg.SourceTimeout, err = getEnvDuration("SOURCE_TIMEOUT", 10*time.Second); err != nil {
		return nil, err
	}
	if cfg.SourceRetries, err = getEnvUint("SOURCE_RETRIES", 3); err != nil {
		return nil, err
	}
	if cfg.CatalogTTL, err = getEnvDuration("CATALOG_TTL", 5*time.Minute); err != nil {
		return nil, err
	}
	if cfg.WarmInterval, err = getEnvDuration("WARM_INTERVAL", 0); err != nil {
		return nil, err
	}

	// Проверяем обязательные поля
	if cfg.DBDSN == "" {
		return nil, fmt.Errorf("DB_DSN is required but not set")
	}
	if cfg.SourceBaseURL == "" {
		return nil, fmt.Errorf("SOURCE_BASE_URL is required but not set")
	}

	log.Printf("Config loaded\n")

	return cfg, nil
}

func (c *Config) GetDBDSN() string {
	return c.DBDSN
}

// loadDotEnv пытается загрузить .env файл (ошибку игнорируем, если файла нет)
func loadDotEnv() {
	if err := godotenv.Load(".env"); err != nil {
		log.Println("⚠️  No .env file found, using environment variables")
	} else {
		log.Println("✅ Loaded configuration from .env file")
	}
}

func getEnv(key, fallback string) string {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	return value
}

// getEnvLogLevel возвращает уровень логирования или пустую строку, если он не задан
func getEnvLogLevel(key string) (string, error) {
	value := strings.ToLower(strings.TrimSpace(os.Getenv(key)))
	if value == "" {
		return "", nil
	}
	if _, err := zapcore.ParseLevel(value); err != nil {
		return "", fmt.Errorf("invalid log level for %s: %w", key, err)
	}
	return value, nil
}

func getEnvDuration(key string, fallback time.Duration) (time.Duration, error) {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback, nil
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid duration for %s: %w", key, err)
	}
	return parsed, nil
}

func getEnvUint(key string, fallback uint64) (uint64, error) {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback, nil
	}
	parsed, err := strconv.ParseUint(value, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid number for %s: %w", key, err)
	}
	return parsed, nil
}
