package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/kitbuilder587/deepseek-go/deepseek"
)

var (
	ErrMissingToken        = errors.New("TELEGRAM_BOT_TOKEN is required")
	ErrInvalidRateLimit    = errors.New("RATE_LIMIT_PER_MINUTE must be positive")
	ErrInvalidSessionLimit = errors.New("SESSION_MAX_MESSAGES must be positive")
)

type Config struct {
	DeepSeek  DeepSeekConfig
	Telegram  TelegramConfig
	Database  DatabaseConfig
	Log       LogConfig
	RateLimit RateLimitConfig
	Session   SessionConfig
	Metrics   MetricsConfig
	Profile   string
}

type DeepSeekConfig struct {
	APIKey  string
	BaseURL string
	Timeout time.Duration
	// RetryAttempts - только для бота; CLI шлет ровно один запрос
	RetryAttempts int
}

type TelegramConfig struct {
	Token string
	Debug bool
}

// DatabaseConfig - пустой URL отключает сохранение транскриптов
type DatabaseConfig struct {
	URL string
}

type LogConfig struct {
	Level  string
	Format string
	// Output - путь zap ("stderr", "stdout" или файл)
	Output string
}

type RateLimitConfig struct {
	RequestsPerMinute int
}

type SessionConfig struct {
	TTL         time.Duration
	MaxMessages int
}

type MetricsConfig struct {
	Addr string
}

// Load читает .env файлы (не перетирая уже заданные переменные) и окружение.
func Load() (*Config, error) {
	loadEnvFiles()

	cfg := &Config{
		DeepSeek: DeepSeekConfig{
			APIKey:  os.Getenv(deepseek.EnvAPIKey),
			BaseURL: getEnvOrDefault(deepseek.EnvBaseURL, deepseek.DefaultBaseURL),
			Timeout: time.Duration(getEnvIntOrDefault("DEEPSEEK_TIMEOUT_SEC", 60)) * time.Second,

			RetryAttempts: getEnvIntOrDefault("DEEPSEEK_RETRY_ATTEMPTS", 2),
		},
		Telegram: TelegramConfig{
			Token: os.Getenv("TELEGRAM_BOT_TOKEN"),
			Debug: getEnvBoolOrDefault("TELEGRAM_DEBUG", false),
		},
		Database: DatabaseConfig{
			URL: os.Getenv("DATABASE_URL"),
		},
		Log: LogConfig{
			Level:  getEnvOrDefault("LOG_LEVEL", "info"),
			Format: getEnvOrDefault("LOG_FORMAT", "json"),
			Output: getEnvOrDefault("LOG_OUTPUT", "stderr"),
		},
		RateLimit: RateLimitConfig{
			RequestsPerMinute: getEnvIntOrDefault("RATE_LIMIT_PER_MINUTE", 10),
		},
		Session: SessionConfig{
			TTL:         time.Duration(getEnvIntOrDefault("SESSION_TTL_SEC", 3600)) * time.Second,
			MaxMessages: getEnvIntOrDefault("SESSION_MAX_MESSAGES", 20),
		},
		Metrics: MetricsConfig{
			Addr: getEnvOrDefault("METRICS_ADDR", ":9090"),
		},
		Profile: os.Getenv("DEEPSEEK_PROFILE"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate проверяет то, что нужно и CLI, и боту.
func (c *Config) Validate() error {
	if c.DeepSeek.APIKey == "" {
		return deepseek.ErrMissingCredential
	}
	if c.RateLimit.RequestsPerMinute <= 0 {
		return ErrInvalidRateLimit
	}
	if c.Session.MaxMessages <= 0 {
		return ErrInvalidSessionLimit
	}
	return nil
}

// ValidateBot - дополнительно к Validate требует токен телеграма.
func (c *Config) ValidateBot() error {
	if err := c.Validate(); err != nil {
		return err
	}
	if c.Telegram.Token == "" {
		return ErrMissingToken
	}
	return nil
}

func (c *Config) ClientConfig() deepseek.Config {
	return deepseek.Config{
		APIKey:  c.DeepSeek.APIKey,
		BaseURL: c.DeepSeek.BaseURL,
		Timeout: c.DeepSeek.Timeout,
	}
}

func loadEnvFiles() {
	env := strings.ToLower(os.Getenv("APP_ENV"))

	files := []string{".env.local", ".env"}
	if env != "" {
		files = append([]string{fmt.Sprintf(".env.%s.local", env), fmt.Sprintf(".env.%s", env)}, files...)
	}

	for _, file := range files {
		if _, err := os.Stat(file); err == nil {
			_ = godotenv.Load(file)
		}
	}
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvBoolOrDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}
