package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kitbuilder587/deepseek-go/deepseek"
)

var configEnvVars = []string{
	"DEEPSEEK_API_KEY",
	"DEEPSEEK_API_BASE_URL",
	"DEEPSEEK_TIMEOUT_SEC",
	"DEEPSEEK_RETRY_ATTEMPTS",
	"DEEPSEEK_PROFILE",
	"TELEGRAM_BOT_TOKEN",
	"TELEGRAM_DEBUG",
	"DATABASE_URL",
	"LOG_LEVEL",
	"LOG_FORMAT",
	"LOG_OUTPUT",
	"RATE_LIMIT_PER_MINUTE",
	"SESSION_TTL_SEC",
	"SESSION_MAX_MESSAGES",
	"METRICS_ADDR",
	"APP_ENV",
}

// clearEnv - t.Setenv восстановит значения после теста
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range configEnvVars {
		t.Setenv(k, "")
	}
}

func TestLoad(t *testing.T) {
	tests := []struct {
		name    string
		envVars map[string]string
		wantErr error
	}{
		{
			name:    "valid config",
			envVars: map[string]string{"DEEPSEEK_API_KEY": "sk-test"},
			wantErr: nil,
		},
		{
			name:    "missing api key",
			envVars: map[string]string{},
			wantErr: deepseek.ErrMissingCredential,
		},
		{
			name: "zero rate limit",
			envVars: map[string]string{
				"DEEPSEEK_API_KEY":      "sk-test",
				"RATE_LIMIT_PER_MINUTE": "0",
			},
			wantErr: ErrInvalidRateLimit,
		},
		{
			name: "negative session limit",
			envVars: map[string]string{
				"DEEPSEEK_API_KEY":     "sk-test",
				"SESSION_MAX_MESSAGES": "-1",
			},
			wantErr: ErrInvalidSessionLimit,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tt.envVars {
				t.Setenv(k, v)
			}

			cfg, err := Load()

			if tt.wantErr != nil {
				assert.True(t, errors.Is(err, tt.wantErr), "Load() error = %v, want %v", err, tt.wantErr)
				return
			}

			require.NoError(t, err)
			assert.NotNil(t, cfg)
		})
	}
}

func TestDefaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("DEEPSEEK_API_KEY", "sk-test")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, deepseek.DefaultBaseURL, cfg.DeepSeek.BaseURL)
	assert.Equal(t, 2, cfg.DeepSeek.RetryAttempts)
	assert.Equal(t, 60*time.Second, cfg.DeepSeek.Timeout)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, 10, cfg.RateLimit.RequestsPerMinute)
	assert.Equal(t, time.Hour, cfg.Session.TTL)
	assert.Equal(t, 20, cfg.Session.MaxMessages)
	assert.Equal(t, ":9090", cfg.Metrics.Addr)
	assert.Empty(t, cfg.Database.URL)
	assert.False(t, cfg.Telegram.Debug)
}

func TestValidateBot(t *testing.T) {
	clearEnv(t)
	t.Setenv("DEEPSEEK_API_KEY", "sk-test")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, ErrMissingToken, cfg.ValidateBot())

	cfg.Telegram.Token = "123:abc"
	assert.NoError(t, cfg.ValidateBot())
}

func TestClientConfig(t *testing.T) {
	cfg := &Config{DeepSeek: DeepSeekConfig{APIKey: "k", BaseURL: "http://x", Timeout: time.Second}}

	cc := cfg.ClientConfig()
	assert.Equal(t, "k", cc.APIKey)
	assert.Equal(t, "http://x", cc.BaseURL)
	assert.Equal(t, time.Second, cc.Timeout)
}

func TestLoad_EnvFile(t *testing.T) {
	clearEnv(t)
	os.Unsetenv("DEEPSEEK_API_KEY")

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("DEEPSEEK_API_KEY=from-file\nLOG_LEVEL=debug\n"), 0o600))

	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() {
		os.Chdir(wd)
		os.Unsetenv("DEEPSEEK_API_KEY")
	})

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "from-file", cfg.DeepSeek.APIKey)
	// LOG_LEVEL уже задан (пустым) - godotenv его не перетирает
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestGetEnvIntOrDefault(t *testing.T) {
	tests := []struct {
		name       string
		envValue   string
		defaultVal int
		want       int
	}{
		{"valid int", "42", 10, 42},
		{"empty string", "", 10, 10},
		{"invalid int", "abc", 10, 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("TEST_INT", tt.envValue)

			got := getEnvIntOrDefault("TEST_INT", tt.defaultVal)
			if got != tt.want {
				t.Errorf("getEnvIntOrDefault() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestGetEnvBoolOrDefault(t *testing.T) {
	t.Setenv("TEST_BOOL", "true")
	assert.True(t, getEnvBoolOrDefault("TEST_BOOL", false))

	t.Setenv("TEST_BOOL", "nope")
	assert.False(t, getEnvBoolOrDefault("TEST_BOOL", false))
}
