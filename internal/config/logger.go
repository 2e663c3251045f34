package config

import (
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/kitbuilder587/deepseek-go/deepseek"
)

// NewLogger собирает логгер из LOG_* и помечает каждую запись адресом API,
// версией клиента и профилем. Ключ API в поля не попадает никогда.
func (c *Config) NewLogger() (*zap.Logger, error) {
	fields := []zap.Field{
		zap.String("component", "deepseek"),
		zap.String("sdk_version", deepseek.Version),
		zap.String("base_url", c.DeepSeek.BaseURL),
	}
	if c.Profile != "" {
		fields = append(fields, zap.String("profile", c.Profile))
	}
	return newLogger(c.Log, fields...)
}

// newLogger: debug -> development конфиг с цветными уровнями,
// иначе production JSON (или console при LOG_FORMAT=console).
func newLogger(cfg LogConfig, fields ...zap.Field) (*zap.Logger, error) {
	level := parseLogLevel(cfg.Level)

	var zc zap.Config
	if level == zapcore.DebugLevel {
		zc = zap.NewDevelopmentConfig()
		zc.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	} else {
		zc = zap.NewProductionConfig()
		zc.EncoderConfig.TimeKey = "timestamp"
		zc.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
		if strings.EqualFold(cfg.Format, "console") {
			zc.Encoding = "console"
		}
	}

	zc.Level = zap.NewAtomicLevelAt(level)
	zc.EncoderConfig.CallerKey = "caller"
	zc.EncoderConfig.EncodeCaller = zapcore.ShortCallerEncoder

	// stdout у CLI занят ответом модели
	output := cfg.Output
	if output == "" {
		output = "stderr"
	}
	zc.OutputPaths = []string{output}
	zc.ErrorOutputPaths = []string{"stderr"}

	logger, err := zc.Build()
	if err != nil {
		return nil, err
	}

	return logger.With(fields...), nil
}

func parseLogLevel(level string) zapcore.Level {
	switch strings.ToLower(level) {
	case "debug":
		return zapcore.DebugLevel
	case "info":
		return zapcore.InfoLevel
	case "warn", "warning":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}
