package llm

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/kitbuilder587/deepseek-go/deepseek"
)

type RetryConfig struct {
	// Attempts - всего попыток, включая первую. <= 1 отключает повторы.
	Attempts int
	// Backoff - пауза перед второй попыткой, дальше удваивается.
	Backoff time.Duration
}

// Retrying повторяет запрос, пока ошибка Retryable (сеть, 429, 5xx).
// Остальные ошибки и ответы возвращаются сразу.
type Retrying struct {
	next   Client
	cfg    RetryConfig
	logger *zap.Logger
}

func NewRetrying(next Client, cfg RetryConfig, logger *zap.Logger) *Retrying {
	if cfg.Attempts < 1 {
		cfg.Attempts = 1
	}
	if cfg.Backoff <= 0 {
		cfg.Backoff = 500 * time.Millisecond
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Retrying{next: next, cfg: cfg, logger: logger}
}

func (r *Retrying) Send(ctx context.Context, req deepseek.ChatRequest) (*deepseek.ChatResponse, error) {
	backoff := r.cfg.Backoff

	for attempt := 1; ; attempt++ {
		resp, err := r.next.Send(ctx, req)
		if err == nil {
			return resp, nil
		}

		var e *deepseek.Error
		if !errors.As(err, &e) || !e.Retryable() || attempt >= r.cfg.Attempts {
			return nil, err
		}

		r.logger.Warn("retrying completion",
			zap.Int("attempt", attempt),
			zap.String("kind", e.Kind.String()),
			zap.Duration("backoff", backoff),
		)

		timer := time.NewTimer(backoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, err
		case <-timer.C:
		}
		backoff *= 2
	}
}

var _ Client = (*Retrying)(nil)
