package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/kitbuilder587/deepseek-go/deepseek"
)

type Metrics struct {
	CompletionsTotal   *prometheus.CounterVec
	CompletionDuration *prometheus.HistogramVec
	TokensTotal        *prometheus.CounterVec

	MessagesTotal    *prometheus.CounterVec
	MessageDuration  *prometheus.HistogramVec
	MessagesInFlight prometheus.Gauge

	RateLimitHitsTotal *prometheus.CounterVec
	ActiveSessions     prometheus.Gauge
}

var _ deepseek.Recorder = (*Metrics)(nil)

// New регистрирует метрики в default registry - вызывать один раз на процесс.
func New() *Metrics {
	return NewWithRegistry(prometheus.DefaultRegisterer)
}

func NewWithRegistry(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)

	return &Metrics{
		CompletionsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "deepseek_completions_total",
				Help: "Total number of chat completion calls by outcome",
			},
			[]string{"model", "outcome"},
		),
		CompletionDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "deepseek_completion_duration_seconds",
				Help:    "Chat completion call duration in seconds",
				Buckets: []float64{0.5, 1, 2, 5, 10, 30, 60, 120},
			},
			[]string{"model"},
		),
		TokensTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "deepseek_tokens_total",
				Help: "Tokens reported by the service",
			},
			[]string{"model", "type"},
		),

		MessagesTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "deepseek_bot_messages_total",
				Help: "Total number of bot messages processed",
			},
			[]string{"type", "status"},
		),
		MessageDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "deepseek_bot_message_duration_seconds",
				Help:    "Bot message handling duration in seconds",
				Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60},
			},
			[]string{"type"},
		),
		MessagesInFlight: f.NewGauge(
			prometheus.GaugeOpts{
				Name: "deepseek_bot_messages_in_flight",
				Help: "Number of bot messages currently being handled",
			},
		),

		RateLimitHitsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "deepseek_bot_rate_limit_hits_total",
				Help: "Total number of rate limit hits",
			},
			[]string{"chat_id"},
		),
		ActiveSessions: f.NewGauge(
			prometheus.GaugeOpts{
				Name: "deepseek_bot_active_sessions",
				Help: "Number of live conversation sessions",
			},
		),
	}
}

func Handler() http.Handler {
	return promhttp.Handler()
}

// HandlerFor отдает метрики конкретного registry (для тестов и отдельных процессов).
func HandlerFor(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}

func (m *Metrics) RecordCompletion(model, outcome string, duration time.Duration, usage *deepseek.Usage) {
	m.CompletionsTotal.WithLabelValues(model, outcome).Inc()
	m.CompletionDuration.WithLabelValues(model).Observe(duration.Seconds())

	// счетчик не может уменьшаться: отрицательные значения пропускаем
	if usage != nil {
		if usage.PromptTokens > 0 {
			m.TokensTotal.WithLabelValues(model, "prompt").Add(float64(usage.PromptTokens))
		}
		if usage.CompletionTokens > 0 {
			m.TokensTotal.WithLabelValues(model, "completion").Add(float64(usage.CompletionTokens))
		}
	}
}

func (m *Metrics) RecordMessage(msgType, status string, duration time.Duration) {
	m.MessagesTotal.WithLabelValues(msgType, status).Inc()
	m.MessageDuration.WithLabelValues(msgType).Observe(duration.Seconds())
}

func (m *Metrics) RecordRateLimitHit(chatID string) {
	m.RateLimitHitsTotal.WithLabelValues(chatID).Inc()
}

func (m *Metrics) SetActiveSessions(count int) {
	m.ActiveSessions.Set(float64(count))
}

func (m *Metrics) IncMessagesInFlight() {
	m.MessagesInFlight.Inc()
}

func (m *Metrics) DecMessagesInFlight() {
	m.MessagesInFlight.Dec()
}
