package telegram

import (
	"context"
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/kitbuilder587/deepseek-go/deepseek"
	"github.com/kitbuilder587/deepseek-go/internal/llm/mock"
	"github.com/kitbuilder587/deepseek-go/internal/metrics"
	"github.com/kitbuilder587/deepseek-go/internal/ratelimit"
	"github.com/kitbuilder587/deepseek-go/internal/session"
)

type panickingClient struct{}

func (panickingClient) Send(ctx context.Context, req deepseek.ChatRequest) (*deepseek.ChatResponse, error) {
	panic("boom")
}

func createTestBot(t *testing.T, deps Deps) *Bot {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	if deps.Sessions == nil {
		deps.Sessions = session.New(ctx, session.Config{})
	}
	if deps.Limiter == nil {
		deps.Limiter = ratelimit.New(ctx, ratelimit.Config{RequestsPerMinute: 100})
	}
	deps.Logger = zap.NewNop()

	// api == nil: Send и SendTyping ничего не делают
	return newBot(nil, deps)
}

func createTestUpdate(chatID int64, text string) tgbotapi.Update {
	return tgbotapi.Update{
		Message: &tgbotapi.Message{
			From: &tgbotapi.User{ID: chatID, UserName: "testuser"},
			Chat: &tgbotapi.Chat{ID: chatID},
			Text: text,
		},
	}
}

func TestBot_HandleUpdate_RecordsMetrics(t *testing.T) {
	m := metrics.NewWithRegistry(prometheus.NewRegistry())
	llmClient := mock.New()
	bot := createTestBot(t, Deps{LLM: llmClient, Metrics: m})

	bot.handleUpdate(context.Background(), createTestUpdate(1, "Hi"))
	bot.handleUpdate(context.Background(), createTestUpdate(1, "/help"))

	assert.Equal(t, 1, llmClient.Calls())
	assert.Equal(t, float64(1), testutil.ToFloat64(m.MessagesTotal.WithLabelValues("chat", "processed")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.MessagesTotal.WithLabelValues("command", "processed")))
	assert.Equal(t, float64(0), testutil.ToFloat64(m.MessagesInFlight))
}

func TestBot_HandleUpdate_RecoversFromPanic(t *testing.T) {
	m := metrics.NewWithRegistry(prometheus.NewRegistry())
	bot := createTestBot(t, Deps{LLM: panickingClient{}, Metrics: m})

	assert.NotPanics(t, func() {
		bot.handleUpdate(context.Background(), createTestUpdate(1, "Hi"))
	})

	assert.Equal(t, float64(1), testutil.ToFloat64(m.MessagesTotal.WithLabelValues("chat", "panic")))
	assert.Equal(t, float64(0), testutil.ToFloat64(m.MessagesInFlight))
}

func TestBot_HandleUpdate_WithoutMetrics(t *testing.T) {
	bot := createTestBot(t, Deps{LLM: mock.New()})

	assert.NotPanics(t, func() {
		bot.handleUpdate(context.Background(), createTestUpdate(1, "Hi"))
	})
}

func TestToMessage(t *testing.T) {
	msg := toMessage(&tgbotapi.Message{
		From: &tgbotapi.User{ID: 7, UserName: "alice"},
		Chat: &tgbotapi.Chat{ID: -100},
		Text: "hello",
	})
	assert.Equal(t, Message{ChatID: -100, UserID: 7, Username: "alice", Text: "hello"}, msg)

	// сообщения из каналов приходят без From
	msg = toMessage(&tgbotapi.Message{Chat: &tgbotapi.Chat{ID: 5}, Text: "x"})
	assert.Equal(t, Message{ChatID: 5, Text: "x"}, msg)
}

func TestBot_SendWithoutAPI(t *testing.T) {
	bot := createTestBot(t, Deps{LLM: mock.New()})

	assert.NoError(t, bot.Send(1, "text"))
	bot.SendTyping(1)
}
