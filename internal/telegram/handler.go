package telegram

import (
	"context"
	"errors"
	"fmt"
	"html"
	"strconv"

	"go.uber.org/zap"

	"github.com/kitbuilder587/deepseek-go/deepseek"
	"github.com/kitbuilder587/deepseek-go/internal/config"
	"github.com/kitbuilder587/deepseek-go/internal/llm"
	"github.com/kitbuilder587/deepseek-go/internal/metrics"
	"github.com/kitbuilder587/deepseek-go/internal/ratelimit"
	"github.com/kitbuilder587/deepseek-go/internal/session"
	"github.com/kitbuilder587/deepseek-go/internal/transcript"
)

// Sender - отправка сообщений в чат. Bot реализует его через Telegram API.
type Sender interface {
	Send(chatID int64, text string) error
	SendTyping(chatID int64)
}

// Message - то, что хендлеру нужно от входящего сообщения.
type Message struct {
	ChatID   int64
	UserID   int64
	Username string
	Text     string
}

type Deps struct {
	LLM      llm.Client
	Sessions *session.Store
	Limiter  *ratelimit.Limiter
	// Transcripts может быть nil: история тогда не сохраняется
	Transcripts transcript.Repository
	Profile     config.Profile
	Metrics     *metrics.Metrics
	Logger      *zap.Logger
}

type Handler struct {
	sender      Sender
	llm         llm.Client
	sessions    *session.Store
	limiter     *ratelimit.Limiter
	transcripts transcript.Repository
	profile     config.Profile
	metrics     *metrics.Metrics
	logger      *zap.Logger
}

func NewHandler(sender Sender, deps Deps) *Handler {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		sender:      sender,
		llm:         deps.LLM,
		sessions:    deps.Sessions,
		limiter:     deps.Limiter,
		transcripts: deps.Transcripts,
		profile:     deps.Profile,
		metrics:     deps.Metrics,
		logger:      logger,
	}
}

// HandleMessage возвращает статус обработки для метрик.
func (h *Handler) HandleMessage(ctx context.Context, msg Message) string {
	command, args := ParseCommand(msg.Text)

	h.logger.Info("received message",
		zap.Int64("chat_id", msg.ChatID),
		zap.String("username", msg.Username),
		zap.String("command", command),
	)

	switch command {
	case "":
		return h.handleChat(ctx, msg, args)
	case "start":
		h.send(msg.ChatID, startText)
	case "help":
		h.send(msg.ChatID, helpText)
	case "reset":
		h.handleReset(ctx, msg, args)
	case "model":
		h.handleModel(msg, args)
	case "history":
		h.handleHistory(ctx, msg)
	default:
		h.send(msg.ChatID, "Неизвестная команда. Используйте /help для справки.")
		return "unknown_command"
	}
	return "processed"
}

const startText = `Привет! Я отвечаю с помощью DeepSeek.

Просто напишите вопрос. Используйте /help для просмотра доступных команд.`

const helpText = `<b>Доступные команды:</b>

/start - Приветствие
/help - Показать эту справку
/reset - Начать диалог заново
/reset all - Начать заново и удалить сохраненную историю
/model - Показать текущую модель
/model chat|reasoner - Переключить модель
/history - Последние запросы

<b>Модели:</b>
• chat - deepseek-chat, быстрые ответы
• reasoner - deepseek-reasoner, рассуждает перед ответом

<b>Как использовать:</b>
Просто отправьте сообщение. Бот помнит последние сообщения диалога, пока вы не сбросите его через /reset.`

func (h *Handler) handleChat(ctx context.Context, msg Message, text string) string {
	if text == "" {
		h.send(msg.ChatID, "Пустое сообщение. Напишите ваш вопрос.")
		return "empty"
	}

	if !h.limiter.Allow(msg.ChatID) {
		h.logger.Warn("rate limit exceeded",
			zap.Int64("chat_id", msg.ChatID),
			zap.Time("reset_at", h.limiter.ResetTime(msg.ChatID)),
		)
		if h.metrics != nil {
			h.metrics.RecordRateLimitHit(strconv.FormatInt(msg.ChatID, 10))
		}
		h.send(msg.ChatID, "Слишком много запросов. Пожалуйста, подождите минуту.")
		return "rate_limited"
	}

	h.sender.SendTyping(msg.ChatID)

	model := h.sessions.Model(msg.ChatID)
	history := h.sessions.History(msg.ChatID)

	// system из профиля должен идти первым, поэтому Apply до истории
	req := h.profile.Apply(deepseek.NewChatBuilder().Model(model)).
		Messages(history...).
		User(text).
		Build()

	resp, err := h.llm.Send(ctx, req)
	if err != nil {
		h.logger.Error("completion failed",
			zap.Error(err),
			zap.Int64("chat_id", msg.ChatID),
			zap.String("kind", deepseek.KindOf(err).String()),
		)
		h.save(ctx, transcript.FromError(msg.ChatID, model, text, err))
		h.send(msg.ChatID, mapErrorToMessage(err))
		return "error"
	}

	// пустой ответ в историю не пишем, иначе он уйдет в следующий запрос
	if reply := resp.Content(); reply != "" {
		h.sessions.Append(msg.ChatID,
			deepseek.Message{Role: deepseek.RoleUser, Content: text},
			deepseek.Message{Role: deepseek.RoleAssistant, Content: reply},
		)
	}
	if h.metrics != nil {
		h.metrics.SetActiveSessions(h.sessions.Len())
	}

	h.save(ctx, transcript.FromResponse(msg.ChatID, model, text, resp))

	for _, part := range SplitMessage(FormatReply(resp), maxMessageLen) {
		if err := h.sender.Send(msg.ChatID, part); err != nil {
			h.logger.Error("failed to send message", zap.Error(err))
			return "send_failed"
		}
	}
	return "processed"
}

func (h *Handler) handleReset(ctx context.Context, msg Message, args string) {
	h.sessions.Reset(msg.ChatID)

	if args != "all" {
		h.send(msg.ChatID, "Диалог сброшен.")
		return
	}

	if h.transcripts == nil {
		h.send(msg.ChatID, "Диалог сброшен. История не сохраняется.")
		return
	}

	n, err := h.transcripts.DeleteByChat(ctx, msg.ChatID)
	if err != nil {
		h.logger.Error("failed to delete transcripts", zap.Error(err), zap.Int64("chat_id", msg.ChatID))
		h.send(msg.ChatID, "Диалог сброшен, но историю удалить не удалось. Попробуйте позже.")
		return
	}
	h.send(msg.ChatID, fmt.Sprintf("Диалог сброшен. Удалено записей истории: %d.", n))
}

func (h *Handler) handleModel(msg Message, args string) {
	model, set, err := ParseModelArg(args)
	if err != nil {
		h.send(msg.ChatID, "Неизвестная модель. Доступны: chat, reasoner.")
		return
	}

	if !set {
		h.send(msg.ChatID, fmt.Sprintf("Текущая модель: <b>%s</b>", h.sessions.Model(msg.ChatID)))
		return
	}

	h.sessions.SetModel(msg.ChatID, model)
	h.send(msg.ChatID, fmt.Sprintf("Модель переключена на <b>%s</b>.", model))
}

func (h *Handler) handleHistory(ctx context.Context, msg Message) {
	if h.transcripts == nil {
		h.send(msg.ChatID, "История не сохраняется: база данных не настроена.")
		return
	}

	items, err := h.transcripts.ListByChat(ctx, msg.ChatID, 10)
	if err != nil {
		h.logger.Error("failed to list transcripts", zap.Error(err), zap.Int64("chat_id", msg.ChatID))
		h.send(msg.ChatID, "Произошла ошибка. Попробуйте позже.")
		return
	}

	h.send(msg.ChatID, FormatHistory(items))
}

// save не мешает ответу: ошибка хранилища только логируется.
func (h *Handler) save(ctx context.Context, t *transcript.Transcript) {
	if h.transcripts == nil {
		return
	}
	if err := h.transcripts.Save(ctx, t); err != nil {
		h.logger.Warn("failed to save transcript", zap.Error(err), zap.Int64("chat_id", t.ChatID))
	}
}

func (h *Handler) send(chatID int64, text string) {
	if err := h.sender.Send(chatID, text); err != nil {
		h.logger.Error("failed to send message", zap.Error(err), zap.Int64("chat_id", chatID))
	}
}

func mapErrorToMessage(err error) string {
	switch deepseek.KindOf(err) {
	case deepseek.KindMissingCredential:
		return "Бот не настроен: не задан ключ DeepSeek API."
	case deepseek.KindNetwork:
		return "Не удалось связаться с DeepSeek. Попробуйте позже."
	case deepseek.KindSerialization:
		return "DeepSeek вернул некорректный ответ. Попробуйте позже."
	case deepseek.KindUnauthorized:
		return "Ключ DeepSeek API недействителен."
	case deepseek.KindForbidden:
		return "Доступ к DeepSeek API запрещен."
	case deepseek.KindInsufficientBalance:
		return "На балансе DeepSeek недостаточно средств."
	case deepseek.KindRateLimited:
		return "DeepSeek ограничил частоту запросов. Подождите немного и повторите."
	case deepseek.KindServer:
		return "Сервис DeepSeek временно недоступен. Попробуйте позже."
	case deepseek.KindAPI:
		var e *deepseek.Error
		if errors.As(err, &e) && e.Message != "" {
			return "Ошибка DeepSeek API: " + html.EscapeString(e.Message)
		}
		return "Ошибка DeepSeek API."
	default:
		return "Произошла ошибка. Попробуйте позже."
	}
}
