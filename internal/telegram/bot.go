package telegram

import (
	"context"
	"fmt"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/kitbuilder587/deepseek-go/internal/metrics"
)

type BotConfig struct {
	Token string
	Debug bool
}

type Bot struct {
	api     *tgbotapi.BotAPI
	logger  *zap.Logger
	metrics *metrics.Metrics
	handler *Handler
	wg      sync.WaitGroup
}

func New(cfg BotConfig, deps Deps) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(cfg.Token)
	if err != nil {
		return nil, fmt.Errorf("create bot api: %w", err)
	}

	api.Debug = cfg.Debug

	bot := newBot(api, deps)

	bot.logger.Info("telegram bot authorized",
		zap.String("username", api.Self.UserName),
	)

	return bot, nil
}

func newBot(api *tgbotapi.BotAPI, deps Deps) *Bot {
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	bot := &Bot{
		api:     api,
		logger:  deps.Logger,
		metrics: deps.Metrics,
	}
	bot.handler = NewHandler(bot, deps)
	return bot
}

func (b *Bot) Run(ctx context.Context) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := b.api.GetUpdatesChan(u)

	b.logger.Info("bot started, waiting for updates")

	for {
		select {
		case <-ctx.Done():
			b.logger.Info("bot stopping, waiting for handlers to finish")
			b.api.StopReceivingUpdates()
			b.wg.Wait()
			b.logger.Info("all handlers finished")
			return ctx.Err()
		case update := <-updates:
			if update.Message == nil || update.Message.Chat == nil {
				continue
			}
			b.wg.Add(1)
			go func(upd tgbotapi.Update) {
				defer b.wg.Done()
				b.handleUpdate(ctx, upd)
			}(update)
		}
	}
}

func (b *Bot) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	startTime := time.Now()
	msg := toMessage(update.Message)

	msgType := "chat"
	if cmd, _ := ParseCommand(msg.Text); cmd != "" {
		msgType = "command"
	}

	if b.metrics != nil {
		b.metrics.IncMessagesInFlight()
		defer b.metrics.DecMessagesInFlight()
	}

	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("panic in update handler",
				zap.Any("panic", r),
				zap.Int64("chat_id", msg.ChatID),
			)
			if b.metrics != nil {
				b.metrics.RecordMessage(msgType, "panic", time.Since(startTime))
			}
		}
	}()

	status := b.handler.HandleMessage(ctx, msg)

	if b.metrics != nil {
		b.metrics.RecordMessage(msgType, status, time.Since(startTime))
	}
}

func toMessage(m *tgbotapi.Message) Message {
	msg := Message{Text: m.Text}
	if m.Chat != nil {
		msg.ChatID = m.Chat.ID
	}
	if m.From != nil {
		msg.UserID = m.From.ID
		msg.Username = m.From.UserName
	}
	return msg
}

func (b *Bot) Send(chatID int64, text string) error {
	if b.api == nil {
		return nil
	}
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	msg.DisableWebPagePreview = true
	_, err := b.api.Send(msg)
	return err
}

func (b *Bot) SendTyping(chatID int64) {
	if b.api == nil {
		return
	}
	action := tgbotapi.NewChatAction(chatID, tgbotapi.ChatTyping)
	b.api.Send(action)
}
