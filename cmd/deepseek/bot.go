package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/kitbuilder587/deepseek-go/deepseek"
	"github.com/kitbuilder587/deepseek-go/internal/config"
	"github.com/kitbuilder587/deepseek-go/internal/llm"
	"github.com/kitbuilder587/deepseek-go/internal/metrics"
	"github.com/kitbuilder587/deepseek-go/internal/ratelimit"
	"github.com/kitbuilder587/deepseek-go/internal/server"
	"github.com/kitbuilder587/deepseek-go/internal/session"
	"github.com/kitbuilder587/deepseek-go/internal/telegram"
	"github.com/kitbuilder587/deepseek-go/internal/transcript"
	"github.com/kitbuilder587/deepseek-go/internal/transcript/postgres"
)

func newBotCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "bot",
		Short: "Run the Telegram bot",
		Long: `Run the Telegram chat bot until SIGINT or SIGTERM.

Requires TELEGRAM_BOT_TOKEN in addition to DEEPSEEK_API_KEY. Transcripts are
stored in Postgres when DATABASE_URL is set. Metrics are served on METRICS_ADDR.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBot(cmd.Context())
		},
	}
}

func runBot(parent context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return exitWithCode(ExitValidation, err)
	}
	if err := cfg.ValidateBot(); err != nil {
		return exitWithCode(ExitValidation, err)
	}

	profile, err := config.LoadProfile(cfg.Profile)
	if err != nil {
		return exitWithCode(ExitValidation, err)
	}

	logger, err := cfg.NewLogger()
	if err != nil {
		return exitWithCode(ExitValidation, err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	m := metrics.New()

	clientCfg := cfg.ClientConfig()
	clientCfg.Recorder = m
	client, err := deepseek.New(clientCfg, logger)
	if err != nil {
		return exitWithCode(ExitValidation, err)
	}

	sessions := session.New(ctx, session.Config{
		TTL:          cfg.Session.TTL,
		MaxMessages:  cfg.Session.MaxMessages,
		DefaultModel: profile.ModelOr(deepseek.ModelChat),
	})
	defer sessions.Stop()

	limiter := ratelimit.New(ctx, ratelimit.Config{
		RequestsPerMinute: cfg.RateLimit.RequestsPerMinute,
	})
	defer limiter.Stop()

	var transcripts transcript.Repository
	if cfg.Database.URL != "" {
		db, err := postgres.New(ctx, cfg.Database.URL)
		if err != nil {
			return exitWithCode(ExitService, fmt.Errorf("connect database: %w", err))
		}
		defer db.Close()

		if err := db.Migrate(ctx); err != nil {
			return exitWithCode(ExitService, err)
		}
		transcripts = postgres.NewTranscriptRepo(db)
		logger.Info("transcripts enabled")
	} else {
		logger.Info("DATABASE_URL not set, transcripts disabled")
	}

	bot, err := telegram.New(telegram.BotConfig{
		Token: cfg.Telegram.Token,
		Debug: cfg.Telegram.Debug,
	}, telegram.Deps{
		LLM:         llm.NewRetrying(client, llm.RetryConfig{Attempts: cfg.DeepSeek.RetryAttempts}, logger),
		Sessions:    sessions,
		Limiter:     limiter,
		Transcripts: transcripts,
		Profile:     profile,
		Metrics:     m,
		Logger:      logger,
	})
	if err != nil {
		return exitWithCode(ExitService, err)
	}

	srv := server.New(cfg.Metrics.Addr, metrics.Handler(), logger)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return bot.Run(gctx)
	})
	g.Go(func() error {
		return srv.Run(gctx)
	})

	err = g.Wait()
	if err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("bot stopped with error", zap.Error(err))
		return exitWithCode(ExitService, err)
	}

	logger.Info("bot stopped")
	return nil
}
