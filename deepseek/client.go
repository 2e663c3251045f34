// Package deepseek is a client for the DeepSeek chat-completion API.
//
// Build a request with Client.Chat, send it, and branch on the returned
// *Error's Kind when it fails:
//
//	client, err := deepseek.FromEnv(logger)
//	if err != nil {
//		return err
//	}
//	resp, err := client.Chat().
//		System("You are a helpful assistant.").
//		User("Say hello in Swedish!").
//		Temperature(0.7).
//		MaxTokens(128).
//		Send(ctx)
//
// A Client is safe for concurrent use. It never retries.
package deepseek

import (
	"context"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

const (
	EnvAPIKey  = "DEEPSEEK_API_KEY"
	EnvBaseURL = "DEEPSEEK_API_BASE_URL"

	DefaultBaseURL = "https://api.deepseek.com"

	Version   = "0.3.0"
	userAgent = "deepseek-go/" + Version
)

// Recorder receives one observation per Send. outcome is "ok" or the
// failing Kind's name; usage is nil unless the service reported it.
type Recorder interface {
	RecordCompletion(model, outcome string, duration time.Duration, usage *Usage)
}

type Config struct {
	APIKey  string
	BaseURL string
	// HTTPClient defaults to a plain *http.Client with Timeout applied.
	HTTPClient HTTPDoer
	// Timeout is only used when HTTPClient is nil. Zero means no timeout.
	Timeout  time.Duration
	Recorder Recorder
}

// Client holds the credential and base URL for its whole lifetime.
type Client struct {
	apiKey   string
	baseURL  string
	http     HTTPDoer
	logger   *zap.Logger
	recorder Recorder
}

// New returns ErrMissingCredential-kind error when cfg.APIKey is empty.
func New(cfg Config, logger *zap.Logger) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, &Error{Kind: KindMissingCredential}
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = &http.Client{Timeout: cfg.Timeout}
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Client{
		apiKey:   cfg.APIKey,
		baseURL:  strings.TrimRight(cfg.BaseURL, "/"),
		http:     cfg.HTTPClient,
		logger:   logger,
		recorder: cfg.Recorder,
	}, nil
}

// FromEnv reads DEEPSEEK_API_KEY and DEEPSEEK_API_BASE_URL. A .env file in
// the working directory is loaded first if present; it never overrides
// variables that are already set.
func FromEnv(logger *zap.Logger) (*Client, error) {
	_ = godotenv.Load()

	apiKey, ok := os.LookupEnv(EnvAPIKey)
	if !ok || apiKey == "" {
		return nil, &Error{Kind: KindMissingCredential}
	}

	baseURL := os.Getenv(EnvBaseURL)
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	return New(Config{APIKey: apiKey, BaseURL: baseURL}, logger)
}

// BaseURL returns the configured endpoint root.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Chat starts a request on ModelChat with no messages.
func (c *Client) Chat() ChatBuilder {
	return ChatBuilder{client: c}
}

// Send performs one exchange for req and decodes the result.
func (c *Client) Send(ctx context.Context, req ChatRequest) (*ChatResponse, error) {
	start := time.Now()
	model := req.Model.String()

	status, body, err := c.exchange(ctx, req)
	if err == nil {
		var resp *ChatResponse
		resp, err = DecodeResponse(status, body)
		if err == nil {
			c.logger.Debug("chat completion done",
				zap.String("model", model),
				zap.String("id", resp.ID),
				zap.Int("choices", len(resp.Choices)),
				zap.Duration("duration", time.Since(start)),
			)
			c.record(model, "ok", start, resp.Usage)
			return resp, nil
		}
	}

	kind := KindOf(err)
	fields := []zap.Field{
		zap.String("model", model),
		zap.Stringer("kind", kind),
		zap.Int("status", status),
		zap.Duration("duration", time.Since(start)),
		zap.Error(err),
	}
	if status != 0 && (status < 200 || status >= 300) {
		fields = append(fields, zap.String("body", truncate(string(body), 512)))
	}
	c.logger.Warn("chat completion failed", fields...)
	c.record(model, kind.String(), start, nil)

	return nil, err
}

func (c *Client) record(model, outcome string, start time.Time, usage *Usage) {
	if c.recorder == nil {
		return
	}
	c.recorder.RecordCompletion(model, outcome, time.Since(start), usage)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
