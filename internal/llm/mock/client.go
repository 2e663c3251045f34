package mock

import (
	"context"
	"sync"
	"time"

	"github.com/kitbuilder587/deepseek-go/deepseek"
	"github.com/kitbuilder587/deepseek-go/internal/llm"
)

type Client struct {
	mu sync.Mutex

	Response string
	Usage    *deepseek.Usage
	Error    error
	Delay    time.Duration

	CallCount   int
	LastRequest deepseek.ChatRequest
	AllRequests []deepseek.ChatRequest
}

func New() *Client {
	return &Client{
		Response: "Hej!",
	}
}

func (c *Client) WithResponse(response string) *Client {
	c.Response = response
	return c
}

func (c *Client) WithUsage(prompt, completion int) *Client {
	c.Usage = &deepseek.Usage{
		PromptTokens:     prompt,
		CompletionTokens: completion,
		TotalTokens:      prompt + completion,
	}
	return c
}

func (c *Client) WithError(err error) *Client {
	c.Error = err
	return c
}

func (c *Client) WithDelay(delay time.Duration) *Client {
	c.Delay = delay
	return c
}

func (c *Client) Send(ctx context.Context, req deepseek.ChatRequest) (*deepseek.ChatResponse, error) {
	c.mu.Lock()
	c.CallCount++
	c.LastRequest = req
	c.AllRequests = append(c.AllRequests, req)
	delay, resp, usage, err := c.Delay, c.Response, c.Usage, c.Error
	c.mu.Unlock()

	if delay > 0 {
		select {
		case <-ctx.Done():
			return nil, &deepseek.Error{Kind: deepseek.KindNetwork, Err: ctx.Err()}
		case <-time.After(delay):
		}
	}

	if err != nil {
		return nil, err
	}

	return &deepseek.ChatResponse{
		ID:    "mock-completion",
		Model: req.Model.String(),
		Choices: []deepseek.Choice{
			{Index: 0, Message: deepseek.OutputMessage{Role: deepseek.RoleAssistant, Content: &resp}, FinishReason: "stop"},
		},
		Usage: usage,
	}, nil
}

func (c *Client) Calls() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.CallCount
}

func (c *Client) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.CallCount = 0
	c.LastRequest = deepseek.ChatRequest{}
	c.AllRequests = nil
}

var _ llm.Client = (*Client)(nil)
