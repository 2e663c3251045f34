package llm

import (
	"context"

	"github.com/kitbuilder587/deepseek-go/deepseek"
)

// Client - то, что нужно боту от deepseek.Client; подменяется моком в тестах.
type Client interface {
	Send(ctx context.Context, req deepseek.ChatRequest) (*deepseek.ChatResponse, error)
}

var _ Client = (*deepseek.Client)(nil)
