package deepseek

import "context"

// ChatBuilder accumulates a conversation and generation parameters.
//
// Every method takes and returns the builder by value, and appends copy the
// message slice, so a builder can be forked without the branches seeing each
// other's messages:
//
//	base := client.Chat().System("Be brief.")
//	a := base.User("first")
//	b := base.User("second") // a is unaffected
type ChatBuilder struct {
	client *Client
	req    ChatRequest
}

// NewChatBuilder returns a builder with no client attached. Build works;
// Send fails with KindMissingCredential.
func NewChatBuilder() ChatBuilder {
	return ChatBuilder{}
}

func (b ChatBuilder) Model(m Model) ChatBuilder {
	b.req.Model = m
	return b
}

func (b ChatBuilder) System(content string) ChatBuilder {
	return b.message(RoleSystem, content)
}

func (b ChatBuilder) User(content string) ChatBuilder {
	return b.message(RoleUser, content)
}

func (b ChatBuilder) Assistant(content string) ChatBuilder {
	return b.message(RoleAssistant, content)
}

// Messages appends msgs in order.
func (b ChatBuilder) Messages(msgs ...Message) ChatBuilder {
	out := make([]Message, 0, len(b.req.Messages)+len(msgs))
	out = append(out, b.req.Messages...)
	b.req.Messages = append(out, msgs...)
	return b
}

// Temperature is passed through unvalidated; the service decides the range.
func (b ChatBuilder) Temperature(v float32) ChatBuilder {
	b.req.Temperature = &v
	return b
}

func (b ChatBuilder) MaxTokens(n int) ChatBuilder {
	b.req.MaxTokens = &n
	return b
}

// Stream records the streaming flag. Streaming delivery is not supported:
// the client always sends stream=false when the flag is set.
func (b ChatBuilder) Stream(enabled bool) ChatBuilder {
	b.req.Stream = &enabled
	return b
}

func (b ChatBuilder) message(role Role, content string) ChatBuilder {
	return b.Messages(Message{Role: role, Content: content})
}

// Build returns an independent copy of the request.
func (b ChatBuilder) Build() ChatRequest {
	req := b.req
	req.Messages = make([]Message, len(b.req.Messages))
	copy(req.Messages, b.req.Messages)
	if b.req.Temperature != nil {
		v := *b.req.Temperature
		req.Temperature = &v
	}
	if b.req.MaxTokens != nil {
		n := *b.req.MaxTokens
		req.MaxTokens = &n
	}
	if b.req.Stream != nil {
		s := *b.req.Stream
		req.Stream = &s
	}
	return req
}

// Send builds the request and performs the exchange.
func (b ChatBuilder) Send(ctx context.Context) (*ChatResponse, error) {
	if b.client == nil {
		return nil, &Error{Kind: KindMissingCredential}
	}
	return b.client.Send(ctx, b.Build())
}
