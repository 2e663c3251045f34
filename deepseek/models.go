package deepseek

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// Role is the author of a chat turn.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

func (r Role) valid() bool {
	switch r {
	case RoleSystem, RoleUser, RoleAssistant:
		return true
	}
	return false
}

// UnmarshalJSON rejects roles outside the closed set.
func (r *Role) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	if !Role(s).valid() {
		return fmt.Errorf("unknown role %q", s)
	}
	*r = Role(s)
	return nil
}

// Message is a single turn of the conversation sent to the service.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// Model identifies a backend model. The zero value is ModelChat.
type Model int

const (
	ModelChat Model = iota
	ModelReasoner
)

var errUnknownModel = errors.New("unknown model")

// String returns the canonical wire name.
func (m Model) String() string {
	switch m {
	case ModelChat:
		return "deepseek-chat"
	case ModelReasoner:
		return "deepseek-reasoner"
	default:
		return fmt.Sprintf("Model(%d)", int(m))
	}
}

// MarshalText fails for values outside the enumeration so an invalid model
// never reaches the wire.
func (m Model) MarshalText() ([]byte, error) {
	switch m {
	case ModelChat, ModelReasoner:
		return []byte(m.String()), nil
	default:
		return nil, fmt.Errorf("%w: %d", errUnknownModel, int(m))
	}
}

// ParseModel accepts canonical names and the short aliases "chat" and "reasoner".
func ParseModel(s string) (Model, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "deepseek-chat", "chat":
		return ModelChat, nil
	case "deepseek-reasoner", "reasoner":
		return ModelReasoner, nil
	default:
		return 0, fmt.Errorf("%w: %q", errUnknownModel, s)
	}
}

// ChatRequest is the body of POST /chat/completions. Nil optional fields are
// omitted from the encoded object.
type ChatRequest struct {
	Model       Model     `json:"model"`
	Messages    []Message `json:"messages"`
	Temperature *float32  `json:"temperature,omitempty"`
	MaxTokens   *int      `json:"max_tokens,omitempty"`
	Stream      *bool     `json:"stream,omitempty"`
}

// ChatResponse is a decoded completion.
type ChatResponse struct {
	ID      string   `json:"id"`
	Object  string   `json:"object,omitempty"`
	Created int64    `json:"created,omitempty"`
	Model   string   `json:"model,omitempty"`
	Choices []Choice `json:"choices"`
	Usage   *Usage   `json:"usage,omitempty"`
}

// UnmarshalJSON requires "id" and "choices".
func (r *ChatResponse) UnmarshalJSON(data []byte) error {
	var aux struct {
		ID      *string   `json:"id"`
		Object  string    `json:"object"`
		Created int64     `json:"created"`
		Model   string    `json:"model"`
		Choices *[]Choice `json:"choices"`
		Usage   *Usage    `json:"usage"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	if aux.ID == nil {
		return missingField("id")
	}
	if aux.Choices == nil {
		return missingField("choices")
	}
	*r = ChatResponse{
		ID:      *aux.ID,
		Object:  aux.Object,
		Created: aux.Created,
		Model:   aux.Model,
		Choices: *aux.Choices,
		Usage:   aux.Usage,
	}
	return nil
}

// Content returns the text of the first choice, or "" when there is none.
func (r *ChatResponse) Content() string {
	if r == nil || len(r.Choices) == 0 || r.Choices[0].Message.Content == nil {
		return ""
	}
	return *r.Choices[0].Message.Content
}

type Choice struct {
	Index        int           `json:"index"`
	Message      OutputMessage `json:"message"`
	FinishReason string        `json:"finish_reason,omitempty"`
}

// UnmarshalJSON requires "index" and "message".
func (c *Choice) UnmarshalJSON(data []byte) error {
	var aux struct {
		Index        *int           `json:"index"`
		Message      *OutputMessage `json:"message"`
		FinishReason string         `json:"finish_reason"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	if aux.Index == nil {
		return missingField("index")
	}
	if *aux.Index < 0 {
		return fmt.Errorf("negative choice index %d", *aux.Index)
	}
	if aux.Message == nil {
		return missingField("message")
	}
	*c = Choice{Index: *aux.Index, Message: *aux.Message, FinishReason: aux.FinishReason}
	return nil
}

// OutputMessage is a message produced by the service. Content is nil when
// the service produced no text.
type OutputMessage struct {
	Role             Role    `json:"role"`
	Content          *string `json:"content,omitempty"`
	ReasoningContent *string `json:"reasoning_content,omitempty"`
}

// UnmarshalJSON requires "role".
func (m *OutputMessage) UnmarshalJSON(data []byte) error {
	var aux struct {
		Role             *Role   `json:"role"`
		Content          *string `json:"content"`
		ReasoningContent *string `json:"reasoning_content"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	if aux.Role == nil {
		return missingField("role")
	}
	*m = OutputMessage{Role: *aux.Role, Content: aux.Content, ReasoningContent: aux.ReasoningContent}
	return nil
}

type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// UnmarshalJSON rejects negative counters.
func (u *Usage) UnmarshalJSON(data []byte) error {
	type plain Usage
	var aux plain
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	switch {
	case aux.PromptTokens < 0:
		return fmt.Errorf("negative prompt_tokens %d", aux.PromptTokens)
	case aux.CompletionTokens < 0:
		return fmt.Errorf("negative completion_tokens %d", aux.CompletionTokens)
	case aux.TotalTokens < 0:
		return fmt.Errorf("negative total_tokens %d", aux.TotalTokens)
	}
	*u = Usage(aux)
	return nil
}

// apiErrorEnvelope is the best-effort shape of a failure body.
type apiErrorEnvelope struct {
	Error *apiErrorBody `json:"error"`
}

type apiErrorBody struct {
	Message *string         `json:"message"`
	Type    *string         `json:"type"`
	Code    json.RawMessage `json:"code"`
}

func missingField(name string) error {
	return fmt.Errorf("missing field %q", name)
}
