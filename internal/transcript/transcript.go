package transcript

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/kitbuilder587/deepseek-go/deepseek"
)

var ErrInvalidTranscript = errors.New("invalid transcript")

// Transcript - одна пара вопрос/ответ бота. ErrorKind пустой для успешных.
type Transcript struct {
	ID               string
	ChatID           int64
	Model            string
	Prompt           string
	Reply            string
	PromptTokens     int
	CompletionTokens int
	ErrorKind        string
	CreatedAt        time.Time
}

type Repository interface {
	Save(ctx context.Context, t *Transcript) error
	// ListByChat возвращает последние limit записей, новые первыми.
	ListByChat(ctx context.Context, chatID int64, limit int) ([]Transcript, error)
	DeleteByChat(ctx context.Context, chatID int64) (int64, error)
}

// FromResponse собирает транскрипт успешного обмена.
func FromResponse(chatID int64, model deepseek.Model, prompt string, resp *deepseek.ChatResponse) *Transcript {
	t := &Transcript{
		ID:     uuid.New().String(),
		ChatID: chatID,
		Model:  model.String(),
		Prompt: prompt,
		Reply:  resp.Content(),
	}
	if resp.Usage != nil {
		t.PromptTokens = resp.Usage.PromptTokens
		t.CompletionTokens = resp.Usage.CompletionTokens
	}
	return t
}

// FromError собирает транскрипт неудачного обмена.
func FromError(chatID int64, model deepseek.Model, prompt string, err error) *Transcript {
	kind := deepseek.KindOf(err)
	name := "unknown"
	if kind != 0 {
		name = kind.String()
	}
	return &Transcript{
		ID:        uuid.New().String(),
		ChatID:    chatID,
		Model:     model.String(),
		Prompt:    prompt,
		ErrorKind: name,
	}
}

func (t *Transcript) Validate() error {
	if t.ID == "" || t.ChatID == 0 || t.Model == "" {
		return ErrInvalidTranscript
	}
	return nil
}

func (t *Transcript) Failed() bool {
	return t.ErrorKind != ""
}
