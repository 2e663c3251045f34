package transcript

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kitbuilder587/deepseek-go/deepseek"
)

func TestFromResponse(t *testing.T) {
	content := "Hej!"
	resp := &deepseek.ChatResponse{
		ID:      "x",
		Choices: []deepseek.Choice{{Message: deepseek.OutputMessage{Role: deepseek.RoleAssistant, Content: &content}}},
		Usage:   &deepseek.Usage{PromptTokens: 9, CompletionTokens: 2, TotalTokens: 11},
	}

	tr := FromResponse(42, deepseek.ModelChat, "Say hello in Swedish!", resp)

	assert.NotEmpty(t, tr.ID)
	assert.Equal(t, int64(42), tr.ChatID)
	assert.Equal(t, "deepseek-chat", tr.Model)
	assert.Equal(t, "Hej!", tr.Reply)
	assert.Equal(t, 9, tr.PromptTokens)
	assert.Equal(t, 2, tr.CompletionTokens)
	assert.False(t, tr.Failed())
	assert.NoError(t, tr.Validate())
}

func TestFromError(t *testing.T) {
	tr := FromError(42, deepseek.ModelReasoner, "hi", &deepseek.Error{Kind: deepseek.KindRateLimited, Status: 429})
	assert.Equal(t, "rate_limited", tr.ErrorKind)
	assert.Equal(t, "deepseek-reasoner", tr.Model)
	assert.True(t, tr.Failed())

	tr = FromError(42, deepseek.ModelChat, "hi", errors.New("boom"))
	assert.Equal(t, "unknown", tr.ErrorKind)
}

func TestValidate(t *testing.T) {
	assert.ErrorIs(t, (&Transcript{}).Validate(), ErrInvalidTranscript)
	assert.ErrorIs(t, (&Transcript{ID: "a", Model: "m"}).Validate(), ErrInvalidTranscript)
	assert.NoError(t, (&Transcript{ID: "a", ChatID: 1, Model: "m"}).Validate())
}

func TestMockRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewMockRepository()
	base := time.Now()

	for i, prompt := range []string{"first", "second", "third"} {
		tr := &Transcript{ID: prompt, ChatID: 1, Model: "deepseek-chat", Prompt: prompt, CreatedAt: base.Add(time.Duration(i) * time.Second)}
		require.NoError(t, repo.Save(ctx, tr))
	}
	require.NoError(t, repo.Save(ctx, &Transcript{ID: "other", ChatID: 2, Model: "deepseek-chat"}))

	got, err := repo.ListByChat(ctx, 1, 2)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "third", got[0].Prompt)
	assert.Equal(t, "second", got[1].Prompt)

	n, err := repo.DeleteByChat(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)

	got, err = repo.ListByChat(ctx, 1, 10)
	require.NoError(t, err)
	assert.Empty(t, got)

	got, err = repo.ListByChat(ctx, 2, 10)
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestMockRepository_RejectsInvalid(t *testing.T) {
	repo := NewMockRepository()
	assert.ErrorIs(t, repo.Save(context.Background(), &Transcript{}), ErrInvalidTranscript)
}
