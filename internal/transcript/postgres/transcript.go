package postgres

import (
	"context"
	"fmt"

	"github.com/kitbuilder587/deepseek-go/internal/transcript"
)

type TranscriptRepo struct {
	db *DB
}

func NewTranscriptRepo(db *DB) *TranscriptRepo {
	return &TranscriptRepo{db: db}
}

var _ transcript.Repository = (*TranscriptRepo)(nil)

func (r *TranscriptRepo) Save(ctx context.Context, t *transcript.Transcript) error {
	if err := t.Validate(); err != nil {
		return err
	}

	query := `
        INSERT INTO transcripts (id, chat_id, model, prompt, reply, prompt_tokens, completion_tokens, error_kind)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
        RETURNING created_at
    `

	err := r.db.Pool.QueryRow(ctx, query,
		t.ID,
		t.ChatID,
		t.Model,
		t.Prompt,
		t.Reply,
		t.PromptTokens,
		t.CompletionTokens,
		t.ErrorKind,
	).Scan(&t.CreatedAt)
	if err != nil {
		return fmt.Errorf("save transcript: %w", err)
	}

	return nil
}

func (r *TranscriptRepo) ListByChat(ctx context.Context, chatID int64, limit int) ([]transcript.Transcript, error) {
	if limit <= 0 {
		limit = 10
	}

	query := `
        SELECT id::text, chat_id, model, prompt, reply, prompt_tokens, completion_tokens, error_kind, created_at
        FROM transcripts
        WHERE chat_id = $1
        ORDER BY created_at DESC
        LIMIT $2
    `

	rows, err := r.db.Pool.Query(ctx, query, chatID, limit)
	if err != nil {
		return nil, fmt.Errorf("list transcripts: %w", err)
	}
	defer rows.Close()

	var out []transcript.Transcript
	for rows.Next() {
		var t transcript.Transcript
		err := rows.Scan(
			&t.ID,
			&t.ChatID,
			&t.Model,
			&t.Prompt,
			&t.Reply,
			&t.PromptTokens,
			&t.CompletionTokens,
			&t.ErrorKind,
			&t.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan transcript: %w", err)
		}
		out = append(out, t)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return out, nil
}

func (r *TranscriptRepo) DeleteByChat(ctx context.Context, chatID int64) (int64, error) {
	result, err := r.db.Pool.Exec(ctx, `DELETE FROM transcripts WHERE chat_id = $1`, chatID)
	if err != nil {
		return 0, fmt.Errorf("delete transcripts: %w", err)
	}
	return result.RowsAffected(), nil
}
