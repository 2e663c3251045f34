package transcript

import (
	"context"
	"sort"
	"sync"
	"time"
)

type MockRepository struct {
	mu          sync.RWMutex
	transcripts []Transcript

	SaveErr error
}

func NewMockRepository() *MockRepository {
	return &MockRepository{}
}

func (m *MockRepository) Save(ctx context.Context, t *Transcript) error {
	if m.SaveErr != nil {
		return m.SaveErr
	}
	if err := t.Validate(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if t.CreatedAt.IsZero() {
		t.CreatedAt = time.Now()
	}
	m.transcripts = append(m.transcripts, *t)
	return nil
}

func (m *MockRepository) ListByChat(ctx context.Context, chatID int64, limit int) ([]Transcript, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []Transcript
	for i := len(m.transcripts) - 1; i >= 0; i-- {
		if m.transcripts[i].ChatID == chatID {
			out = append(out, m.transcripts[i])
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *MockRepository) DeleteByChat(ctx context.Context, chatID int64) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	kept := m.transcripts[:0]
	var deleted int64
	for _, t := range m.transcripts {
		if t.ChatID == chatID {
			deleted++
			continue
		}
		kept = append(kept, t)
	}
	m.transcripts = kept
	return deleted, nil
}

var _ Repository = (*MockRepository)(nil)
