package session

import (
	"context"
	"sync"
	"time"

	"github.com/kitbuilder587/deepseek-go/deepseek"
)

type Config struct {
	TTL         time.Duration
	MaxMessages int
	// CleanupInterval по умолчанию 5 минут
	CleanupInterval time.Duration
	// DefaultModel - модель новых сессий
	DefaultModel deepseek.Model
}

type session struct {
	model     deepseek.Model
	messages  []deepseek.Message
	expiresAt time.Time
}

// Store - история диалогов по chat id в памяти. TTL скользящий: любое
// обращение к сессии продлевает ее.
type Store struct {
	mu           sync.Mutex
	sessions     map[int64]*session
	ttl          time.Duration
	maxMessages  int
	defaultModel deepseek.Model

	stopChan chan struct{}
	stopped  bool
}

func New(ctx context.Context, cfg Config) *Store {
	if cfg.TTL <= 0 {
		cfg.TTL = time.Hour
	}
	if cfg.MaxMessages <= 0 {
		cfg.MaxMessages = 20
	}
	if cfg.CleanupInterval <= 0 {
		cfg.CleanupInterval = 5 * time.Minute
	}

	s := &Store{
		sessions:     make(map[int64]*session),
		ttl:          cfg.TTL,
		maxMessages:  cfg.MaxMessages,
		defaultModel: cfg.DefaultModel,
		stopChan:     make(chan struct{}),
	}
	go s.cleanup(ctx, cfg.CleanupInterval)
	return s
}

// History возвращает копию истории, старые сообщения первыми.
func (s *Store) History(chatID int64) []deepseek.Message {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess := s.touch(chatID, false)
	if sess == nil {
		return nil
	}
	out := make([]deepseek.Message, len(sess.messages))
	copy(out, sess.messages)
	return out
}

// Append добавляет сообщения и обрезает историю до MaxMessages.
func (s *Store) Append(chatID int64, msgs ...deepseek.Message) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess := s.touch(chatID, true)
	sess.messages = append(sess.messages, msgs...)
	sess.messages = trim(sess.messages, s.maxMessages)
}

func (s *Store) Model(chatID int64) deepseek.Model {
	s.mu.Lock()
	defer s.mu.Unlock()

	if sess := s.touch(chatID, false); sess != nil {
		return sess.model
	}
	return s.defaultModel
}

func (s *Store) SetModel(chatID int64, m deepseek.Model) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.touch(chatID, true).model = m
}

// Reset очищает историю, выбранная модель сохраняется.
func (s *Store) Reset(chatID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if sess := s.touch(chatID, false); sess != nil {
		sess.messages = nil
	}
}

// Len - число живых сессий.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	n := 0
	for _, sess := range s.sessions {
		if now.Before(sess.expiresAt) {
			n++
		}
	}
	return n
}

func (s *Store) Stop() {
	s.mu.Lock()
	if !s.stopped {
		s.stopped = true
		close(s.stopChan)
	}
	s.mu.Unlock()
}

// touch продлевает сессию; просроченная считается отсутствующей.
// Вызывать под s.mu.
func (s *Store) touch(chatID int64, create bool) *session {
	now := time.Now()

	sess, ok := s.sessions[chatID]
	if ok && !now.Before(sess.expiresAt) {
		delete(s.sessions, chatID)
		sess, ok = nil, false
	}
	if !ok {
		if !create {
			return nil
		}
		sess = &session{model: s.defaultModel}
		s.sessions[chatID] = sess
	}

	sess.expiresAt = now.Add(s.ttl)
	return sess
}

// trim оставляет последние max сообщений и не дает истории начинаться
// с ответа ассистента.
func trim(msgs []deepseek.Message, max int) []deepseek.Message {
	if len(msgs) <= max {
		return msgs
	}
	msgs = msgs[len(msgs)-max:]
	for len(msgs) > 0 && msgs[0].Role == deepseek.RoleAssistant {
		msgs = msgs[1:]
	}
	out := make([]deepseek.Message, len(msgs))
	copy(out, msgs)
	return out
}

func (s *Store) cleanup(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-s.stopChan:
			return
		case <-ticker.C:
			s.removeExpired()
		}
	}
}

func (s *Store) removeExpired() {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	for id, sess := range s.sessions {
		if !now.Before(sess.expiresAt) {
			delete(s.sessions, id)
		}
	}
}
