package ratelimit

import (
	"context"
	"sync"
	"time"
)

// Limiter - sliding window по ключу (chat id)
type Limiter struct {
	mu       sync.Mutex
	requests map[int64][]time.Time
	limit    int
	window   time.Duration

	stopOnce sync.Once
	stopChan chan struct{}
}

type Config struct {
	RequestsPerMinute int
	// Window по умолчанию минута; RequestsPerMinute тогда означает "за окно"
	Window time.Duration
}

func New(ctx context.Context, cfg Config) *Limiter {
	limit := cfg.RequestsPerMinute
	if limit <= 0 {
		limit = 10
	}
	window := cfg.Window
	if window <= 0 {
		window = time.Minute
	}

	l := &Limiter{
		requests: make(map[int64][]time.Time),
		limit:    limit,
		window:   window,
		stopChan: make(chan struct{}),
	}
	go l.cleanup(ctx)
	return l
}

func (l *Limiter) Allow(key int64) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	fresh := l.fresh(key, now)

	if len(fresh) >= l.limit {
		return false
	}

	l.requests[key] = append(fresh, now)
	return true
}

func (l *Limiter) RemainingRequests(key int64) int {
	l.mu.Lock()
	defer l.mu.Unlock()

	if rem := l.limit - len(l.fresh(key, time.Now())); rem > 0 {
		return rem
	}
	return 0
}

// ResetTime - когда освободится следующий слот (приблизительно)
func (l *Limiter) ResetTime(key int64) time.Time {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	ts := l.fresh(key, now)
	if len(ts) == 0 {
		return now
	}

	oldest := ts[0]
	for _, t := range ts[1:] {
		if t.Before(oldest) {
			oldest = t
		}
	}
	return oldest.Add(l.window)
}

func (l *Limiter) Stop() {
	l.stopOnce.Do(func() { close(l.stopChan) })
}

// fresh отбрасывает таймстемпы за пределами окна (in place) и сохраняет
// результат обратно. Вызывать под l.mu.
func (l *Limiter) fresh(key int64, now time.Time) []time.Time {
	cutoff := now.Add(-l.window)
	old := l.requests[key]
	out := old[:0]
	for _, t := range old {
		if t.After(cutoff) {
			out = append(out, t)
		}
	}
	if len(old) > 0 {
		l.requests[key] = out
	}
	return out
}

func (l *Limiter) cleanup(ctx context.Context) {
	tick := time.NewTicker(5 * time.Minute)
	defer tick.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-l.stopChan:
			return
		case <-tick.C:
			l.removeStale()
		}
	}
}

func (l *Limiter) removeStale() {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	for key := range l.requests {
		if len(l.fresh(key, now)) == 0 {
			delete(l.requests, key)
		}
	}
}
