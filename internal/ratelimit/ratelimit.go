// Package ratelimit limits login attempts per client within a fixed window.
package ratelimit

import (
	"context"
	"sync"
	"time"
)

// Limiter decides whether another attempt for key is allowed. When it is not,
// the returned duration is how long the caller should wait.
type Limiter interface {
	Allow(ctx context.Context, key string) (bool, time.Duration, error)
}

// Memory is a single-process fixed-window limiter used when no redis is
// configured.
type Memory struct {
	limit  int
	window time.Duration
	now    func() time.Time

	mu      sync.Mutex
	windows map[string]*window
}

type window struct {
	count int
	reset time.Time
}

// NewMemory returns a Memory limiter allowing limit attempts per window. A
// limit of zero or less disables limiting.
func NewMemory(limit int, win time.Duration) *Memory {
	if win <= 0 {
		win = time.Minute
	}
	return &Memory{limit: limit, window: win, now: time.Now, windows: map[string]*window{}}
}

// Allow counts an attempt for key.
func (m *Memory) Allow(_ context.Context, key string) (bool, time.Duration, error) {
	if m.limit <= 0 {
		return true, 0, nil
	}
	if key == "" {
		key = "unknown"
	}
	now := m.now()

	m.mu.Lock()
	defer m.mu.Unlock()
	m.cleanupLocked(now)

	w, ok := m.windows[key]
	if !ok || !now.Before(w.reset) {
		w = &window{reset: now.Add(m.window)}
		m.windows[key] = w
	}
	w.count++
	if w.count <= m.limit {
		return true, 0, nil
	}
	return false, w.reset.Sub(now), nil
}

func (m *Memory) cleanupLocked(now time.Time) {
	for key, w := range m.windows {
		if !now.Before(w.reset) {
			delete(m.windows, key)
		}
	}
}
