package flood

import (
	"context"
	"sync"
	"time"
)

// MemoryLimiter implements a simple per-chat token bucket. Used when no Redis
// address is configured; state is local to the process.
type MemoryLimiter struct {
	mu      sync.Mutex
	buckets map[int64]*bucket
	rate    float64 // tokens per second
	burst   int     // max tokens
}

type bucket struct {
	tokens float64
	last   time.Time
}

func NewMemoryLimiter(rate float64, burst int) *MemoryLimiter {
	return &MemoryLimiter{
		buckets: make(map[int64]*bucket),
		rate:    rate,
		burst:   burst,
	}
}

func (l *MemoryLimiter) Allow(_ context.Context, chatID int64) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	b, exists := l.buckets[chatID]
	if !exists {
		b = &bucket{
			tokens: float64(l.burst),
			last:   time.Now(),
		}
		l.buckets[chatID] = b
	}

	now := time.Now()
	elapsed := now.Sub(b.last).Seconds()
	b.last = now

	// Refill
	b.tokens += elapsed * l.rate
	if b.tokens > float64(l.burst) {
		b.tokens = float64(l.burst)
	}

	// Consume
	if b.tokens >= 1 {
		b.tokens--
		return true, nil
	}

	return false, nil
}

// Cleanup removes idle buckets to prevent memory leaks.
func (l *MemoryLimiter) Cleanup() {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	for chatID, b := range l.buckets {
		if now.Sub(b.last) > 10*time.Minute {
			delete(l.buckets, chatID)
		}
	}
}
