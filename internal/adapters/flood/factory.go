package flood

import (
	"time"

	"github.com/vbilous/signalbot/internal/core/ports"
)

// New picks the limiter backend: Redis when an address is configured so all
// instances share the window, otherwise a process-local token bucket with
// roughly the same sustained rate.
func New(redisAddr, redisPassword string, redisDB, limit int, window time.Duration) ports.FloodLimiter {
	if redisAddr != "" {
		return NewRedisLimiter(redisAddr, redisPassword, redisDB, limit, window)
	}
	return NewMemoryLimiter(float64(limit)/window.Seconds(), limit)
}
