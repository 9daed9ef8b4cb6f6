package ratelimit

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Limiter is a keyed token bucket. Every key shares the same capacity and refill interval.
type Limiter struct {
	limit rate.Limit
	burst int

	mu  sync.Mutex
	m   map[string]*rate.Limiter
	now func() time.Time
}

// New returns a limiter allowing bursts of capacity and refilling one token every interval.
// A zero interval never refills.
func New(capacity int, interval time.Duration) *Limiter {
	if capacity < 1 {
		capacity = 1
	}
	var limit rate.Limit
	if interval > 0 {
		limit = rate.Every(interval)
	}
	return &Limiter{
		limit: limit,
		burst: capacity,
		m:     make(map[string]*rate.Limiter),
		now:   time.Now,
	}
}

// Allow returns true if one token can be consumed for key.
func (l *Limiter) Allow(key string) bool {
	l.mu.Lock()
	lim, ok := l.m[key]
	if !ok {
		lim = rate.NewLimiter(l.limit, l.burst)
		l.m[key] = lim
	}
	l.mu.Unlock()
	return lim.AllowN(l.now(), 1)
}
