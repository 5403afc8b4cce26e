// Package ratelimit throttles clients per IP with a fixed one-minute window.
package ratelimit

import (
	"math"
	"net/http"
	"strconv"
	"sync"
	"sync/atomic"
	"time"
)

const (
	window   = time.Minute
	idleTTL  = 10 * time.Minute
	sweepDef = 5 * time.Minute
)

// Config sets the per-client budget and the sweep of idle clients.
type Config struct {
	RequestsPerMinute int
	CleanupInterval   time.Duration
	// Now overrides the clock, for tests.
	Now func() time.Time
}

// DefaultConfig allows one request per second on average.
func DefaultConfig() Config {
	return Config{RequestsPerMinute: 60, CleanupInterval: sweepDef}
}

// bucket counts one client's requests inside its current window.
type bucket struct {
	opened time.Time
	seen   time.Time
	count  int
}

// Limiter is safe for concurrent use. Stop ends its sweeper goroutine.
type Limiter struct {
	limit int
	now   func() time.Time

	mu      sync.Mutex
	buckets map[string]*bucket

	rejected atomic.Int64
	done     chan struct{}
	stopOnce sync.Once
}

// NewLimiter starts a limiter whose idle clients are swept every
// CleanupInterval.
func NewLimiter(cfg Config) *Limiter {
	def := DefaultConfig()
	if cfg.RequestsPerMinute <= 0 {
		cfg.RequestsPerMinute = def.RequestsPerMinute
	}
	if cfg.CleanupInterval <= 0 {
		cfg.CleanupInterval = def.CleanupInterval
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	l := &Limiter{
		limit:   cfg.RequestsPerMinute,
		now:     cfg.Now,
		buckets: make(map[string]*bucket),
		done:    make(chan struct{}),
	}
	go l.sweep(cfg.CleanupInterval)
	return l
}

// Take records a request from ip. When the request is over the limit it
// also returns how long until ip's window reopens.
func (l *Limiter) Take(ip string) (allowed bool, retryAfter time.Duration) {
	now := l.now()

	l.mu.Lock()
	defer l.mu.Unlock()

	b, ok := l.buckets[ip]
	if !ok || now.Sub(b.opened) >= window {
		l.buckets[ip] = &bucket{opened: now, seen: now, count: 1}
		return true, 0
	}
	b.count++
	b.seen = now
	if b.count <= l.limit {
		return true, 0
	}
	l.rejected.Add(1)
	return false, window - now.Sub(b.opened)
}

// Allow reports whether a request from ip fits in its window.
func (l *Limiter) Allow(ip string) bool {
	ok, _ := l.Take(ip)
	return ok
}

// RetryAfter returns how long ip must wait for its window to reset.
func (l *Limiter) RetryAfter(ip string) time.Duration {
	l.mu.Lock()
	defer l.mu.Unlock()
	b, ok := l.buckets[ip]
	if !ok {
		return 0
	}
	return max(0, window-l.now().Sub(b.opened))
}

// ActiveClients returns the number of tracked clients.
func (l *Limiter) ActiveClients() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.buckets)
}

// Hits returns how many requests were rejected.
func (l *Limiter) Hits() int64 {
	return l.rejected.Load()
}

// Stop ends the sweeper. It is safe to call more than once.
func (l *Limiter) Stop() {
	l.stopOnce.Do(func() { close(l.done) })
}

func (l *Limiter) sweep(every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-l.done:
			return
		case <-ticker.C:
			l.cleanupStaleEntries()
		}
	}
}

// cleanupStaleEntries forgets clients idle for longer than idleTTL.
func (l *Limiter) cleanupStaleEntries() int {
	cutoff := l.now().Add(-idleTTL)

	l.mu.Lock()
	defer l.mu.Unlock()
	n := 0
	for ip, b := range l.buckets {
		if b.seen.Before(cutoff) {
			delete(l.buckets, ip)
			n++
		}
	}
	return n
}

// Middleware rejects requests over the limit with a Retry-After header in
// whole seconds. onLimit writes the rejection; nil means a plain-text 429.
func (l *Limiter) Middleware(extractIP func(*http.Request) string, onLimit func(http.ResponseWriter, *http.Request)) func(http.Handler) http.Handler {
	if onLimit == nil {
		onLimit = func(w http.ResponseWriter, _ *http.Request) {
			http.Error(w, "rate limit exceeded", http.StatusTooManyRequests)
		}
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ok, wait := l.Take(extractIP(r))
			if !ok {
				w.Header().Set("Retry-After", strconv.Itoa(int(math.Ceil(wait.Seconds()))))
				onLimit(w, r)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
