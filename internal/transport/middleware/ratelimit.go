package middleware

import (
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"
)

// RateLimiter throttles requests per client IP with token buckets. Buckets
// idle for longer than ten minutes are dropped by a background sweeper.
type RateLimiter struct {
	buckets sync.Map // client IP -> *bucket
	stop    chan struct{}
}

type bucket struct {
	mu       sync.Mutex
	tokens   float64
	capacity float64
	perSec   float64
	refilled time.Time
}

// NewRateLimiter starts the limiter and its sweeper. Call Stop on shutdown.
func NewRateLimiter(sweepEvery time.Duration) *RateLimiter {
	rl := &RateLimiter{stop: make(chan struct{})}
	go rl.sweep(sweepEvery)
	return rl
}

// Stop terminates the sweeper goroutine.
func (rl *RateLimiter) Stop() {
	close(rl.stop)
}

// Limit caps each client IP at maxPerMinute requests. Rejections carry a
// Retry-After hint rounded up to the next whole second.
func (rl *RateLimiter) Limit(maxPerMinute int) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			b := rl.bucketFor(clientIP(r), maxPerMinute)
			if !b.take() {
				retryAfter := 60.0 / float64(maxPerMinute)
				w.Header().Set("Retry-After", strconv.Itoa(int(retryAfter)+1))
				http.Error(w, "rate limit exceeded", http.StatusTooManyRequests)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// clientIP strips the port from RemoteAddr so every connection from one host
// shares a bucket.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func (rl *RateLimiter) bucketFor(ip string, maxPerMinute int) *bucket {
	capacity := float64(maxPerMinute)

	val, _ := rl.buckets.LoadOrStore(ip, &bucket{
		tokens:   capacity,
		capacity: capacity,
		perSec:   capacity / 60.0,
		refilled: time.Now(),
	})

	return val.(*bucket)
}

func (b *bucket) take() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	now := time.Now()
	b.tokens += now.Sub(b.refilled).Seconds() * b.perSec
	if b.tokens > b.capacity {
		b.tokens = b.capacity
	}
	b.refilled = now

	if b.tokens < 1 {
		return false
	}
	b.tokens--
	return true
}

func (rl *RateLimiter) sweep(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-rl.stop:
			return
		case <-ticker.C:
			now := time.Now()
			rl.buckets.Range(func(key, value any) bool {
				b := value.(*bucket)
				b.mu.Lock()
				idle := now.Sub(b.refilled)
				b.mu.Unlock()
				if idle > 10*time.Minute {
					rl.buckets.Delete(key)
				}
				return true
			})
		}
	}
}
