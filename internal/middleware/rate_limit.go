package middleware

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/autopay/backend/internal/api/httpx"
)

// Limiter answers whether the client behind key may proceed.
type Limiter interface {
	Allow(ctx context.Context, key string) bool
}

type tokenBucket struct {
	tokens int
	last   time.Time
}

// memoryLimiter keeps one token bucket per client key. Single-instance only;
// use the Redis limiter when running more than one replica.
type memoryLimiter struct {
	mu      sync.Mutex
	buckets map[string]*tokenBucket
	rate    int
	burst   int
}

func NewMemoryLimiter(rps int) Limiter {
	return &memoryLimiter{
		buckets: make(map[string]*tokenBucket),
		rate:    rps,
		burst:   rps,
	}
}

func (l *memoryLimiter) Allow(_ context.Context, key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	tb, ok := l.buckets[key]
	if !ok {
		// sweep stale buckets before growing further
		if len(l.buckets) >= 10_000 {
			for k, b := range l.buckets {
				if now.Sub(b.last) > time.Minute {
					delete(l.buckets, k)
				}
			}
		}
		tb = &tokenBucket{tokens: l.burst, last: now}
		l.buckets[key] = tb
	}

	elapsed := now.Sub(tb.last).Seconds()
	if elapsed > 0 {
		refill := int(elapsed * float64(l.rate))
		if refill > 0 {
			tb.tokens += refill
			if tb.tokens > l.burst {
				tb.tokens = l.burst
			}
			tb.last = now
		}
	}

	if tb.tokens <= 0 {
		return false
	}
	tb.tokens--
	return true
}

// redisLimiter counts requests in fixed one-second windows shared across
// instances. Redis being unreachable fails open so the limiter cannot take
// the API down with it.
type redisLimiter struct {
	client *redis.Client
	scope  string
	rate   int
}

func NewRedisLimiter(client *redis.Client, scope string, rps int) Limiter {
	return &redisLimiter{client: client, scope: scope, rate: rps}
}

func (l *redisLimiter) Allow(ctx context.Context, key string) bool {
	k := fmt.Sprintf("ratelimit:%s:%s:%d", l.scope, key, time.Now().Unix())
	n, err := l.client.Incr(ctx, k).Result()
	if err != nil {
		return true
	}
	if n == 1 {
		l.client.Expire(ctx, k, 2*time.Second)
	}
	return n <= int64(l.rate)
}

// RateLimit enforces a per-client limit keyed by IP. A nil limiter disables
// the middleware.
func RateLimit(l Limiter) func(http.Handler) http.Handler {
	if l == nil {
		return func(next http.Handler) http.Handler { return next }
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !l.Allow(r.Context(), clientIP(r)) {
				httpx.WriteError(w, http.StatusTooManyRequests, "rate_limited", "too many requests", nil)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		if i := strings.IndexByte(fwd, ','); i >= 0 {
			return strings.TrimSpace(fwd[:i])
		}
		return strings.TrimSpace(fwd)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
