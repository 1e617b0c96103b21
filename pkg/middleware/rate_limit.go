package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	apperrors "dancebook/pkg/errors"
	httputil "dancebook/pkg/http"
	"dancebook/pkg/logger"

	"github.com/redis/go-redis/v9"
)

// Limiter decides whether one more request for key fits its quota.
type Limiter interface {
	Allow(ctx context.Context, key string) bool
}

type KeyExtractor func(r *http.Request) string

// SlidingWindowLimiter keeps per-key request timestamps in process.
type SlidingWindowLimiter struct {
	mu       sync.Mutex
	requests map[string][]time.Time
	limit    int
	window   time.Duration
	now      func() time.Time
	stopCh   chan struct{}
	stopOnce sync.Once
}

func NewSlidingWindowLimiter(limit int, window time.Duration) *SlidingWindowLimiter {
	limiter := &SlidingWindowLimiter{
		requests: make(map[string][]time.Time),
		limit:    limit,
		window:   window,
		now:      time.Now,
		stopCh:   make(chan struct{}),
	}

	go limiter.cleanup()

	return limiter
}

func (rl *SlidingWindowLimiter) cleanup() {
	ticker := time.NewTicker(1 * time.Hour)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			rl.mu.Lock()
			for key, timestamps := range rl.requests {
				if len(timestamps) == 0 || rl.now().Sub(timestamps[len(timestamps)-1]) > rl.window {
					delete(rl.requests, key)
				}
			}
			rl.mu.Unlock()
		case <-rl.stopCh:
			return
		}
	}
}

func (rl *SlidingWindowLimiter) Stop() {
	rl.stopOnce.Do(func() { close(rl.stopCh) })
}

func (rl *SlidingWindowLimiter) Allow(_ context.Context, key string) bool {
	if key == "" {
		return true
	}

	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	valid := rl.requests[key][:0]
	for _, ts := range rl.requests[key] {
		if now.Sub(ts) < rl.window {
			valid = append(valid, ts)
		}
	}

	if len(valid) >= rl.limit {
		rl.requests[key] = valid
		return false
	}

	rl.requests[key] = append(valid, now)
	return true
}

var fixedWindowScript = redis.NewScript(`
local count = redis.call("INCR", KEYS[1])
if count == 1 then
  redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
return count
`)

// RedisFixedWindowLimiter shares quotas between replicas. It fails closed
// when Redis is unreachable.
type RedisFixedWindowLimiter struct {
	client *redis.Client
	prefix string
	limit  int
	window time.Duration
	log    *logger.Logger
}

func NewRedisFixedWindowLimiter(client *redis.Client, prefix string, limit int, window time.Duration, log *logger.Logger) *RedisFixedWindowLimiter {
	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		prefix = "dancebook:ratelimit"
	}
	return &RedisFixedWindowLimiter{
		client: client,
		prefix: prefix,
		limit:  limit,
		window: window,
		log:    log,
	}
}

func (l *RedisFixedWindowLimiter) Allow(ctx context.Context, key string) bool {
	if key == "" {
		return true
	}
	windowMs := l.window.Milliseconds()
	if windowMs <= 0 {
		return true
	}

	slot := time.Now().UTC().UnixMilli() / windowMs
	redisKey := fmt.Sprintf("%s:%s:%d", l.prefix, key, slot)

	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	count, err := fixedWindowScript.Run(ctx, l.client, []string{redisKey}, windowMs).Int64()
	if err != nil {
		l.log.Error("Rate limiter unavailable", "error", err, "key", key)
		return false
	}
	return count <= int64(l.limit)
}

// RateLimit throttles mutating requests only; reads are never limited.
func RateLimit(limiter Limiter, extractor KeyExtractor, log *logger.Logger) func(http.Handler) http.Handler {
	if extractor == nil {
		extractor = httputil.ClientIP
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if isSafeMethod(r.Method) {
				next.ServeHTTP(w, r)
				return
			}

			key := extractor(r)
			if !limiter.Allow(r.Context(), key) {
				rejectRateLimited(w, log, r, key)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func isSafeMethod(method string) bool {
	return method == http.MethodGet || method == http.MethodHead || method == http.MethodOptions
}

func rejectRateLimited(w http.ResponseWriter, log *logger.Logger, r *http.Request, key string) {
	log.Warn("Rate limit exceeded",
		logger.REQUEST_ID, logger.RequestID(r.Context()),
		"key", key,
		"path", r.URL.Path,
	)

	_ = httputil.WriteError(w, apperrors.RateLimited())
}
