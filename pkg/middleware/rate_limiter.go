package middleware

import (
	"sync"
	"time"

	apperrors "waifuhub/backend/pkg/errors"
	"waifuhub/backend/pkg/logger"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// RateLimiterOptions configures the per-caller request limiter. This is the
// outer abuse guard only; the creation and vote cooldowns are enforced in the
// service layer against persisted timestamps.
type RateLimiterOptions struct {
	Limit rate.Limit // sustained requests per second
	Burst int
	// Idle caller state older than ExpiryDuration is dropped.
	ExpiryDuration time.Duration
	// KeyFunc picks the bucket for a request.
	KeyFunc func(*gin.Context) string
}

// DefaultRateLimiterOptions buckets by authenticated wallet, falling back to
// client IP for anonymous traffic.
func DefaultRateLimiterOptions() RateLimiterOptions {
	return RateLimiterOptions{
		Limit:          5,
		Burst:          10,
		ExpiryDuration: time.Hour,
		KeyFunc: func(c *gin.Context) string {
			if wallet := c.GetString("wallet"); wallet != "" {
				return wallet
			}
			return c.ClientIP()
		},
	}
}

type bucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter hands out a token bucket per caller.
type RateLimiter struct {
	mu      sync.Mutex
	options RateLimiterOptions
	buckets map[string]*bucket
	log     *logger.Logger
	janitor sync.Once
}

func NewRateLimiter(log *logger.Logger, options ...RateLimiterOptions) *RateLimiter {
	opts := DefaultRateLimiterOptions()
	if len(options) > 0 {
		opts = options[0]
	}
	return &RateLimiter{
		options: opts,
		buckets: make(map[string]*bucket),
		log:     log,
	}
}

// Middleware rejects callers that exhausted their bucket with a rate-limited
// error and a Retry-After hint.
func (r *RateLimiter) Middleware() gin.HandlerFunc {
	r.janitor.Do(func() { go r.evictIdle() })

	return func(c *gin.Context) {
		key := r.options.KeyFunc(c)
		if !r.bucketFor(key).Allow() {
			r.log.Warn("rate limit exceeded",
				"client", key,
				"method", c.Request.Method,
				"path", c.Request.URL.Path,
			)
			c.Header("Retry-After", "1")
			_ = c.Error(apperrors.NewRateLimited("too many requests", time.Second))
			c.Abort()
			return
		}
		c.Next()
	}
}

func (r *RateLimiter) bucketFor(key string) *rate.Limiter {
	r.mu.Lock()
	defer r.mu.Unlock()

	b, ok := r.buckets[key]
	if !ok {
		b = &bucket{limiter: rate.NewLimiter(r.options.Limit, r.options.Burst)}
		r.buckets[key] = b
	}
	b.lastSeen = time.Now()
	return b.limiter
}

func (r *RateLimiter) evictIdle() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for range ticker.C {
		r.mu.Lock()
		for key, b := range r.buckets {
			if time.Since(b.lastSeen) > r.options.ExpiryDuration {
				delete(r.buckets, key)
			}
		}
		r.mu.Unlock()
	}
}
