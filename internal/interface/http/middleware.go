package http

import (
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yanqian/text-summarizer/internal/infra/config"
)

func errorHandlingMiddleware(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}

		httpErr := asHTTPError(c.Errors.Last().Err)
		message := httpErr.Message
		if message == "" {
			message = httpErr.Error()
		}

		attrs := []any{"code", httpErr.Code, "status", httpErr.Status, "path", c.Request.URL.Path, "request_id", requestID(c), "error", httpErr.Err}
		if httpErr.Status >= http.StatusInternalServerError {
			logger.Error("request failed", attrs...)
		} else {
			logger.Warn("request failed", attrs...)
		}

		c.JSON(httpErr.Status, gin.H{
			"error": gin.H{
				"code":      httpErr.Code,
				"message":   message,
				"requestId": requestID(c),
			},
		})
	}
}

// rateLimitMiddleware throttles per caller: the token subject when auth ran first,
// otherwise the client IP.
func rateLimitMiddleware(cfg config.RateLimitConfig, logger *slog.Logger) gin.HandlerFunc {
	if !cfg.Enabled || cfg.RequestsPerMinute <= 0 {
		return func(c *gin.Context) { c.Next() }
	}

	limiter := newRateLimiter(cfg, time.Now)
	return func(c *gin.Context) {
		key := "ip:" + c.ClientIP()
		if claims, ok := getClaims(c); ok {
			key = "sub:" + claims.Subject
		}
		wait, ok := limiter.allow(key)
		if ok {
			c.Next()
			return
		}
		logger.Warn("rate limit exceeded", "client", key, "path", c.Request.URL.Path, "request_id", requestID(c))
		c.Header("Retry-After", strconv.Itoa(int(math.Ceil(wait.Seconds()))))
		abortWithError(c, NewHTTPError(http.StatusTooManyRequests, "rate_limit_exceeded", "too many requests", nil))
	}
}

type rateLimiter struct {
	mu          sync.Mutex
	buckets     map[string]*bucket
	perSecond   float64
	burst       float64
	idleTTL     time.Duration
	lastCleanup time.Time
	now         func() time.Time
}

type bucket struct {
	tokens   float64
	lastSeen time.Time
}

func newRateLimiter(cfg config.RateLimitConfig, now func() time.Time) *rateLimiter {
	burst := float64(cfg.Burst)
	if burst < 1 {
		burst = 1
	}
	return &rateLimiter{
		buckets:     make(map[string]*bucket),
		perSecond:   float64(cfg.RequestsPerMinute) / 60,
		burst:       burst,
		idleTTL:     5 * time.Minute,
		lastCleanup: now(),
		now:         now,
	}
}

// allow takes one token for key. When none is left it reports how long until the
// next token is available.
func (l *rateLimiter) allow(key string) (time.Duration, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	b, ok := l.buckets[key]
	if !ok {
		b = &bucket{tokens: l.burst, lastSeen: now}
		l.buckets[key] = b
	} else {
		if elapsed := now.Sub(b.lastSeen).Seconds(); elapsed > 0 {
			b.tokens = math.Min(l.burst, b.tokens+elapsed*l.perSecond)
		}
		b.lastSeen = now
	}
	if now.Sub(l.lastCleanup) > time.Minute {
		l.evictIdleLocked(now)
	}

	if b.tokens < 1 {
		missing := 1 - b.tokens
		return time.Duration(missing / l.perSecond * float64(time.Second)), false
	}
	b.tokens--
	return 0, true
}

func (l *rateLimiter) evictIdleLocked(now time.Time) {
	for key, b := range l.buckets {
		if now.Sub(b.lastSeen) > l.idleTTL {
			delete(l.buckets, key)
		}
	}
	l.lastCleanup = now
}
