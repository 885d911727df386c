// Package ratelimit is an in-memory, per-client-IP request limiter for gin.
package ratelimit

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

// entry tracks one key.
type entry struct {
	count      int
	resetAt    time.Time
	lastAccess time.Time
	blocked    bool
	blockUntil time.Time
}

// Config is one limit: at most MaxRequests per TimeWindow, then blocked for BlockDuration.
type Config struct {
	MaxRequests   int
	TimeWindow    time.Duration
	BlockDuration time.Duration
}

// Limiter holds counters for every key. Safe for concurrent use.
type Limiter struct {
	store       map[string]*entry
	mutex       sync.Mutex
	cleanupTime time.Duration
	idleTTL     time.Duration
	now         func() time.Time
}

// NewLimiter creates a limiter and starts its cleanup loop, which stops when ctx is done.
func NewLimiter(ctx context.Context, cleanupTime time.Duration) *Limiter {
	l := &Limiter{
		store:       make(map[string]*entry),
		cleanupTime: cleanupTime,
		idleTTL:     24 * time.Hour,
		now:         time.Now,
	}

	go l.cleanupLoop(ctx)

	return l
}

func (l *Limiter) cleanupLoop(ctx context.Context) {
	ticker := time.NewTicker(l.cleanupTime)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			l.cleanup()
		}
	}
}

// cleanup drops keys idle for longer than idleTTL.
func (l *Limiter) cleanup() {
	l.mutex.Lock()
	defer l.mutex.Unlock()

	now := l.now()
	for key, e := range l.store {
		if now.Sub(e.lastAccess) > l.idleTTL && !(e.blocked && now.Before(e.blockUntil)) {
			delete(l.store, key)
		}
	}
}

// Allow records one request for key and reports whether it may proceed.
func (l *Limiter) Allow(key string, cfg Config) bool {
	l.mutex.Lock()
	defer l.mutex.Unlock()

	now := l.now()
	e, exists := l.store[key]

	if !exists {
		l.store[key] = &entry{count: 1, resetAt: now.Add(cfg.TimeWindow), lastAccess: now}
		return true
	}

	e.lastAccess = now

	if e.blocked {
		if now.Before(e.blockUntil) {
			return false
		}
		e.blocked = false
		e.count = 1
		e.resetAt = now.Add(cfg.TimeWindow)
		return true
	}

	if now.After(e.resetAt) {
		e.count = 1
		e.resetAt = now.Add(cfg.TimeWindow)
		return true
	}

	if e.count >= cfg.MaxRequests {
		e.blocked = true
		e.blockUntil = now.Add(cfg.BlockDuration)
		return false
	}

	e.count++
	return true
}

// Middleware limits requests per client IP under the given key prefix.
// message is returned as the "error" field of the 429 response.
func (l *Limiter) Middleware(prefix string, cfg Config, message string) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := prefix + ":" + c.ClientIP()

		if !l.Allow(key, cfg) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error": message,
			})
			return
		}

		c.Next()
	}
}
