package ratelimit

import (
	"fmt"
	"sync"
	"time"

	"github.com/deusflow/footnews/internal/logger"
)

// AIRateLimiter caps paid translation backends per day.
// A limit of 0 means unlimited.
type AIRateLimiter struct {
	mu        sync.Mutex
	counts    map[string]int
	limits    map[string]int
	total     int
	maxTotal  int
	resetTime time.Time
	now       func() time.Time

	cacheHits   int
	cacheMisses int
}

// NewAIRateLimiter creates a limiter with per-backend limits and an overall cap.
func NewAIRateLimiter(limits map[string]int, maxTotal int) *AIRateLimiter {
	l := make(map[string]int, len(limits))
	for k, v := range limits {
		l[k] = v
	}
	rl := &AIRateLimiter{
		counts:   make(map[string]int),
		limits:   l,
		maxTotal: maxTotal,
		now:      time.Now,
	}
	rl.resetTime = rl.now().Add(24 * time.Hour)
	return rl
}

// CanUse reports whether backend still has quota.
func (rl *AIRateLimiter) CanUse(backend string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	rl.checkReset()
	return rl.allowed(backend) == nil
}

// Use consumes one request of backend's quota.
func (rl *AIRateLimiter) Use(backend string) error {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	rl.checkReset()
	if err := rl.allowed(backend); err != nil {
		logger.Warn("AI rate limit reached", "backend", backend, "used", rl.counts[backend], "total", rl.total)
		return err
	}

	rl.counts[backend]++
	rl.total++
	rl.cacheMisses++

	logger.Debug("AI usage", "backend", backend, "used", rl.counts[backend], "limit", rl.limits[backend], "total", rl.total, "total_limit", rl.maxTotal)
	return nil
}

// RecordCacheHit counts a translation served from cache instead of a backend.
func (rl *AIRateLimiter) RecordCacheHit() {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	rl.cacheHits++
}

func (rl *AIRateLimiter) allowed(backend string) error {
	if max := rl.limits[backend]; max > 0 && rl.counts[backend] >= max {
		return fmt.Errorf("%s rate limit exceeded", backend)
	}
	if rl.maxTotal > 0 && rl.total >= rl.maxTotal {
		return fmt.Errorf("total AI rate limit exceeded")
	}
	return nil
}

// GetStats returns current usage for the metrics endpoint.
func (rl *AIRateLimiter) GetStats() map[string]interface{} {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	stats := map[string]interface{}{
		"total_used":   rl.total,
		"total_limit":  rl.maxTotal,
		"cache_hits":   rl.cacheHits,
		"cache_misses": rl.cacheMisses,
		"reset_time":   rl.resetTime.Format(time.RFC3339),
	}
	for backend, limit := range rl.limits {
		stats[backend+"_used"] = rl.counts[backend]
		stats[backend+"_limit"] = limit
	}
	return stats
}

// checkReset resets counters once a day.
func (rl *AIRateLimiter) checkReset() {
	if rl.now().After(rl.resetTime) {
		logger.Info("resetting AI rate limiter counters", "total_used", rl.total, "cache_hits", rl.cacheHits)

		rl.counts = make(map[string]int)
		rl.total = 0
		rl.cacheHits = 0
		rl.cacheMisses = 0
		rl.resetTime = rl.now().Add(24 * time.Hour)
	}
}
