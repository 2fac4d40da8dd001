package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"sync"
	"time"
)

// Cache stores translated strings by key.
type Cache interface {
	Get(ctx context.Context, key string) (string, bool)
	Set(ctx context.Context, key, value string, ttl time.Duration)
	Close() error
}

type item struct {
	value     string
	expiresAt time.Time
}

// Memory is an in-process Cache with periodic expiry.
type Memory struct {
	mu    sync.RWMutex
	items map[string]item
	stop  chan struct{}
	once  sync.Once
}

func NewMemory() *Memory {
	c := &Memory{
		items: make(map[string]item),
		stop:  make(chan struct{}),
	}

	go c.cleanupLoop(time.Hour)

	return c
}

func (c *Memory) Set(_ context.Context, key, value string, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.items[key] = item{
		value:     value,
		expiresAt: time.Now().Add(ttl),
	}
}

func (c *Memory) Get(_ context.Context, key string) (string, bool) {
	c.mu.RLock()
	it, exists := c.items[key]
	c.mu.RUnlock()

	if !exists || time.Now().After(it.expiresAt) {
		return "", false
	}
	return it.value, true
}

func (c *Memory) Close() error {
	c.once.Do(func() { close(c.stop) })
	return nil
}

func (c *Memory) cleanupLoop(every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.cleanup()
		case <-c.stop:
			return
		}
	}
}

func (c *Memory) cleanup() {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	for key, it := range c.items {
		if now.After(it.expiresAt) {
			delete(c.items, key)
		}
	}
}

// Key builds a cache key for a translation of text into lang.
func Key(lang, text string) string {
	h := sha256.New()
	h.Write([]byte(lang + "\x00" + text))
	return "tr:" + hex.EncodeToString(h.Sum(nil))
}
