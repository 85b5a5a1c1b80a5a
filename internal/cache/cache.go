package cache

import (
	"context"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// Cache in-memory кэш с TTL и инвалидацией по префиксу.
type Cache struct {
	mu      sync.RWMutex
	entries map[string]*entry
	stop    chan struct{}
	once    sync.Once
	flight  singleflight.Group
}

type entry struct {
	data      interface{}
	expiresAt time.Time
}

// New создаёт кэш и запускает фоновую очистку с заданным интервалом.
func New(cleanupInterval time.Duration) *Cache {
	c := &Cache{
		entries: make(map[string]*entry),
		stop:    make(chan struct{}),
	}
	if cleanupInterval <= 0 {
		cleanupInterval = 5 * time.Minute
	}
	go c.cleanup(cleanupInterval)
	return c
}

// Get возвращает значение, если оно есть и не протухло.
func (c *Cache) Get(key string) (interface{}, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.entries[key]
	if !ok || time.Now().After(e.expiresAt) {
		// протухшие записи удаляет cleanup
		return nil, false
	}
	return e.data, true
}

// Set сохраняет значение с TTL.
func (c *Cache) Set(key string, value interface{}, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key] = &entry{
		data:      value,
		expiresAt: time.Now().Add(ttl),
	}
}

// Delete удаляет ключ.
func (c *Cache) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.entries, key)
	c.flight.Forget(key)
}

// InvalidateByPrefix удаляет все ключи с префиксом.
func (c *Cache) InvalidateByPrefix(prefix string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for key := range c.entries {
		if strings.HasPrefix(key, prefix) {
			delete(c.entries, key)
		}
	}
}

// GetOrSet возвращает значение из кэша или вычисляет и сохраняет его.
// Одновременные промахи по одному ключу ждут один вызов fn. Ошибки fn не кэшируются.
func (c *Cache) GetOrSet(ctx context.Context, key string, ttl time.Duration, fn func(context.Context) (interface{}, error)) (interface{}, bool, error) {
	if value, found := c.Get(key); found {
		return value, true, nil
	}

	hit := false
	value, err, _ := c.flight.Do(key, func() (interface{}, error) {
		// пока ждали очередь, значение мог положить предыдущий вызов
		if value, found := c.Get(key); found {
			hit = true
			return value, nil
		}
		value, err := fn(ctx)
		if err != nil {
			return nil, err
		}
		c.Set(key, value, ttl)
		return value, nil
	})
	if err != nil {
		return nil, false, err
	}
	return value, hit, nil
}

// Len количество записей, включая ещё не удалённые протухшие.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Close останавливает фоновую очистку.
func (c *Cache) Close() {
	c.once.Do(func() { close(c.stop) })
}

func (c *Cache) cleanup(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-c.stop:
			return
		case <-ticker.C:
			c.purgeExpired(time.Now())
		}
	}
}

func (c *Cache) purgeExpired(now time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for key, e := range c.entries {
		if now.After(e.expiresAt) {
			delete(c.entries, key)
		}
	}
}
