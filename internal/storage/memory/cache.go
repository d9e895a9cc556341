package memory

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"hotel_booking/internal/domain"
)

type entry struct {
	b   []byte
	exp time.Time
}

// Cache is an in-process stand-in for the Redis cache. Values are stored
// JSON-encoded so callers never share memory with cached entries.
type Cache struct {
	mu  sync.Mutex
	now func() time.Time
	m   map[string]entry
}

func NewCache() *Cache {
	return &Cache{now: time.Now, m: map[string]entry{}}
}

func (c *Cache) Get(ctx context.Context, key string, dst any) (bool, error) {
	c.mu.Lock()
	e, ok := c.m[key]
	if ok && !e.exp.IsZero() && c.now().After(e.exp) {
		delete(c.m, key)
		ok = false
	}
	c.mu.Unlock()
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(e.b, dst)
}

func (c *Cache) Set(ctx context.Context, key string, v any, ttlSec int) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	e := entry{b: b}
	if ttlSec > 0 {
		e.exp = c.now().Add(time.Duration(ttlSec) * time.Second)
	}
	c.mu.Lock()
	c.m[key] = e
	c.mu.Unlock()
	return nil
}

func (c *Cache) Del(ctx context.Context, key string) error {
	c.mu.Lock()
	delete(c.m, key)
	c.mu.Unlock()
	return nil
}

// Len reports the number of live entries.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.m)
}

var _ domain.Cache = (*Cache)(nil)
