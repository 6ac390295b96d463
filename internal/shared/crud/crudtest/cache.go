package crudtest

import (
	"context"
	"encoding/json"
	"path"
	"sync"
	"time"
)

// Cache is an in-memory cache.Cache. TTLs are recorded but never expire.
type Cache struct {
	mu   sync.Mutex
	data map[string][]byte
	ttl  map[string]time.Duration
	n    map[string]int64

	Hits   int
	Misses int
}

// NewCache returns an empty cache.
func NewCache() *Cache {
	return &Cache{data: map[string][]byte{}, ttl: map[string]time.Duration{}, n: map[string]int64{}}
}

func (c *Cache) Get(_ context.Context, key string, dest interface{}) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	raw, ok := c.data[key]
	if !ok {
		c.Misses++
		return false, nil
	}
	c.Hits++
	return true, json.Unmarshal(raw, dest)
}

func (c *Cache) Set(_ context.Context, key string, value interface{}, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = raw
	c.ttl[key] = ttl
	return nil
}

func (c *Cache) Delete(_ context.Context, keys ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, k := range keys {
		delete(c.data, k)
		delete(c.ttl, k)
		delete(c.n, k)
	}
	return nil
}

func (c *Cache) Ping(context.Context) error { return nil }

func (c *Cache) DeletePattern(_ context.Context, pattern string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for k := range c.data {
		if ok, _ := path.Match(pattern, k); ok {
			delete(c.data, k)
			delete(c.ttl, k)
		}
	}
	return nil
}

func (c *Cache) Increment(_ context.Context, key string) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.n[key]++
	c.data[key], _ = json.Marshal(c.n[key])
	return c.n[key], nil
}

func (c *Cache) Exists(_ context.Context, key string) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.data[key]
	return ok, nil
}

func (c *Cache) Expire(_ context.Context, key string, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ttl[key] = ttl
	return nil
}

func (c *Cache) TTL(_ context.Context, key string) (time.Duration, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.data[key]; !ok {
		return -2, nil
	}
	return c.ttl[key], nil
}

// Keys returns the number of stored keys.
func (c *Cache) Keys() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.data)
}

// Count returns the number of stored keys matching a glob.
func (c *Cache) Count(pattern string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for k := range c.data {
		if ok, _ := path.Match(pattern, k); ok {
			n++
		}
	}
	return n
}
