package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/coocood/freecache"
	log "github.com/sirupsen/logrus"
)

const (
	megabyte = 1024 * 1024

	// DefaultCacheExpire is in seconds; the catalog changes rarely.
	DefaultCacheExpire = 60 * 60

	listCacheKey = "exercises::all"
)

var _ Source = (*Cache)(nil)

// Cache keeps catalog answers of another Source in memory.
// Not-found answers are never cached.
type Cache struct {
	source Source
	cache  *freecache.Cache
	expire int
}

// NewCache wraps source with a freecache of sizeMB megabytes.
// expireSeconds <= 0 means DefaultCacheExpire.
func NewCache(source Source, sizeMB, expireSeconds int) *Cache {
	if sizeMB <= 0 {
		sizeMB = 1
	}
	if expireSeconds <= 0 {
		expireSeconds = DefaultCacheExpire
	}
	return &Cache{
		source: source,
		cache:  freecache.NewCache(sizeMB * megabyte),
		expire: expireSeconds,
	}
}

func (c *Cache) List(ctx context.Context) ([]Exercise, error) {
	var exercises []Exercise
	if c.fromCache(listCacheKey, &exercises) {
		return exercises, nil
	}

	exercises, err := c.source.List(ctx)
	if err != nil {
		return nil, err
	}
	c.toCache(listCacheKey, exercises)
	return exercises, nil
}

func (c *Cache) Get(ctx context.Context, id string) (Exercise, error) {
	cacheKey := fmt.Sprintf("exercise::%s", id)
	var exercise Exercise
	if c.fromCache(cacheKey, &exercise) {
		return exercise, nil
	}

	exercise, err := c.source.Get(ctx, id)
	if err != nil {
		return Exercise{}, err
	}
	c.toCache(cacheKey, exercise)
	return exercise, nil
}

// Clear drops every cached answer.
func (c *Cache) Clear() {
	c.cache.Clear()
}

func (c *Cache) fromCache(key string, dst any) bool {
	cached, err := c.cache.Get([]byte(key))
	if err != nil {
		if !errors.Is(err, freecache.ErrNotFound) {
			log.Errorf("catalog cache get [%s]: %s", key, err)
		}
		return false
	}
	if err := json.Unmarshal(cached, dst); err != nil {
		log.Errorf("unmarshal cached [%s]: %s", key, err)
		return false
	}
	log.Tracef("catalog cache hit: %s", key)
	return true
}

func (c *Cache) toCache(key string, value any) {
	valueBytes, err := json.Marshal(value)
	if err != nil {
		log.Errorf("marshal [%s] for cache: %s", key, err)
		return
	}
	if err := c.cache.Set([]byte(key), valueBytes, c.expire); err != nil {
		log.Errorf("catalog cache set [%s]: %s", key, err)
	}
}
