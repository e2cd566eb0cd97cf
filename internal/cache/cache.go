/*
Copyright 2025 SmartTech Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

// Package cache is the read-through layer in front of the catalog queries.
package cache

import (
	"context"
	"errors"
	"time"

	"github.com/go-redis/cache/v9"
	"github.com/redis/go-redis/v9"
)

// Cache stores msgpack-encoded values by key.
type Cache interface {
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	// Get decodes the cached value into data. found is false on a miss.
	Get(ctx context.Context, key string, data interface{}) (found bool, err error)
	Delete(ctx context.Context, keys ...string) error
}

// localCacheSize is small: the catalog holds a handful of products.
const localCacheSize = 1024

// RedisCache keeps a TinyLFU copy in process in front of redis.
type RedisCache struct {
	cache *cache.Cache
}

// NewRedisCache builds a cache on an existing client.
func NewRedisCache(client *redis.Client) *RedisCache {
	c := cache.New(&cache.Options{
		Redis:      client,
		LocalCache: cache.NewTinyLFU(localCacheSize, 30*time.Second),
	})
	return &RedisCache{cache: c}
}

// Set stores data under key for ttl.
func (r *RedisCache) Set(ctx context.Context, key string, data interface{}, ttl time.Duration) error {
	return r.cache.Set(&cache.Item{
		Ctx:   ctx,
		Key:   key,
		Value: data,
		TTL:   ttl,
	})
}

// Get loads key into data. A miss returns false and no error.
func (r *RedisCache) Get(ctx context.Context, key string, data interface{}) (bool, error) {
	err := r.cache.Get(ctx, key, data)
	if errors.Is(err, cache.ErrCacheMiss) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// Delete removes keys from both cache tiers.
func (r *RedisCache) Delete(ctx context.Context, keys ...string) error {
	var errs []error
	for _, key := range keys {
		if err := r.cache.Delete(ctx, key); err != nil && !errors.Is(err, cache.ErrCacheMiss) {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
