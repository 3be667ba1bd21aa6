// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"
)

// TypedCache stores values of type T as JSON in an underlying Cache.
type TypedCache[T any] struct {
	cache      Cache
	prefix     string
	defaultTTL time.Duration
}

// NewTypedCache creates a TypedCache whose keys are namespaced by prefix.
func NewTypedCache[T any](c Cache, prefix string, defaultTTL time.Duration) *TypedCache[T] {
	return &TypedCache[T]{
		cache:      c,
		prefix:     prefix,
		defaultTTL: defaultTTL,
	}
}

// Get returns the decoded value and true, or false on miss.
// Backend errors other than a miss are returned.
func (c *TypedCache[T]) Get(ctx context.Context, key string) (T, bool, error) {
	var value T

	data, err := c.cache.Get(ctx, c.prefix+key)
	if err != nil {
		if errors.Is(err, ErrCacheMiss) {
			return value, false, nil
		}
		return value, false, err
	}

	if err := json.Unmarshal(data, &value); err != nil {
		// Undecodable entries are treated as absent.
		return value, false, nil
	}
	return value, true, nil
}

// Set stores a value with the default TTL.
func (c *TypedCache[T]) Set(ctx context.Context, key string, value T) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return c.cache.Set(ctx, c.prefix+key, data, c.defaultTTL)
}

// Delete removes a key from the cache.
func (c *TypedCache[T]) Delete(ctx context.Context, key string) error {
	return c.cache.Delete(ctx, c.prefix+key)
}
