// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package cache

import (
	"log/slog"
	"time"
)

// Config selects and configures a cache backend.
type Config struct {
	RedisURL         string // empty = memory cache
	Prefix           string
	DefaultTTL       time.Duration
	MaxSize          int
	CleanupInterval  time.Duration
	FallbackToMemory bool // use memory if Redis is unreachable
}

// New creates a Redis cache when RedisURL is set, otherwise a memory cache.
// The second return value reports whether a Redis failure caused a
// fallback to memory.
func New(cfg Config, logger *slog.Logger) (Cache, bool, error) {
	if cfg.RedisURL != "" {
		opts := DefaultRedisCacheOptions()
		opts.URL = cfg.RedisURL
		if cfg.Prefix != "" {
			opts.Prefix = cfg.Prefix
		}
		if cfg.DefaultTTL > 0 {
			opts.DefaultTTL = cfg.DefaultTTL
		}
		rc, err := NewRedisCache(opts)
		if err == nil {
			return rc, false, nil
		}
		if !cfg.FallbackToMemory {
			return nil, false, err
		}
		logger.Warn("redis unavailable, falling back to memory cache", "error", err)
		return newMemory(cfg), true, nil
	}
	return newMemory(cfg), false, nil
}

func newMemory(cfg Config) *MemoryCache {
	return NewMemoryCache(MemoryCacheOptions{
		DefaultTTL:      cfg.DefaultTTL,
		MaxSize:         cfg.MaxSize,
		CleanupInterval: cfg.CleanupInterval,
	})
}
