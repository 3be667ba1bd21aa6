// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package config

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/olegiv/campus-events/internal/recommend"
	"github.com/olegiv/campus-events/internal/webhook"
)

// DefaultInterests is the interest string used when a student supplies none.
const DefaultInterests = "coding, e-sports, and technology summits"

// Config holds the application configuration loaded from environment variables.
type Config struct {
	ServerHost string `env:"CAMPUS_SERVER_HOST" envDefault:"localhost"`
	ServerPort int    `env:"CAMPUS_SERVER_PORT" envDefault:"8080"`
	Env        string `env:"CAMPUS_ENV" envDefault:"development"`
	LogLevel   string `env:"CAMPUS_LOG_LEVEL" envDefault:"info"`

	// Catalog
	Seed bool `env:"CAMPUS_SEED" envDefault:"true"` // Load the demo catalog at startup

	// Cache configuration
	RedisURL     string `env:"CAMPUS_REDIS_URL"`                         // Optional Redis URL for shared session state
	CachePrefix  string `env:"CAMPUS_CACHE_PREFIX" envDefault:"campus:"` // Redis key prefix
	CacheTTL     int    `env:"CAMPUS_CACHE_TTL" envDefault:"3600"`       // Session state TTL in seconds
	CacheMaxSize int    `env:"CAMPUS_CACHE_MAX_SIZE" envDefault:"10000"` // Max memory cache entries

	// Recommendation provider
	AIProvider         string        `env:"CAMPUS_AI_PROVIDER" envDefault:"gemini"`
	AIModel            string        `env:"CAMPUS_AI_MODEL"`    // empty = provider default
	AIBaseURL          string        `env:"CAMPUS_AI_BASE_URL"` // empty = provider default
	AIAPIKey           string        `env:"CAMPUS_AI_API_KEY"`
	LegacyAPIKey       string        `env:"API_KEY"` // Used when CAMPUS_AI_API_KEY is unset
	AITimeout          time.Duration `env:"CAMPUS_AI_TIMEOUT" envDefault:"0s"` // 0 = no timeout
	AIFilterUnknownIDs bool          `env:"CAMPUS_AI_FILTER_UNKNOWN_IDS" envDefault:"false"`
	DefaultInterests   string        `env:"CAMPUS_DEFAULT_INTERESTS" envDefault:"coding, e-sports, and technology summits"`

	// Rate limit for triggering recommendations, per client
	RecommendRPS   float64 `env:"CAMPUS_RECOMMEND_RPS" envDefault:"0.5"`
	RecommendBurst int     `env:"CAMPUS_RECOMMEND_BURST" envDefault:"3"`

	// Webhooks
	WebhookURLs         []string      `env:"CAMPUS_WEBHOOK_URLS" envSeparator:","`
	WebhookSecret       string        `env:"CAMPUS_WEBHOOK_SECRET"`
	WebhookAllowPrivate bool          `env:"CAMPUS_WEBHOOK_ALLOW_PRIVATE" envDefault:"false"`
	WebhookWorkers      int           `env:"CAMPUS_WEBHOOK_WORKERS" envDefault:"3"`
	WebhookDebounce     time.Duration `env:"CAMPUS_WEBHOOK_DEBOUNCE" envDefault:"1s"`

	ActivityLogSize int `env:"CAMPUS_ACTIVITY_LOG_SIZE" envDefault:"200"`
}

// IsDevelopment returns true if the application is running in development mode.
func (c Config) IsDevelopment() bool {
	return c.Env == "development"
}

// ServerAddr returns the full server address in host:port format.
func (c Config) ServerAddr() string {
	return fmt.Sprintf("%s:%d", c.ServerHost, c.ServerPort)
}

// UseRedisCache returns true if Redis caching is configured.
func (c Config) UseRedisCache() bool {
	return c.RedisURL != ""
}

// WebhooksEnabled returns true if at least one webhook URL is configured.
func (c Config) WebhooksEnabled() bool {
	return len(c.WebhookURLs) > 0
}

// AICredential returns the API key for the recommendation provider.
func (c Config) AICredential() string {
	if c.AIAPIKey != "" {
		return c.AIAPIKey
	}
	return c.LegacyAPIKey
}

// AIModelName returns the configured model or the provider's default.
func (c Config) AIModelName() string {
	if c.AIModel != "" {
		return c.AIModel
	}
	if info, err := recommend.GetProviderInfo(c.AIProvider); err == nil {
		return info.DefaultModel
	}
	return ""
}

// SlogLevel returns the parsed log level.
func (c Config) SlogLevel() slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo
	}
	return level
}

// CacheTTLDuration returns the cache TTL as a duration.
func (c Config) CacheTTLDuration() time.Duration {
	return time.Duration(c.CacheTTL) * time.Second
}

// Load parses environment variables and returns a validated Config.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks values env.Parse cannot.
func (c *Config) Validate() error {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return fmt.Errorf("CAMPUS_LOG_LEVEL %q is not a log level", c.LogLevel)
	}

	c.AIProvider = strings.ToLower(strings.TrimSpace(c.AIProvider))
	if _, err := recommend.GetProviderInfo(c.AIProvider); err != nil {
		return fmt.Errorf("CAMPUS_AI_PROVIDER: %w", err)
	}
	if c.AITimeout < 0 {
		return fmt.Errorf("CAMPUS_AI_TIMEOUT must not be negative")
	}
	if strings.TrimSpace(c.DefaultInterests) == "" {
		c.DefaultInterests = DefaultInterests
	}

	if c.RecommendRPS <= 0 {
		return fmt.Errorf("CAMPUS_RECOMMEND_RPS must be positive, got %v", c.RecommendRPS)
	}
	if c.RecommendBurst < 1 {
		return fmt.Errorf("CAMPUS_RECOMMEND_BURST must be at least 1, got %d", c.RecommendBurst)
	}
	if c.CacheTTL <= 0 {
		return fmt.Errorf("CAMPUS_CACHE_TTL must be positive, got %d", c.CacheTTL)
	}

	urls := c.WebhookURLs[:0]
	for _, u := range c.WebhookURLs {
		u = strings.TrimSpace(u)
		if u == "" {
			continue
		}
		if err := webhook.ValidateEndpointURL(u, c.WebhookAllowPrivate); err != nil {
			return fmt.Errorf("CAMPUS_WEBHOOK_URLS %q: %w", u, err)
		}
		urls = append(urls, u)
	}
	c.WebhookURLs = urls
	return nil
}
