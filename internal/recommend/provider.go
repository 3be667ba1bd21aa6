// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package recommend

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"
)

// Provider IDs
const (
	ProviderGemini = "gemini"
	ProviderOpenAI = "openai"
	ProviderOllama = "ollama"
)

// ErrMissingCredential is returned when a provider that needs an API key is
// configured without one.
var ErrMissingCredential = errors.New("recommend: API credential is not set")

// CompletionRequest asks a hosted model for a JSON reply matching Schema.
type CompletionRequest struct {
	Model      string
	Prompt     string
	SchemaName string
	Schema     map[string]any
}

// Provider sends a single completion request to a text-generation service
// and returns the raw reply text.
type Provider interface {
	ID() string
	Complete(ctx context.Context, req CompletionRequest) (string, error)
}

// ProviderInfo describes a supported provider.
type ProviderInfo struct {
	ID           string
	Name         string
	DefaultModel string
	BaseURL      string
	NeedsAPIKey  bool
}

// AllProviders returns metadata for all supported providers.
func AllProviders() []ProviderInfo {
	return []ProviderInfo{
		{
			ID:           ProviderGemini,
			Name:         "Google Gemini",
			DefaultModel: "gemini-2.5-flash",
			BaseURL:      "https://generativelanguage.googleapis.com/v1beta/openai/",
			NeedsAPIKey:  true,
		},
		{
			ID:           ProviderOpenAI,
			Name:         "OpenAI",
			DefaultModel: "gpt-4o-mini",
			BaseURL:      "https://api.openai.com/v1/",
			NeedsAPIKey:  true,
		},
		{
			ID:           ProviderOllama,
			Name:         "Ollama",
			DefaultModel: "llama3.2",
			BaseURL:      "http://localhost:11434",
			NeedsAPIKey:  false,
		},
	}
}

// GetProviderInfo returns provider metadata by ID.
func GetProviderInfo(providerID string) (*ProviderInfo, error) {
	for _, p := range AllProviders() {
		if p.ID == providerID {
			return &p, nil
		}
	}
	return nil, fmt.Errorf("unknown provider: %s", providerID)
}

// ProviderConfig selects and configures a Provider.
type ProviderConfig struct {
	ID      string
	APIKey  string
	BaseURL string        // empty = provider default
	Timeout time.Duration // 0 = no client timeout
}

// NewProvider builds the provider named by cfg.ID. It returns
// ErrMissingCredential when the provider needs a key and none is set.
func NewProvider(cfg ProviderConfig) (Provider, error) {
	info, err := GetProviderInfo(cfg.ID)
	if err != nil {
		return nil, err
	}
	if info.NeedsAPIKey && cfg.APIKey == "" {
		return nil, ErrMissingCredential
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = info.BaseURL
	}
	httpClient := &http.Client{Timeout: cfg.Timeout}

	switch info.ID {
	case ProviderOllama:
		return newOllamaClient(baseURL, httpClient), nil
	default:
		return newOpenAICompatClient(info.ID, cfg.APIKey, baseURL, httpClient), nil
	}
}
