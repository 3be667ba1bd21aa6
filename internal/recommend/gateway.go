// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package recommend asks a hosted text-generation model which catalog
// events match a free-text interest statement, and tracks the per-session
// state of those requests.
package recommend

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/olegiv/campus-events/internal/model"
)

// GatewayConfig configures a Gateway.
type GatewayConfig struct {
	Model string

	// FilterUnknownIDs drops returned ids that were not among the candidates.
	FilterUnknownIDs bool
}

// Gateway translates "recommend events for these interests" into a single
// completion request. A nil provider means the feature is disabled.
type Gateway struct {
	provider Provider
	cfg      GatewayConfig
	logger   *slog.Logger
}

// NewGateway creates a gateway. Pass a nil provider when no credential is
// configured; every call then logs and returns no recommendations.
func NewGateway(provider Provider, cfg GatewayConfig, logger *slog.Logger) *Gateway {
	if logger == nil {
		logger = slog.Default()
	}
	return &Gateway{provider: provider, cfg: cfg, logger: logger}
}

// Enabled reports whether a provider is configured.
func (g *Gateway) Enabled() bool {
	return g.provider != nil
}

// Lookup performs one round-trip and returns the ids or the failure.
func (g *Gateway) Lookup(ctx context.Context, events []model.Event, interests string) ([]string, error) {
	if g.provider == nil {
		return nil, ErrMissingCredential
	}

	candidates := Candidates(events)
	prompt, err := BuildPrompt(interests, candidates)
	if err != nil {
		return nil, err
	}

	reply, err := g.provider.Complete(ctx, CompletionRequest{
		Model:      g.cfg.Model,
		Prompt:     prompt,
		SchemaName: "event_recommendations",
		Schema:     ResponseSchema(),
	})
	if err != nil {
		return nil, fmt.Errorf("completion: %w", err)
	}

	ids, err := ParseReply(reply)
	if err != nil {
		return nil, err
	}
	if g.cfg.FilterUnknownIDs {
		ids = keepKnown(ids, candidates)
	}
	return ids, nil
}

// Recommend is Lookup with the fail-closed policy applied: a failure is
// logged and yields an empty, non-nil list. The error is still returned so
// callers can record that the request failed; it is never meant for end
// users.
func (g *Gateway) Recommend(ctx context.Context, events []model.Event, interests string) ([]string, error) {
	ids, err := g.Lookup(ctx, events, interests)
	if err != nil {
		g.logFailure(err)
		return []string{}, err
	}
	return ids, nil
}

func (g *Gateway) logFailure(err error) {
	if g.provider == nil {
		g.logger.Error("cannot request recommendations: API credential is missing", "category", "recommend")
		return
	}
	g.logger.Error("error fetching recommendations",
		"category", "recommend",
		"provider", g.provider.ID(),
		"model", g.cfg.Model,
		"error", err)
}

func keepKnown(ids []string, candidates []Candidate) []string {
	known := make(map[string]struct{}, len(candidates))
	for _, c := range candidates {
		known[c.ID] = struct{}{}
	}
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := known[id]; ok {
			out = append(out, id)
		}
	}
	return out
}
