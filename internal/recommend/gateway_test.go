// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package recommend

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/olegiv/campus-events/internal/model"
)

// stubProvider returns a canned reply or error and records requests.
type stubProvider struct {
	mu    sync.Mutex
	reply string
	err   error
	calls []CompletionRequest
}

func (p *stubProvider) ID() string { return "stub" }

func (p *stubProvider) Complete(_ context.Context, req CompletionRequest) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls = append(p.calls, req)
	return p.reply, p.err
}

func (p *stubProvider) callCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.calls)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func sampleEvents() []model.Event {
	return []model.Event{
		{ID: "e1", Name: "Hackathon", Description: "code all night", CollegeID: "c1"},
		{ID: "e2", Name: "Gallery", Description: "paintings", CollegeID: "c1"},
	}
}

func TestGateway_Success(t *testing.T) {
	p := &stubProvider{reply: `{"recommendedEventIds":["e1"]}`}
	g := NewGateway(p, GatewayConfig{Model: "m1"}, discardLogger())

	ids, _ := g.Recommend(context.Background(), sampleEvents(), "coding")

	assert.Equal(t, []string{"e1"}, ids)
	require.Equal(t, 1, p.callCount())
	assert.Equal(t, "m1", p.calls[0].Model)
	assert.Equal(t, ResponseSchema(), p.calls[0].Schema)
	assert.Contains(t, p.calls[0].Prompt, "coding")
}

func TestGateway_FailClosed(t *testing.T) {
	tests := []struct {
		name  string
		reply string
		err   error
	}{
		{name: "transport error", err: errors.New("connection reset")},
		{name: "not json", reply: "sure! e1"},
		{name: "schema mismatch", reply: `{"ids":["e1"]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := NewGateway(&stubProvider{reply: tt.reply, err: tt.err}, GatewayConfig{}, discardLogger())

			ids, err := g.Recommend(context.Background(), sampleEvents(), "coding")

			assert.NotNil(t, ids)
			assert.Empty(t, ids)
			assert.Error(t, err)
		})
	}
}

func TestGateway_MissingCredential(t *testing.T) {
	g := NewGateway(nil, GatewayConfig{}, discardLogger())

	assert.False(t, g.Enabled())
	ids, err := g.Recommend(context.Background(), sampleEvents(), "coding")
	assert.Empty(t, ids)
	assert.ErrorIs(t, err, ErrMissingCredential)
}

func TestGateway_UnknownIDs(t *testing.T) {
	p := &stubProvider{reply: `{"recommendedEventIds":["e1","ghost"]}`}

	passthrough := NewGateway(p, GatewayConfig{}, discardLogger())
	ids, err := passthrough.Recommend(context.Background(), sampleEvents(), "x")
	require.NoError(t, err)
	assert.Equal(t, []string{"e1", "ghost"}, ids)

	filtered := NewGateway(p, GatewayConfig{FilterUnknownIDs: true}, discardLogger())
	ids, err = filtered.Recommend(context.Background(), sampleEvents(), "x")
	require.NoError(t, err)
	assert.Equal(t, []string{"e1"}, ids)
}

func TestNewProvider(t *testing.T) {
	_, err := NewProvider(ProviderConfig{ID: ProviderGemini})
	assert.ErrorIs(t, err, ErrMissingCredential)

	_, err = NewProvider(ProviderConfig{ID: "bard"})
	assert.Error(t, err)

	p, err := NewProvider(ProviderConfig{ID: ProviderOllama})
	require.NoError(t, err)
	assert.Equal(t, ProviderOllama, p.ID())

	p, err = NewProvider(ProviderConfig{ID: ProviderGemini, APIKey: "k"})
	require.NoError(t, err)
	assert.Equal(t, ProviderGemini, p.ID())
}

func TestOpenAICompatClient_Complete(t *testing.T) {
	var gotBody map[string]any
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/chat/completions") {
			http.NotFound(w, r)
			return
		}
		gotAuth = r.Header.Get("Authorization")
		_ = json.NewDecoder(r.Body).Decode(&gotBody)

		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{
			"id": "chatcmpl-1",
			"object": "chat.completion",
			"created": 1700000000,
			"model": "gemini-2.5-flash",
			"choices": [{
				"index": 0,
				"finish_reason": "stop",
				"message": {"role": "assistant", "content": "{\"recommendedEventIds\":[\"e2\"]}"}
			}]
		}`)
	}))
	defer srv.Close()

	p, err := NewProvider(ProviderConfig{ID: ProviderGemini, APIKey: "secret", BaseURL: srv.URL + "/"})
	require.NoError(t, err)

	g := NewGateway(p, GatewayConfig{Model: "gemini-2.5-flash"}, discardLogger())
	ids, _ := g.Recommend(context.Background(), sampleEvents(), "art")

	assert.Equal(t, []string{"e2"}, ids)
	assert.Equal(t, "Bearer secret", gotAuth)
	assert.Equal(t, "gemini-2.5-flash", gotBody["model"])
	format, ok := gotBody["response_format"].(map[string]any)
	require.True(t, ok, "response_format must be sent")
	assert.Equal(t, "json_schema", format["type"])
}

func TestOpenAICompatClient_NoRetryOnServerError(t *testing.T) {
	var mu sync.Mutex
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		mu.Lock()
		calls++
		mu.Unlock()
		http.Error(w, `{"error":{"message":"overloaded"}}`, http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	p, err := NewProvider(ProviderConfig{ID: ProviderOpenAI, APIKey: "k", BaseURL: srv.URL + "/"})
	require.NoError(t, err)

	ids, _ := NewGateway(p, GatewayConfig{Model: "gpt-4o-mini"}, discardLogger()).
		Recommend(context.Background(), sampleEvents(), "x")

	assert.Empty(t, ids)
	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 1, calls)
}

func TestOllamaClient_Complete(t *testing.T) {
	var gotBody map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/chat", r.URL.Path)
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		_, _ = io.WriteString(w, `{"model":"llama3.2","message":{"role":"assistant","content":"{\"recommendedEventIds\":[\"e1\",\"e2\"]}"}}`)
	}))
	defer srv.Close()

	p, err := NewProvider(ProviderConfig{ID: ProviderOllama, BaseURL: srv.URL})
	require.NoError(t, err)

	ids, _ := NewGateway(p, GatewayConfig{Model: "llama3.2"}, discardLogger()).
		Recommend(context.Background(), sampleEvents(), "x")

	assert.Equal(t, []string{"e1", "e2"}, ids)
	assert.Equal(t, false, gotBody["stream"])
	assert.NotNil(t, gotBody["format"])
}

func TestOllamaClient_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "model not found", http.StatusNotFound)
	}))
	defer srv.Close()

	p, err := NewProvider(ProviderConfig{ID: ProviderOllama, BaseURL: srv.URL})
	require.NoError(t, err)

	_, err = p.Complete(context.Background(), CompletionRequest{Model: "x", Prompt: "y"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 404")
}
