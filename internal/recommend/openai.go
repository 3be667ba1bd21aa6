// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package recommend

import (
	"context"
	"fmt"
	"net/http"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/openai/openai-go/v3/shared"
)

// openAICompatClient talks to any OpenAI-compatible chat completions
// endpoint. Gemini is reached through Google's compatibility endpoint.
type openAICompatClient struct {
	id     string
	client openai.Client
}

func newOpenAICompatClient(id, apiKey, baseURL string, httpClient *http.Client) *openAICompatClient {
	return &openAICompatClient{
		id: id,
		client: openai.NewClient(
			option.WithAPIKey(apiKey),
			option.WithBaseURL(baseURL),
			option.WithHTTPClient(httpClient),
			// every recommendation is a single round-trip
			option.WithMaxRetries(0),
		),
	}
}

func (c *openAICompatClient) ID() string { return c.id }

func (c *openAICompatClient) Complete(ctx context.Context, req CompletionRequest) (string, error) {
	resp, err := c.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(req.Model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(req.Prompt),
		},
		ResponseFormat: openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONSchema: &shared.ResponseFormatJSONSchemaParam{
				JSONSchema: shared.ResponseFormatJSONSchemaJSONSchemaParam{
					Name:   req.SchemaName,
					Schema: req.Schema,
					Strict: openai.Bool(true),
				},
			},
		},
	})
	if err != nil {
		return "", fmt.Errorf("%s chat: %w", c.id, err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%s: no choices returned", c.id)
	}
	return resp.Choices[0].Message.Content, nil
}
