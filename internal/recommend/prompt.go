// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package recommend

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/olegiv/campus-events/internal/model"
)

// ErrMalformedReply is returned when the model reply does not match
// {"recommendedEventIds": [string, ...]}.
var ErrMalformedReply = errors.New("recommend: malformed model reply")

const replyField = "recommendedEventIds"

// Candidate is the reduced form of an event sent to the model. Long
// descriptions, rules and participants never leave the process.
type Candidate struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Candidates reduces events to the fields the model is allowed to see.
func Candidates(events []model.Event) []Candidate {
	out := make([]Candidate, len(events))
	for i, e := range events {
		out[i] = Candidate{ID: e.ID, Name: e.Name, Description: e.Description}
	}
	return out
}

// BuildPrompt embeds the interest statement and the candidate list.
func BuildPrompt(interests string, candidates []Candidate) (string, error) {
	list, err := json.MarshalIndent(candidates, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encoding candidates: %w", err)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Based on the user's interests in %q, which of the following events would you recommend? ", interests)
	b.WriteString("Provide only the event IDs for your recommendations.\n\n")
	b.WriteString("Event List:\n")
	b.Write(list)
	b.WriteString("\n")
	return b.String(), nil
}

// ResponseSchema is the JSON schema the model reply must follow.
func ResponseSchema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			replyField: map[string]any{
				"type": "array",
				"items": map[string]any{
					"type":        "string",
					"description": "The ID of a recommended event.",
				},
			},
		},
		"required":             []string{replyField},
		"additionalProperties": false,
	}
}

// ParseReply validates untrusted reply text and extracts the event ids.
// Any deviation from the schema returns ErrMalformedReply.
func ParseReply(text string) ([]string, error) {
	text = stripCodeFence(strings.TrimSpace(text))
	if text == "" {
		return nil, fmt.Errorf("%w: empty reply", ErrMalformedReply)
	}

	var obj map[string]json.RawMessage
	if err := json.Unmarshal([]byte(text), &obj); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedReply, err)
	}
	raw, ok := obj[replyField]
	if !ok {
		return nil, fmt.Errorf("%w: missing %s", ErrMalformedReply, replyField)
	}
	if bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		return nil, fmt.Errorf("%w: %s is null", ErrMalformedReply, replyField)
	}

	var ids []string
	if err := json.Unmarshal(raw, &ids); err != nil {
		return nil, fmt.Errorf("%w: %s is not an array of strings", ErrMalformedReply, replyField)
	}
	if ids == nil {
		ids = []string{}
	}
	return ids, nil
}

// stripCodeFence removes a surrounding ```json ... ``` block that some
// OpenAI-compatible endpoints add around structured output.
func stripCodeFence(s string) string {
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if nl := strings.IndexByte(s, '\n'); nl >= 0 {
		s = s[nl+1:]
	} else {
		return ""
	}
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}
