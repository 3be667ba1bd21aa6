// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package recommend

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/olegiv/campus-events/internal/model"
)

func TestCandidates_OnlyReducedFields(t *testing.T) {
	events := []model.Event{{
		ID:              "e1",
		Name:            "Hackathon",
		Description:     "short",
		LongDescription: "SECRET long text",
		Rules:           []string{"SECRET rule"},
		Participants:    []model.Participant{{ID: "p1", Name: "SECRET person"}},
	}}

	prompt, err := BuildPrompt("coding", Candidates(events))
	require.NoError(t, err)

	assert.Contains(t, prompt, `"coding"`)
	assert.Contains(t, prompt, `"id": "e1"`)
	assert.Contains(t, prompt, `"name": "Hackathon"`)
	assert.Contains(t, prompt, `"description": "short"`)
	assert.NotContains(t, prompt, "SECRET")
	assert.True(t, strings.HasPrefix(prompt, "Based on the user's interests in"))
	assert.Contains(t, prompt, "Event List:\n[")
}

func TestBuildPrompt_EmptyCatalog(t *testing.T) {
	prompt, err := BuildPrompt("anything", Candidates(nil))
	require.NoError(t, err)
	assert.Contains(t, prompt, "Event List:\n[]")
}

func TestResponseSchema(t *testing.T) {
	data, err := json.Marshal(ResponseSchema())
	require.NoError(t, err)

	var schema struct {
		Type       string `json:"type"`
		Properties map[string]struct {
			Type  string `json:"type"`
			Items struct {
				Type string `json:"type"`
			} `json:"items"`
		} `json:"properties"`
		Required []string `json:"required"`
	}
	require.NoError(t, json.Unmarshal(data, &schema))

	assert.Equal(t, "object", schema.Type)
	require.Contains(t, schema.Properties, "recommendedEventIds")
	assert.Equal(t, "array", schema.Properties["recommendedEventIds"].Type)
	assert.Equal(t, "string", schema.Properties["recommendedEventIds"].Items.Type)
	assert.Equal(t, []string{"recommendedEventIds"}, schema.Required)
}

func TestParseReply(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    []string
		wantErr bool
	}{
		{name: "valid", input: `{"recommendedEventIds":["e1","e5"]}`, want: []string{"e1", "e5"}},
		{name: "surrounding whitespace", input: "\n  {\"recommendedEventIds\": []}  \n", want: []string{}},
		{name: "code fence", input: "```json\n{\"recommendedEventIds\":[\"e2\"]}\n```", want: []string{"e2"}},
		{name: "extra fields tolerated", input: `{"recommendedEventIds":["e1"],"reason":"x"}`, want: []string{"e1"}},
		{name: "empty", input: "   ", wantErr: true},
		{name: "not json", input: "I recommend e1 and e2", wantErr: true},
		{name: "missing field", input: `{}`, wantErr: true},
		{name: "null field", input: `{"recommendedEventIds":null}`, wantErr: true},
		{name: "numbers", input: `{"recommendedEventIds":[1,2]}`, wantErr: true},
		{name: "mixed", input: `{"recommendedEventIds":["e1",2]}`, wantErr: true},
		{name: "string field", input: `{"recommendedEventIds":"e1"}`, wantErr: true},
		{name: "top level array", input: `["e1"]`, wantErr: true},
		{name: "unterminated fence", input: "```", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseReply(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, ErrMalformedReply))
				assert.Nil(t, got)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
