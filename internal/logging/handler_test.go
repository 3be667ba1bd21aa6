// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package logging

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"strings"
	"testing"
)

type discardHandler struct{}

func (h discardHandler) Enabled(context.Context, slog.Level) bool  { return true }
func (h discardHandler) Handle(context.Context, slog.Record) error { return nil }
func (h discardHandler) WithAttrs([]slog.Attr) slog.Handler        { return h }
func (h discardHandler) WithGroup(string) slog.Handler             { return h }

func newTestLogger() (*slog.Logger, *ActivityLog) {
	log := NewActivityLog(10)
	return slog.New(NewActivityHandler(discardHandler{}, log)), log
}

func TestActivityHandler_RecordsWarnAndAbove(t *testing.T) {
	logger, log := newTestLogger()

	logger.Debug("debug message")
	logger.Info("info message")
	logger.Warn("warn message")
	logger.Error("error message")

	entries := log.Entries(0)
	if len(entries) != 2 {
		t.Fatalf("recorded %d entries, want 2", len(entries))
	}
	if entries[0].Message != "error message" || entries[0].Level != LevelError {
		t.Errorf("newest entry = %+v", entries[0])
	}
	if entries[1].Level != LevelWarning {
		t.Errorf("older entry level = %q", entries[1].Level)
	}
}

func TestActivityHandler_CustomLevel(t *testing.T) {
	log := NewActivityLog(10)
	logger := slog.New(NewActivityHandlerWithLevel(discardHandler{}, log, slog.LevelError))

	logger.Warn("ignored")
	logger.Error("kept")

	if log.Len() != 1 {
		t.Errorf("Len() = %d, want 1", log.Len())
	}
}

func TestActivityHandler_ExplicitCategory(t *testing.T) {
	logger, log := newTestLogger()

	logger.Error("upstream failed", "category", CategoryRecommend, "error", "timeout")

	e := log.Entries(1)[0]
	if e.Category != CategoryRecommend {
		t.Errorf("Category = %q", e.Category)
	}
	if _, ok := e.Metadata["category"]; ok {
		t.Error("category duplicated in metadata")
	}
	if e.Metadata["error"] != "timeout" {
		t.Errorf("Metadata = %v", e.Metadata)
	}
}

func TestActivityHandler_CategoryInference(t *testing.T) {
	tests := []struct {
		msg  string
		want string
	}{
		{"recommendation request failed", CategoryRecommend},
		{"webhook delivery marked as dead", CategoryWebhook},
		{"college not found", CategoryCatalog},
		{"redis cache unavailable", CategoryCache},
		{"invalid config value", CategoryConfig},
		{"something else", CategorySystem},
	}
	for _, tt := range tests {
		t.Run(tt.msg, func(t *testing.T) {
			if got := inferCategory(tt.msg); got != tt.want {
				t.Errorf("inferCategory(%q) = %q, want %q", tt.msg, got, tt.want)
			}
		})
	}
}

func TestActivityHandler_WithAttrsAndGroup(t *testing.T) {
	logger, log := newTestLogger()

	logger.With("category", CategoryWebhook, "url", "https://hooks.example").
		WithGroup("delivery").
		Warn("retrying", "attempt", 2)

	e := log.Entries(1)[0]
	if e.Category != CategoryWebhook {
		t.Errorf("Category = %q", e.Category)
	}
	if e.Metadata["url"] != "https://hooks.example" || e.Metadata["delivery.attempt"] != "2" {
		t.Errorf("Metadata = %v", e.Metadata)
	}
}

func TestActivityHandler_ForwardsToInner(t *testing.T) {
	var buf bytes.Buffer
	log := NewActivityLog(5)
	logger := slog.New(NewActivityHandler(slog.NewTextHandler(&buf, nil), log))

	logger.Info("hello", "k", "v")
	if !strings.Contains(buf.String(), "hello") {
		t.Errorf("inner handler output = %q", buf.String())
	}
	if log.Len() != 0 {
		t.Error("info record captured")
	}
}

func TestActivityLog_RingOverwritesOldest(t *testing.T) {
	log := NewActivityLog(3)
	logger := slog.New(NewActivityHandler(discardHandler{}, log))

	for i := 0; i < 5; i++ {
		logger.Warn(fmt.Sprintf("m%d", i))
	}

	entries := log.Entries(0)
	if len(entries) != 3 {
		t.Fatalf("len = %d, want 3", len(entries))
	}
	got := []string{entries[0].Message, entries[1].Message, entries[2].Message}
	want := []string{"m4", "m3", "m2"}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("entries = %v, want %v", got, want)
			break
		}
	}

	if n := len(log.Entries(2)); n != 2 {
		t.Errorf("Entries(2) returned %d", n)
	}
}

func TestNewActivityLog_DefaultCapacity(t *testing.T) {
	log := NewActivityLog(0)
	if len(log.entries) != DefaultCapacity {
		t.Errorf("capacity = %d, want %d", len(log.entries), DefaultCapacity)
	}
	if len(log.Entries(10)) != 0 {
		t.Error("empty log returned entries")
	}
}
