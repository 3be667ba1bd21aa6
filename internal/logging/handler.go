// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package logging provides a slog handler that keeps recent WARN and ERROR
// records in a bounded in-memory activity log for administrators.
package logging

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"
)

// Activity categories
const (
	CategoryRecommend = "recommend"
	CategoryCatalog   = "catalog"
	CategoryWebhook   = "webhook"
	CategoryCache     = "cache"
	CategoryConfig    = "config"
	CategorySystem    = "system"
)

// Activity levels
const (
	LevelInfo    = "info"
	LevelWarning = "warning"
	LevelError   = "error"
)

// DefaultCapacity is the number of entries kept when none is configured.
const DefaultCapacity = 200

// Entry is one recorded log line.
type Entry struct {
	Time     time.Time         `json:"time"`
	Level    string            `json:"level"`
	Category string            `json:"category"`
	Message  string            `json:"message"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

// ActivityLog is a fixed-size ring of entries shared by every handler
// derived from the same ActivityHandler.
type ActivityLog struct {
	mu      sync.Mutex
	entries []Entry
	next    int
	full    bool
}

// NewActivityLog creates a ring holding up to capacity entries.
func NewActivityLog(capacity int) *ActivityLog {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &ActivityLog{entries: make([]Entry, capacity)}
}

func (l *ActivityLog) add(e Entry) {
	l.mu.Lock()
	l.entries[l.next] = e
	l.next = (l.next + 1) % len(l.entries)
	if l.next == 0 {
		l.full = true
	}
	l.mu.Unlock()
}

// Entries returns up to limit entries, newest first. limit <= 0 means all.
func (l *ActivityLog) Entries(limit int) []Entry {
	l.mu.Lock()
	defer l.mu.Unlock()

	n := l.next
	if l.full {
		n = len(l.entries)
	}
	if limit <= 0 || limit > n {
		limit = n
	}

	out := make([]Entry, 0, limit)
	for i := 0; i < limit; i++ {
		idx := (l.next - 1 - i + len(l.entries)) % len(l.entries)
		out = append(out, l.entries[idx])
	}
	return out
}

// Len returns the number of stored entries.
func (l *ActivityLog) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.full {
		return len(l.entries)
	}
	return l.next
}

// ActivityHandler is a slog.Handler that wraps another handler and also
// records WARN and ERROR logs in an ActivityLog.
type ActivityHandler struct {
	inner  slog.Handler
	log    *ActivityLog
	level  slog.Level
	attrs  []slog.Attr
	prefix string
}

// NewActivityHandler wraps inner, recording records at WARN and above in log.
func NewActivityHandler(inner slog.Handler, log *ActivityLog) *ActivityHandler {
	return NewActivityHandlerWithLevel(inner, log, slog.LevelWarn)
}

// NewActivityHandlerWithLevel creates an ActivityHandler with a custom minimum level.
func NewActivityHandlerWithLevel(inner slog.Handler, log *ActivityLog, level slog.Level) *ActivityHandler {
	return &ActivityHandler{inner: inner, log: log, level: level}
}

// Enabled implements slog.Handler.
func (h *ActivityHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.inner.Enabled(ctx, level)
}

// Handle implements slog.Handler.
func (h *ActivityHandler) Handle(ctx context.Context, r slog.Record) error {
	if err := h.inner.Handle(ctx, r); err != nil {
		return err
	}
	if r.Level >= h.level {
		h.record(r)
	}
	return nil
}

// WithAttrs implements slog.Handler.
func (h *ActivityHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	c := *h
	c.inner = h.inner.WithAttrs(attrs)
	for _, a := range attrs {
		a.Key = h.prefix + a.Key
		c.attrs = append(c.attrs[:len(c.attrs):len(c.attrs)], a)
	}
	return &c
}

// WithGroup implements slog.Handler.
func (h *ActivityHandler) WithGroup(name string) slog.Handler {
	c := *h
	c.inner = h.inner.WithGroup(name)
	if name != "" {
		c.prefix = h.prefix + name + "."
	}
	return &c
}

func (h *ActivityHandler) record(r slog.Record) {
	metadata := make(map[string]string, len(h.attrs)+r.NumAttrs())
	category := ""

	collect := func(key string, v slog.Value) {
		if key == "category" && category == "" {
			category = v.String()
			return
		}
		metadata[key] = v.String()
	}
	for _, a := range h.attrs {
		collect(a.Key, a.Value)
	}
	r.Attrs(func(a slog.Attr) bool {
		collect(h.prefix+a.Key, a.Value)
		return true
	})

	if category == "" {
		category = inferCategory(r.Message)
	}
	if len(metadata) == 0 {
		metadata = nil
	}

	h.log.add(Entry{
		Time:     r.Time,
		Level:    levelName(r.Level),
		Category: category,
		Message:  r.Message,
		Metadata: metadata,
	})
}

func levelName(level slog.Level) string {
	switch {
	case level >= slog.LevelError:
		return LevelError
	case level >= slog.LevelWarn:
		return LevelWarning
	default:
		return LevelInfo
	}
}

// inferCategory guesses a category from the message when none was logged.
func inferCategory(msg string) string {
	msg = strings.ToLower(msg)
	switch {
	case strings.Contains(msg, "recommend") || strings.Contains(msg, "provider") || strings.Contains(msg, "model"):
		return CategoryRecommend
	case strings.Contains(msg, "webhook") || strings.Contains(msg, "delivery"):
		return CategoryWebhook
	case strings.Contains(msg, "event") || strings.Contains(msg, "college") || strings.Contains(msg, "catalog"):
		return CategoryCatalog
	case strings.Contains(msg, "cache") || strings.Contains(msg, "redis"):
		return CategoryCache
	case strings.Contains(msg, "config") || strings.Contains(msg, "setting"):
		return CategoryConfig
	default:
		return CategorySystem
	}
}
