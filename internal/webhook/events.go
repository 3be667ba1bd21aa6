// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package webhook delivers catalog change notifications to external HTTP
// endpoints.
package webhook

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/olegiv/campus-events/internal/catalog"
	"github.com/olegiv/campus-events/internal/model"
)

// Event types
const (
	EventCreated           = string(catalog.EventCreated)
	EventUpdated           = string(catalog.EventUpdated)
	EventDeleted           = string(catalog.EventDeleted)
	CollegeApprovalToggled = string(catalog.CollegeApprovalToggled)
	EventTest              = "webhook.test"
)

// Event represents a webhook event to be dispatched.
type Event struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	Data      any       `json:"data"`
}

// NewEvent creates a new webhook event.
func NewEvent(eventType string, data any) *Event {
	return &Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		Timestamp: time.Now().UTC(),
		Data:      data,
	}
}

// EventEventData is the payload of event.* notifications.
type EventEventData struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	CollegeID  string `json:"college_id"`
	CategoryID string `json:"category_id"`
	Date       string `json:"date,omitempty"`
	Time       string `json:"time,omitempty"`
	Location   string `json:"location,omitempty"`
}

// CollegeEventData is the payload of college.* notifications.
type CollegeEventData struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Approved bool   `json:"approved"`
}

// TestEventData contains data for test webhook events.
type TestEventData struct {
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

func eventData(e *model.Event) EventEventData {
	return EventEventData{
		ID:         e.ID,
		Name:       e.Name,
		CollegeID:  e.CollegeID,
		CategoryID: e.CategoryID,
		Date:       e.Date,
		Time:       e.Time,
		Location:   e.Location,
	}
}

// FromChange converts a catalog change into a webhook event. It returns nil
// for changes that carry no payload.
func FromChange(c catalog.Change) *Event {
	switch {
	case c.Event != nil:
		return NewEvent(string(c.Kind), eventData(c.Event))
	case c.College != nil:
		return NewEvent(string(c.Kind), CollegeEventData{
			ID:       c.College.ID,
			Name:     c.College.Name,
			Approved: c.College.Approved,
		})
	}
	return nil
}

// Sink accepts events for delivery. Both Dispatcher and Debouncer are sinks.
type Sink interface {
	Dispatch(ctx context.Context, event *Event) error
}

// Observer returns a catalog observer forwarding every change to sink.
func Observer(ctx context.Context, sink Sink, logger *slog.Logger) catalog.Observer {
	if logger == nil {
		logger = slog.Default()
	}
	return func(c catalog.Change) {
		event := FromChange(c)
		if event == nil {
			return
		}
		if err := sink.Dispatch(ctx, event); err != nil {
			logger.Error("failed to dispatch catalog change",
				"error", err,
				"event_type", event.Type)
		}
	}
}
