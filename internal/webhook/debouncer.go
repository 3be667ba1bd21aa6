// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package webhook

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// DebounceConfig holds debouncer configuration.
type DebounceConfig struct {
	// Interval is the window in which events for the same entity coalesce.
	Interval time.Duration
	// MaxWait bounds how long a busy entity can keep postponing delivery.
	MaxWait time.Duration
}

// DefaultDebounceConfig returns default debounce configuration.
func DefaultDebounceConfig() DebounceConfig {
	return DebounceConfig{
		Interval: 1 * time.Second,
		MaxWait:  5 * time.Second,
	}
}

type pendingEvent struct {
	event     *Event
	timer     *time.Timer
	firstSeen time.Time
}

// Debouncer coalesces rapid-fire events for the same entity, so an event
// edited several times in quick succession produces one notification
// carrying its latest state.
type Debouncer struct {
	sink    Sink
	config  DebounceConfig
	pending map[string]*pendingEvent
	mu      sync.Mutex
	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	logger  *slog.Logger
}

// NewDebouncer creates a debouncer in front of sink.
func NewDebouncer(sink Sink, config DebounceConfig, logger *slog.Logger) *Debouncer {
	if config.Interval <= 0 {
		config = DefaultDebounceConfig()
	}
	if config.MaxWait < config.Interval {
		config.MaxWait = config.Interval
	}
	if logger == nil {
		logger = slog.Default()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Debouncer{
		sink:    sink,
		config:  config,
		pending: make(map[string]*pendingEvent),
		ctx:     ctx,
		cancel:  cancel,
		logger:  logger,
	}
}

// eventKey identifies the entity an event is about.
func eventKey(event *Event) string {
	switch data := event.Data.(type) {
	case EventEventData:
		return event.Type + ":" + data.ID
	case *EventEventData:
		return event.Type + ":" + data.ID
	case CollegeEventData:
		return event.Type + ":" + data.ID
	case *CollegeEventData:
		return event.Type + ":" + data.ID
	case map[string]any:
		if id, ok := data["id"].(string); ok {
			return event.Type + ":" + id
		}
	}
	// No entity-level deduplication for unknown payloads.
	return event.Type + ":" + event.ID
}

// Dispatch queues an event for debounced delivery. A pending event for the
// same entity is replaced and its timer reset.
func (d *Debouncer) Dispatch(_ context.Context, event *Event) error {
	key := eventKey(event)
	now := time.Now()

	d.mu.Lock()
	defer d.mu.Unlock()

	if existing, ok := d.pending[key]; ok {
		existing.event = event
		if now.Sub(existing.firstSeen) >= d.config.MaxWait {
			d.dispatchLocked(key)
			return nil
		}
		existing.timer.Reset(d.config.Interval)
		return nil
	}

	pe := &pendingEvent{event: event, firstSeen: now}
	pe.timer = time.AfterFunc(d.config.Interval, func() {
		d.mu.Lock()
		d.dispatchLocked(key)
		d.mu.Unlock()
	})
	d.pending[key] = pe
	return nil
}

// dispatchLocked sends a pending event. Must be called with lock held.
func (d *Debouncer) dispatchLocked(key string) {
	pe, ok := d.pending[key]
	if !ok {
		return
	}
	pe.timer.Stop()
	delete(d.pending, key)

	d.wg.Add(1)
	go func(event *Event) {
		defer d.wg.Done()
		if err := d.sink.Dispatch(d.ctx, event); err != nil {
			d.logger.Error("failed to dispatch debounced event",
				"error", err,
				"event_type", event.Type)
		}
	}(pe.event)
}

// Flush immediately dispatches all pending events.
func (d *Debouncer) Flush() {
	d.mu.Lock()
	defer d.mu.Unlock()

	for key := range d.pending {
		d.dispatchLocked(key)
	}
}

// Stop flushes pending events and waits for them to be handed over.
func (d *Debouncer) Stop() {
	d.Flush()
	d.wg.Wait()
	d.cancel()
}

// PendingCount returns the number of pending events.
func (d *Debouncer) PendingCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.pending)
}
