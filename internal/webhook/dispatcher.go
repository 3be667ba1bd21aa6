// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package webhook

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Endpoint is a receiver of webhook deliveries.
type Endpoint struct {
	URL     string
	Secret  string
	Headers map[string]string
	// Events limits the endpoint to the listed event types. Empty means all.
	Events []string
}

// HasEvent checks if the endpoint is subscribed to a specific event.
func (e Endpoint) HasEvent(event string) bool {
	return len(e.Events) == 0 || slices.Contains(e.Events, event)
}

// Delivery statuses
const (
	StatusPending   = "pending"
	StatusDelivered = "delivered"
	StatusDead      = "dead"
)

// Delivery is the record of one event sent to one endpoint.
type Delivery struct {
	ID           string     `json:"id"`
	URL          string     `json:"url"`
	Event        string     `json:"event"`
	Status       string     `json:"status"`
	Attempts     int        `json:"attempts"`
	ResponseCode int        `json:"response_code,omitempty"`
	ErrorMessage string     `json:"error_message,omitempty"`
	NextRetryAt  *time.Time `json:"next_retry_at,omitempty"`
	DeliveredAt  *time.Time `json:"delivered_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`

	payload  []byte
	endpoint Endpoint
	queued   bool
}

// Dispatcher handles webhook event dispatching and queuing.
type Dispatcher struct {
	endpoints []Endpoint
	client    *http.Client
	logger    *slog.Logger
	queue     chan string
	workers   int
	wg        sync.WaitGroup
	done      chan struct{}

	mu         sync.RWMutex
	running    bool
	deliveries map[string]*Delivery

	now func() time.Time
}

// Config holds dispatcher configuration.
type Config struct {
	Workers   int // Number of concurrent delivery workers
	QueueSize int
	Client    *http.Client
}

// DefaultConfig returns default dispatcher configuration.
func DefaultConfig() Config {
	return Config{
		Workers:   3,
		QueueSize: 100,
	}
}

// NewDispatcher creates a new webhook dispatcher for the given endpoints.
func NewDispatcher(endpoints []Endpoint, logger *slog.Logger, cfg Config) *Dispatcher {
	if cfg.Workers <= 0 {
		cfg.Workers = 3
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 100
	}
	if cfg.Client == nil {
		cfg.Client = httpClient
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Dispatcher{
		endpoints:  slices.Clone(endpoints),
		client:     cfg.Client,
		logger:     logger,
		queue:      make(chan string, cfg.QueueSize),
		workers:    cfg.Workers,
		done:       make(chan struct{}),
		deliveries: make(map[string]*Delivery),
		now:        time.Now,
	}
}

// Start starts the dispatcher workers.
func (d *Dispatcher) Start(ctx context.Context) {
	d.mu.Lock()
	if d.running {
		d.mu.Unlock()
		return
	}
	d.running = true
	d.mu.Unlock()

	d.logger.Info("starting webhook dispatcher", "workers", d.workers, "endpoints", len(d.endpoints))

	for i := 0; i < d.workers; i++ {
		d.wg.Add(1)
		go d.worker(ctx, i)
	}
}

// Stop stops the dispatcher and waits for workers to finish.
func (d *Dispatcher) Stop() {
	d.mu.Lock()
	if !d.running {
		d.mu.Unlock()
		return
	}
	d.running = false
	d.mu.Unlock()

	d.logger.Info("stopping webhook dispatcher")
	close(d.done)
	d.wg.Wait()
	d.logger.Info("webhook dispatcher stopped")
}

func (d *Dispatcher) worker(ctx context.Context, id int) {
	defer d.wg.Done()
	d.logger.Debug("webhook worker started", "worker_id", id)

	for {
		select {
		case <-d.done:
			return
		case <-ctx.Done():
			return
		case deliveryID := <-d.queue:
			d.processDelivery(ctx, deliveryID)
		}
	}
}

// Dispatch records a delivery for every subscribed endpoint and queues it.
func (d *Dispatcher) Dispatch(_ context.Context, event *Event) error {
	d.mu.RLock()
	running := d.running
	d.mu.RUnlock()

	if !running {
		d.logger.Warn("dispatcher not running, cannot dispatch event", "event_type", event.Type)
		return nil
	}
	if len(d.endpoints) == 0 {
		return nil
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshalling webhook event: %w", err)
	}

	now := d.now()
	for _, ep := range d.endpoints {
		if !ep.HasEvent(event.Type) {
			continue
		}

		rec := &Delivery{
			ID:          uuid.NewString(),
			URL:         ep.URL,
			Event:       event.Type,
			Status:      StatusPending,
			NextRetryAt: &now,
			CreatedAt:   now,
			UpdatedAt:   now,
			payload:     payload,
			endpoint:    ep,
		}

		d.mu.Lock()
		d.deliveries[rec.ID] = rec
		queued := d.enqueueLocked(rec)
		d.mu.Unlock()

		d.logger.Debug("webhook delivery created",
			"delivery_id", rec.ID,
			"url", ep.URL,
			"event_type", event.Type)
		if !queued {
			d.logger.Warn("delivery queue full, delivery will be retried later", "delivery_id", rec.ID)
		}
	}
	return nil
}

// enqueueLocked offers rec to the workers without blocking.
func (d *Dispatcher) enqueueLocked(rec *Delivery) bool {
	select {
	case d.queue <- rec.ID:
		rec.queued = true
		return true
	default:
		return false
	}
}

// RetryDue queues pending deliveries whose retry time has passed and
// returns how many were queued.
func (d *Dispatcher) RetryDue(_ context.Context) int {
	now := d.now()

	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.running {
		return 0
	}

	n := 0
	for _, rec := range d.deliveries {
		if rec.Status != StatusPending || rec.queued {
			continue
		}
		if rec.NextRetryAt != nil && rec.NextRetryAt.After(now) {
			continue
		}
		if !d.enqueueLocked(rec) {
			break
		}
		n++
	}
	return n
}

// Prune forgets delivered and dead deliveries last updated before the
// retention window and returns how many were removed.
func (d *Dispatcher) Prune(retention time.Duration) int {
	cutoff := d.now().Add(-retention)

	d.mu.Lock()
	defer d.mu.Unlock()

	n := 0
	for id, rec := range d.deliveries {
		if rec.Status == StatusPending || !rec.UpdatedAt.Before(cutoff) {
			continue
		}
		delete(d.deliveries, id)
		n++
	}
	return n
}

// Deliveries returns a snapshot of all known deliveries, newest first.
func (d *Dispatcher) Deliveries() []Delivery {
	d.mu.RLock()
	out := make([]Delivery, 0, len(d.deliveries))
	for _, rec := range d.deliveries {
		out = append(out, *rec)
	}
	d.mu.RUnlock()

	slices.SortFunc(out, func(a, b Delivery) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	return out
}

// Endpoints returns the number of configured endpoints.
func (d *Dispatcher) Endpoints() int {
	return len(d.endpoints)
}

// GenerateSignature generates an HMAC-SHA256 signature for the payload.
func GenerateSignature(payload []byte, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)
	return hex.EncodeToString(mac.Sum(nil))
}

// VerifySignature verifies an HMAC-SHA256 signature.
func VerifySignature(payload []byte, signature, secret string) bool {
	expectedSig := GenerateSignature(payload, secret)
	return hmac.Equal([]byte(signature), []byte(expectedSig))
}
