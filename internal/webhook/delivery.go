// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package webhook

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"math"
	"net/http"
	"time"
)

// Delivery configuration constants
const (
	MaxAttempts    = 5                   // Maximum number of delivery attempts
	InitialBackoff = 1 * time.Minute     // Initial backoff delay
	MaxBackoff     = 24 * time.Hour      // Maximum backoff delay
	RequestTimeout = 30 * time.Second    // HTTP request timeout
	MaxResponseLen = 10 * 1024           // Maximum response body to read (10KB)
	UserAgent      = "campus-events/1.0" // User-Agent header value
)

// DeliveryResult represents the result of a delivery attempt.
type DeliveryResult struct {
	Success     bool
	StatusCode  int
	Error       error
	ShouldRetry bool
}

// httpClient is used when Config.Client is nil. It does not guard
// against reserved addresses; production wiring passes NewClient.
var httpClient = NewClient(true)

// processDelivery attempts one delivery and records the outcome.
func (d *Dispatcher) processDelivery(ctx context.Context, id string) {
	d.mu.Lock()
	rec, ok := d.deliveries[id]
	if !ok || rec.Status != StatusPending {
		if ok {
			rec.queued = false
		}
		d.mu.Unlock()
		return
	}
	endpoint, payload, event := rec.endpoint, rec.payload, rec.Event
	d.mu.Unlock()

	result := d.attemptDelivery(ctx, id, event, endpoint, payload)

	d.mu.Lock()
	defer d.mu.Unlock()

	now := d.now()
	rec.queued = false
	rec.Attempts++
	rec.ResponseCode = result.StatusCode
	rec.UpdatedAt = now

	if result.Success {
		rec.Status = StatusDelivered
		rec.ErrorMessage = ""
		rec.NextRetryAt = nil
		rec.DeliveredAt = &now
		d.logger.Info("webhook delivered",
			"delivery_id", id,
			"url", endpoint.URL,
			"status_code", result.StatusCode)
		return
	}

	if result.Error != nil {
		rec.ErrorMessage = result.Error.Error()
	}

	if !result.ShouldRetry || rec.Attempts >= MaxAttempts {
		rec.Status = StatusDead
		rec.NextRetryAt = nil
		d.logger.Warn("webhook delivery marked as dead",
			"delivery_id", id,
			"url", endpoint.URL,
			"attempts", rec.Attempts,
			"reason", rec.ErrorMessage)
		return
	}

	backoff := calculateBackoff(int64(rec.Attempts))
	next := now.Add(backoff)
	rec.NextRetryAt = &next
	d.logger.Info("webhook delivery scheduled for retry",
		"delivery_id", id,
		"attempt", rec.Attempts,
		"next_retry_at", next.Format(time.RFC3339),
		"backoff", backoff.String())
}

// attemptDelivery performs the actual HTTP POST request.
func (d *Dispatcher) attemptDelivery(ctx context.Context, id, event string, endpoint Endpoint, payload []byte) DeliveryResult {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint.URL, bytes.NewReader(payload))
	if err != nil {
		return DeliveryResult{
			Error:       fmt.Errorf("failed to create request: %w", err),
			ShouldRetry: false,
		}
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", UserAgent)
	if endpoint.Secret != "" {
		req.Header.Set("X-Webhook-Signature", GenerateSignature(payload, endpoint.Secret))
	}
	req.Header.Set("X-Webhook-Event", event)
	req.Header.Set("X-Webhook-Delivery-ID", id)
	for key, value := range endpoint.Headers {
		req.Header.Set(key, value)
	}

	resp, err := d.client.Do(req)
	if err != nil {
		return DeliveryResult{
			Error:       fmt.Errorf("request failed: %w", err),
			ShouldRetry: true,
		}
	}
	defer func() { _ = resp.Body.Close() }()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, MaxResponseLen))

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return DeliveryResult{Success: true, StatusCode: resp.StatusCode}
	}

	statusErr := fmt.Errorf("HTTP %d: %s", resp.StatusCode, http.StatusText(resp.StatusCode))
	if resp.StatusCode >= 400 && resp.StatusCode < 500 {
		// Client errors are final except 408 and 429.
		return DeliveryResult{
			StatusCode:  resp.StatusCode,
			Error:       statusErr,
			ShouldRetry: resp.StatusCode == http.StatusRequestTimeout || resp.StatusCode == http.StatusTooManyRequests,
		}
	}

	return DeliveryResult{
		StatusCode:  resp.StatusCode,
		Error:       statusErr,
		ShouldRetry: true,
	}
}

// calculateBackoff returns InitialBackoff * 2^(attempt-1), capped at MaxBackoff.
func calculateBackoff(attempt int64) time.Duration {
	if attempt <= 0 {
		attempt = 1
	}
	backoff := time.Duration(float64(InitialBackoff) * math.Pow(2, float64(attempt-1)))
	if backoff > MaxBackoff {
		backoff = MaxBackoff
	}
	return backoff
}
