// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package recommend

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/olegiv/campus-events/internal/model"
)

// EventSource supplies the candidate events for a request.
type EventSource interface {
	Events() []model.Event
}

// Service runs gateway calls against the tracker's state machine.
//
// Lookups run on the service's own context, never the caller's. The only
// deadline on a provider call is the provider timeout, and in-flight
// lookups are cancelled only by Shutdown.
type Service struct {
	gateway *Gateway
	tracker *Tracker
	events  EventSource
	logger  *slog.Logger

	base     context.Context
	cancel   context.CancelFunc
	wg       sync.WaitGroup
	inFlight atomic.Int64
}

// NewService wires a gateway, tracker and event source together.
func NewService(gateway *Gateway, tracker *Tracker, events EventSource, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	base, cancel := context.WithCancel(context.Background())
	return &Service{
		gateway: gateway,
		tracker: tracker,
		events:  events,
		logger:  logger,
		base:    base,
		cancel:  cancel,
	}
}

// Tracker returns the underlying state tracker.
func (s *Service) Tracker() *Tracker {
	return s.tracker
}

// Run performs a request and waits for it to resolve. When ctx ends first
// Run returns ctx.Err(); the request still resolves in the background.
func (s *Service) Run(ctx context.Context, session, interests string) (State, error) {
	seq, done, err := s.start(ctx, session, interests)
	if err != nil {
		return State{}, err
	}
	select {
	case <-done:
	case <-ctx.Done():
		s.logger.Debug("caller left before recommendations resolved", "seq", seq)
		return State{}, ctx.Err()
	}
	return s.tracker.State(ctx, session)
}

// Start begins a request and resolves it in the background. The returned
// sequence identifies the request in later state reads.
func (s *Service) Start(ctx context.Context, session, interests string) (uint64, error) {
	seq, _, err := s.start(ctx, session, interests)
	return seq, err
}

func (s *Service) start(ctx context.Context, session, interests string) (uint64, <-chan struct{}, error) {
	seq, err := s.tracker.Begin(ctx, session, interests)
	if err != nil {
		return 0, nil, err
	}

	done := make(chan struct{})
	s.wg.Add(1)
	s.inFlight.Add(1)
	go func() {
		defer s.wg.Done()
		defer s.inFlight.Add(-1)
		defer close(done)
		s.execute(s.base, session, seq, interests)
	}()
	return seq, done, nil
}

// Wait blocks until background requests have finished.
func (s *Service) Wait() {
	s.wg.Wait()
}

// Shutdown waits for in-flight requests until ctx ends, then cancels
// them. Cancelled requests still record a failed result.
func (s *Service) Shutdown(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.cancel()
		return nil
	case <-ctx.Done():
		s.logger.Warn("cancelling in-flight recommendation requests",
			"category", "recommend", "pending", s.inFlight.Load())
		s.cancel()
		return ctx.Err()
	}
}

func (s *Service) execute(ctx context.Context, session string, seq uint64, interests string) {
	ids, failure := s.gateway.Recommend(ctx, s.events.Events(), interests)

	// The outcome is recorded even when the lookup was cancelled.
	applied, err := s.tracker.Complete(context.WithoutCancel(ctx), session, seq, ids, failure)
	if err != nil {
		s.logger.Error("failed to record recommendations", "category", "recommend", "error", err)
		return
	}
	if !applied {
		s.logger.Debug("discarding stale recommendation result", "seq", seq)
	}
}
