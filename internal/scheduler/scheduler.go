// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package scheduler runs periodic maintenance jobs on a cron schedule.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

// JobTimeout bounds a single job run.
const JobTimeout = 2 * time.Minute

// Job is a unit of scheduled work.
type Job struct {
	Name        string
	Description string
	Schedule    string
	Run         func(ctx context.Context) error
	// Manual allows the job to be triggered on demand.
	Manual bool
}

// Scheduler owns the cron instance and the registry of its jobs.
type Scheduler struct {
	cron     *cron.Cron
	logger   *slog.Logger
	registry *Registry
}

// New creates a new scheduler instance.
func New(logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Scheduler{
		cron:     cron.New(),
		logger:   logger,
		registry: NewRegistry(logger),
	}
}

// Registry returns the job registry.
func (s *Scheduler) Registry() *Registry {
	return s.registry
}

// Add registers a job with the cron instance.
func (s *Scheduler) Add(job Job) error {
	if job.Name == "" || job.Run == nil {
		return fmt.Errorf("job requires a name and a run function")
	}

	fn := s.wrap(job)
	entryID, err := s.cron.AddFunc(job.Schedule, fn)
	if err != nil {
		return fmt.Errorf("scheduling %s: %w", job.Name, err)
	}

	var trigger func() error
	if job.Manual {
		trigger = func() error {
			ctx, cancel := context.WithTimeout(context.Background(), JobTimeout)
			defer cancel()
			return job.Run(ctx)
		}
	}
	s.registry.Register(job.Name, job.Description, job.Schedule, s.cron, entryID, fn, trigger)
	return nil
}

// wrap adapts a job to cron's func() signature, logging failures.
func (s *Scheduler) wrap(job Job) func() {
	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), JobTimeout)
		defer cancel()
		if err := job.Run(ctx); err != nil {
			s.logger.Error("scheduled job failed", "job", job.Name, "error", err)
		}
	}
}

// Start begins running scheduled jobs.
func (s *Scheduler) Start() {
	s.cron.Start()
	s.logger.Info("scheduler started", "jobs", len(s.cron.Entries()))
}

// Stop gracefully stops the scheduler, waiting for running jobs.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.logger.Info("scheduler stopped")
}
