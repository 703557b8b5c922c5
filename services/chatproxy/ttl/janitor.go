// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package ttl

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// Sweeper removes expired sessions given a sanity-checked "now" in Unix
// milliseconds and reports how many were removed. Implemented by the
// session registry.
type Sweeper interface {
	SweepExpired(nowMs int64) int
	Len() int
}

// Counter receives the count of reaped sessions. Implemented by the
// Prometheus sessions-reaped counter; may be nil.
type Counter interface {
	Add(float64)
}

// Gauge receives the post-sweep session count. Implemented by the
// Prometheus active-sessions gauge; may be nil.
type Gauge interface {
	Set(float64)
}

// JanitorConfig holds configuration for the background sweep loop.
//
// # Fields
//
//   - Interval: how often to sweep. Default: 1 hour.
type JanitorConfig struct {
	Interval time.Duration
}

// DefaultJanitorConfig returns the production sweep interval. Hourly is
// plenty for a 7-day TTL; the registry also refreshes entries on access,
// so the janitor only ever sees genuinely idle sessions.
func DefaultJanitorConfig() JanitorConfig {
	return JanitorConfig{Interval: 1 * time.Hour}
}

// Janitor runs the periodic session sweep.
//
// # Description
//
// Uses the ticker + done channel pattern: Start launches one goroutine,
// Stop signals it and returns once it has exited. Each tick asks the clock
// checker for a validated timestamp and skips the sweep entirely when the
// clock looks wrong.
//
// # Thread Safety
//
// Start and Stop are safe for concurrent use; only one sweep goroutine
// runs at a time.
type Janitor struct {
	sweeper Sweeper
	clock   ClockChecker
	reaped  Counter
	active  Gauge
	config  JanitorConfig

	mu      sync.Mutex
	done    chan struct{}
	stopped chan struct{}
	running bool
}

// NewJanitor creates a janitor over the given sweeper. clock must not be
// nil; reaped and active may be nil when metrics are disabled.
func NewJanitor(sweeper Sweeper, clock ClockChecker, reaped Counter, active Gauge,
	config JanitorConfig) *Janitor {
	if config.Interval <= 0 {
		config.Interval = DefaultJanitorConfig().Interval
	}
	return &Janitor{
		sweeper: sweeper,
		clock:   clock,
		reaped:  reaped,
		active:  active,
		config:  config,
	}
}

// Start launches the background sweep loop. Returns an error if the
// janitor is already running. The context bounds the goroutine's lifetime
// alongside Stop.
func (j *Janitor) Start(ctx context.Context) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.running {
		return fmt.Errorf("session janitor already running")
	}
	j.done = make(chan struct{})
	j.stopped = make(chan struct{})
	j.running = true

	go j.run(ctx, j.done, j.stopped)
	slog.Info("Session janitor started", "interval", j.config.Interval)
	return nil
}

// Stop signals the sweep loop to exit and waits for it. Safe to call when
// not running.
func (j *Janitor) Stop() {
	j.mu.Lock()
	if !j.running {
		j.mu.Unlock()
		return
	}
	done, stopped := j.done, j.stopped
	j.running = false
	j.mu.Unlock()

	close(done)
	<-stopped
	slog.Info("Session janitor stopped")
}

func (j *Janitor) run(ctx context.Context, done <-chan struct{}, stopped chan<- struct{}) {
	defer close(stopped)

	ticker := time.NewTicker(j.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			j.SweepOnce()
		}
	}
}

// SweepOnce performs a single clock-checked sweep. Exposed so startup can
// run an immediate pass and tests can drive the janitor without a ticker.
func (j *Janitor) SweepOnce() {
	nowMs, err := j.clock.CurrentTimeMs()
	if err != nil {
		slog.Warn("Skipping session sweep, clock sanity check failed", "error", err)
		return
	}

	removed := j.sweeper.SweepExpired(nowMs)
	if removed > 0 && j.reaped != nil {
		j.reaped.Add(float64(removed))
	}
	if j.active != nil {
		j.active.Set(float64(j.sweeper.Len()))
	}
	slog.Debug("Session sweep complete", "removed", removed)
}
