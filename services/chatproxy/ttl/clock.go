// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package ttl expires idle chat sessions in the background.
//
// The janitor periodically sweeps the session registry for entries past
// their sliding time-to-live. Every sweep is gated on a clock sanity check:
// a host clock yanked into the future would otherwise expire every live
// session in one tick, and a clock set into the past would keep dead
// sessions forever.
package ttl

import (
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// ClockChecker validates the system clock before time-sensitive sweeps.
//
// # Description
//
// Checks that the current time sits inside configured bounds and that it
// has not jumped suspiciously far from the last known good reading. All
// methods are safe for concurrent use.
type ClockChecker interface {
	// CurrentTimeMs returns the current Unix milliseconds if the clock
	// passes the sanity check, otherwise an error describing the problem.
	CurrentTimeMs() (int64, error)

	// ResetJumpDetection resets the jump baseline. Call after a known
	// legitimate time change (NTP sync, resume from sleep).
	ResetJumpDetection()
}

// ClockConfig bounds what the checker accepts as a sane clock reading.
type ClockConfig struct {
	MinValidTime    time.Time
	MaxValidTime    time.Time
	MaxBackwardJump time.Duration
	MaxForwardJump  time.Duration
}

// DefaultClockConfig returns bounds suitable for production: a 2025 lower
// bound, a ten-year upper bound, and one/two-hour jump thresholds.
func DefaultClockConfig() ClockConfig {
	return ClockConfig{
		MinValidTime:    time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		MaxValidTime:    time.Date(2035, 12, 31, 23, 59, 59, 0, time.UTC),
		MaxBackwardJump: 1 * time.Hour,
		MaxForwardJump:  2 * time.Hour,
	}
}

type clockChecker struct {
	config     ClockConfig
	mu         sync.Mutex
	lastGood   time.Time
	checkCount int64
}

// NewClockChecker creates a checker with DefaultClockConfig.
func NewClockChecker() ClockChecker {
	return NewClockCheckerWithConfig(DefaultClockConfig())
}

// NewClockCheckerWithConfig creates a checker with custom bounds.
func NewClockCheckerWithConfig(config ClockConfig) ClockChecker {
	return &clockChecker{config: config, lastGood: time.Now()}
}

func (c *clockChecker) CurrentTimeMs() (int64, error) {
	now := time.Now()

	if now.Before(c.config.MinValidTime) {
		return 0, fmt.Errorf("clock sanity: time %v is before minimum valid time %v",
			now.Format(time.RFC3339), c.config.MinValidTime.Format(time.RFC3339))
	}
	if now.After(c.config.MaxValidTime) {
		return 0, fmt.Errorf("clock sanity: time %v is after maximum valid time %v",
			now.Format(time.RFC3339), c.config.MaxValidTime.Format(time.RFC3339))
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.checkCount > 0 {
		diff := now.Sub(c.lastGood)
		if diff < -c.config.MaxBackwardJump {
			return 0, fmt.Errorf("clock sanity: suspicious backward jump of %v (max allowed %v)",
				-diff, c.config.MaxBackwardJump)
		}
		if diff > c.config.MaxForwardJump {
			return 0, fmt.Errorf("clock sanity: suspicious forward jump of %v (max allowed %v)",
				diff, c.config.MaxForwardJump)
		}
	}
	c.lastGood = now
	c.checkCount++
	return now.UnixMilli(), nil
}

func (c *clockChecker) ResetJumpDetection() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lastGood = time.Now()
	c.checkCount = 0
	slog.Info("clock checker: jump detection reset",
		"new_baseline", c.lastGood.Format(time.RFC3339))
}

// noopClockChecker always passes; used in tests.
type noopClockChecker struct{}

// NewNoopClockChecker returns a checker that performs no validation.
func NewNoopClockChecker() ClockChecker { return &noopClockChecker{} }

func (n *noopClockChecker) CurrentTimeMs() (int64, error) { return time.Now().UnixMilli(), nil }
func (n *noopClockChecker) ResetJumpDetection()           {}
