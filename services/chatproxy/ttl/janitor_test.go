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
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// =============================================================================
// Test Doubles
// =============================================================================

type fakeSweeper struct {
	mu      sync.Mutex
	removed int
	live    int
	sweeps  int
}

func (f *fakeSweeper) SweepExpired(_ int64) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sweeps++
	return f.removed
}

func (f *fakeSweeper) Len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.live
}

func (f *fakeSweeper) sweepCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.sweeps
}

type fakeCounter struct {
	mu    sync.Mutex
	total float64
}

func (f *fakeCounter) Add(v float64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.total += v
}

type fakeGauge struct {
	mu   sync.Mutex
	last float64
	set  bool
}

func (f *fakeGauge) Set(v float64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.last = v
	f.set = true
}

type failingClock struct{}

func (failingClock) CurrentTimeMs() (int64, error) { return 0, errors.New("clock out of bounds") }
func (failingClock) ResetJumpDetection()           {}

// =============================================================================
// SweepOnce Tests
// =============================================================================

func TestJanitor_SweepOnceRecordsMetrics(t *testing.T) {
	sweeper := &fakeSweeper{removed: 3, live: 7}
	counter := &fakeCounter{}
	gauge := &fakeGauge{}
	j := NewJanitor(sweeper, NewNoopClockChecker(), counter, gauge, JanitorConfig{})

	j.SweepOnce()

	assert.Equal(t, 1, sweeper.sweepCount())
	assert.Equal(t, 3.0, counter.total)
	assert.Equal(t, 7.0, gauge.last)
}

func TestJanitor_SweepOnceNothingRemoved(t *testing.T) {
	sweeper := &fakeSweeper{removed: 0, live: 2}
	counter := &fakeCounter{}
	gauge := &fakeGauge{}
	j := NewJanitor(sweeper, NewNoopClockChecker(), counter, gauge, JanitorConfig{})

	j.SweepOnce()

	assert.Equal(t, 0.0, counter.total)
	// The gauge still refreshes on an empty sweep.
	assert.True(t, gauge.set)
	assert.Equal(t, 2.0, gauge.last)
}

func TestJanitor_SweepSkippedOnClockFailure(t *testing.T) {
	sweeper := &fakeSweeper{removed: 5}
	counter := &fakeCounter{}
	j := NewJanitor(sweeper, failingClock{}, counter, nil, JanitorConfig{})

	j.SweepOnce()

	assert.Zero(t, sweeper.sweepCount(), "a failing clock must suppress the sweep")
	assert.Equal(t, 0.0, counter.total)
}

func TestJanitor_NilMetricsAreSafe(t *testing.T) {
	sweeper := &fakeSweeper{removed: 1, live: 1}
	j := NewJanitor(sweeper, NewNoopClockChecker(), nil, nil, JanitorConfig{})

	assert.NotPanics(t, func() { j.SweepOnce() })
	assert.Equal(t, 1, sweeper.sweepCount())
}

// =============================================================================
// Lifecycle Tests
// =============================================================================

func TestJanitor_StartStop(t *testing.T) {
	sweeper := &fakeSweeper{}
	j := NewJanitor(sweeper, NewNoopClockChecker(), nil, nil,
		JanitorConfig{Interval: 5 * time.Millisecond})

	require.NoError(t, j.Start(context.Background()))

	assert.Eventually(t, func() bool { return sweeper.sweepCount() >= 2 },
		2*time.Second, time.Millisecond)

	j.Stop()
	settled := sweeper.sweepCount()
	time.Sleep(25 * time.Millisecond)
	assert.Equal(t, settled, sweeper.sweepCount(), "no sweeps after Stop")
}

func TestJanitor_DoubleStartErrors(t *testing.T) {
	j := NewJanitor(&fakeSweeper{}, NewNoopClockChecker(), nil, nil,
		JanitorConfig{Interval: time.Hour})

	require.NoError(t, j.Start(context.Background()))
	defer j.Stop()

	assert.Error(t, j.Start(context.Background()))
}

func TestJanitor_StopWithoutStartIsNoop(t *testing.T) {
	j := NewJanitor(&fakeSweeper{}, NewNoopClockChecker(), nil, nil, JanitorConfig{})
	assert.NotPanics(t, j.Stop)
}

func TestJanitor_RestartAfterStop(t *testing.T) {
	sweeper := &fakeSweeper{}
	j := NewJanitor(sweeper, NewNoopClockChecker(), nil, nil,
		JanitorConfig{Interval: 5 * time.Millisecond})

	require.NoError(t, j.Start(context.Background()))
	j.Stop()

	require.NoError(t, j.Start(context.Background()))
	defer j.Stop()
	before := sweeper.sweepCount()
	assert.Eventually(t, func() bool { return sweeper.sweepCount() > before },
		2*time.Second, time.Millisecond)
}

func TestJanitor_ContextCancelStopsLoop(t *testing.T) {
	sweeper := &fakeSweeper{}
	j := NewJanitor(sweeper, NewNoopClockChecker(), nil, nil,
		JanitorConfig{Interval: 5 * time.Millisecond})

	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, j.Start(ctx))
	cancel()

	time.Sleep(25 * time.Millisecond)
	settled := sweeper.sweepCount()
	time.Sleep(25 * time.Millisecond)
	assert.Equal(t, settled, sweeper.sweepCount())
}

func TestJanitor_DefaultIntervalApplied(t *testing.T) {
	j := NewJanitor(&fakeSweeper{}, NewNoopClockChecker(), nil, nil, JanitorConfig{})
	assert.Equal(t, DefaultJanitorConfig().Interval, j.config.Interval)
}
