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
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClockChecker_DefaultConfigAcceptsNow(t *testing.T) {
	c := NewClockChecker()

	ms, err := c.CurrentTimeMs()
	require.NoError(t, err)
	assert.InDelta(t, time.Now().UnixMilli(), ms, 1000)
}

func TestClockChecker_RejectsTimeBeforeMinimum(t *testing.T) {
	cfg := DefaultClockConfig()
	cfg.MinValidTime = time.Now().Add(24 * time.Hour)
	c := NewClockCheckerWithConfig(cfg)

	_, err := c.CurrentTimeMs()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "before minimum valid time")
}

func TestClockChecker_RejectsTimeAfterMaximum(t *testing.T) {
	cfg := DefaultClockConfig()
	cfg.MaxValidTime = time.Now().Add(-24 * time.Hour)
	c := NewClockCheckerWithConfig(cfg)

	_, err := c.CurrentTimeMs()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "after maximum valid time")
}

func TestClockChecker_DetectsForwardJump(t *testing.T) {
	cfg := DefaultClockConfig()
	cfg.MaxForwardJump = time.Nanosecond
	c := NewClockCheckerWithConfig(cfg)

	// First reading establishes the baseline and always passes the jump check.
	_, err := c.CurrentTimeMs()
	require.NoError(t, err)

	time.Sleep(5 * time.Millisecond)
	_, err = c.CurrentTimeMs()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "forward jump")
}

func TestClockChecker_ResetClearsJumpBaseline(t *testing.T) {
	cfg := DefaultClockConfig()
	cfg.MaxForwardJump = time.Nanosecond
	c := NewClockCheckerWithConfig(cfg)

	_, err := c.CurrentTimeMs()
	require.NoError(t, err)
	time.Sleep(5 * time.Millisecond)

	c.ResetJumpDetection()
	_, err = c.CurrentTimeMs()
	assert.NoError(t, err)
}

func TestNoopClockChecker_AlwaysPasses(t *testing.T) {
	c := NewNoopClockChecker()
	for i := 0; i < 3; i++ {
		ms, err := c.CurrentTimeMs()
		require.NoError(t, err)
		assert.Positive(t, ms)
	}
	c.ResetJumpDetection()
}
