// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package session maps opaque session identifiers to their conversation
// stores.
//
// # Description
//
// The Registry is the process-wide table of live sessions. Each entry owns
// one conversation.Store, created on first touch and expired on a sliding
// TTL: every access refreshes the entry's last-seen time, and the ttl
// janitor sweeps entries that have gone quiet for longer than the TTL.
//
// Sessions are memory-only. Process restart drops all of them; that is an
// accepted property of this service, not a bug to paper over.
//
// # Thread Safety
//
// All methods are safe for concurrent use. The registry lock covers only
// the session table; per-session state is guarded by each Store's own
// mutex, so cross-session requests never contend.
package session

import (
	"log/slog"
	"sync"
	"time"

	"github.com/AleutianAI/AleutianChat/services/chatproxy/conversation"
)

// DefaultTTL is the sliding session time-to-live used when no TTL is
// configured. Matches the browser cookie's 7-day lifetime.
const DefaultTTL = 7 * 24 * time.Hour

// entry pairs a session's store with its sliding-expiry bookkeeping.
type entry struct {
	store    *conversation.Store
	lastSeen time.Time
}

// Registry is the session-id -> conversation store table.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]*entry
	ttl      time.Duration
}

// NewRegistry creates an empty registry. A non-positive ttl falls back to
// DefaultTTL.
func NewRegistry(ttl time.Duration) *Registry {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Registry{
		sessions: make(map[string]*entry),
		ttl:      ttl,
	}
}

// GetOrCreate returns the store for id, creating a fresh one on first
// touch. Every call refreshes the session's sliding expiry.
func (r *Registry) GetOrCreate(id string) *conversation.Store {
	now := time.Now()

	r.mu.RLock()
	e, ok := r.sessions[id]
	r.mu.RUnlock()
	if ok {
		r.mu.Lock()
		e.lastSeen = now
		r.mu.Unlock()
		return e.store
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	// Re-check under the write lock; another request may have created it.
	if e, ok := r.sessions[id]; ok {
		e.lastSeen = now
		return e.store
	}
	e = &entry{store: conversation.NewStore(), lastSeen: now}
	r.sessions[id] = e
	slog.Debug("created session state", "session_id", id)
	return e.store
}

// Len reports the number of live sessions.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// SweepExpired removes every session whose last access is older than the
// TTL relative to nowMs (Unix milliseconds) and returns how many were
// removed. The janitor supplies nowMs from a sanity-checked clock so a
// clock set into the future cannot mass-delete live sessions.
func (r *Registry) SweepExpired(nowMs int64) int {
	cutoff := time.UnixMilli(nowMs).Add(-r.ttl)

	r.mu.Lock()
	defer r.mu.Unlock()
	removed := 0
	for id, e := range r.sessions {
		if e.lastSeen.Before(cutoff) {
			delete(r.sessions, id)
			removed++
		}
	}
	if removed > 0 {
		slog.Info("expired idle sessions", "removed", removed, "remaining", len(r.sessions))
	}
	return removed
}
