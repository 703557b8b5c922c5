// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package conversation implements the per-session conversation store.
//
// # Description
//
// A Store is the authoritative, session-scoped source of truth for
// conversation existence, membership, the "current conversation" pointer,
// and the per-session no-thinking flag. It is pure in-memory state with no
// I/O; the handlers layer composes it with the completion gateway.
//
// # Invariants
//
//   - If a current conversation is selected, it always keys an existing
//     entry in the conversations map.
//   - Conversation ids are unique within a Store and never reused after
//     deletion (wall-clock derived, bumped past any live id on collision).
//   - Histories are append-only; the only removal is whole-conversation
//     deletion.
//
// # Thread Safety
//
// All methods are safe for concurrent use. The mutex additionally gives the
// chat flow its ordering guarantee: a user-message append and the history
// snapshot for the outbound request happen under one critical section, so
// the stored order always matches what was sent upstream. Two truly
// concurrent chat calls on the same conversation remain unsupported; the
// second one serializes behind the first and sees its appends.
package conversation

import (
	"errors"
	"strconv"
	"sync"
	"time"

	"github.com/AleutianAI/AleutianChat/services/chatproxy/datatypes"
)

// ErrNotFound is returned when a referenced conversation id does not exist
// in the session.
var ErrNotFound = errors.New("conversation not found")

// Store holds one session's conversations.
//
// # Fields
//
//   - conversations: conversation id -> ordered message history.
//   - order: ids in creation order. Lookup is by id; this slice only makes
//     enumeration (and the delete-reassignment choice) deterministic.
//   - current: the selected conversation id, "" when none is selected.
//   - noThinking: per-session request-shaping flag, defaults to false.
//   - lastID: highest id handed out, used to bump past collisions.
type Store struct {
	mu            sync.Mutex
	conversations map[string][]datatypes.Message
	order         []string
	current       string
	noThinking    bool
	lastID        int64
}

// NewStore creates an empty Store with no conversation selected.
func NewStore() *Store {
	return &Store{
		conversations: make(map[string][]datatypes.Message),
	}
}

// nextIDLocked generates a fresh conversation id. Ids are wall-clock
// milliseconds as a decimal string; if the clock has not advanced past the
// previous id (or an entry already exists, e.g. after a backwards clock
// step), the value is bumped so creation can never overwrite a history.
// Callers must hold s.mu.
func (s *Store) nextIDLocked() string {
	candidate := time.Now().UnixMilli()
	if candidate <= s.lastID {
		candidate = s.lastID + 1
	}
	for {
		id := strconv.FormatInt(candidate, 10)
		if _, exists := s.conversations[id]; !exists {
			s.lastID = candidate
			return id
		}
		candidate++
	}
}

// EnsureActive returns the current conversation id, creating and selecting
// a new empty conversation first if none is selected. Idempotent: repeated
// calls without an intervening Create/Switch/Delete return the same id and
// leave its history untouched.
func (s *Store) EnsureActive() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current != "" {
		return s.current
	}
	return s.createLocked()
}

// Create registers a new empty conversation, selects it as current, and
// returns its id. Prior conversations remain addressable.
func (s *Store) Create() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.createLocked()
}

func (s *Store) createLocked() string {
	id := s.nextIDLocked()
	s.conversations[id] = []datatypes.Message{}
	s.order = append(s.order, id)
	s.current = id
	return id
}

// List returns all conversation ids in creation order and the current id
// ("" when none is selected). The returned slice is a copy.
func (s *Store) List() ([]string, string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := make([]string, len(s.order))
	copy(ids, s.order)
	return ids, s.current
}

// Switch selects id as the current conversation and returns a copy of its
// history. Returns ErrNotFound if id does not exist; the current pointer is
// left unchanged in that case.
func (s *Store) Switch(id string) ([]datatypes.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	history, ok := s.conversations[id]
	if !ok {
		return nil, ErrNotFound
	}
	s.current = id
	return datatypes.CopyHistory(history), nil
}

// Delete removes id and its history. If the deleted conversation was the
// current one, the first remaining id in creation order becomes current, or
// "" when none remain. No replacement conversation is created. Returns
// ErrNotFound if id does not exist.
func (s *Store) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.conversations[id]; !ok {
		return ErrNotFound
	}
	delete(s.conversations, id)
	for i, existing := range s.order {
		if existing == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	if s.current == id {
		if len(s.order) > 0 {
			s.current = s.order[0]
		} else {
			s.current = ""
		}
	}
	return nil
}

// Append adds msg to the named conversation's history. Returns ErrNotFound
// if the conversation no longer exists (e.g. deleted while an upstream call
// was in flight).
func (s *Store) Append(id string, msg datatypes.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	history, ok := s.conversations[id]
	if !ok {
		return ErrNotFound
	}
	s.conversations[id] = append(history, msg)
	return nil
}

// AppendAndSnapshot appends msg to the named conversation and returns a
// copy of the resulting history in one critical section. The chat handler
// uses this so the user-message append happens-before the outbound request
// is built, with nothing interleaved between the two.
func (s *Store) AppendAndSnapshot(id string, msg datatypes.Message) ([]datatypes.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	history, ok := s.conversations[id]
	if !ok {
		return nil, ErrNotFound
	}
	history = append(history, msg)
	s.conversations[id] = history
	return datatypes.CopyHistory(history), nil
}

// Snapshot returns a copy of the named conversation's history.
func (s *Store) Snapshot(id string) ([]datatypes.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	history, ok := s.conversations[id]
	if !ok {
		return nil, ErrNotFound
	}
	return datatypes.CopyHistory(history), nil
}

// NoThinking reports the session's no-thinking flag. Defaults to false and
// never fails.
func (s *Store) NoThinking() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.noThinking
}

// SetNoThinking sets the session's no-thinking flag.
func (s *Store) SetNoThinking(enabled bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.noThinking = enabled
}
