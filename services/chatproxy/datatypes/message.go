// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package datatypes provides the shared data model for the chatproxy service.
//
// This file contains the conversation message type. Request and response
// types for the HTTP surface live in chat.go.
package datatypes

// Message roles. The upstream completion contract only ever sees these two;
// there is no system role in this service.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is one turn in a conversation.
//
// # Description
//
// Messages are immutable once appended to a conversation history. Their
// order within a history is the chronological send/receive order and is
// replayed verbatim as the context sent upstream, so it must never be
// re-sorted or compacted.
//
// # Fields
//
//   - Role: "user" or "assistant".
//   - Content: the raw message text. Stored content is always the original
//     text the client sent; wire-level directives (the no-think marker) are
//     applied to outbound copies only.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// CopyHistory returns an independent copy of a message history.
//
// The gateway rewrites the last outbound message in no-thinking mode, and
// the chat handler releases the store lock while the upstream call is in
// flight. Both rely on working against a copy so the stored history is
// never mutated or raced.
func CopyHistory(history []Message) []Message {
	out := make([]Message, len(history))
	copy(out, history)
	return out
}
