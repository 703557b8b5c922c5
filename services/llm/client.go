// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package llm implements the completion gateway: the boundary component
// that turns a conversation history into exactly one upstream
// chat-completion request and reconciles the response.
package llm

import (
	"context"
	"encoding/json"

	"github.com/AleutianAI/AleutianChat/services/chatproxy/datatypes"
)

// Reply is the outcome of a successful completion call.
//
// # Description
//
// Raw is the verbatim upstream payload; the chat endpoint passes it through
// to the browser untouched. Content/HasContent form a tagged optional for
// the assistant text at choices[0].message.content: a well-formed response
// without that path is still a success, it just carries nothing to append
// to the conversation. Callers must branch on HasContent instead of
// re-probing Raw.
type Reply struct {
	Raw        json.RawMessage
	Content    string
	HasContent bool
}

// CompletionClient is the gateway contract consumed by the handlers layer.
//
// Complete issues a single upstream request for the given history. The
// history slice is never mutated; when noThinking is set the last message,
// if user-authored, is prefixed with the no-think marker on the wire only.
// Failures come back as *GatewayError and are never retried here.
//
// ModelName returns the upstream's advertised model name, or a fallback
// label on any failure. It never returns an error: the value is advisory
// UI metadata, not something chat correctness depends on.
type CompletionClient interface {
	Complete(ctx context.Context, history []datatypes.Message, noThinking bool) (*Reply, error)
	ModelName(ctx context.Context) string
}
