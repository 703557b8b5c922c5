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
// This file contains request and response types for the inbound HTTP
// surface, with go-playground/validator tags and the shared validator
// instance.
package datatypes

import (
	"github.com/go-playground/validator/v10"
)

// =============================================================================
// Size Limits
// =============================================================================

const (
	// MaxMessageContentBytes is the maximum size of a single chat message.
	// Byte length, not rune count, to bound memory for large payloads.
	MaxMessageContentBytes = 32 * 1024 // 32KB
)

// =============================================================================
// Shared Validator Instance
// =============================================================================

// chatValidate is the validator instance for chatproxy request types.
// Initialized in init() with custom validators.
var chatValidate *validator.Validate

func init() {
	chatValidate = validator.New()
	_ = chatValidate.RegisterValidation("maxbytes", validateMaxBytes)
}

// validateMaxBytes checks that a string field does not exceed
// MaxMessageContentBytes. Registered as the "maxbytes" tag.
func validateMaxBytes(fl validator.FieldLevel) bool {
	return len(fl.Field().String()) <= MaxMessageContentBytes
}

// =============================================================================
// Request Types
// =============================================================================

// ChatRequest is the body of POST /chat.
//
// # Validation
//
//   - Message: required, non-empty, at most 32KB.
type ChatRequest struct {
	Message string `json:"message" validate:"required,maxbytes"`
}

// Validate validates the ChatRequest fields after JSON binding.
func (r *ChatRequest) Validate() error {
	return chatValidate.Struct(r)
}

// SwitchConversationRequest is the body of POST /switch-conversation.
type SwitchConversationRequest struct {
	ID string `json:"id" validate:"required"`
}

// Validate validates the SwitchConversationRequest fields.
func (r *SwitchConversationRequest) Validate() error {
	return chatValidate.Struct(r)
}

// ThinkingModeRequest is the body of POST /thinking-mode.
//
// NoThinking is a plain bool, not a pointer: an absent field means false,
// which is also the flag's default, so the two are indistinguishable on
// purpose.
type ThinkingModeRequest struct {
	NoThinking bool `json:"noThinking"`
}

// =============================================================================
// Response Types
// =============================================================================

// NewConversationResponse is the body of POST /new-conversation.
type NewConversationResponse struct {
	ID string `json:"id"`
}

// ConversationListResponse is the body of GET /conversations.
//
// Current is a pointer so that "no conversation selected yet" serializes as
// JSON null rather than an empty string, matching what the browser client
// expects.
type ConversationListResponse struct {
	Conversations []string `json:"conversations"`
	Current       *string  `json:"current"`
}

// ConversationHistoryResponse is the body of POST /switch-conversation.
type ConversationHistoryResponse struct {
	Messages []Message `json:"messages"`
}

// DeleteConversationResponse is the body of DELETE /conversation/:id.
type DeleteConversationResponse struct {
	Success bool `json:"success"`
}

// ThinkingModeResponse is the body of both thinking-mode endpoints.
type ThinkingModeResponse struct {
	NoThinking bool `json:"noThinking"`
}
