// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package handlers implements the inbound HTTP surface of the chatproxy
// service. Handlers are thin: they bind and validate the request, resolve
// the session's conversation store from the Gin context, and delegate to
// the store and the completion gateway.
package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/AleutianAI/AleutianChat/services/chatproxy/datatypes"
	"github.com/AleutianAI/AleutianChat/services/chatproxy/middleware"
	"github.com/AleutianAI/AleutianChat/services/chatproxy/observability"
	"github.com/AleutianAI/AleutianChat/services/llm"
)

var chatTracer = otel.Tracer("aleutian.chatproxy.handlers")

// HandleChat serves POST /chat.
//
// # Description
//
// The one endpoint with real sequencing concerns. The flow per request:
//
//  1. Resolve (or lazily create) the active conversation.
//  2. Append the user message and snapshot the history in one critical
//     section, so the stored order always matches what goes on the wire.
//  3. Call the completion gateway with the snapshot, unlocked.
//  4. On success, append the assistant reply (when the upstream produced
//     one) and pass the raw upstream payload through to the client.
//
// On gateway failure the user's message stays appended: the conversation
// then shows an unanswered user turn, which the next chat call builds on.
// Nothing is retried. Two concurrent chats on one conversation serialize
// on the store lock; true double-submission from one browser session is
// documented as unsupported rather than silently reordered.
func HandleChat(client llm.CompletionClient, metrics *observability.ChatMetrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, span := chatTracer.Start(c.Request.Context(), "HandleChat")
		defer span.End()

		var req datatypes.ChatRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			metrics.ObserveRequest("chat", false)
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}
		if err := req.Validate(); err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			metrics.ObserveRequest("chat", false)
			c.JSON(http.StatusBadRequest, gin.H{"error": "message is required and must be under 32KB"})
			return
		}

		store := middleware.GetStore(c)
		if store == nil {
			metrics.ObserveRequest("chat", false)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "session not initialized"})
			return
		}

		conversationID := store.EnsureActive()
		span.SetAttributes(attribute.String("chat.conversation_id", conversationID))

		history, err := store.AppendAndSnapshot(conversationID,
			datatypes.Message{Role: datatypes.RoleUser, Content: req.Message})
		if err != nil {
			// EnsureActive just returned this id, so only a concurrent
			// delete can land here.
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			metrics.ObserveRequest("chat", false)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "conversation state changed mid-request"})
			return
		}

		start := time.Now()
		reply, err := client.Complete(ctx, history, store.NoThinking())
		elapsed := time.Since(start).Seconds()
		if err != nil {
			kind := string(llm.KindTransport)
			var gerr *llm.GatewayError
			if errors.As(err, &gerr) {
				kind = string(gerr.Kind)
			}
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			slog.Error("Completion gateway call failed",
				"conversation_id", conversationID, "kind", kind, "error", err)
			metrics.ObserveUpstream(elapsed, kind)
			metrics.ObserveRequest("chat", false)
			// Generic message to the client; details stay in logs and spans.
			c.JSON(http.StatusInternalServerError, gin.H{"error": "completion service unavailable"})
			return
		}
		metrics.ObserveUpstream(elapsed, "")

		if reply.HasContent {
			err := store.Append(conversationID,
				datatypes.Message{Role: datatypes.RoleAssistant, Content: reply.Content})
			if err != nil {
				// Conversation deleted while the upstream call was in
				// flight. Drop the reply; the client still gets the payload.
				slog.Warn("Conversation deleted mid-completion, dropping assistant reply",
					"conversation_id", conversationID)
			}
		}

		metrics.ObserveRequest("chat", true)
		c.Data(http.StatusOK, "application/json", reply.Raw)
	}
}
