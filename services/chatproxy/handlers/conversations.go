// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/AleutianAI/AleutianChat/services/chatproxy/conversation"
	"github.com/AleutianAI/AleutianChat/services/chatproxy/datatypes"
	"github.com/AleutianAI/AleutianChat/services/chatproxy/middleware"
	"github.com/AleutianAI/AleutianChat/services/chatproxy/observability"
)

// conversationNotFoundMsg is the 404 body for switch/delete on unknown ids.
const conversationNotFoundMsg = "Conversation not found"

// HandleNewConversation serves POST /new-conversation.
func HandleNewConversation(metrics *observability.ChatMetrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		store := middleware.GetStore(c)
		if store == nil {
			metrics.ObserveRequest("conversations", false)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "session not initialized"})
			return
		}

		id := store.Create()
		slog.Info("Created conversation", "conversation_id", id)
		metrics.ObserveRequest("conversations", true)
		c.JSON(http.StatusOK, datatypes.NewConversationResponse{ID: id})
	}
}

// HandleListConversations serves GET /conversations.
//
// Ids come back in creation order, which keeps the browser's sidebar stable
// across reloads. Current is null until a conversation has been selected.
func HandleListConversations(metrics *observability.ChatMetrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		store := middleware.GetStore(c)
		if store == nil {
			metrics.ObserveRequest("conversations", false)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "session not initialized"})
			return
		}

		ids, current := store.List()
		resp := datatypes.ConversationListResponse{Conversations: ids}
		if current != "" {
			resp.Current = &current
		}
		metrics.ObserveRequest("conversations", true)
		c.JSON(http.StatusOK, resp)
	}
}

// HandleSwitchConversation serves POST /switch-conversation.
func HandleSwitchConversation(metrics *observability.ChatMetrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req datatypes.SwitchConversationRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			metrics.ObserveRequest("conversations", false)
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}
		if err := req.Validate(); err != nil {
			metrics.ObserveRequest("conversations", false)
			c.JSON(http.StatusBadRequest, gin.H{"error": "id is required"})
			return
		}

		store := middleware.GetStore(c)
		if store == nil {
			metrics.ObserveRequest("conversations", false)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "session not initialized"})
			return
		}

		history, err := store.Switch(req.ID)
		if err != nil {
			if errors.Is(err, conversation.ErrNotFound) {
				metrics.ObserveRequest("conversations", false)
				c.JSON(http.StatusNotFound, gin.H{"error": conversationNotFoundMsg})
				return
			}
			metrics.ObserveRequest("conversations", false)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to switch conversation"})
			return
		}

		metrics.ObserveRequest("conversations", true)
		c.JSON(http.StatusOK, datatypes.ConversationHistoryResponse{Messages: history})
	}
}

// HandleDeleteConversation serves DELETE /conversation/:id.
//
// Deleting the current conversation moves the selection to the first
// remaining conversation; deleting the last one leaves nothing selected.
// No replacement conversation is created here — the next chat call does
// that lazily.
func HandleDeleteConversation(metrics *observability.ChatMetrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.Param("id")

		store := middleware.GetStore(c)
		if store == nil {
			metrics.ObserveRequest("conversations", false)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "session not initialized"})
			return
		}

		if err := store.Delete(id); err != nil {
			if errors.Is(err, conversation.ErrNotFound) {
				metrics.ObserveRequest("conversations", false)
				c.JSON(http.StatusNotFound, gin.H{"error": conversationNotFoundMsg})
				return
			}
			metrics.ObserveRequest("conversations", false)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete conversation"})
			return
		}

		slog.Info("Deleted conversation", "conversation_id", id)
		metrics.ObserveRequest("conversations", true)
		c.JSON(http.StatusOK, datatypes.DeleteConversationResponse{Success: true})
	}
}
