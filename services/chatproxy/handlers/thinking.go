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
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/AleutianAI/AleutianChat/services/chatproxy/datatypes"
	"github.com/AleutianAI/AleutianChat/services/chatproxy/middleware"
	"github.com/AleutianAI/AleutianChat/services/chatproxy/observability"
)

// HandleGetThinkingMode serves GET /thinking-mode. The flag defaults to
// false for a fresh session; reading it never fails.
func HandleGetThinkingMode(metrics *observability.ChatMetrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		store := middleware.GetStore(c)
		if store == nil {
			metrics.ObserveRequest("thinking_mode", false)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "session not initialized"})
			return
		}

		metrics.ObserveRequest("thinking_mode", true)
		c.JSON(http.StatusOK, datatypes.ThinkingModeResponse{NoThinking: store.NoThinking()})
	}
}

// HandleSetThinkingMode serves POST /thinking-mode and echoes the stored
// value back so the client can render the toggle from the response alone.
func HandleSetThinkingMode(metrics *observability.ChatMetrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req datatypes.ThinkingModeRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			metrics.ObserveRequest("thinking_mode", false)
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}

		store := middleware.GetStore(c)
		if store == nil {
			metrics.ObserveRequest("thinking_mode", false)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "session not initialized"})
			return
		}

		store.SetNoThinking(req.NoThinking)
		slog.Info("Updated no-thinking mode", "enabled", req.NoThinking)
		metrics.ObserveRequest("thinking_mode", true)
		c.JSON(http.StatusOK, datatypes.ThinkingModeResponse{NoThinking: store.NoThinking()})
	}
}
