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
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/AleutianAI/AleutianChat/services/chatproxy/observability"
	"github.com/AleutianAI/AleutianChat/services/llm"
)

// HandleModelName serves GET /model.
//
// Always answers 200 with a plain-text model name. The gateway swallows
// upstream failures and substitutes its fallback label, so a broken model
// endpoint never degrades the chat UI beyond a cosmetic placeholder.
func HandleModelName(client llm.CompletionClient, metrics *observability.ChatMetrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		name := client.ModelName(c.Request.Context())
		metrics.ObserveRequest("model", true)
		c.String(http.StatusOK, name)
	}
}
