// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/AleutianAI/AleutianChat/services/chatproxy/handlers"
	"github.com/AleutianAI/AleutianChat/services/chatproxy/middleware"
	"github.com/AleutianAI/AleutianChat/services/chatproxy/observability"
	"github.com/AleutianAI/AleutianChat/services/chatproxy/session"
	"github.com/AleutianAI/AleutianChat/services/llm"
)

// SetupRoutes wires the chatproxy endpoints onto the router.
//
// The endpoint paths intentionally match the browser client verbatim (no
// /v1 group): the front end is an existing artifact and its fetch paths
// are part of the contract.
func SetupRoutes(router *gin.Engine, registry *session.Registry, client llm.CompletionClient,
	metrics *observability.ChatMetrics, cookieName string) {

	router.GET("/health", handlers.HealthCheck)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Everything session-scoped goes through the cookie middleware.
	chat := router.Group("/")
	chat.Use(middleware.SessionMiddleware(registry, cookieName))
	{
		chat.POST("/chat", handlers.HandleChat(client, metrics))
		chat.POST("/new-conversation", handlers.HandleNewConversation(metrics))
		chat.GET("/conversations", handlers.HandleListConversations(metrics))
		chat.POST("/switch-conversation", handlers.HandleSwitchConversation(metrics))
		chat.DELETE("/conversation/:id", handlers.HandleDeleteConversation(metrics))
		chat.GET("/thinking-mode", handlers.HandleGetThinkingMode(metrics))
		chat.POST("/thinking-mode", handlers.HandleSetThinkingMode(metrics))
	}

	// Model identity is session-independent.
	router.GET("/model", handlers.HandleModelName(client, metrics))
}
