// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package middleware provides HTTP middleware for the chatproxy service.
//
// # Session Flow
//
// The session middleware is the only place the cookie transport is touched.
// It resolves (or mints) the browser's opaque session id, exchanges it for
// the session's conversation store, and hands the store to handlers through
// the Gin context:
//
//	Request
//	   │
//	   ▼
//	SessionMiddleware
//	   │
//	   ├─► Read session cookie (mint a UUID + Set-Cookie when absent)
//	   │
//	   ├─► registry.GetOrCreate(sessionID)
//	   │
//	   └─► Store *conversation.Store in context
//	           │
//	           ▼
//	       Handler (retrieves via GetStore)
//
// Handlers and the core packages never read the cookie themselves; swapping
// the session transport means changing only this file.
package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/AleutianAI/AleutianChat/services/chatproxy/conversation"
	"github.com/AleutianAI/AleutianChat/services/chatproxy/session"
)

// =============================================================================
// Context Keys
// =============================================================================

// storeKey is the context key for the session's conversation store.
// Using a service-prefixed key prevents collisions with other context values.
const storeKey = "aleutian_conversation_store"

// DefaultCookieName is the session cookie used when none is configured.
const DefaultCookieName = "chat_session"

// cookieMaxAge matches the registry's default 7-day sliding TTL.
const cookieMaxAge = int(7 * 24 * 60 * 60)

// =============================================================================
// Context Helpers
// =============================================================================

// SetStore stashes the session's conversation store in the Gin context.
// Called by SessionMiddleware; tests use it to inject a store directly.
func SetStore(c *gin.Context, store *conversation.Store) {
	c.Set(storeKey, store)
}

// GetStore retrieves the session's conversation store from the Gin context.
// Returns nil if the session middleware did not run for this request.
func GetStore(c *gin.Context) *conversation.Store {
	if v, exists := c.Get(storeKey); exists {
		if store, ok := v.(*conversation.Store); ok {
			return store
		}
	}
	return nil
}

// =============================================================================
// Session Middleware
// =============================================================================

// SessionMiddleware creates a Gin middleware that binds each request to its
// session's conversation store.
//
// # Description
//
// Reads the session cookie; when the cookie is missing or empty a new UUID
// session id is minted and set (HttpOnly, 7-day max-age, SameSite=Lax).
// The id is then exchanged for the session's store via the registry, which
// also refreshes the session's sliding TTL.
//
// # Inputs
//
//   - registry: the process-wide session registry. Must not be nil.
//   - cookieName: session cookie name; "" uses DefaultCookieName.
//
// # Thread Safety
//
// Thread-safe; the registry handles concurrent resolution of the same id.
func SessionMiddleware(registry *session.Registry, cookieName string) gin.HandlerFunc {
	if cookieName == "" {
		cookieName = DefaultCookieName
	}
	return func(c *gin.Context) {
		id, err := c.Cookie(cookieName)
		if err != nil || id == "" {
			id = uuid.NewString()
			c.SetSameSite(http.SameSiteLaxMode)
			c.SetCookie(cookieName, id, cookieMaxAge, "/", "", false, true)
		}

		SetStore(c, registry.GetOrCreate(id))
		c.Next()
	}
}
