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
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AleutianAI/AleutianChat/services/chatproxy/conversation"
)

func getPath(router http.Handler, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", path, nil)
	router.ServeHTTP(w, req)
	return w
}

func TestThinkingMode_DefaultsToFalse(t *testing.T) {
	router, _ := newHandlerRouter(conversation.NewStore(), &fakeCompletionClient{})

	w := getPath(router, "/thinking-mode")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"noThinking":false}`, w.Body.String())
}

func TestThinkingMode_SetAndReadBack(t *testing.T) {
	store := conversation.NewStore()
	router, _ := newHandlerRouter(store, &fakeCompletionClient{})

	w := postJSON(router, "/thinking-mode", `{"noThinking":true}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"noThinking":true}`, w.Body.String())
	assert.True(t, store.NoThinking())

	w = getPath(router, "/thinking-mode")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"noThinking":true}`, w.Body.String())

	w = postJSON(router, "/thinking-mode", `{"noThinking":false}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.False(t, store.NoThinking())
}

func TestThinkingMode_AbsentFieldMeansFalse(t *testing.T) {
	store := conversation.NewStore()
	store.SetNoThinking(true)
	router, _ := newHandlerRouter(store, &fakeCompletionClient{})

	w := postJSON(router, "/thinking-mode", `{}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"noThinking":false}`, w.Body.String())
	assert.False(t, store.NoThinking())
}

func TestThinkingMode_MalformedBodyIs400(t *testing.T) {
	router, _ := newHandlerRouter(conversation.NewStore(), &fakeCompletionClient{})
	assert.Equal(t, http.StatusBadRequest, postJSON(router, "/thinking-mode", `{"noThinking":`).Code)
}

func TestHandleModelName_PlainText(t *testing.T) {
	client := &fakeCompletionClient{model: "qwen3-32b"}
	router, _ := newHandlerRouter(conversation.NewStore(), client)

	w := getPath(router, "/model")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "qwen3-32b", w.Body.String())
	assert.Contains(t, w.Header().Get("Content-Type"), "text/plain")
}

func TestHandleModelName_FallbackStillOK(t *testing.T) {
	// The gateway substitutes the fallback label itself; the handler just
	// relays whatever string it gets, always with a 200.
	router, _ := newHandlerRouter(conversation.NewStore(), &fakeCompletionClient{})

	w := getPath(router, "/model")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "unavailable", w.Body.String())
}
