// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package datatypes

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChatRequest_Validate(t *testing.T) {
	t.Run("valid message passes", func(t *testing.T) {
		req := ChatRequest{Message: "hello"}
		assert.NoError(t, req.Validate())
	})

	t.Run("empty message fails", func(t *testing.T) {
		req := ChatRequest{}
		assert.Error(t, req.Validate())
	})

	t.Run("message at the byte limit passes", func(t *testing.T) {
		req := ChatRequest{Message: strings.Repeat("a", MaxMessageContentBytes)}
		assert.NoError(t, req.Validate())
	})

	t.Run("message over the byte limit fails", func(t *testing.T) {
		req := ChatRequest{Message: strings.Repeat("a", MaxMessageContentBytes+1)}
		assert.Error(t, req.Validate())
	})

	t.Run("limit counts bytes not runes", func(t *testing.T) {
		// 3-byte runes: a third of the limit in characters already exceeds
		// the byte limit.
		req := ChatRequest{Message: strings.Repeat("日", MaxMessageContentBytes/3+1)}
		assert.Error(t, req.Validate())
	})
}

func TestSwitchConversationRequest_Validate(t *testing.T) {
	assert.NoError(t, (&SwitchConversationRequest{ID: "1730000000000"}).Validate())
	assert.Error(t, (&SwitchConversationRequest{}).Validate())
}

func TestConversationListResponse_CurrentNullWhenUnset(t *testing.T) {
	data, err := json.Marshal(ConversationListResponse{Conversations: []string{}})
	require.NoError(t, err)
	assert.JSONEq(t, `{"conversations":[],"current":null}`, string(data))
}

func TestMessage_WireFormat(t *testing.T) {
	data, err := json.Marshal(Message{Role: RoleUser, Content: "hi"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"role":"user","content":"hi"}`, string(data))
}

func TestCopyHistory_Independent(t *testing.T) {
	original := []Message{{Role: RoleUser, Content: "a"}}
	copied := CopyHistory(original)
	copied[0].Content = "changed"
	assert.Equal(t, "a", original[0].Content)
}

func TestCopyHistory_Empty(t *testing.T) {
	assert.Empty(t, CopyHistory(nil))
}
