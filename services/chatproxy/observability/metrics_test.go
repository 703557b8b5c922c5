// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package observability

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObserveRequest_LabelsByOutcome(t *testing.T) {
	m := NewChatMetrics(prometheus.NewRegistry())

	m.ObserveRequest("chat", true)
	m.ObserveRequest("chat", true)
	m.ObserveRequest("chat", false)
	m.ObserveRequest("conversations", true)

	assert.Equal(t, 2.0,
		testutil.ToFloat64(m.RequestsTotal.WithLabelValues("chat", "success")))
	assert.Equal(t, 1.0,
		testutil.ToFloat64(m.RequestsTotal.WithLabelValues("chat", "error")))
	assert.Equal(t, 1.0,
		testutil.ToFloat64(m.RequestsTotal.WithLabelValues("conversations", "success")))
}

func TestObserveUpstream_SuccessRecordsNoError(t *testing.T) {
	m := NewChatMetrics(prometheus.NewRegistry())

	m.ObserveUpstream(0.25, "")

	count := testutil.CollectAndCount(m.UpstreamErrorsTotal)
	assert.Zero(t, count, "success must not create error series")
}

func TestObserveUpstream_ErrorCountsByKind(t *testing.T) {
	m := NewChatMetrics(prometheus.NewRegistry())

	m.ObserveUpstream(1.5, "timeout")
	m.ObserveUpstream(0.1, "timeout")
	m.ObserveUpstream(0.1, "upstream_status")

	assert.Equal(t, 2.0,
		testutil.ToFloat64(m.UpstreamErrorsTotal.WithLabelValues("timeout")))
	assert.Equal(t, 1.0,
		testutil.ToFloat64(m.UpstreamErrorsTotal.WithLabelValues("upstream_status")))
}

func TestChatMetrics_NilReceiverIsSafe(t *testing.T) {
	var m *ChatMetrics
	assert.NotPanics(t, func() {
		m.ObserveRequest("chat", true)
		m.ObserveUpstream(0.1, "transport")
	})
}

func TestNewChatMetrics_RegistersAllCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewChatMetrics(reg)
	m.ObserveRequest("chat", true)
	m.ActiveSessions.Set(3)
	m.SessionsReapedTotal.Add(2)

	families, err := reg.Gather()
	require.NoError(t, err)

	names := make(map[string]bool, len(families))
	for _, f := range families {
		names[f.GetName()] = true
	}
	assert.True(t, names["aleutian_chatproxy_requests_total"])
	assert.True(t, names["aleutian_chatproxy_active_sessions"])
	assert.True(t, names["aleutian_chatproxy_sessions_reaped_total"])
}
