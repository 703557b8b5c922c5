// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package observability provides Prometheus metrics for the chatproxy
// service.
//
// # Description
//
// Metrics cover the three things worth alerting on for a stateless-ish
// proxy: inbound request outcomes, upstream completion behavior, and the
// size of the in-memory session table. Exposed on /metrics; use with
// Prometheus + Grafana.
//
// # Thread Safety
//
// All metric operations are thread-safe via Prometheus's internal locking.
package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// =============================================================================
// Metric Definitions
// =============================================================================

const metricsNamespace = "aleutian"
const chatproxySubsystem = "chatproxy"

// ChatMetrics holds all Prometheus metrics for the chatproxy service.
//
// # Fields
//
//   - RequestsTotal: inbound requests by endpoint and status.
//   - UpstreamLatencySeconds: completion upstream round-trip latency.
//   - UpstreamErrorsTotal: classified gateway failures by kind.
//   - ActiveSessions: current size of the session registry.
//   - SessionsReapedTotal: sessions removed by the TTL janitor.
type ChatMetrics struct {
	// RequestsTotal counts inbound requests.
	// Labels: endpoint (chat, conversations, model, thinking_mode), status (success, error)
	RequestsTotal *prometheus.CounterVec

	// UpstreamLatencySeconds measures the completion call round trip.
	// Labels: outcome (success, error)
	UpstreamLatencySeconds *prometheus.HistogramVec

	// UpstreamErrorsTotal counts gateway failures.
	// Labels: kind (upstream_status, transport, timeout, malformed_response)
	UpstreamErrorsTotal *prometheus.CounterVec

	// ActiveSessions tracks live sessions in the registry.
	ActiveSessions prometheus.Gauge

	// SessionsReapedTotal counts sessions expired by the janitor.
	SessionsReapedTotal prometheus.Counter
}

// DefaultMetrics is the singleton instance, set by InitMetrics.
var DefaultMetrics *ChatMetrics

// InitMetrics creates and registers all chatproxy metrics. Call once at
// startup; repeated registration panics by Prometheus design.
func InitMetrics() *ChatMetrics {
	DefaultMetrics = NewChatMetrics(prometheus.DefaultRegisterer)
	return DefaultMetrics
}

// NewChatMetrics creates the metric set against an explicit registerer.
// Tests pass a fresh prometheus.NewRegistry() to avoid cross-test
// collisions.
func NewChatMetrics(reg prometheus.Registerer) *ChatMetrics {
	factory := promauto.With(reg)
	return &ChatMetrics{
		RequestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: chatproxySubsystem,
			Name:      "requests_total",
			Help:      "Inbound requests by endpoint and status.",
		}, []string{"endpoint", "status"}),
		UpstreamLatencySeconds: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Subsystem: chatproxySubsystem,
			Name:      "upstream_latency_seconds",
			Help:      "Round-trip latency of completion upstream calls.",
			Buckets:   prometheus.ExponentialBuckets(0.1, 2, 10),
		}, []string{"outcome"}),
		UpstreamErrorsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: chatproxySubsystem,
			Name:      "upstream_errors_total",
			Help:      "Classified completion gateway failures.",
		}, []string{"kind"}),
		ActiveSessions: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Subsystem: chatproxySubsystem,
			Name:      "active_sessions",
			Help:      "Live sessions in the in-memory registry.",
		}),
		SessionsReapedTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: chatproxySubsystem,
			Name:      "sessions_reaped_total",
			Help:      "Sessions removed by the TTL janitor.",
		}),
	}
}

// ObserveRequest records one inbound request outcome. Safe on a nil
// receiver so handlers do not need nil checks when metrics are disabled.
func (m *ChatMetrics) ObserveRequest(endpoint string, success bool) {
	if m == nil {
		return
	}
	status := "success"
	if !success {
		status = "error"
	}
	m.RequestsTotal.WithLabelValues(endpoint, status).Inc()
}

// ObserveUpstream records one completion call. kind is empty on success.
func (m *ChatMetrics) ObserveUpstream(seconds float64, kind string) {
	if m == nil {
		return
	}
	outcome := "success"
	if kind != "" {
		outcome = "error"
		m.UpstreamErrorsTotal.WithLabelValues(kind).Inc()
	}
	m.UpstreamLatencySeconds.WithLabelValues(outcome).Observe(seconds)
}
