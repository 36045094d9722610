// Package metrics provides Prometheus metrics for the bridge.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the bridge.
type Metrics struct {
	ActionsTotal   *prometheus.CounterVec
	ActionDuration *prometheus.HistogramVec
	ToolCallsTotal *prometheus.CounterVec

	registry *prometheus.Registry
}

// New creates and registers all metrics on a private registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()

	m := &Metrics{
		ActionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bridge_actions_total",
				Help: "Total number of HTTP action requests by action and status.",
			},
			[]string{"action", "status"},
		),
		ActionDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "bridge_action_duration_seconds",
				Help:    "HTTP action processing duration by action.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"action"},
		),
		ToolCallsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bridge_tool_calls_total",
				Help: "Total number of tool invocations by tool and status.",
			},
			[]string{"tool", "status"},
		),
		registry: reg,
	}

	reg.MustRegister(m.ActionsTotal)
	reg.MustRegister(m.ActionDuration)
	reg.MustRegister(m.ToolCallsTotal)

	return m
}

// Handler returns an http.Handler for the /metrics endpoint.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// RecordAction increments the action counter.
func (m *Metrics) RecordAction(action, status string) {
	m.ActionsTotal.WithLabelValues(action, status).Inc()
}

// ObserveActionDuration records action processing duration.
func (m *Metrics) ObserveActionDuration(action string, seconds float64) {
	m.ActionDuration.WithLabelValues(action).Observe(seconds)
}

// RecordToolCall increments the tool call counter.
func (m *Metrics) RecordToolCall(tool, status string) {
	m.ToolCallsTotal.WithLabelValues(tool, status).Inc()
}
