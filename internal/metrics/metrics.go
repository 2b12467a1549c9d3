// Package metrics holds the Prometheus collectors of the MCP server.
package metrics

import (
	"time"

	"github.com/cristofima/maf-graphrag-series/pkg/source"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	StatusOK    = "ok"
	StatusError = "error"
)

var (
	toolCalls = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "graphrag_tool_calls_total",
		Help: "MCP tool calls by tool and outcome",
	}, []string{"tool", "status"})

	toolDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "graphrag_tool_duration_seconds",
		Help:    "MCP tool call latency in seconds",
		Buckets: prometheus.ExponentialBuckets(0.01, 2, 14), // 10ms to ~80s
	}, []string{"tool"})

	sourcesResolved = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "graphrag_sources_resolved_total",
		Help: "Resolved citation sources by attribution outcome",
	}, []string{"attribution"})

	bundleLoads = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "graphrag_bundle_loads_total",
		Help: "Graph bundle loads by outcome",
	}, []string{"status"})
)

// ObserveTool records one finished tool call.
func ObserveTool(tool string, started time.Time, err bool) {
	status := StatusOK
	if err {
		status = StatusError
	}
	toolCalls.WithLabelValues(tool, status).Inc()
	toolDuration.WithLabelValues(tool).Observe(time.Since(started).Seconds())
}

// ObserveSources records the attribution outcome of resolved sources.
func ObserveSources(s source.Summary) {
	sourcesResolved.WithLabelValues("attributed").Add(float64(s.Attributed))
	sourcesResolved.WithLabelValues("unknown").Add(float64(s.Unknown))
	sourcesResolved.WithLabelValues("unattributed").Add(float64(s.Unattributed))
}

// ObserveBundleLoad records a graph bundle load attempt.
func ObserveBundleLoad(err error) {
	status := StatusOK
	if err != nil {
		status = StatusError
	}
	bundleLoads.WithLabelValues(status).Inc()
}
