// Package metrics holds the Prometheus collectors for polygon extraction.
//
// Collectors register with the default registry on package init and are safe
// for concurrent use by parallel runs.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Run outcomes used as the "outcome" label of RunsTotal.
const (
	OutcomeOK      = "ok"
	OutcomeEmpty   = "empty"
	OutcomeError   = "error"
	OutcomeCancel  = "canceled"
	OutcomeInvalid = "invalid"
)

var (
	RunsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "satpoly",
		Subsystem: "pipeline",
		Name:      "runs_total",
		Help:      "Total extraction runs by profile and outcome",
	}, []string{"profile", "outcome"})

	StageDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "satpoly",
		Subsystem: "pipeline",
		Name:      "stage_duration_seconds",
		Help:      "Duration of each extraction stage",
		Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
	}, []string{"stage"})

	PolygonsKept = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "satpoly",
		Subsystem: "contours",
		Name:      "polygons_kept_total",
		Help:      "Total polygons written to feature collections",
	}, []string{"profile"})

	ContoursFiltered = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "satpoly",
		Subsystem: "contours",
		Name:      "filtered_total",
		Help:      "Total contours discarded by the minimum area filter",
	}, []string{"profile"})

	PolygonsRejected = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "satpoly",
		Subsystem: "contours",
		Name:      "polygons_rejected_total",
		Help:      "Total polygons rejected by geometry validation",
	}, []string{"reason"})

	DiagnosticFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "satpoly",
		Subsystem: "pipeline",
		Name:      "diagnostic_failures_total",
		Help:      "Total non-fatal failures rendering diagnostic images",
	}, []string{"kind"})

	ToolCalls = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "satpoly",
		Subsystem: "mcp",
		Name:      "tool_calls_total",
		Help:      "Total MCP tool calls by tool and status",
	}, []string{"tool", "status"})
)

// ObserveStage records the time elapsed since start for stage.
func ObserveStage(stage string, start time.Time) {
	StageDuration.WithLabelValues(stage).Observe(time.Since(start).Seconds())
}

// Handler serves the default registry in the Prometheus text format.
func Handler() http.Handler {
	return promhttp.Handler()
}
