package metrics

import (
	prom "github.com/prometheus/client_golang/prometheus"
	promhttp "github.com/prometheus/client_golang/prometheus/promhttp"
	"net/http"
	"time"
)

// PrometheusRecorder implements Recorder using Prometheus metrics.
type PrometheusRecorder struct {
	generationDuration *prom.HistogramVec
	exports            *prom.CounterVec
	edits              prom.Counter
	sessions           *prom.CounterVec
}

// NewPrometheusRecorder constructs the metrics and registers them on reg.
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{
		generationDuration: prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: "ebook",
			Name:      "generation_duration_seconds",
			Help:      "Duration of e-book generation requests by outcome",
			Buckets:   []float64{1, 5, 10, 20, 40, 60, 120, 300},
		}, []string{"outcome"}),
		exports: prom.NewCounterVec(prom.CounterOpts{
			Namespace: "ebook",
			Name:      "exports_total",
			Help:      "Exports by format and outcome",
		}, []string{"format", "outcome"}),
		edits: prom.NewCounter(prom.CounterOpts{
			Namespace: "ebook",
			Name:      "edits_total",
			Help:      "Document edits committed by users",
		}),
		sessions: prom.NewCounterVec(prom.CounterOpts{
			Namespace: "ebook",
			Name:      "session_events_total",
			Help:      "Session lifecycle events",
		}, []string{"event"}),
	}
	reg.MustRegister(pr.generationDuration, pr.exports, pr.edits, pr.sessions)
	return pr
}

func (p *PrometheusRecorder) ObserveGeneration(d time.Duration, outcome Outcome) {
	if p == nil || p.generationDuration == nil {
		return
	}
	p.generationDuration.WithLabelValues(string(outcome)).Observe(d.Seconds())
}

func (p *PrometheusRecorder) IncExport(format string, outcome Outcome) {
	if p == nil || p.exports == nil {
		return
	}
	p.exports.WithLabelValues(format, string(outcome)).Inc()
}

func (p *PrometheusRecorder) IncEdit() {
	if p == nil || p.edits == nil {
		return
	}
	p.edits.Inc()
}

func (p *PrometheusRecorder) IncSession(event string) {
	if p == nil || p.sessions == nil {
		return
	}
	p.sessions.WithLabelValues(event).Inc()
}

// HTTPHandler returns an http.Handler that serves Prometheus metrics for the provided registry.
func HTTPHandler(reg *prom.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{EnableOpenMetrics: true})
}
