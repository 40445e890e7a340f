// Package metrics exposes extraction diagnostics as Prometheus counters on a
// private registry.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/dtnitsch/llm-chat-extractor/models"
)

type Registry struct {
	reg       *prometheus.Registry
	Messages  *prometheus.CounterVec
	Dropped   *prometheus.CounterVec
	Fallbacks *prometheus.CounterVec
	Duration  prometheus.Histogram
}

func NewRegistry() *Registry {
	r := prometheus.NewRegistry()
	messages := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "lce_messages_total",
		Help: "Messages extracted, by resulting content kind.",
	}, []string{"kind"})
	dropped := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "lce_dropped_segments_total",
		Help: "Segments skipped by an extraction engine.",
	}, []string{"engine"})
	fallbacks := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "lce_fallbacks_total",
		Help: "Messages that degraded to plain text after classification.",
	}, []string{"engine"})
	duration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "lce_extract_duration_seconds",
		Help:    "Wall time of one extraction.",
		Buckets: []float64{.0001, .0005, .001, .005, .01, .05, .1, .5},
	})

	r.MustRegister(messages, dropped, fallbacks, duration)
	return &Registry{
		reg:       r,
		Messages:  messages,
		Dropped:   dropped,
		Fallbacks: fallbacks,
		Duration:  duration,
	}
}

// Record counts one diagnostic.
func (r *Registry) Record(d models.Diagnostic) error {
	switch d.Type {
	case models.DiagnosticClassified:
		r.Messages.WithLabelValues(string(d.Kind)).Inc()
	case models.DiagnosticDropped:
		r.Dropped.WithLabelValues(d.Engine).Inc()
	case models.DiagnosticFallback:
		r.Fallbacks.WithLabelValues(d.Engine).Inc()
	}
	return nil
}

// ObserveSince records the time elapsed since start.
func (r *Registry) ObserveSince(start time.Time) {
	r.Duration.Observe(time.Since(start).Seconds())
}

func (r *Registry) Handler() http.Handler { return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{}) }
