// Package metrics provides the Prometheus series of the request pipeline.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "pipeline"

// Outcome labels the way a request left the pipeline.
const (
	OutcomeSent     = "sent"
	OutcomeAborted  = "hook_aborted"
	OutcomeFailed   = "failed"
	OutcomeCanceled = "canceled"
)

// Collector holds all Prometheus metrics of the service.
type Collector struct {
	// Request metrics
	RequestsTotal    *prometheus.CounterVec
	RequestDuration  *prometheus.HistogramVec
	RequestsInFlight prometheus.Gauge

	// Pipeline metrics
	StageDuration      *prometheus.HistogramVec
	HookAborts         *prometheus.CounterVec
	ValidationFailures *prometheus.CounterVec

	gatherer prometheus.Gatherer
}

// New creates a collector registered on the default registry.
func New() *Collector {
	return NewWithRegistry(prometheus.DefaultRegisterer)
}

// NewWithRegistry creates a collector on reg. Tests pass a fresh
// prometheus.NewRegistry to avoid global state.
func NewWithRegistry(reg prometheus.Registerer) *Collector {
	factory := promauto.With(reg)

	gatherer := prometheus.DefaultGatherer
	if g, ok := reg.(prometheus.Gatherer); ok {
		gatherer = g
	}

	return &Collector{
		RequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "requests_total",
				Help:      "Total number of requests that reached a pipeline route",
			},
			[]string{"method", "route", "status", "outcome"},
		),
		RequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "request_duration_seconds",
				Help:      "Request duration in seconds",
				Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"method", "route"},
		),
		RequestsInFlight: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "requests_in_flight",
				Help:      "Number of requests currently in the pipeline",
			},
		),
		StageDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "stage_duration_seconds",
				Help:      "Time spent per pipeline stage",
				Buckets:   []float64{.0001, .0005, .001, .005, .01, .05, .1, .5, 1},
			},
			[]string{"route", "stage"},
		),
		HookAborts: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "hook_aborts_total",
				Help:      "Requests terminated early by a hook",
			},
			[]string{"route", "hook"},
		),
		ValidationFailures: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "validation_failures_total",
				Help:      "Request bodies rejected by the body schema",
			},
			[]string{"route", "reason"},
		),
		gatherer: gatherer,
	}
}

// ObserveRequest records a finished request.
func (c *Collector) ObserveRequest(method, route string, status int, outcome string, elapsed time.Duration) {
	c.RequestsTotal.WithLabelValues(method, route, strconv.Itoa(status), outcome).Inc()
	c.RequestDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

// ObserveStage records the time spent in one stage.
func (c *Collector) ObserveStage(route, stage string, elapsed time.Duration) {
	c.StageDuration.WithLabelValues(route, stage).Observe(elapsed.Seconds())
}

// Gather reports whether the registry can be gathered, for health checks.
func (c *Collector) Gather() error {
	_, err := c.gatherer.Gather()
	return err
}

// Handler serves the registry in the Prometheus text format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.gatherer, promhttp.HandlerOpts{})
}
