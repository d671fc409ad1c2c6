// Package metrics exposes the Prometheus instrumentation named in
// SPEC_FULL.md §4.K: stage-labelled rejection counters, poll outcome
// counters, cascade-event counters, and delivery latency.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	// StageRejections counts rules-engine rejections, one counter series
	// per rejecting stage name (variant, seller_quality, condition,
	// net_profit, trend, rotation, headache, bundle). The velocity and
	// maturity stages never reject.
	StageRejections = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "radar_stage_rejections_total",
		Help: "Count of rules-engine candidate rejections by stage.",
	}, []string{"stage"})

	// SignalsEmitted counts signals successfully emitted by the generator.
	SignalsEmitted = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "radar_signals_emitted_total",
		Help: "Count of signals emitted by the signal generator.",
	})

	// PollOutcomes counts orchestrator source polls by source and outcome
	// (ok, error).
	PollOutcomes = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "radar_poll_outcomes_total",
		Help: "Count of per-source poll outcomes.",
	}, []string{"source", "outcome"})

	// PollDuration observes wall-clock duration of a single source poll.
	PollDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "radar_poll_duration_seconds",
		Help:    "Duration of a single per-source poll job.",
		Buckets: prometheus.DefBuckets,
	}, []string{"source"})

	// CascadeEvents counts cascade re-issues and demotions, by event
	// (reissued, demoted, and skipped for a re-issue check that was not
	// ready).
	CascadeEvents = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "radar_cascade_events_total",
		Help: "Count of cascade re-issues and demotions.",
	}, []string{"event"})

	// DeliveryOutcomes counts notifier delivery attempts by outcome.
	DeliveryOutcomes = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "radar_delivery_outcomes_total",
		Help: "Count of notifier delivery attempts by outcome.",
	}, []string{"outcome"})
)

// Registry is the process-scoped Prometheus registry. It is constructed
// explicitly at startup and injected into an HTTP handler by the caller
// (mirrors SPEC_FULL.md §9's "instantiate singletons explicitly at
// startup" guidance for the forex cache and boost map).
func Registry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		StageRejections,
		SignalsEmitted,
		PollOutcomes,
		PollDuration,
		CascadeEvents,
		DeliveryOutcomes,
	)
	return reg
}
