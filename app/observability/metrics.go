package observability

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// ServiceMetrics records the outcome of service operations.
type ServiceMetrics interface {
	RecordOperationAttempt(ctx context.Context, operation string)
	RecordOperationSuccess(ctx context.Context, operation string)
	RecordOperationFailure(ctx context.Context, operation string)
	RecordOperationDuration(ctx context.Context, operation string, duration time.Duration)
}

// ResetMetrics records leaderboard reset outcomes.
type ResetMetrics interface {
	RecordReset(ctx context.Context, trigger, outcome string)
	SetEpochEnd(end time.Time)
}

// LeaderboardMetrics is the full metric surface of the leaderboard module.
type LeaderboardMetrics interface {
	ServiceMetrics
	ResetMetrics
}

// Metrics owns the Prometheus collectors. Call ForModule to get a labelled view.
type Metrics struct {
	attempts *prometheus.CounterVec
	success  *prometheus.CounterVec
	failures *prometheus.CounterVec
	duration *prometheus.HistogramVec
	resets   *prometheus.CounterVec
	epochEnd prometheus.Gauge
}

// NewMetrics creates and registers all collectors on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		attempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "gamezone",
			Name:      "operation_attempts_total",
			Help:      "Service operations started.",
		}, []string{"module", "operation"}),
		success: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "gamezone",
			Name:      "operation_success_total",
			Help:      "Service operations that completed without error.",
		}, []string{"module", "operation"}),
		failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "gamezone",
			Name:      "operation_failures_total",
			Help:      "Service operations that returned an error or panicked.",
		}, []string{"module", "operation"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "gamezone",
			Name:      "operation_duration_seconds",
			Help:      "Service operation latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"module", "operation"}),
		resets: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "gamezone",
			Subsystem: "leaderboard",
			Name:      "resets_total",
			Help:      "Leaderboard reset attempts by trigger and outcome.",
		}, []string{"trigger", "outcome"}),
		epochEnd: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "gamezone",
			Subsystem: "leaderboard",
			Name:      "epoch_end_timestamp_seconds",
			Help:      "Unix time at which the current leaderboard epoch ends.",
		}),
	}
	reg.MustRegister(m.attempts, m.success, m.failures, m.duration, m.resets, m.epochEnd)
	return m
}

// ForModule returns metrics labelled with the given module name.
func (m *Metrics) ForModule(module string) LeaderboardMetrics {
	if m == nil {
		return NoopMetrics{}
	}
	return &moduleMetrics{m: m, module: module}
}

type moduleMetrics struct {
	m      *Metrics
	module string
}

func (mm *moduleMetrics) RecordOperationAttempt(_ context.Context, operation string) {
	mm.m.attempts.WithLabelValues(mm.module, operation).Inc()
}

func (mm *moduleMetrics) RecordOperationSuccess(_ context.Context, operation string) {
	mm.m.success.WithLabelValues(mm.module, operation).Inc()
}

func (mm *moduleMetrics) RecordOperationFailure(_ context.Context, operation string) {
	mm.m.failures.WithLabelValues(mm.module, operation).Inc()
}

func (mm *moduleMetrics) RecordOperationDuration(_ context.Context, operation string, duration time.Duration) {
	mm.m.duration.WithLabelValues(mm.module, operation).Observe(duration.Seconds())
}

func (mm *moduleMetrics) RecordReset(_ context.Context, trigger, outcome string) {
	mm.m.resets.WithLabelValues(trigger, outcome).Inc()
}

func (mm *moduleMetrics) SetEpochEnd(end time.Time) {
	mm.m.epochEnd.Set(float64(end.Unix()))
}

// NoopMetrics discards all observations.
type NoopMetrics struct{}

func (NoopMetrics) RecordOperationAttempt(context.Context, string)                 {}
func (NoopMetrics) RecordOperationSuccess(context.Context, string)                 {}
func (NoopMetrics) RecordOperationFailure(context.Context, string)                 {}
func (NoopMetrics) RecordOperationDuration(context.Context, string, time.Duration) {}
func (NoopMetrics) RecordReset(context.Context, string, string)                    {}
func (NoopMetrics) SetEpochEnd(time.Time)                                          {}
