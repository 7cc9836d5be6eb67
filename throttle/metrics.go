/*
Copyright © 2025 Acronis International GmbH.

Released under MIT license.
*/

package throttle

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// MetricsCollector represents a collector of metrics to analyze how throttling is used.
type MetricsCollector interface {
	// IncThrottlesApplied increments the total number of applied throttle delays.
	IncThrottlesApplied()

	// AddThrottledTime adds the time spent in throttle delays.
	AddThrottledTime(d time.Duration)

	// IncInvalidLimits increments the total number of rejected limits tables.
	IncInvalidLimits()
}

// PrometheusMetricsOpts represents options for PrometheusMetrics.
type PrometheusMetricsOpts struct {
	// Namespace is a namespace for metrics. It will be prepended to all metric names.
	Namespace string

	// ConstLabels is a set of labels that will be applied to all metrics.
	ConstLabels prometheus.Labels

	// CurriedLabelNames is a list of label names that will be curried with the provided labels.
	// See PrometheusMetrics.MustCurryWith method for more details.
	// Keep in mind that if this list is not empty,
	// PrometheusMetrics.MustCurryWith method must be called further with the same labels.
	// Otherwise, the collector will panic.
	CurriedLabelNames []string
}

// PrometheusMetrics represents Prometheus metrics for throttling.
type PrometheusMetrics struct {
	ThrottlesAppliedTotal *prometheus.CounterVec
	ThrottledTimeTotal    *prometheus.CounterVec
	InvalidLimitsTotal    *prometheus.CounterVec
}

// NewPrometheusMetrics creates a new instance of PrometheusMetrics with default options.
func NewPrometheusMetrics() *PrometheusMetrics {
	return NewPrometheusMetricsWithOpts(PrometheusMetricsOpts{})
}

// NewPrometheusMetricsWithOpts creates a new instance of PrometheusMetrics with the provided options.
func NewPrometheusMetricsWithOpts(opts PrometheusMetricsOpts) *PrometheusMetrics {
	throttlesAppliedTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace:   opts.Namespace,
			Name:        "throttles_applied_total",
			Help:        "Number of applied throttle delays.",
			ConstLabels: opts.ConstLabels,
		},
		opts.CurriedLabelNames,
	)

	throttledTimeTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace:   opts.Namespace,
			Name:        "throttled_time_seconds_total",
			Help:        "Time spent in throttle delays.",
			ConstLabels: opts.ConstLabels,
		},
		opts.CurriedLabelNames,
	)

	invalidLimitsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace:   opts.Namespace,
			Name:        "invalid_limits_total",
			Help:        "Number of rejected limits tables.",
			ConstLabels: opts.ConstLabels,
		},
		opts.CurriedLabelNames,
	)

	return &PrometheusMetrics{
		ThrottlesAppliedTotal: throttlesAppliedTotal,
		ThrottledTimeTotal:    throttledTimeTotal,
		InvalidLimitsTotal:    invalidLimitsTotal,
	}
}

// MustCurryWith curries the metrics collector with the provided labels.
func (pm *PrometheusMetrics) MustCurryWith(labels prometheus.Labels) *PrometheusMetrics {
	return &PrometheusMetrics{
		ThrottlesAppliedTotal: pm.ThrottlesAppliedTotal.MustCurryWith(labels),
		ThrottledTimeTotal:    pm.ThrottledTimeTotal.MustCurryWith(labels),
		InvalidLimitsTotal:    pm.InvalidLimitsTotal.MustCurryWith(labels),
	}
}

// MustRegister does registration of metrics collector in Prometheus and panics if any error occurs.
func (pm *PrometheusMetrics) MustRegister() {
	prometheus.MustRegister(
		pm.ThrottlesAppliedTotal,
		pm.ThrottledTimeTotal,
		pm.InvalidLimitsTotal,
	)
}

// Unregister cancels registration of metrics collector in Prometheus.
func (pm *PrometheusMetrics) Unregister() {
	prometheus.Unregister(pm.ThrottlesAppliedTotal)
	prometheus.Unregister(pm.ThrottledTimeTotal)
	prometheus.Unregister(pm.InvalidLimitsTotal)
}

// IncThrottlesApplied increments the total number of applied throttle delays.
func (pm *PrometheusMetrics) IncThrottlesApplied() {
	pm.ThrottlesAppliedTotal.With(nil).Inc()
}

// AddThrottledTime adds the time spent in throttle delays.
func (pm *PrometheusMetrics) AddThrottledTime(d time.Duration) {
	pm.ThrottledTimeTotal.With(nil).Add(d.Seconds())
}

// IncInvalidLimits increments the total number of rejected limits tables.
func (pm *PrometheusMetrics) IncInvalidLimits() {
	pm.InvalidLimitsTotal.With(nil).Inc()
}

type disabledMetrics struct{}

func (disabledMetrics) IncThrottlesApplied()           {}
func (disabledMetrics) AddThrottledTime(time.Duration) {}
func (disabledMetrics) IncInvalidLimits()              {}

var disabledMetricsCollector = disabledMetrics{}
