// Package metrics exposes prometheus collectors for reminder runs.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Reminder outcome labels.
const (
	OutcomeSent    = "sent"
	OutcomeSkipped = "skipped"
	OutcomeFailed  = "failed"
)

// ReminderMetrics is nil-safe: a nil receiver records nothing.
type ReminderMetrics struct {
	runs      *prometheus.CounterVec
	reminders *prometheus.CounterVec
	duration  prometheus.Histogram
	lastRun   prometheus.Gauge
}

// NewReminderMetrics registers the collectors on reg.
func NewReminderMetrics(reg prometheus.Registerer) *ReminderMetrics {
	m := &ReminderMetrics{
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "reservehub",
			Subsystem: "reminders",
			Name:      "runs_total",
			Help:      "Reminder runs by result (ok or failed).",
		}, []string{"result"}),
		reminders: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "reservehub",
			Subsystem: "reminders",
			Name:      "reminders_total",
			Help:      "Reminder candidates by domain and outcome.",
		}, []string{"kind", "outcome"}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "reservehub",
			Subsystem: "reminders",
			Name:      "run_duration_seconds",
			Help:      "Wall time of a full reminder run.",
			Buckets:   prometheus.DefBuckets,
		}),
		lastRun: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "reservehub",
			Subsystem: "reminders",
			Name:      "last_run_timestamp_seconds",
			Help:      "Unix time the last reminder run finished.",
		}),
	}
	reg.MustRegister(m.runs, m.reminders, m.duration, m.lastRun)
	return m
}

// ObserveDomain adds one domain's counts.
func (m *ReminderMetrics) ObserveDomain(kind string, sent, skipped, failed int) {
	if m == nil {
		return
	}
	m.reminders.WithLabelValues(kind, OutcomeSent).Add(float64(sent))
	m.reminders.WithLabelValues(kind, OutcomeSkipped).Add(float64(skipped))
	m.reminders.WithLabelValues(kind, OutcomeFailed).Add(float64(failed))
}

// ObserveRun records a finished run.
func (m *ReminderMetrics) ObserveRun(ok bool, took time.Duration, finished time.Time) {
	if m == nil {
		return
	}
	result := "ok"
	if !ok {
		result = "failed"
	}
	m.runs.WithLabelValues(result).Inc()
	m.duration.Observe(took.Seconds())
	m.lastRun.Set(float64(finished.Unix()))
}
