package metrics

import (
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	OutcomeOK     = "ok"
	ResultSent    = "sent"
	ResultFailed  = "failed"
	unknownLabel  = "unknown"
	metricsPrefix = "squadlog_"
)

// MembershipMetrics records membership engine and notification activity.
// A nil receiver is a no-op.
type MembershipMetrics struct {
	operations    *prometheus.CounterVec
	duration      *prometheus.HistogramVec
	notifications *prometheus.CounterVec
}

// NewMembershipMetrics registers the collectors on reg. A nil registerer
// yields a recorder that drops everything.
func NewMembershipMetrics(reg prometheus.Registerer) *MembershipMetrics {
	if reg == nil {
		return &MembershipMetrics{}
	}
	operations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: metricsPrefix + "membership_operations_total",
		Help: "Membership operations by outcome (ok or error code).",
	}, []string{"operation", "outcome"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    metricsPrefix + "membership_operation_duration_seconds",
		Help:    "Duration of membership operations in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation"})
	notifications := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: metricsPrefix + "notifications_emitted_total",
		Help: "Notification requests handed to the sink.",
	}, []string{"kind", "result"})
	reg.MustRegister(operations, duration, notifications)
	return &MembershipMetrics{
		operations:    operations,
		duration:      duration,
		notifications: notifications,
	}
}

// ObserveOperation records one finished operation. outcome is OutcomeOK or
// the error code that ended it.
func (m *MembershipMetrics) ObserveOperation(operation, outcome string, elapsed time.Duration) {
	if m == nil || m.operations == nil {
		return
	}
	op := normalizeLabel(operation)
	m.operations.WithLabelValues(op, strings.ToLower(normalizeLabel(outcome))).Inc()
	m.duration.WithLabelValues(op).Observe(elapsed.Seconds())
}

// IncNotification counts a notification hand-off.
func (m *MembershipMetrics) IncNotification(kind, result string) {
	if m == nil || m.notifications == nil {
		return
	}
	m.notifications.WithLabelValues(normalizeLabel(kind), normalizeLabel(result)).Inc()
}

func normalizeLabel(value string) string {
	if value == "" {
		return unknownLabel
	}
	return value
}
