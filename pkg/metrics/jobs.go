package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// JobMetrics records scheduled maintenance job runs. A nil receiver is a no-op.
type JobMetrics struct {
	runs     *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

func NewJobMetrics(reg prometheus.Registerer) *JobMetrics {
	if reg == nil {
		return &JobMetrics{}
	}
	runs := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: metricsPrefix + "cron_job_runs_total",
		Help: "Cron job runs by result.",
	}, []string{"job", "result"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    metricsPrefix + "cron_job_duration_seconds",
		Help:    "Duration of cron jobs in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"job"})
	reg.MustRegister(runs, duration)
	return &JobMetrics{runs: runs, duration: duration}
}

// ObserveJob records one run; result is OutcomeOK or ResultFailed.
func (j *JobMetrics) ObserveJob(job, result string, elapsed time.Duration) {
	if j == nil || j.runs == nil {
		return
	}
	name := normalizeLabel(job)
	j.runs.WithLabelValues(name, normalizeLabel(result)).Inc()
	j.duration.WithLabelValues(name).Observe(elapsed.Seconds())
}
