package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "dealtracker"

const (
	outcomeSuccess = "success"
	outcomeFailure = "failure"
)

// CronJobMetrics records run outcomes and timing for scheduled jobs.
type CronJobMetrics struct {
	runs        *prometheus.CounterVec
	duration    *prometheus.HistogramVec
	lastSuccess *prometheus.GaugeVec
	skipped     *prometheus.CounterVec
	now         func() time.Time
}

// NewCronJobMetrics registers the cron collectors on reg. A nil registerer yields a no-op recorder.
func NewCronJobMetrics(reg prometheus.Registerer) *CronJobMetrics {
	if reg == nil {
		return &CronJobMetrics{}
	}
	m := &CronJobMetrics{
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "cron",
			Name:      "job_runs_total",
			Help:      "Cron job executions by outcome; recovered panics count as failures.",
		}, []string{"job", "outcome"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "cron",
			Name:      "job_duration_seconds",
			Help:      "Duration of cron jobs in seconds.",
			Buckets:   []float64{.01, .05, .1, .25, .5, 1, 2.5, 5, 10, 30},
		}, []string{"job"}),
		lastSuccess: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "cron",
			Name:      "job_last_success_timestamp_seconds",
			Help:      "Unix time of the last successful run per job.",
		}, []string{"job"}),
		skipped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "cron",
			Name:      "cycle_skipped_total",
			Help:      "Cron cycles skipped because another runner held the lock.",
		}, []string{"service"}),
		now: time.Now,
	}
	reg.MustRegister(m.runs, m.duration, m.lastSuccess, m.skipped)
	return m
}

func (c *CronJobMetrics) enabled() bool {
	return c != nil && c.runs != nil
}

// ObserveDuration records how long one run of job took.
func (c *CronJobMetrics) ObserveDuration(job string, d time.Duration) {
	if !c.enabled() {
		return
	}
	c.duration.WithLabelValues(labelOrUnknown(job)).Observe(d.Seconds())
}

func (c *CronJobMetrics) IncSuccess(job string) {
	if !c.enabled() {
		return
	}
	job = labelOrUnknown(job)
	c.runs.WithLabelValues(job, outcomeSuccess).Inc()
	c.lastSuccess.WithLabelValues(job).Set(float64(c.now().Unix()))
}

func (c *CronJobMetrics) IncFailure(job string) {
	if !c.enabled() {
		return
	}
	c.runs.WithLabelValues(labelOrUnknown(job), outcomeFailure).Inc()
}

// IncSkipped counts a cycle that did not run because the lock was held elsewhere.
func (c *CronJobMetrics) IncSkipped(service string) {
	if !c.enabled() {
		return
	}
	c.skipped.WithLabelValues(labelOrUnknown(service)).Inc()
}

func labelOrUnknown(v string) string {
	if v == "" {
		return "unknown"
	}
	return v
}
