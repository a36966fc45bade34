package jobmetrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Outcome labels recorded per task run.
const (
	OutcomeOK    = "ok"
	OutcomeError = "error"
)

// Metrics holds the worker collectors. Task types are used as label values,
// so the set stays small.
type Metrics struct {
	runs        *prometheus.CounterVec
	duration    *prometheus.HistogramVec
	lastSuccess *prometheus.GaugeVec
	now         func() time.Time
}

var (
	defaultOnce    sync.Once
	defaultMetrics *Metrics
)

// NewMetrics registers the collectors with registerer, or once with the
// Prometheus default registerer when registerer is nil.
func NewMetrics(registerer prometheus.Registerer) *Metrics {
	if registerer != nil {
		return register(registerer)
	}
	defaultOnce.Do(func() {
		defaultMetrics = register(prometheus.DefaultRegisterer)
	})
	return defaultMetrics
}

func register(registerer prometheus.Registerer) *Metrics {
	m := &Metrics{
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "zaiko_task_runs_total",
			Help: "Background task runs by task type and outcome.",
		}, []string{"task", "outcome"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "zaiko_task_duration_seconds",
			Help:    "Background task run time.",
			Buckets: []float64{.005, .01, .05, .1, .5, 1, 5},
		}, []string{"task"}),
		lastSuccess: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "zaiko_task_last_success_timestamp_seconds",
			Help: "Unix time of the last successful run per task type.",
		}, []string{"task"}),
		now: time.Now,
	}
	registerer.MustRegister(m.runs, m.duration, m.lastSuccess)
	return m
}

// Tracker times one task run.
type Tracker struct {
	m     *Metrics
	task  string
	start time.Time
}

// Track starts timing a run of task. A nil *Metrics yields a no-op tracker.
func (m *Metrics) Track(task string) *Tracker {
	if m == nil {
		return &Tracker{task: task}
	}
	return &Tracker{m: m, task: task, start: m.now()}
}

// End records the outcome of the run and returns err unchanged.
func (t *Tracker) End(err error) error {
	if t == nil || t.m == nil {
		return err
	}
	now := t.m.now()
	outcome := OutcomeOK
	if err != nil {
		outcome = OutcomeError
	} else {
		t.m.lastSuccess.WithLabelValues(t.task).Set(float64(now.Unix()))
	}
	t.m.runs.WithLabelValues(t.task, outcome).Inc()
	t.m.duration.WithLabelValues(t.task).Observe(now.Sub(t.start).Seconds())
	return err
}
