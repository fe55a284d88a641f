package stm

import "github.com/prometheus/client_golang/prometheus"

// Metrics exposes counters and gauges for the executor and commit
// protocol, wired through github.com/prometheus/client_golang — the
// metrics library the retrieval pack's services reach for (e.g.
// Generativebots-ocx-backend-go-svc, 5kbpers-ticdc). It is optional: a
// nil *Metrics is valid everywhere it's used, so runtimes created without
// WithMetrics pay nothing on the hot path.
type Metrics struct {
	commits   prometheus.Counter
	conflicts prometheus.Counter
	retries   prometheus.Counter
	aborts    prometheus.Counter
	failures  prometheus.Counter
	parked    prometheus.Gauge
}

// NewMetrics builds a Metrics and registers it with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		commits: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "stm_commits_total",
			Help: "Transactions successfully committed.",
		}),
		conflicts: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "stm_conflicts_total",
			Help: "Attempts that failed validation at commit and were silently re-run.",
		}),
		retries: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "stm_retries_total",
			Help: "Attempts that signalled an explicit retry.",
		}),
		aborts: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "stm_aborts_total",
			Help: "Attempts that signalled Abort.",
		}),
		failures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "stm_failures_total",
			Help: "Attempts that failed due to a host-level panic escaping user code.",
		}),
		parked: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "stm_parked_waiters",
			Help: "Attempts currently parked waiting for a cell to change.",
		}),
	}
	reg.MustRegister(m.commits, m.conflicts, m.retries, m.aborts, m.failures, m.parked)
	return m
}

func (rt *Runtime) incCommit() {
	if rt.metrics != nil {
		rt.metrics.commits.Inc()
	}
}

func (rt *Runtime) incConflict() {
	if rt.metrics != nil {
		rt.metrics.conflicts.Inc()
	}
}

func (rt *Runtime) incRetry() {
	if rt.metrics != nil {
		rt.metrics.retries.Inc()
	}
}

func (rt *Runtime) incAbort() {
	if rt.metrics != nil {
		rt.metrics.aborts.Inc()
	}
}

func (rt *Runtime) incFailure() {
	if rt.metrics != nil {
		rt.metrics.failures.Inc()
	}
}

func (rt *Runtime) incParked() {
	if rt.metrics != nil {
		rt.metrics.parked.Inc()
	}
}
