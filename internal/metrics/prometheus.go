package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// PrometheusCollector implements Collector with prometheus vectors.
type PrometheusCollector struct {
	jobRuns           *prometheus.CounterVec
	jobDuration       *prometheus.HistogramVec
	jobSkipped        *prometheus.CounterVec
	accountsProcessed *prometheus.CounterVec
	transferDegraded  prometheus.Counter
	lookups           *prometheus.CounterVec
	coldStoreCalls    *prometheus.CounterVec
	coldStoreLatency  *prometheus.HistogramVec
	circuitState      *prometheus.GaugeVec
}

var _ Collector = (*PrometheusCollector)(nil)

func NewPrometheusCollector(namespace string) *PrometheusCollector {
	return &PrometheusCollector{
		jobRuns: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "job_runs_total",
				Help:      "Completed job runs per job and outcome",
			},
			[]string{"job", "outcome"},
		),
		jobDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "job_run_duration_seconds",
				Help:      "Job run duration per job",
				Buckets:   []float64{.1, .5, 1, 5, 15, 60, 300, 900},
			},
			[]string{"job"},
		),
		jobSkipped: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "job_triggers_skipped_total",
				Help:      "Triggers dropped because a previous run still held the lock",
			},
			[]string{"job"},
		),
		accountsProcessed: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "job_accounts_total",
				Help:      "Accounts handled by a job per result",
			},
			[]string{"job", "result"},
		),
		transferDegraded: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "archive_transfer_degraded_total",
				Help:      "Accounts archived locally without a cold store copy",
			},
		),
		lookups: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "account_lookups_total",
				Help:      "Account lookups per resolved source",
			},
			[]string{"source"},
		),
		coldStoreCalls: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "coldstore_calls_total",
				Help:      "Cold store calls per operation and result",
			},
			[]string{"operation", "result"},
		),
		coldStoreLatency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "coldstore_call_duration_seconds",
				Help:      "Cold store call latency per operation",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
		circuitState: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "circuit_state",
				Help:      "Circuit breaker state (0=closed, 1=open, 2=half-open)",
			},
			[]string{"name"},
		),
	}
}

// Register adds every collector to the registerer.
func (pc *PrometheusCollector) Register(reg prometheus.Registerer) error {
	collectors := []prometheus.Collector{
		pc.jobRuns, pc.jobDuration, pc.jobSkipped, pc.accountsProcessed, pc.transferDegraded,
		pc.lookups, pc.coldStoreCalls, pc.coldStoreLatency, pc.circuitState,
	}
	for _, c := range collectors {
		if err := reg.Register(c); err != nil {
			return err
		}
	}
	return nil
}

func (pc *PrometheusCollector) RecordJobRun(job string, outcome string, duration time.Duration) {
	pc.jobRuns.WithLabelValues(job, outcome).Inc()
	pc.jobDuration.WithLabelValues(job).Observe(duration.Seconds())
}

func (pc *PrometheusCollector) RecordJobSkipped(job string) {
	pc.jobSkipped.WithLabelValues(job).Inc()
}

func (pc *PrometheusCollector) RecordAccountProcessed(job string, result string) {
	pc.accountsProcessed.WithLabelValues(job, result).Inc()
}

func (pc *PrometheusCollector) RecordTransferDegraded() {
	pc.transferDegraded.Inc()
}

func (pc *PrometheusCollector) RecordLookup(source string) {
	pc.lookups.WithLabelValues(source).Inc()
}

func (pc *PrometheusCollector) RecordColdStoreCall(operation string, success bool, duration time.Duration) {
	result := "success"
	if !success {
		result = "error"
	}
	pc.coldStoreCalls.WithLabelValues(operation, result).Inc()
	pc.coldStoreLatency.WithLabelValues(operation).Observe(duration.Seconds())
}

func (pc *PrometheusCollector) RecordCircuitState(name string, state CircuitState) {
	pc.circuitState.WithLabelValues(name).Set(float64(state))
}
