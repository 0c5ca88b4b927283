package observability

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const metricsNamespace = "adventure"

// LockWaitBuckets covers an uncontended lock (sub-millisecond) up to the
// default five second wait bound. Unit: seconds.
var LockWaitBuckets = []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 2.5, 5}

// Metrics holds the engine's Prometheus collectors.
type Metrics struct {
	// Encounters counts generated encounters by axis and boss flag.
	Encounters *prometheus.CounterVec
	// Outcomes counts recorded encounter outcomes by action and result.
	Outcomes *prometheus.CounterVec
	// Mutations counts character operations by op and result.
	Mutations *prometheus.CounterVec
	// Anomalies counts data anomalies recovered from while loading or mutating.
	Anomalies prometheus.Counter
	// LockWait observes how long operations waited for a character lock.
	LockWait prometheus.Histogram
}

// NewMetrics registers the collectors with registerer.
//
// Precondition: registerer must not already hold these collectors.
func NewMetrics(registerer prometheus.Registerer) *Metrics {
	factory := promauto.With(registerer)
	return &Metrics{
		Encounters: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: "encounter",
				Name:      "generated_total",
				Help:      "Encounters generated, by stat axis and boss flag",
			},
			[]string{"axis", "boss"},
		),
		Outcomes: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: "encounter",
				Name:      "outcomes_total",
				Help:      "Encounter outcomes recorded, by main action and result",
			},
			[]string{"action", "result"},
		),
		Mutations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: "character",
				Name:      "operations_total",
				Help:      "Character operations, by operation and result",
			},
			[]string{"op", "result"},
		),
		Anomalies: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: "character",
				Name:      "anomalies_total",
				Help:      "Character data anomalies repaired or skipped",
			},
		),
		LockWait: factory.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: metricsNamespace,
				Subsystem: "character",
				Name:      "lock_wait_seconds",
				Help:      "Time spent waiting for a per-character lock",
				Buckets:   LockWaitBuckets,
			},
		),
	}
}

// ObserveEncounter counts one generated encounter.
func (m *Metrics) ObserveEncounter(axis string, boss bool) {
	m.Encounters.WithLabelValues(axis, strconv.FormatBool(boss)).Inc()
}

// ObserveOutcome counts one recorded outcome.
func (m *Metrics) ObserveOutcome(action string, success bool) {
	result := "loss"
	if success {
		result = "win"
	}
	m.Outcomes.WithLabelValues(action, result).Inc()
}

// ObserveMutation counts one character operation; err selects the result label.
func (m *Metrics) ObserveMutation(op string, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.Mutations.WithLabelValues(op, result).Inc()
}

// AddAnomalies adds n anomalies. Non-positive n is ignored.
func (m *Metrics) AddAnomalies(n int) {
	if n > 0 {
		m.Anomalies.Add(float64(n))
	}
}

// ObserveLockWait records one lock acquisition wait.
func (m *Metrics) ObserveLockWait(d time.Duration) {
	m.LockWait.Observe(d.Seconds())
}
