package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	activeSessionsGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "session_coordinator",
		Subsystem: "actors",
		Name:      "active_sessions",
		Help:      "Number of session actors currently running.",
	})
	commandsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "session_coordinator",
		Subsystem: "actors",
		Name:      "commands_total",
		Help:      "Commands processed by session actors, labeled by command and outcome.",
	}, []string{"command", "outcome"})
	commandDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "session_coordinator",
		Subsystem: "actors",
		Name:      "command_duration_seconds",
		Help:      "Time spent applying a command and persisting its snapshot.",
		Buckets:   prometheus.ExponentialBuckets(0.001, 2, 12),
	})
	snapshotPersistGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "session_coordinator",
		Subsystem: "persistence",
		Name:      "last_snapshot_persisted_timestamp_seconds",
		Help:      "Unix timestamp of the most recent session snapshot written to Postgres.",
	})
)

func init() {
	prometheus.MustRegister(activeSessionsGauge, commandsTotal, commandDuration, snapshotPersistGauge)
}

// ActorStarted increments the running actor gauge.
func ActorStarted() {
	activeSessionsGauge.Inc()
}

// ActorStopped decrements the running actor gauge.
func ActorStopped() {
	activeSessionsGauge.Dec()
}

// RecordCommand records one processed command with its outcome and latency.
func RecordCommand(command, outcome string, elapsed time.Duration) {
	commandsTotal.WithLabelValues(command, outcome).Inc()
	commandDuration.Observe(elapsed.Seconds())
}

// RecordSnapshotPersisted updates the persistence watermark gauge.
func RecordSnapshotPersisted(ts time.Time) {
	if ts.IsZero() {
		return
	}
	snapshotPersistGauge.Set(float64(ts.Unix()))
}
