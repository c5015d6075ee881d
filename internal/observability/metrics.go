package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	snapshotPersistGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "workoutmap",
		Subsystem: "snapshot",
		Name:      "last_snapshot_persisted_timestamp_seconds",
		Help:      "Unix timestamp of the most recent collection snapshot written to storage.",
	})
	snapshotFailureCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "workoutmap",
		Subsystem: "snapshot",
		Name:      "failures_total",
		Help:      "Snapshot operations that failed, labeled by operation (read, decode, write, delete).",
	}, []string{"operation"})
)

func init() {
	prometheus.MustRegister(snapshotPersistGauge, snapshotFailureCounter)
}

// RecordSnapshotPersisted updates the persistence watermark gauge.
func RecordSnapshotPersisted(ts time.Time) {
	if ts.IsZero() {
		return
	}
	snapshotPersistGauge.Set(float64(ts.Unix()))
}

// RecordSnapshotFailure counts a failed snapshot operation.
func RecordSnapshotFailure(operation string) {
	snapshotFailureCounter.WithLabelValues(operation).Inc()
}
