package upload

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "merkle"

type metrics struct {
	UploadCount     *prometheus.CounterVec
	UploadedBytes   prometheus.Counter
	ChunkCount      prometheus.Histogram
	ProcessDuration prometheus.Histogram
}

func newMetrics() metrics {
	subsystem := "upload"

	return metrics{
		UploadCount: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "count",
			Help:      "Number of processed uploads grouped by result.",
		}, []string{"result"}),
		UploadedBytes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "bytes_total",
			Help:      "Total bytes hashed from successful uploads.",
		}),
		ChunkCount: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "chunks",
			Help:      "Histogram of leaf counts per upload.",
			Buckets:   prometheus.ExponentialBuckets(1, 4, 8),
		}),
		ProcessDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "process_duration_seconds",
			Help:      "Histogram of time spent building the merkle tree of an upload.",
			Buckets:   []float64{0.01, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}),
	}
}

// Metrics returns the collectors of the service for registration.
func (s *Service) Metrics() []prometheus.Collector {
	return []prometheus.Collector{
		s.metrics.UploadCount,
		s.metrics.UploadedBytes,
		s.metrics.ChunkCount,
		s.metrics.ProcessDuration,
	}
}
