package metrics

import "github.com/prometheus/client_golang/prometheus"

// BatchMetrics tracks chunked multi-path commits against the tree store.
type BatchMetrics struct {
	chunks *prometheus.CounterVec
	paths  *prometheus.CounterVec
}

// NewBatchMetrics registers batch commit metrics on the provided registerer.
func NewBatchMetrics(reg prometheus.Registerer) *BatchMetrics {
	if reg == nil {
		return &BatchMetrics{}
	}
	chunks := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "batch_chunks_total",
		Help:      "Batch chunks by commit outcome.",
	}, []string{"source", "outcome"})
	paths := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "batch_paths_written_total",
		Help:      "Paths written by committed batch chunks.",
	}, []string{"source"})
	reg.MustRegister(chunks, paths)
	return &BatchMetrics{chunks: chunks, paths: paths}
}

// ChunkCommitted records a successful chunk of n paths.
func (b *BatchMetrics) ChunkCommitted(source string, n int) {
	if b == nil || b.chunks == nil {
		return
	}
	b.chunks.WithLabelValues(normalizeLabel(source), "committed").Inc()
	b.paths.WithLabelValues(normalizeLabel(source)).Add(float64(n))
}

// ChunkFailed records a chunk the store rejected.
func (b *BatchMetrics) ChunkFailed(source string) {
	if b == nil || b.chunks == nil {
		return
	}
	b.chunks.WithLabelValues(normalizeLabel(source), "failed").Inc()
}
