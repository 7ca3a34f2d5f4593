package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// EngineMetrics instruments the retrieval engine itself: ingestion outcomes,
// retrieval outcomes, fallback passes and the quota position. A nil receiver
// is valid and records nothing, so the use cases never need nil checks.
type EngineMetrics struct {
	registry *prometheus.Registry

	documentsTotal   *prometheus.CounterVec
	chunksWritten    prometheus.Counter
	ingestDuration   *prometheus.HistogramVec
	retrievalTotal   *prometheus.CounterVec
	retrievalChunks  prometheus.Histogram
	retrievalSeconds prometheus.Histogram
	fallbackPasses   prometheus.Counter
	quotaUsedBytes   prometheus.Gauge
	quotaLimitBytes  prometheus.Gauge
}

func NewEngineMetrics(service string) *EngineMetrics {
	registry := prometheus.NewRegistry()
	constLabels := prometheus.Labels{"service": service}

	documentsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace:   "travel",
			Subsystem:   "engine",
			Name:        "documents_ingested_total",
			Help:        "Total ingested documents by document type and status.",
			ConstLabels: constLabels,
		},
		[]string{"document_type", "status"},
	)
	chunksWritten := prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace:   "travel",
			Subsystem:   "engine",
			Name:        "chunks_written_total",
			Help:        "Total chunks committed to the vector store.",
			ConstLabels: constLabels,
		},
	)
	ingestDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace:   "travel",
			Subsystem:   "engine",
			Name:        "ingest_duration_seconds",
			Help:        "Ingestion pipeline duration in seconds by status.",
			Buckets:     prometheus.DefBuckets,
			ConstLabels: constLabels,
		},
		[]string{"status"},
	)
	retrievalTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace:   "travel",
			Subsystem:   "engine",
			Name:        "retrievals_total",
			Help:        "Total retrieval requests by status.",
			ConstLabels: constLabels,
		},
		[]string{"status"},
	)
	retrievalChunks := prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace:   "travel",
			Subsystem:   "engine",
			Name:        "retrieved_chunks",
			Help:        "Distribution of unique chunks returned per retrieval.",
			Buckets:     []float64{0, 1, 2, 3, 5, 8, 13, 21},
			ConstLabels: constLabels,
		},
	)
	retrievalSeconds := prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace:   "travel",
			Subsystem:   "engine",
			Name:        "retrieval_duration_seconds",
			Help:        "Retrieval cascade duration in seconds.",
			Buckets:     prometheus.DefBuckets,
			ConstLabels: constLabels,
		},
	)
	fallbackPasses := prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace:   "travel",
			Subsystem:   "engine",
			Name:        "retrieval_fallback_passes_total",
			Help:        "Total retrievals that needed the unfiltered fallback pass.",
			ConstLabels: constLabels,
		},
	)
	quotaUsedBytes := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace:   "travel",
			Subsystem:   "engine",
			Name:        "quota_used_bytes",
			Help:        "Estimated bytes currently stored, from the last usage fetch.",
			ConstLabels: constLabels,
		},
	)
	quotaLimitBytes := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace:   "travel",
			Subsystem:   "engine",
			Name:        "quota_limit_bytes",
			Help:        "Configured storage quota ceiling.",
			ConstLabels: constLabels,
		},
	)

	registry.MustRegister(
		documentsTotal,
		chunksWritten,
		ingestDuration,
		retrievalTotal,
		retrievalChunks,
		retrievalSeconds,
		fallbackPasses,
		quotaUsedBytes,
		quotaLimitBytes,
	)

	return &EngineMetrics{
		registry:         registry,
		documentsTotal:   documentsTotal,
		chunksWritten:    chunksWritten,
		ingestDuration:   ingestDuration,
		retrievalTotal:   retrievalTotal,
		retrievalChunks:  retrievalChunks,
		retrievalSeconds: retrievalSeconds,
		fallbackPasses:   fallbackPasses,
		quotaUsedBytes:   quotaUsedBytes,
		quotaLimitBytes:  quotaLimitBytes,
	}
}

func (m *EngineMetrics) Gatherer() prometheus.Gatherer {
	if m == nil {
		return prometheus.NewRegistry()
	}
	return m.registry
}

func (m *EngineMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Gatherer(), promhttp.HandlerOpts{})
}

func (m *EngineMetrics) RecordIngest(documentType string, err error, chunksWritten int, duration time.Duration) {
	if m == nil {
		return
	}
	status := "success"
	if err != nil {
		status = "error"
	}
	if documentType == "" {
		documentType = "unknown"
	}
	m.documentsTotal.WithLabelValues(documentType, status).Inc()
	m.ingestDuration.WithLabelValues(status).Observe(duration.Seconds())
	if chunksWritten > 0 {
		m.chunksWritten.Add(float64(chunksWritten))
	}
}

func (m *EngineMetrics) RecordRetrieval(err error, resultCount int, duration time.Duration) {
	if m == nil {
		return
	}
	status := "success"
	if err != nil {
		status = "error"
	}
	m.retrievalTotal.WithLabelValues(status).Inc()
	m.retrievalSeconds.Observe(duration.Seconds())
	if err == nil {
		m.retrievalChunks.Observe(float64(resultCount))
	}
}

func (m *EngineMetrics) RecordFallbackPass() {
	if m == nil {
		return
	}
	m.fallbackPasses.Inc()
}

func (m *EngineMetrics) SetQuota(usedBytes, limitBytes int64) {
	if m == nil {
		return
	}
	m.quotaUsedBytes.Set(float64(usedBytes))
	m.quotaLimitBytes.Set(float64(limitBytes))
}
