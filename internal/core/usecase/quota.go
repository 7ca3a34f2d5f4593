package usecase

import (
	"context"

	"github.com/paradise-voice/travel-knowledge/internal/core/domain"
	"github.com/paradise-voice/travel-knowledge/internal/core/ports"
	"github.com/paradise-voice/travel-knowledge/internal/observability/metrics"
)

// QuotaMonitor gates ingestion against the configured storage ceiling. Usage
// is re-fetched from the backend on every decision because concurrent callers
// mutate the real counter; the check is advisory, not a hard guarantee.
type QuotaMonitor struct {
	store   ports.VectorBackend
	limit   int64
	metrics *metrics.EngineMetrics
}

func NewQuotaMonitor(store ports.VectorBackend, limitBytes int64, m *metrics.EngineMetrics) *QuotaMonitor {
	if limitBytes <= 0 {
		limitBytes = domain.DefaultQuotaLimitBytes
	}
	return &QuotaMonitor{store: store, limit: limitBytes, metrics: m}
}

// CheckCapacity denies when the current usage plus the estimate would exceed
// the limit. Landing exactly on the limit is allowed.
func (m *QuotaMonitor) CheckCapacity(ctx context.Context, estimatedBytes int64) error {
	status, err := m.Status(ctx)
	if err != nil {
		return err
	}
	if status.BytesUsed+estimatedBytes > m.limit {
		return &domain.QuotaError{Status: status, Estimated: estimatedBytes}
	}
	return nil
}

// Status reports the current quota position. Read-only, no side effects
// beyond the backend usage call.
func (m *QuotaMonitor) Status(ctx context.Context) (domain.QuotaStatus, error) {
	usage, err := m.store.Usage(ctx)
	if err != nil {
		return domain.QuotaStatus{}, err
	}
	status := domain.QuotaStatus{
		BytesUsed:       usage.Bytes,
		QuotaLimitBytes: m.limit,
		PercentUsed:     float64(usage.Bytes) / float64(m.limit) * 100,
		Vectors:         usage.Vectors,
	}
	m.metrics.SetQuota(status.BytesUsed, status.QuotaLimitBytes)
	return status, nil
}
