package domain

// StorageUsage is a backend's report of what it currently holds. Bytes is an
// estimate for backends without exact accounting.
type StorageUsage struct {
	Vectors int64 `json:"vectors"`
	Bytes   int64 `json:"bytes"`
}

// QuotaStatus is the user-facing view of storage consumption.
type QuotaStatus struct {
	BytesUsed       int64   `json:"bytes_used"`
	QuotaLimitBytes int64   `json:"quota_limit_bytes"`
	PercentUsed     float64 `json:"percent_used"`
	Vectors         int64   `json:"vectors"`
}

const (
	// DefaultQuotaLimitBytes caps stored vectors at 2 GiB unless configured.
	DefaultQuotaLimitBytes int64 = 2 << 30

	avgChunkMetadataBytes = 500
	perChunkOverheadBytes = 512
)

// EstimateIngestBytes approximates the storage cost of a chunk batch before
// embedding happens. The admission check is advisory and works at batch
// granularity, so the estimate uses a flat per-chunk cost rather than
// inspecting individual chunk sizes.
func EstimateIngestBytes(chunkCount, dimension int) int64 {
	if chunkCount <= 0 {
		return 0
	}
	perChunk := int64(dimension*4 + avgChunkMetadataBytes + perChunkOverheadBytes)
	return int64(chunkCount) * perChunk
}
