package ports

import (
	"context"
	"io"

	"github.com/paradise-voice/travel-knowledge/internal/core/domain"
)

// DocumentIngestor is the inbound contract for the synchronous ingestion
// pipeline. The returned report is populated even when err is non-nil so
// callers can see how many chunks were committed before the failure.
type DocumentIngestor interface {
	Upload(ctx context.Context, filename, mimeType string, body io.Reader) (*domain.IngestReport, error)
}

// TravelRetriever is the inbound contract for destination-aware retrieval.
type TravelRetriever interface {
	Retrieve(ctx context.Context, query domain.RetrievalQuery) ([]domain.RetrievedChunk, error)
}

// QuotaReporter exposes the current storage quota position.
type QuotaReporter interface {
	Status(ctx context.Context) (domain.QuotaStatus, error)
}
