package usecase

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/paradise-voice/travel-knowledge/internal/core/domain"
	"github.com/paradise-voice/travel-knowledge/internal/core/ports"
	"github.com/paradise-voice/travel-knowledge/internal/observability/metrics"
)

// upsertBatchSize bounds one backend upsert call so a mid-batch failure
// leaves an accurate committed count in the report.
const upsertBatchSize = 100

// IngestUseCase runs the synchronous ingestion pipeline: extract, classify,
// chunk, quota admission, embed, upsert. Writes are at-least-once and never
// rolled back; a failed call still reports how many chunks were committed
// before the failure, and callers must re-check before a blind retry.
type IngestUseCase struct {
	extractor  ports.TextExtractor
	classifier ports.DocumentClassifier
	chunker    ports.Chunker
	resolver   ports.NamespaceResolver
	embedder   ports.Embedder
	store      ports.VectorBackend
	quota      *QuotaMonitor
	metrics    *metrics.EngineMetrics
}

func NewIngestUseCase(
	extractor ports.TextExtractor,
	classifier ports.DocumentClassifier,
	chunker ports.Chunker,
	resolver ports.NamespaceResolver,
	embedder ports.Embedder,
	store ports.VectorBackend,
	quota *QuotaMonitor,
	m *metrics.EngineMetrics,
) *IngestUseCase {
	return &IngestUseCase{
		extractor:  extractor,
		classifier: classifier,
		chunker:    chunker,
		resolver:   resolver,
		embedder:   embedder,
		store:      store,
		quota:      quota,
		metrics:    m,
	}
}

func (uc *IngestUseCase) Upload(
	ctx context.Context,
	filename, mimeType string,
	body io.Reader,
) (*domain.IngestReport, error) {
	start := time.Now()
	report, err := uc.upload(ctx, filename, mimeType, body)
	uc.metrics.RecordIngest(string(report.Type), err, report.ChunksWritten, time.Since(start))
	return report, err
}

func (uc *IngestUseCase) upload(
	ctx context.Context,
	filename, mimeType string,
	body io.Reader,
) (*domain.IngestReport, error) {
	report := &domain.IngestReport{Filename: filename, Type: domain.TypeGeneral}

	content, err := io.ReadAll(body)
	if err != nil {
		return report, domain.WrapError(domain.ErrInvalidInput, "read upload body", err)
	}

	doc := &domain.Document{Filename: filename, MimeType: mimeType, Content: content}
	text, err := uc.extractor.Extract(ctx, doc)
	if err != nil {
		return report, err
	}

	cls, err := uc.classifier.Classify(ctx, filename, text)
	if err != nil {
		// Classification is defined to fall back, never fail; an error here
		// means broken wiring, not an ambiguous document.
		return report, fmt.Errorf("classify document: %w", err)
	}
	namespace := uc.resolver.WriteNamespace(cls.Primary)

	report.Title = cls.Title
	report.Type = cls.Type
	report.Destinations = cls.Destinations
	report.Namespace = namespace

	chunks := uc.chunker.Chunk(cls, filename, text)
	report.ChunksAttempted = len(chunks)
	if len(chunks) == 0 {
		// Nothing to index is a valid outcome, e.g. an empty document.
		slog.Info("ingest_empty_document", "filename", filename)
		return report, nil
	}

	estimate := domain.EstimateIngestBytes(len(chunks), uc.embedder.Dimension())
	if err := uc.quota.CheckCapacity(ctx, estimate); err != nil {
		if domain.IsKind(err, domain.ErrQuotaExceeded) {
			slog.Warn("ingest_quota_denied",
				"filename", filename,
				"chunks", len(chunks),
				"estimated_bytes", estimate,
			)
		}
		return report, err
	}

	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Text
	}
	vectors, err := uc.embedder.Embed(ctx, texts)
	if err != nil {
		return report, err
	}
	if len(vectors) != len(chunks) {
		return report, domain.WrapError(domain.ErrEmbedding, "embed chunks",
			fmt.Errorf("expected %d vectors, got %d", len(chunks), len(vectors)))
	}

	points := make([]domain.VectorPoint, len(chunks))
	for i, c := range chunks {
		points[i] = domain.VectorPoint{ID: c.PointID(), Vector: vectors[i], Chunk: c}
	}

	for offset := 0; offset < len(points); offset += upsertBatchSize {
		end := offset + upsertBatchSize
		if end > len(points) {
			end = len(points)
		}
		if err := uc.store.Upsert(ctx, namespace, points[offset:end]); err != nil {
			return report, err
		}
		report.ChunksWritten = end
	}

	slog.Info("ingest_complete",
		"filename", filename,
		"title", cls.Title,
		"document_type", cls.Type,
		"destinations", cls.Destinations,
		"namespace", namespace,
		"chunks_written", report.ChunksWritten,
	)
	return report, nil
}
