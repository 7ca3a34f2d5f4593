package resilience

import (
	"context"
	"errors"

	"github.com/paradise-voice/travel-knowledge/internal/core/domain"
	"github.com/paradise-voice/travel-knowledge/internal/core/ports"
)

// ClassifyDomainError maps the engine's error kinds onto retry/breaker
// policy: backend and embedding failures are transient and retryable,
// timeouts too; cancellations and everything else are not. Quota denials
// never count as backend failures.
func ClassifyDomainError(err error) Verdict {
	switch {
	case err == nil:
		return Verdict{}
	case errors.Is(err, context.Canceled):
		return Verdict{Retryable: false, RecordFailure: false}
	case domain.IsKind(err, domain.ErrQuotaExceeded),
		domain.IsKind(err, domain.ErrInvalidInput),
		domain.IsKind(err, domain.ErrExtractionFailed):
		return Verdict{Retryable: false, RecordFailure: false}
	case domain.IsKind(err, domain.ErrTimeout),
		domain.IsKind(err, domain.ErrVectorStore),
		domain.IsKind(err, domain.ErrEmbedding):
		return Verdict{Retryable: true, RecordFailure: true}
	default:
		return Verdict{Retryable: false, RecordFailure: true}
	}
}

// Retriever wraps a TravelRetriever with retry and circuit breaking. Only
// reads get this treatment: retrying ingestion would hide its at-least-once
// semantics from callers.
type Retriever struct {
	inner ports.TravelRetriever
	guard *Guard
}

func NewRetriever(inner ports.TravelRetriever, guard *Guard) *Retriever {
	return &Retriever{inner: inner, guard: guard}
}

func (r *Retriever) Retrieve(ctx context.Context, query domain.RetrievalQuery) ([]domain.RetrievedChunk, error) {
	var results []domain.RetrievedChunk
	err := r.guard.Run(ctx, "retrieve", func(ctx context.Context) error {
		var innerErr error
		results, innerErr = r.inner.Retrieve(ctx, query)
		return innerErr
	})
	if err != nil {
		return nil, err
	}
	return results, nil
}
