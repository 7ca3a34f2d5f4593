package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/paradise-voice/travel-knowledge/internal/core/domain"
	"github.com/paradise-voice/travel-knowledge/internal/core/ports"
	"github.com/paradise-voice/travel-knowledge/internal/observability/metrics"
)

// RetrieveUseCase answers retrieval queries with a cascading namespace
// search: city before country before general. Namespace specificity strictly
// dominates similarity score, so results are never re-sorted globally; a
// weaker city match outranks a stronger general match. That trades recall
// for precision on purpose.
type RetrieveUseCase struct {
	resolver    ports.NamespaceResolver
	embedder    ports.Embedder
	store       ports.VectorBackend
	defaultTopK int
	metrics     *metrics.EngineMetrics
}

func NewRetrieveUseCase(
	resolver ports.NamespaceResolver,
	embedder ports.Embedder,
	store ports.VectorBackend,
	defaultTopK int,
	m *metrics.EngineMetrics,
) *RetrieveUseCase {
	if defaultTopK <= 0 {
		defaultTopK = 5
	}
	return &RetrieveUseCase{
		resolver:    resolver,
		embedder:    embedder,
		store:       store,
		defaultTopK: defaultTopK,
		metrics:     m,
	}
}

// searchStep is one evaluation of the cascade state machine: a namespace
// plus whether the section filter still applies. The unfiltered steps only
// execute when the filtered pass came up short of topK.
type searchStep struct {
	namespace string
	filter    domain.MetadataFilter
	fallback  bool
}

type chunkKey struct {
	sourceFile string
	index      int
}

func (uc *RetrieveUseCase) Retrieve(
	ctx context.Context,
	query domain.RetrievalQuery,
) ([]domain.RetrievedChunk, error) {
	start := time.Now()
	results, err := uc.retrieve(ctx, query)
	uc.metrics.RecordRetrieval(err, len(results), time.Since(start))
	return results, err
}

func (uc *RetrieveUseCase) retrieve(
	ctx context.Context,
	query domain.RetrievalQuery,
) ([]domain.RetrievedChunk, error) {
	topK := query.TopK
	if topK <= 0 {
		topK = uc.defaultTopK
	}

	path := uc.resolver.Resolve(query.Destination)
	vector, err := uc.embedder.EmbedQuery(ctx, query.Query)
	if err != nil {
		return nil, err
	}

	filter := domain.SectionFilter(query.Section)
	steps := make([]searchStep, 0, 2*len(path))
	for _, ns := range path {
		steps = append(steps, searchStep{namespace: ns, filter: filter})
	}
	if !filter.Empty() {
		for _, ns := range path {
			steps = append(steps, searchStep{namespace: ns, fallback: true})
		}
	}

	var results []domain.RetrievedChunk
	seen := make(map[chunkKey]struct{})
	fellBack := false

	for _, step := range steps {
		if len(results) >= topK {
			break
		}
		// Cancellable mid-cascade: never start namespace N+1 after cancel.
		if err := ctx.Err(); err != nil {
			if errors.Is(err, context.DeadlineExceeded) {
				return nil, domain.WrapError(domain.ErrTimeout, "retrieval cascade", err)
			}
			return nil, err
		}
		if step.fallback && !fellBack {
			fellBack = true
			uc.metrics.RecordFallbackPass()
			slog.Warn("retrieval_unfiltered_fallback",
				"destination", query.Destination,
				"section", query.Section,
				"found_filtered", len(results),
			)
		}

		hits, err := uc.store.Query(ctx, step.namespace, vector, topK, step.filter)
		if err != nil {
			return nil, fmt.Errorf("query namespace %s: %w", step.namespace, err)
		}
		slog.Debug("retrieval_namespace_results",
			"namespace", step.namespace,
			"hits", len(hits),
			"fallback", step.fallback,
		)

		// Hits within one namespace arrive ranked by similarity; keep that
		// order and dedup on the logical chunk identity, not the point ID.
		for _, hit := range hits {
			key := chunkKey{sourceFile: hit.SourceFile, index: hit.Index}
			if _, ok := seen[key]; ok {
				continue
			}
			seen[key] = struct{}{}
			hit.Namespace = step.namespace
			results = append(results, hit)
			if len(results) >= topK {
				break
			}
		}
	}

	// Empty means "no knowledge available", which is success.
	return results, nil
}
