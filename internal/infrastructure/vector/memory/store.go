package memory

import (
	"context"
	"math"
	"sort"
	"sync"

	"github.com/paradise-voice/travel-knowledge/internal/core/domain"
)

const perVectorOverheadBytes = 1024

// Store is an in-process vector backend for development and tests. Brute
// force cosine similarity per namespace, guarded by a RWMutex so concurrent
// ingests and retrievals from the caller side stay safe.
type Store struct {
	mu         sync.RWMutex
	namespaces map[string]map[string]entry
}

type entry struct {
	vector []float32
	chunk  domain.Chunk
}

func NewStore() *Store {
	return &Store{namespaces: make(map[string]map[string]entry)}
}

func (s *Store) Upsert(_ context.Context, namespace string, points []domain.VectorPoint) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	ns, ok := s.namespaces[namespace]
	if !ok {
		ns = make(map[string]entry, len(points))
		s.namespaces[namespace] = ns
	}
	for _, p := range points {
		vector := make([]float32, len(p.Vector))
		copy(vector, p.Vector)
		ns[p.ID] = entry{vector: vector, chunk: p.Chunk}
	}
	return nil
}

func (s *Store) Query(
	_ context.Context,
	namespace string,
	vector []float32,
	topK int,
	filter domain.MetadataFilter,
) ([]domain.RetrievedChunk, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ns := s.namespaces[namespace]
	if len(ns) == 0 || topK <= 0 {
		return nil, nil
	}

	out := make([]domain.RetrievedChunk, 0, len(ns))
	for _, e := range ns {
		if !matchesFilter(e.chunk, filter) {
			continue
		}
		out = append(out, domain.RetrievedChunk{
			Chunk:     e.chunk,
			Score:     cosineSimilarity(vector, e.vector),
			Namespace: namespace,
		})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	if len(out) > topK {
		out = out[:topK]
	}
	return out, nil
}

func (s *Store) Usage(_ context.Context) (domain.StorageUsage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var vectors, bytes int64
	for _, ns := range s.namespaces {
		for _, e := range ns {
			vectors++
			bytes += int64(len(e.vector)*4 + perVectorOverheadBytes)
		}
	}
	return domain.StorageUsage{Vectors: vectors, Bytes: bytes}, nil
}

func matchesFilter(chunk domain.Chunk, filter domain.MetadataFilter) bool {
	for _, cond := range filter.Conditions {
		value := fieldValue(chunk, cond.Field)
		if len(cond.OneOf) > 0 {
			found := false
			for _, candidate := range cond.OneOf {
				if value == candidate {
					found = true
					break
				}
			}
			if !found {
				return false
			}
			continue
		}
		if value != cond.Equals {
			return false
		}
	}
	return true
}

func fieldValue(chunk domain.Chunk, field string) string {
	switch field {
	case "section":
		return string(chunk.Section)
	case "destination":
		return chunk.Destination
	case "source_file":
		return chunk.SourceFile
	case "document_title":
		return chunk.DocumentTitle
	default:
		return ""
	}
}

func cosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, magA, magB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		magA += float64(a[i]) * float64(a[i])
		magB += float64(b[i]) * float64(b[i])
	}
	if magA == 0 || magB == 0 {
		return 0
	}
	return dot / (math.Sqrt(magA) * math.Sqrt(magB))
}
