package ports

import (
	"context"

	"github.com/paradise-voice/travel-knowledge/internal/core/domain"
)

// TextExtractor extracts plain text from an uploaded document, preserving
// page and section boundaries as line breaks.
type TextExtractor interface {
	Extract(ctx context.Context, doc *domain.Document) (string, error)
}

// DocumentClassifier derives type, destinations and title from filename and
// extracted text. It is deterministic and never fails on ambiguous input.
type DocumentClassifier interface {
	Classify(ctx context.Context, filename, text string) (domain.Classification, error)
}

// Chunker splits extracted text into tagged chunk records.
type Chunker interface {
	Chunk(cls domain.Classification, sourceFile, text string) []domain.Chunk
}

// NamespaceResolver maps destinations to the namespace hierarchy.
type NamespaceResolver interface {
	Resolve(destination string) domain.NamespacePath
	WriteNamespace(destination string) string
}

// Embedder builds vectors for chunk batches and query text.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
	Dimension() int
}

// VectorBackend is the contract every vector store must satisfy. Upsert
// overwrites points that share an ID. Query returns hits from a single
// namespace ranked by similarity. Usage reports overall consumption, as an
// estimate for backends without exact accounting.
type VectorBackend interface {
	Upsert(ctx context.Context, namespace string, points []domain.VectorPoint) error
	Query(ctx context.Context, namespace string, vector []float32, topK int, filter domain.MetadataFilter) ([]domain.RetrievedChunk, error)
	Usage(ctx context.Context) (domain.StorageUsage, error)
}
