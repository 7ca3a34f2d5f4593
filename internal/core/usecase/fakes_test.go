package usecase

import (
	"context"
	"strings"

	"github.com/paradise-voice/travel-knowledge/internal/core/domain"
)

type extractorFake struct {
	text string
	err  error
}

func (f *extractorFake) Extract(context.Context, *domain.Document) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return f.text, nil
}

type classifierFake struct {
	cls domain.Classification
}

func (f *classifierFake) Classify(context.Context, string, string) (domain.Classification, error) {
	return f.cls, nil
}

type chunkerFake struct {
	chunks []domain.Chunk
}

func (f *chunkerFake) Chunk(cls domain.Classification, sourceFile, _ string) []domain.Chunk {
	out := make([]domain.Chunk, len(f.chunks))
	for i, c := range f.chunks {
		c.SourceFile = sourceFile
		c.Destination = cls.Primary
		c.Index = i
		out[i] = c
	}
	return out
}

// resolverFake mimics the gazetteer resolver for a single known city.
type resolverFake struct {
	city    string
	country string
}

func (f *resolverFake) Resolve(destination string) domain.NamespacePath {
	ns := strings.ToLower(strings.TrimSpace(destination))
	switch {
	case ns == "" || ns == "general":
		return domain.NamespacePath{"general"}
	case ns == f.city:
		return domain.NamespacePath{f.city, f.country, "general"}
	default:
		return domain.NamespacePath{ns, "general"}
	}
}

func (f *resolverFake) WriteNamespace(destination string) string {
	ns := strings.ToLower(strings.TrimSpace(destination))
	if ns == "" {
		return "general"
	}
	return ns
}

type embedderFake struct {
	dimension int
	err       error
	calls     int
}

func (f *embedderFake) Embed(_ context.Context, texts []string) ([][]float32, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = []float32{float32(i), 1}
	}
	return out, nil
}

func (f *embedderFake) EmbedQuery(_ context.Context, _ string) ([]float32, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return []float32{1, 0}, nil
}

func (f *embedderFake) Dimension() int {
	if f.dimension > 0 {
		return f.dimension
	}
	return 4
}

// backendFake records upserts and serves canned per-namespace results.
// filtered holds results returned when a section filter is present;
// unfiltered is used otherwise.
type backendFake struct {
	usage    domain.StorageUsage
	usageErr error

	upserts    []upsertCall
	upsertErr  error
	failAtCall int

	filtered   map[string][]domain.RetrievedChunk
	unfiltered map[string][]domain.RetrievedChunk
	queryErr   error
	queried    []string
}

type upsertCall struct {
	namespace string
	points    []domain.VectorPoint
}

func (f *backendFake) Upsert(_ context.Context, namespace string, points []domain.VectorPoint) error {
	if f.upsertErr != nil && len(f.upserts) >= f.failAtCall {
		return f.upsertErr
	}
	f.upserts = append(f.upserts, upsertCall{namespace: namespace, points: points})
	return nil
}

func (f *backendFake) Query(
	_ context.Context,
	namespace string,
	_ []float32,
	_ int,
	filter domain.MetadataFilter,
) ([]domain.RetrievedChunk, error) {
	f.queried = append(f.queried, namespace)
	if f.queryErr != nil {
		return nil, f.queryErr
	}
	if filter.Empty() {
		return f.unfiltered[namespace], nil
	}
	return f.filtered[namespace], nil
}

func (f *backendFake) Usage(context.Context) (domain.StorageUsage, error) {
	if f.usageErr != nil {
		return domain.StorageUsage{}, f.usageErr
	}
	return f.usage, nil
}

func hit(sourceFile string, index int, score float64) domain.RetrievedChunk {
	return domain.RetrievedChunk{
		Chunk: domain.Chunk{
			Text:       "text " + sourceFile,
			SourceFile: sourceFile,
			Index:      index,
			Section:    domain.SectionRestaurants,
		},
		Score: score,
	}
}
