package extractor

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/paradise-voice/travel-knowledge/internal/core/domain"
	"github.com/paradise-voice/travel-knowledge/internal/core/ports"
	"github.com/paradise-voice/travel-knowledge/internal/infrastructure/extractor/htmldoc"
	"github.com/paradise-voice/travel-knowledge/internal/infrastructure/extractor/pdf"
	"github.com/paradise-voice/travel-knowledge/internal/infrastructure/extractor/plaintext"
	"github.com/paradise-voice/travel-knowledge/internal/infrastructure/extractor/xlsx"
)

// Registry routes a document to a format extractor by filename extension.
// Unknown extensions fall back to plain text, which rejects binary content,
// so a mislabeled binary upload still surfaces as ExtractionFailed.
type Registry struct {
	byExt    map[string]ports.TextExtractor
	fallback ports.TextExtractor
}

func NewRegistry() *Registry {
	plain := plaintext.NewExtractor()
	return &Registry{
		byExt: map[string]ports.TextExtractor{
			".txt":  plain,
			".md":   plain,
			".pdf":  pdf.NewExtractor(),
			".xlsx": xlsx.NewExtractor(),
			".html": htmldoc.NewExtractor(),
			".htm":  htmldoc.NewExtractor(),
		},
		fallback: plain,
	}
}

func (r *Registry) Extract(ctx context.Context, doc *domain.Document) (string, error) {
	ext := strings.ToLower(filepath.Ext(doc.Filename))
	if e, ok := r.byExt[ext]; ok {
		return e.Extract(ctx, doc)
	}
	return r.fallback.Extract(ctx, doc)
}
