package plaintext

import (
	"context"
	"fmt"
	"unicode/utf8"

	"github.com/paradise-voice/travel-knowledge/internal/core/domain"
)

// Extractor handles .txt and .md uploads and acts as the fallback for
// unknown extensions. Content must be valid UTF-8.
type Extractor struct{}

func NewExtractor() *Extractor {
	return &Extractor{}
}

func (e *Extractor) Extract(_ context.Context, doc *domain.Document) (string, error) {
	if !utf8.Valid(doc.Content) {
		return "", domain.WrapError(domain.ErrExtractionFailed, "read plain text",
			fmt.Errorf("%s is not valid UTF-8 text", doc.Filename))
	}
	return string(doc.Content), nil
}
