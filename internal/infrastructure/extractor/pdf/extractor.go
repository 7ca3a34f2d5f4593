package pdf

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/paradise-voice/travel-knowledge/internal/core/domain"
)

// Extractor pulls plain text out of PDF uploads. Each page becomes its own
// paragraph so downstream chunking sees page boundaries as line breaks.
type Extractor struct{}

func NewExtractor() *Extractor {
	return &Extractor{}
}

func (e *Extractor) Extract(_ context.Context, doc *domain.Document) (string, error) {
	reader, err := pdf.NewReader(bytes.NewReader(doc.Content), int64(len(doc.Content)))
	if err != nil {
		return "", domain.WrapError(domain.ErrExtractionFailed, "open pdf",
			fmt.Errorf("%s: %w", doc.Filename, err))
	}

	var pages []string
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			return "", domain.WrapError(domain.ErrExtractionFailed, "extract pdf page",
				fmt.Errorf("%s page %d: %w", doc.Filename, i, err))
		}
		if strings.TrimSpace(text) == "" {
			continue
		}
		pages = append(pages, strings.TrimSpace(text))
	}
	return strings.Join(pages, "\n\n"), nil
}
