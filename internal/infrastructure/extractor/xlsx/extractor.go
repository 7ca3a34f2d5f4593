package xlsx

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/paradise-voice/travel-knowledge/internal/core/domain"
)

// Extractor flattens spreadsheet uploads into text: every sheet name becomes
// a heading line, every row a tab-joined line under it. Itinerary and budget
// sheets survive the section detector this way.
type Extractor struct{}

func NewExtractor() *Extractor {
	return &Extractor{}
}

func (e *Extractor) Extract(_ context.Context, doc *domain.Document) (string, error) {
	f, err := excelize.OpenReader(bytes.NewReader(doc.Content))
	if err != nil {
		return "", domain.WrapError(domain.ErrExtractionFailed, "open xlsx",
			fmt.Errorf("%s: %w", doc.Filename, err))
	}
	defer f.Close()

	var b strings.Builder
	for _, sheet := range f.GetSheetList() {
		rows, err := f.GetRows(sheet)
		if err != nil {
			return "", domain.WrapError(domain.ErrExtractionFailed, "read xlsx sheet",
				fmt.Errorf("%s sheet %s: %w", doc.Filename, sheet, err))
		}
		if b.Len() > 0 {
			b.WriteString("\n")
		}
		b.WriteString(sheet)
		b.WriteString("\n")
		for _, row := range rows {
			line := strings.TrimSpace(strings.Join(row, "\t"))
			if line == "" {
				continue
			}
			b.WriteString(line)
			b.WriteString("\n")
		}
	}
	return b.String(), nil
}
