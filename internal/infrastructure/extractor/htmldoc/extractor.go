package htmldoc

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"golang.org/x/net/html"

	"github.com/paradise-voice/travel-knowledge/internal/core/domain"
)

// blockElements get their own line in the extracted text so headings stay
// detectable as section boundaries.
var blockElements = map[string]struct{}{
	"h1": {}, "h2": {}, "h3": {}, "h4": {}, "h5": {}, "h6": {},
	"p": {}, "div": {}, "li": {}, "tr": {}, "br": {},
	"section": {}, "article": {}, "header": {}, "footer": {},
}

// Extractor strips HTML uploads down to their visible text.
type Extractor struct{}

func NewExtractor() *Extractor {
	return &Extractor{}
}

func (e *Extractor) Extract(_ context.Context, doc *domain.Document) (string, error) {
	root, err := html.Parse(bytes.NewReader(doc.Content))
	if err != nil {
		return "", domain.WrapError(domain.ErrExtractionFailed, "parse html",
			fmt.Errorf("%s: %w", doc.Filename, err))
	}

	var b strings.Builder
	walk(root, &b)
	return collapseBlankLines(b.String()), nil
}

func walk(n *html.Node, b *strings.Builder) {
	if n.Type == html.ElementNode {
		switch n.Data {
		case "script", "style", "noscript":
			return
		}
	}
	if n.Type == html.TextNode {
		text := strings.TrimSpace(n.Data)
		if text != "" {
			if b.Len() > 0 && !strings.HasSuffix(b.String(), "\n") {
				b.WriteString(" ")
			}
			b.WriteString(text)
		}
	}
	for child := n.FirstChild; child != nil; child = child.NextSibling {
		walk(child, b)
	}
	if n.Type == html.ElementNode {
		if _, ok := blockElements[n.Data]; ok {
			b.WriteString("\n")
		}
	}
}

func collapseBlankLines(s string) string {
	lines := strings.Split(s, "\n")
	var out []string
	blank := false
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			if !blank && len(out) > 0 {
				out = append(out, "")
			}
			blank = true
			continue
		}
		blank = false
		out = append(out, trimmed)
	}
	return strings.TrimSpace(strings.Join(out, "\n"))
}
