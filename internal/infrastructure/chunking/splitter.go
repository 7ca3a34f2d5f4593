package chunking

import (
	"strings"

	"github.com/paradise-voice/travel-knowledge/internal/core/domain"
	"github.com/paradise-voice/travel-knowledge/internal/infrastructure/classify"
)

// Window is a chunking window in runes.
type Window struct {
	Size    int
	Overlap int
}

// Splitter cuts extracted text into overlapping windows sized by document
// type. Text is first segmented at section headings; windows never span a
// section boundary and the overlap repeats the tail of the previous window
// within the same section only. Chunk text is emitted verbatim, so joining
// a document's chunks with overlaps removed reconstructs the input.
type Splitter struct {
	byType   map[domain.DocumentType]Window
	fallback Window
}

func NewSplitter(byType map[domain.DocumentType]Window, fallback Window) *Splitter {
	normalized := make(map[domain.DocumentType]Window, len(byType))
	for t, w := range byType {
		normalized[t] = normalize(w)
	}
	return &Splitter{byType: normalized, fallback: normalize(fallback)}
}

func normalize(w Window) Window {
	if w.Size <= 0 {
		w.Size = 800
	}
	if w.Overlap < 0 {
		w.Overlap = 0
	}
	if w.Overlap >= w.Size {
		w.Overlap = w.Size / 4
	}
	return w
}

func (s *Splitter) windowFor(t domain.DocumentType) Window {
	if w, ok := s.byType[t]; ok {
		return w
	}
	return s.fallback
}

// Chunk splits text into tagged chunk records. Indexes are contiguous from
// zero in emission order across the whole document. Whitespace-only input
// yields no chunks.
func (s *Splitter) Chunk(cls domain.Classification, sourceFile, text string) []domain.Chunk {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	win := s.windowFor(cls.Type)

	var out []domain.Chunk
	index := 0
	for _, seg := range segment(text) {
		runes := []rune(seg.text)
		step := win.Size - win.Overlap
		if step <= 0 {
			step = win.Size
		}
		for start := 0; start < len(runes); start += step {
			end := start + win.Size
			if end > len(runes) {
				end = len(runes)
			}
			out = append(out, domain.Chunk{
				Text:          string(runes[start:end]),
				Destination:   cls.Primary,
				Section:       seg.section,
				DocumentTitle: cls.Title,
				SourceFile:    sourceFile,
				Index:         index,
			})
			index++
			if end == len(runes) {
				break
			}
		}
	}
	return out
}

type textSegment struct {
	section domain.Section
	text    string
}

// segment walks the text line by line and opens a new segment at every
// heading that names a section. The heading line stays inside its segment
// and a whitespace-only preamble folds into the first section, so the
// segments concatenate back to the input exactly.
func segment(text string) []textSegment {
	var segs []textSegment
	cur := textSegment{section: domain.SectionGeneral}

	for _, line := range strings.SplitAfter(text, "\n") {
		if line == "" {
			continue
		}
		sec, ok := classify.HeadingSection(line)
		if !ok {
			cur.text += line
			continue
		}
		if len(segs) == 0 && strings.TrimSpace(cur.text) == "" {
			cur.section = sec
			cur.text += line
			continue
		}
		if cur.text != "" {
			segs = append(segs, cur)
		}
		cur = textSegment{section: sec, text: line}
	}
	if cur.text != "" {
		segs = append(segs, cur)
	}
	return segs
}
