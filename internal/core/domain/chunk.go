package domain

import (
	"fmt"

	"github.com/google/uuid"
)

type Section string

const (
	SectionAttractions Section = "attractions"
	SectionRestaurants Section = "restaurants"
	SectionHotels      Section = "hotels"
	SectionTransport   Section = "transport"
	SectionCulture     Section = "culture"
	SectionTips        Section = "tips"
	SectionGeneral     Section = "general"
)

// ParseSection validates a caller-supplied section name.
func ParseSection(s string) (Section, bool) {
	switch Section(s) {
	case SectionAttractions, SectionRestaurants, SectionHotels,
		SectionTransport, SectionCulture, SectionTips, SectionGeneral:
		return Section(s), true
	}
	return "", false
}

// Chunk is one indexable window of document text. Index is contiguous from 0
// in emission order across the whole document; (SourceFile, Index) identifies
// a chunk and is the deduplication key at retrieval time.
type Chunk struct {
	Text          string  `json:"text"`
	Destination   string  `json:"destination"`
	Section       Section `json:"section"`
	DocumentTitle string  `json:"document_title"`
	SourceFile    string  `json:"source_file"`
	Index         int     `json:"chunk_index"`
}

// PointID derives the vector store point ID for this chunk. IDs are UUIDv5
// over (SourceFile, Index), so re-ingesting the same file overwrites its
// points instead of duplicating them.
func (c Chunk) PointID() string {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(fmt.Sprintf("%s#%d", c.SourceFile, c.Index))).String()
}
