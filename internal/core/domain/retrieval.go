package domain

// NamespacePath is an ordered namespace cascade, most specific first,
// always terminating in "general".
type NamespacePath []string

// RetrievalQuery is one retrieval request. Destination and Section are
// optional; TopK <= 0 means the configured default.
type RetrievalQuery struct {
	Query       string  `json:"query"`
	Destination string  `json:"destination,omitempty"`
	Section     Section `json:"section,omitempty"`
	TopK        int     `json:"top_k,omitempty"`
}

// RetrievedChunk is a scored search hit annotated with the namespace that
// produced it. Results keep cascade order; Score only ranks hits within one
// namespace query.
type RetrievedChunk struct {
	Chunk
	Score     float64 `json:"score"`
	Namespace string  `json:"namespace"`
}

// VectorPoint pairs an embedded chunk with its deterministic point ID.
type VectorPoint struct {
	ID     string
	Vector []float32
	Chunk  Chunk
}

// FilterCondition matches a metadata field either by equality or by set
// membership. Exactly one of Equals/OneOf is populated.
type FilterCondition struct {
	Field  string
	Equals string
	OneOf  []string
}

// MetadataFilter is a conjunction of conditions. Backend adapters translate
// it into their native filter syntax.
type MetadataFilter struct {
	Conditions []FilterCondition
}

func (f MetadataFilter) Empty() bool {
	return len(f.Conditions) == 0
}

// SectionFilter builds the filter used for section-constrained retrieval.
func SectionFilter(section Section) MetadataFilter {
	if section == "" {
		return MetadataFilter{}
	}
	return MetadataFilter{Conditions: []FilterCondition{{Field: "section", Equals: string(section)}}}
}
