package domain

type DocumentType string

const (
	TypeTravelGuide     DocumentType = "travel_guide"
	TypeRestaurantGuide DocumentType = "restaurant_guide"
	TypeHotelGuide      DocumentType = "hotel_guide"
	TypeGeneral         DocumentType = "general"
)

// Document is the in-memory form of an uploaded file. It is consumed
// synchronously by the ingestion pipeline and never persisted.
type Document struct {
	Filename string `json:"filename"`
	MimeType string `json:"mime_type"`
	Content  []byte `json:"-"`
}

// Classification is the deterministic ingest-time verdict for a document.
// Destinations preserves first-encounter order and is never empty; documents
// without a recognized destination carry ["general"]. Primary is the most
// specific destination (first known city, else the first entry).
type Classification struct {
	Type         DocumentType `json:"document_type"`
	Destinations []string     `json:"destinations"`
	Primary      string       `json:"primary_destination"`
	Title        string       `json:"title"`
}

// IngestReport summarizes one ingestion call. On a failed ingestion the
// report still carries how many chunks were attempted versus committed
// before the failure.
type IngestReport struct {
	Filename        string       `json:"filename"`
	Title           string       `json:"title"`
	Type            DocumentType `json:"document_type"`
	Destinations    []string     `json:"destinations"`
	Namespace       string       `json:"namespace"`
	ChunksAttempted int          `json:"chunks_attempted"`
	ChunksWritten   int          `json:"chunks_written"`
}
