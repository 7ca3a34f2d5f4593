package pinecone

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/paradise-voice/travel-knowledge/internal/core/domain"
)

// perVectorOverheadBytes mirrors Pinecone's own storage estimation: vector
// payload plus roughly 1 KB of metadata and index overhead per point.
const perVectorOverheadBytes = 1024

// Client is a Pinecone REST backend speaking to a serverless index host.
// Namespaces are passed through as-is; Pinecone creates them lazily on the
// first upsert.
type Client struct {
	host       string
	apiKey     string
	dimension  int
	httpClient *http.Client
}

func New(host, apiKey string, dimension int) *Client {
	if !strings.Contains(host, "://") {
		host = "https://" + host
	}
	return &Client{
		host:       strings.TrimRight(host, "/"),
		apiKey:     apiKey,
		dimension:  dimension,
		httpClient: &http.Client{Timeout: 60 * time.Second},
	}
}

type upsertVector struct {
	ID       string         `json:"id"`
	Values   []float32      `json:"values"`
	Metadata map[string]any `json:"metadata"`
}

func (c *Client) Upsert(ctx context.Context, namespace string, points []domain.VectorPoint) error {
	if len(points) == 0 {
		return nil
	}

	vectors := make([]upsertVector, 0, len(points))
	for _, p := range points {
		vectors = append(vectors, upsertVector{
			ID:     p.ID,
			Values: p.Vector,
			Metadata: map[string]any{
				"text":           p.Chunk.Text,
				"destination":    p.Chunk.Destination,
				"section":        string(p.Chunk.Section),
				"document_title": p.Chunk.DocumentTitle,
				"source_file":    p.Chunk.SourceFile,
				"chunk_index":    p.Chunk.Index,
			},
		})
	}

	reqBody := map[string]any{
		"vectors":   vectors,
		"namespace": namespace,
	}
	var response struct {
		UpsertedCount int `json:"upsertedCount"`
	}
	if err := c.postJSON(ctx, "/vectors/upsert", "upsert", reqBody, &response); err != nil {
		return err
	}
	return nil
}

func (c *Client) Query(
	ctx context.Context,
	namespace string,
	vector []float32,
	topK int,
	filter domain.MetadataFilter,
) ([]domain.RetrievedChunk, error) {
	reqBody := map[string]any{
		"vector":          vector,
		"topK":            topK,
		"namespace":       namespace,
		"includeMetadata": true,
	}
	if translated := translateFilter(filter); translated != nil {
		reqBody["filter"] = translated
	}

	var response struct {
		Matches []struct {
			ID       string         `json:"id"`
			Score    float64        `json:"score"`
			Metadata map[string]any `json:"metadata"`
		} `json:"matches"`
	}
	if err := c.postJSON(ctx, "/query", "query", reqBody, &response); err != nil {
		return nil, err
	}

	out := make([]domain.RetrievedChunk, 0, len(response.Matches))
	for _, m := range response.Matches {
		out = append(out, domain.RetrievedChunk{
			Chunk: domain.Chunk{
				Text:          getString(m.Metadata, "text"),
				Destination:   getString(m.Metadata, "destination"),
				Section:       domain.Section(getString(m.Metadata, "section")),
				DocumentTitle: getString(m.Metadata, "document_title"),
				SourceFile:    getString(m.Metadata, "source_file"),
				Index:         getInt(m.Metadata, "chunk_index"),
			},
			Score:     m.Score,
			Namespace: namespace,
		})
	}
	return out, nil
}

// Usage estimates stored bytes from the index stats, the way the product's
// own sizing guidance does: Pinecone reports vector counts, not bytes.
func (c *Client) Usage(ctx context.Context) (domain.StorageUsage, error) {
	var response struct {
		TotalVectorCount int64 `json:"totalVectorCount"`
		Dimension        int   `json:"dimension"`
	}
	if err := c.postJSON(ctx, "/describe_index_stats", "describe index stats", map[string]any{}, &response); err != nil {
		return domain.StorageUsage{}, err
	}

	dimension := response.Dimension
	if dimension <= 0 {
		dimension = c.dimension
	}
	return domain.StorageUsage{
		Vectors: response.TotalVectorCount,
		Bytes:   response.TotalVectorCount * int64(dimension*4+perVectorOverheadBytes),
	}, nil
}

// translateFilter renders the typed filter in Pinecone's mongo-style syntax.
func translateFilter(filter domain.MetadataFilter) map[string]any {
	if filter.Empty() {
		return nil
	}
	out := make(map[string]any, len(filter.Conditions))
	for _, cond := range filter.Conditions {
		if len(cond.OneOf) > 0 {
			out[cond.Field] = map[string]any{"$in": cond.OneOf}
			continue
		}
		out[cond.Field] = map[string]any{"$eq": cond.Equals}
	}
	return out
}

func (c *Client) postJSON(ctx context.Context, path, operation string, payload, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return domain.WrapError(domain.ErrVectorStore, "marshal "+operation+" request", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.host+path, bytes.NewReader(body))
	if err != nil {
		return domain.WrapError(domain.ErrVectorStore, "create "+operation+" request", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Api-Key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return domain.WrapError(domain.ErrTimeout, "pinecone "+operation, err)
		}
		if errors.Is(err, context.Canceled) {
			return err
		}
		return domain.WrapError(domain.ErrVectorStore, "pinecone "+operation+" request", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return domain.WrapError(domain.ErrVectorStore, "pinecone "+operation,
			fmt.Errorf("status %s: %s", resp.Status, strings.TrimSpace(string(msg))))
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return domain.WrapError(domain.ErrVectorStore, "decode "+operation+" response", err)
	}
	return nil
}

func getString(metadata map[string]any, key string) string {
	v, ok := metadata[key]
	if !ok {
		return ""
	}
	s, ok := v.(string)
	if ok {
		return s
	}
	return fmt.Sprintf("%v", v)
}

func getInt(metadata map[string]any, key string) int {
	switch v := metadata[key].(type) {
	case float64:
		return int(v)
	case int:
		return v
	case json.Number:
		n, _ := v.Int64()
		return int(n)
	default:
		return 0
	}
}
