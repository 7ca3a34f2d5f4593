// Package mcp exposes the retrieval engine to the voice agent as Model
// Context Protocol tools over stdio. All failures degrade to a friendly
// "nothing found" message here: the conversational layer should never relay
// raw backend errors to a user mid-conversation.
package mcp

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/paradise-voice/travel-knowledge/internal/core/domain"
	"github.com/paradise-voice/travel-knowledge/internal/core/ports"
	"github.com/paradise-voice/travel-knowledge/internal/infrastructure/classify"
)

const noResultsMessage = "No relevant travel information found in the archives."

// DestinationExtractor infers destinations from free-form query text when
// the agent supplies no explicit hint.
type DestinationExtractor interface {
	ExtractDestinations(text string) []string
}

type Server struct {
	retriever    ports.TravelRetriever
	quota        ports.QuotaReporter
	destinations DestinationExtractor
	defaultTopK  int
}

func NewServer(
	retriever ports.TravelRetriever,
	quota ports.QuotaReporter,
	destinations DestinationExtractor,
	defaultTopK int,
) *Server {
	if defaultTopK <= 0 {
		defaultTopK = 5
	}
	return &Server{
		retriever:    retriever,
		quota:        quota,
		destinations: destinations,
		defaultTopK:  defaultTopK,
	}
}

// ServeStdio blocks serving MCP requests on stdin/stdout until EOF.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer())
}

func (s *Server) mcpServer() *server.MCPServer {
	srv := server.NewMCPServer("travel-knowledge", "1.0.0",
		server.WithToolCapabilities(false),
	)

	srv.AddTool(mcp.NewTool("search_travel_info",
		mcp.WithDescription("Search the uploaded travel documents for destination information: attractions, restaurants, hotels, transport, culture and tips."),
		mcp.WithString("query",
			mcp.Required(),
			mcp.Description("What to look for, e.g. 'best restaurants near the old town'."),
		),
		mcp.WithString("destination",
			mcp.Description("City or country to focus on. Inferred from the query when omitted."),
		),
		mcp.WithString("section",
			mcp.Description("Optional section filter: attractions, restaurants, hotels, transport, culture, tips or general."),
		),
		mcp.WithNumber("top_k",
			mcp.Description("Maximum number of passages to return."),
		),
	), s.handleSearch)

	srv.AddTool(mcp.NewTool("storage_status",
		mcp.WithDescription("Report how much of the document storage quota is used."),
	), s.handleStorageStatus)

	return srv
}

func (s *Server) handleSearch(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := request.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	destination := strings.TrimSpace(request.GetString("destination", ""))
	if destination == "" {
		if found := s.destinations.ExtractDestinations(query); len(found) > 0 {
			destination = found[0]
		}
	}

	var section domain.Section
	if raw := strings.TrimSpace(request.GetString("section", "")); raw != "" {
		if parsed, ok := domain.ParseSection(raw); ok {
			section = parsed
		}
	} else if inferred, ok := classify.QuerySection(query); ok {
		section = inferred
	}

	results, err := s.retriever.Retrieve(ctx, domain.RetrievalQuery{
		Query:       query,
		Destination: destination,
		Section:     section,
		TopK:        request.GetInt("top_k", s.defaultTopK),
	})
	if err != nil {
		slog.Error("mcp_search_failed", "destination", destination, "error", err)
		return mcp.NewToolResultText(noResultsMessage), nil
	}
	if len(results) == 0 {
		return mcp.NewToolResultText(noResultsMessage), nil
	}
	return mcp.NewToolResultText(FormatResults(results)), nil
}

func (s *Server) handleStorageStatus(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	status, err := s.quota.Status(ctx)
	if err != nil {
		slog.Error("mcp_storage_status_failed", "error", err)
		return mcp.NewToolResultText("Storage status is unavailable right now."), nil
	}
	return mcp.NewToolResultText(FormatQuota(status)), nil
}

// FormatResults renders retrieved chunks as source-attributed text blocks
// for prompt assembly.
func FormatResults(results []domain.RetrievedChunk) string {
	blocks := make([]string, 0, len(results))
	for _, r := range results {
		header := fmt.Sprintf("Source: %s (%s) [%s]", r.DocumentTitle, r.Destination, r.Section)
		blocks = append(blocks, header+"\nContent: "+strings.TrimSpace(r.Text))
	}
	return strings.Join(blocks, "\n\n---\n\n")
}

func FormatQuota(status domain.QuotaStatus) string {
	return fmt.Sprintf(
		"Storage: %.1f%% used (%.2f MB of %.2f MB, %d vectors stored).",
		status.PercentUsed,
		float64(status.BytesUsed)/(1024*1024),
		float64(status.QuotaLimitBytes)/(1024*1024),
		status.Vectors,
	)
}
