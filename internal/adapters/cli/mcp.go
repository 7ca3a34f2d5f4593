package cli

import (
	"github.com/spf13/cobra"

	"github.com/paradise-voice/travel-knowledge/internal/adapters/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Model Context Protocol integration",
}

var mcpServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the retrieval tools over MCP stdio",
	Args:  cobra.NoArgs,
	RunE: func(*cobra.Command, []string) error {
		server := mcp.NewServer(app.Retriever, app.Quota, app.Classifier, app.Config.RetrievalTopK)
		return server.ServeStdio()
	},
}

func init() {
	mcpCmd.AddCommand(mcpServeCmd)
	rootCmd.AddCommand(mcpCmd)
}
