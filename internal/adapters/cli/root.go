// Package cli implements the knowledgectl operator commands: bulk document
// loading, ad hoc retrieval queries, quota inspection and the MCP server for
// the voice agent.
package cli

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/paradise-voice/travel-knowledge/internal/bootstrap"
	"github.com/paradise-voice/travel-knowledge/internal/config"
	"github.com/paradise-voice/travel-knowledge/internal/observability/logging"
)

var app *bootstrap.App

var rootCmd = &cobra.Command{
	Use:           "knowledgectl",
	Short:         "Manage the travel knowledge index",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		cfg := config.Load()
		// Stdout carries MCP traffic and command output; logs go to stderr.
		slog.SetDefault(logging.NewStderrJSONLogger("knowledgectl", cfg.LogLevel))

		var err error
		app, err = bootstrap.New(cmd.Context(), cfg)
		if err != nil {
			return fmt.Errorf("initialize engine: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(*cobra.Command, []string) {
		if app != nil {
			app.Close()
		}
	},
}

func Execute() error {
	return rootCmd.Execute()
}
