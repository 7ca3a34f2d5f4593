package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/paradise-voice/travel-knowledge/internal/core/domain"
)

var loadCmd = &cobra.Command{
	Use:   "load <file>...",
	Short: "Ingest documents into the knowledge index",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runLoad,
}

func init() {
	rootCmd.AddCommand(loadCmd)
}

func runLoad(cmd *cobra.Command, args []string) error {
	var failed int
	for _, path := range args {
		report, err := loadFile(cmd, path)
		if err != nil {
			failed++
			cmd.PrintErrf("%s: %v\n", path, err)
			// A full index denies every following file too; stop early.
			if domain.IsKind(err, domain.ErrQuotaExceeded) {
				cmd.PrintErrln("storage quota exhausted, aborting remaining files")
				break
			}
			continue
		}
		cmd.Printf("%s: %s [%s] -> %s (%d chunks)\n",
			filepath.Base(path),
			report.Title,
			report.Type,
			report.Namespace,
			report.ChunksWritten,
		)
		if len(report.Destinations) > 0 {
			cmd.Printf("  destinations: %s\n", strings.Join(report.Destinations, ", "))
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d file(s) failed", failed)
	}
	return nil
}

func loadFile(cmd *cobra.Command, path string) (*domain.IngestReport, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return app.Ingestor.Upload(cmd.Context(), filepath.Base(path), "", f)
}
