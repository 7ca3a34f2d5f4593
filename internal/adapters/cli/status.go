package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show storage quota usage",
	Args:  cobra.NoArgs,
	RunE:  runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, _ []string) error {
	status, err := app.Quota.Status(cmd.Context())
	if err != nil {
		return fmt.Errorf("quota status: %w", err)
	}

	cmd.Printf("vectors stored:  %d\n", status.Vectors)
	cmd.Printf("bytes used:      %d (%.2f MB)\n", status.BytesUsed, float64(status.BytesUsed)/(1024*1024))
	cmd.Printf("quota limit:     %d (%.2f GB)\n", status.QuotaLimitBytes, float64(status.QuotaLimitBytes)/(1024*1024*1024))
	cmd.Printf("percent used:    %.1f%%\n", status.PercentUsed)
	return nil
}
