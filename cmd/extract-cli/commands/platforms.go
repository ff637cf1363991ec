package commands

import (
	"time"

	"socialpulse-backend/lib/metrics"
	"socialpulse-backend/services/extractor"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(platformsCmd)
}

var platformsCmd = &cobra.Command{
	Use:   "platforms",
	Short: "Lists supported platforms and their rate limit settings.",
	Run: func(cmd *cobra.Command, args []string) {
		t := newTable()
		t.AppendHeader(table.Row{"Platform", "Requests/min", "Base delay", "Batch size", "Max retries"})
		for _, platform := range metrics.Platforms {
			limits := extractor.LimitsFor(platform)
			t.AppendRow(table.Row{
				platform,
				limits.RequestsPerMinute,
				limits.BaseDelay.Round(time.Millisecond).String(),
				limits.BatchSize,
				limits.MaxRetries,
			})
		}
		t.Render()
	},
}
