package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/pmguard/pmguard/internal/journal"
)

var historyLimit int

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "Number of entries to show")
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recent gate decisions",
	Long: "Lists recent invocations with their scan outcome: skipped, clean,\n" +
		"bypassed (alerts shown under view-all-risks) or blocked.",
	RunE: runHistory,
}

func runHistory(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	jnl, err := journal.Open(ctx, "")
	if err != nil {
		return fmt.Errorf("open journal: %w", err)
	}
	defer func() { _ = jnl.Close() }()

	entries, err := jnl.Recent(ctx, historyLimit)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		fmt.Println("no recorded invocations")
		return nil
	}

	for _, e := range entries {
		verb := e.Command
		if verb == "" {
			verb = "(dlx)"
		}
		fmt.Printf("%s  %-8s %-10s %-9s purls=%-3d alerts=%d\n",
			e.Timestamp.Local().Format(time.DateTime), e.Manager, verb, e.Reason, e.Purls, e.Alerts)
	}
	return nil
}
