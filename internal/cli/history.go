package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hunny0025/armoriq-supervisor/internal/ledger"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recorded decisions, newest first",
	Args:  cobra.NoArgs,
	RunE:  showHistory,
}

func init() {
	rootCmd.AddCommand(historyCmd)

	historyCmd.Flags().IntP("limit", "n", 20, "Maximum number of entries (0 for all)")
}

func showHistory(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	limit, _ := cmd.Flags().GetInt("limit")
	if limit < 0 {
		return fmt.Errorf("invalid --limit %d", limit)
	}

	records, err := ledger.ReadNewestFirst(cfg.Resolve(cfg.Ledger.Path), limit)
	if err != nil {
		return fmt.Errorf("failed to read ledger: %w", err)
	}
	renderHistory(cmd.OutOrStdout(), records)
	return nil
}
