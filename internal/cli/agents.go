package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hunny0025/armoriq-supervisor/internal/scope"
)

var agentsCmd = &cobra.Command{
	Use:   "agents",
	Short: "List registered agents and their capabilities",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		registry, err := scope.LoadRegistry(cfg.Resolve(cfg.Policies.Path))
		if err != nil {
			return fmt.Errorf("failed to load policies: %w", err)
		}
		renderAgents(cmd.OutOrStdout(), registry)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(agentsCmd)
}
