package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hunny0025/armoriq-supervisor/internal/version"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Long:  `Print detailed version information including commit hash and build date.`,
	Run: func(cmd *cobra.Command, args []string) {
		out := version.Info()
		if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
			out = version.Full()
		}
		fmt.Fprintln(cmd.OutOrStdout(), out)
	},
}

func init() {
	versionCmd.Flags().BoolP("verbose", "v", false, "print verbose version information")
	rootCmd.AddCommand(versionCmd)
}
