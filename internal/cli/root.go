package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/hunny0025/armoriq-supervisor/internal/version"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "armoriq",
	Short: "ArmorIQ - governed execution for autonomous agents",
	Long: `ArmorIQ supervises file operations requested by autonomous agents.

Every action is risk-assessed, checked against the requesting agent's
capability set and arbitrated before anything touches the filesystem.
Allowed actions run inside a sandbox directory; every decision is recorded
in an append-only ledger.

Example:
  armoriq init
  armoriq run clean and organize workspace`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.Version = version.Short()
	rootCmd.SetVersionTemplate("{{.Name}} {{.Version}}\n")

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is .armoriq.yaml)")
	rootCmd.PersistentFlags().Bool("verbose", false, "enable debug logging")
	_ = viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		cwd, err := os.Getwd()
		if err != nil {
			fmt.Fprintln(os.Stderr, "Error getting working directory:", err)
			os.Exit(1)
		}

		viper.AddConfigPath(cwd)
		viper.SetConfigType("yaml")
		viper.SetConfigName(".armoriq")
	}

	viper.SetEnvPrefix("ARMORIQ")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		if viper.GetBool("verbose") {
			fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
		}
	}
}
