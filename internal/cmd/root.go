// Package cmd implements the preflight command line interface.
package cmd

import (
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/quillworks/preflight/internal/config"
)

var rootCmd = &cobra.Command{
	Use:   "preflight",
	Short: "Quality-check hook runner",
	Long: `Preflight runs a project's quality-check hooks (formatters, linters,
test suites) as fast or comprehensive strategies, scheduling them in
dependency waves with result caching between runs.`,
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringP("config", "c", "", "config file (default is $HOME/.config/preflight/config.yaml)")
	rootCmd.PersistentFlags().StringP("dir", "d", ".", "project directory to run against")
	_ = viper.BindPFlag("config", rootCmd.PersistentFlags().Lookup("config"))
}

func initConfig() {
	// Defaults first so they apply even without a config file.
	config.SetDefaults()

	if cfgFile := viper.GetString("config"); cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(config.ConfigDir())
		viper.AddConfigPath("$HOME/.config/preflight")
		viper.AddConfigPath(".")
	}

	viper.AutomaticEnv()
	viper.SetEnvPrefix("PREFLIGHT")
	// Nested keys map to underscored env vars, e.g.
	// PREFLIGHT_ORCHESTRATION_MODE for orchestration.mode.
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Read config file if it exists (ignore error if not found)
	_ = viper.ReadInConfig()
}

// projectDir resolves the --dir flag for a command.
func projectDir(cmd *cobra.Command) string {
	dir, err := cmd.Flags().GetString("dir")
	if err != nil || dir == "" {
		return "."
	}
	return dir
}
