// Package cmd implements the projectintel command-line interface: a serve
// command for the HTTP API and an analyze command for one-shot runs.
package cmd

import (
	"context"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/jonesrussell/projectintel/internal/config"
)

const defaultConfigPath = "config.yml"

var (
	cfgFile string

	rootCmd = &cobra.Command{
		Use:   "projectintel",
		Short: "Multi-source project intelligence",
		Long: `projectintel discovers a project's footprint across repositories,
social profiles, funding databases, and websites, then aggregates
activity stats and scores into one report.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}
)

// Execute runs the root command.
func Execute() error {
	// Load env files early so every command sees them.
	_ = godotenv.Load()

	return rootCmd.ExecuteContext(context.Background())
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file path")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(versionCmd)
}

func configPath() string {
	if cfgFile != "" {
		return cfgFile
	}
	return config.GetConfigPath(defaultConfigPath)
}
