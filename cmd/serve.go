package cmd

import (
	"github.com/spf13/cobra"

	"github.com/jonesrussell/projectintel/internal/bootstrap"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API server",
	RunE: func(_ *cobra.Command, _ []string) error {
		return bootstrap.Start(configPath())
	},
}
