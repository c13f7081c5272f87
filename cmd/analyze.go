package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jonesrussell/projectintel/internal/bootstrap"
	"github.com/jonesrussell/projectintel/internal/config"
	"github.com/jonesrussell/projectintel/internal/logger"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze <project>",
	Short: "Analyze one project and print the report as JSON",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(configPath())
		if err != nil {
			return fmt.Errorf("config: %w", err)
		}

		log, err := logger.NewLogger(cfg.Debug)
		if err != nil {
			return fmt.Errorf("logger: %w", err)
		}
		defer func() { _ = log.Sync() }()

		service, cleanup := bootstrap.NewAnalysisService(cfg, log)
		defer cleanup()

		report, err := service.Analyze(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	},
}
