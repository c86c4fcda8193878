package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/soudousya-lab/weekday-planner/internal/app"
	"github.com/soudousya-lab/weekday-planner/internal/config"
	"github.com/soudousya-lab/weekday-planner/internal/logger"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the planner HTTP service with the reminder sweep",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}

	log, err := logger.New(cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("logger init: %w", err)
	}
	// Ensure logger flush; ignore sync error (common on some platforms).
	defer func() { _ = log.Sync() }()

	return app.New(cfg, log).Run(context.Background())
}
