package cmd

import (
	"github.com/spf13/cobra"

	"github.com/crte-ams/ticket-service/internal/application"
)

var apiCmd = &cobra.Command{
	Use:   "api",
	Short: "Run the HTTP API (default)",
	RunE:  runAPI,
}

func runAPI(cmd *cobra.Command, args []string) error {
	cfg, log, err := bootstrap()
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	app, err := application.NewAPI(cmd.Context(), cfg, log)
	if err != nil {
		return err
	}
	return app.Run(cmd.Context())
}
