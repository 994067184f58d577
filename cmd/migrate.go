package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/crte-ams/ticket-service/internal/database"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run database migrations",
}

var migrateUpCmd = &cobra.Command{
	Use:   "up",
	Short: "Create the database if missing and apply all pending migrations",
	RunE:  runMigrateUp,
}

var migrateDownCmd = &cobra.Command{
	Use:   "down",
	Short: "Roll back the most recent migration",
	RunE:  runMigrateDown,
}

var migrateStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Print applied and pending migrations",
	RunE:  runMigrateStatus,
}

func init() {
	migrateCmd.AddCommand(migrateUpCmd, migrateDownCmd, migrateStatusCmd)
}

func runMigrateUp(cmd *cobra.Command, args []string) error {
	cfg, log, err := bootstrap()
	if err != nil {
		return err
	}
	if err := database.MigrateUp(cmd.Context(), cfg.DatabaseURL(), log); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}

func runMigrateDown(cmd *cobra.Command, args []string) error {
	cfg, log, err := bootstrap()
	if err != nil {
		return err
	}
	if err := database.MigrateDown(cmd.Context(), cfg.DatabaseURL()); err != nil {
		return fmt.Errorf("migrate down: %w", err)
	}
	log.Info("migrate down: ok")
	return nil
}

func runMigrateStatus(cmd *cobra.Command, args []string) error {
	cfg, _, err := bootstrap()
	if err != nil {
		return err
	}
	if err := database.MigrateStatus(cmd.Context(), cfg.DatabaseURL()); err != nil {
		return fmt.Errorf("migrate status: %w", err)
	}
	return nil
}
