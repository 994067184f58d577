package cmd

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/crte-ams/ticket-service/internal/application"
)

// adminCmd bootstraps the first technicians; after that admins promote each other over HTTP.
var adminCmd = &cobra.Command{
	Use:   "admin",
	Short: "Grant or revoke the admin flag on a profile",
}

var adminGrantCmd = &cobra.Command{
	Use:   "grant <profile-id>",
	Short: "Make a profile admin (technician)",
	Args:  cobra.ExactArgs(1),
	RunE:  func(cmd *cobra.Command, args []string) error { return setAdmin(cmd, args[0], true) },
}

var adminRevokeCmd = &cobra.Command{
	Use:   "revoke <profile-id>",
	Short: "Remove the admin flag from a profile",
	Args:  cobra.ExactArgs(1),
	RunE:  func(cmd *cobra.Command, args []string) error { return setAdmin(cmd, args[0], false) },
}

func init() {
	adminCmd.AddCommand(adminGrantCmd, adminRevokeCmd)
}

func setAdmin(cmd *cobra.Command, id string, isAdmin bool) error {
	cfg, log, err := bootstrap()
	if err != nil {
		return err
	}
	svc, err := application.NewServices(cfg, log)
	if err != nil {
		return err
	}
	defer func() { _ = svc.Close() }()

	if err := svc.Profiles.OperatorSetAdmin(cmd.Context(), id, isAdmin); err != nil {
		return err
	}
	log.Info("admin flag set", zap.String("profile_id", id), zap.Bool("is_admin", isAdmin))
	return nil
}
