package cmd

import (
	"encoding/json"
	"errors"

	"github.com/spf13/cobra"

	"github.com/crte-ams/ticket-service/internal/application"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Print technician statistics as JSON",
	Long: "Without flags prints the summary of every technician that ever took a ticket.\n" +
		"With --technician prints that technician only; add --monthly for the six-month breakdown.",
	RunE: runStats,
}

var (
	statsTechnician string
	statsMonthly    bool
)

func init() {
	statsCmd.Flags().StringVar(&statsTechnician, "technician", "", "technician display name")
	statsCmd.Flags().BoolVar(&statsMonthly, "monthly", false, "monthly breakdown (requires --technician)")
}

func runStats(cmd *cobra.Command, args []string) error {
	if statsMonthly && statsTechnician == "" {
		return errors.New("stats: --monthly requires --technician")
	}
	cfg, log, err := bootstrap()
	if err != nil {
		return err
	}
	svc, err := application.NewServices(cfg, log)
	if err != nil {
		return err
	}
	defer func() { _ = svc.Close() }()

	ctx := cmd.Context()
	var out interface{}
	switch {
	case statsTechnician != "" && statsMonthly:
		out, err = svc.Stats.MonthlyStatsForTechnician(ctx, statsTechnician)
	case statsTechnician != "":
		out, err = svc.Stats.TechnicianStats(ctx, statsTechnician)
	default:
		out, err = svc.Stats.AllTechniciansStats(ctx)
	}
	if err != nil {
		return err
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
