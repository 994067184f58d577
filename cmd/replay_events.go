package cmd

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/crte-ams/ticket-service/internal/application"
	"github.com/crte-ams/ticket-service/internal/kafka"
	"github.com/crte-ams/ticket-service/internal/model"
	"github.com/crte-ams/ticket-service/internal/repository"
)

var replayEventsCmd = &cobra.Command{
	Use:   "replay-events",
	Short: "Publish a ticket.updated event for every ticket so downstream consumers can rebuild their state",
	RunE:  runReplayEvents,
}

func runReplayEvents(cmd *cobra.Command, args []string) error {
	cfg, log, err := bootstrap()
	if err != nil {
		return err
	}
	svc, err := application.NewServices(cfg, log)
	if err != nil {
		return err
	}
	defer func() { _ = svc.Close() }()

	if !svc.Producer.Enabled() {
		return errors.New("replay-events: KAFKA_BROKERS is not set")
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), 10*time.Minute)
	defer cancel()

	tickets, err := repository.NewTicketRepo(svc.DB).ListAll(ctx, "")
	if err != nil {
		return fmt.Errorf("list tickets: %w", err)
	}
	log.Info("replay-events: tickets found", zap.Int("count", len(tickets)))

	if failed := replayTickets(ctx, svc.Producer, tickets, log); failed > 0 {
		return fmt.Errorf("replay-events: %d of %d events failed", failed, len(tickets))
	}
	return nil
}

type eventPublisher interface {
	Publish(ctx context.Context, event string, payload map[string]interface{}) error
}

// replayTickets publishes one ticket.updated per ticket and returns how many failed.
// Once ctx is done the remaining tickets count as failed without being attempted.
func replayTickets(ctx context.Context, pub eventPublisher, tickets []model.Ticket, log *zap.Logger) int {
	failed := 0
	for i := range tickets {
		if ctx.Err() != nil {
			failed += len(tickets) - i
			log.Warn("replay-events: stopped", zap.Int("remaining", len(tickets)-i), zap.Error(ctx.Err()))
			break
		}
		if err := pub.Publish(ctx, kafka.EventTicketUpdated, kafka.TicketPayload(&tickets[i])); err != nil {
			failed++
		}
		if (i+1)%50 == 0 || i == len(tickets)-1 {
			log.Info("replay-events: progress", zap.Int("sent", i+1-failed), zap.Int("failed", failed), zap.Int("total", len(tickets)))
		}
	}
	return failed
}
