package application

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/crte-ams/ticket-service/internal/config"
	"github.com/crte-ams/ticket-service/internal/database"
	"github.com/crte-ams/ticket-service/internal/handler"
	"github.com/crte-ams/ticket-service/internal/kafka"
	"github.com/crte-ams/ticket-service/internal/middleware"
	"github.com/crte-ams/ticket-service/internal/notify"
	"github.com/crte-ams/ticket-service/internal/repository"
	"github.com/crte-ams/ticket-service/internal/router"
	"github.com/crte-ams/ticket-service/internal/service"
	"github.com/crte-ams/ticket-service/internal/validation"
)

// statsLocation places tickets into calendar months for the monthly breakdown.
const statsLocation = "America/Sao_Paulo"

// Services is the wired domain layer, shared by the HTTP API and the CLI commands.
type Services struct {
	DB       *gorm.DB
	Tickets  *service.TicketService
	Profiles *service.ProfileService
	Stats    *service.StatsService
	Producer *kafka.Producer
}

// NewServices opens the database and wires repositories, notifier and producer.
func NewServices(cfg *config.Config, log *zap.Logger) (*Services, error) {
	db, err := database.Open(cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("database: %w", err)
	}

	var notifier notify.Notifier = notify.NewLogNotifier(log)
	if cfg.Mail.APIURL != "" {
		notifier = notify.NewHTTPMailer(cfg.Mail.APIURL, cfg.Mail.APIKey, cfg.Mail.From)
	}
	producer := kafka.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.TopicTicket, log)

	tickets := repository.NewTicketRepo(db)
	profiles := repository.NewProfileRepo(db)

	stats := service.NewStatsService(tickets, log)
	if loc, err := time.LoadLocation(statsLocation); err == nil {
		stats.WithLocation(loc)
	} else {
		log.Warn("timezone unavailable, monthly stats use UTC", zap.String("location", statsLocation), zap.Error(err))
	}

	return &Services{
		DB:       db,
		Tickets:  service.NewTicketService(tickets, profiles, notifier, producer, log),
		Profiles: service.NewProfileService(profiles, log),
		Stats:    stats,
		Producer: producer,
	}, nil
}

func (s *Services) Close() error {
	return errors.Join(s.Producer.Close(), database.Close(s.DB))
}

// API runs the HTTP server (api mode).
type API struct {
	cfg     *config.Config
	log     *zap.Logger
	svc     *Services
	httpSrv *http.Server
}

func NewAPI(ctx context.Context, cfg *config.Config, log *zap.Logger) (*API, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := database.MigrateUp(ctx, cfg.DatabaseURL(), log); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	if err := validation.RegisterGin(); err != nil {
		return nil, err
	}
	svc, err := NewServices(cfg, log)
	if err != nil {
		return nil, err
	}

	h := router.New(router.Deps{
		Health:  handler.NewHealthHandler(func(ctx context.Context) error { return database.Ping(ctx, svc.DB) }),
		Tickets: handler.NewTicketHandler(svc.Tickets),
		Profile: handler.NewProfileHandler(svc.Profiles),
		Stats:   handler.NewStatsHandler(svc.Stats),
		Auth:    middleware.Auth(cfg.Auth.JWTSecret, cfg.Auth.Issuer, svc.Profiles, log),
		Log:     log,
	})

	return &API{
		cfg: cfg,
		log: log,
		svc: svc,
		httpSrv: &http.Server{
			Addr:              cfg.Addr(),
			Handler:           h,
			ReadHeaderTimeout: 5 * time.Second,
			ReadTimeout:       15 * time.Second,
			WriteTimeout:      30 * time.Second,
			IdleTimeout:       60 * time.Second,
		},
	}, nil
}

// Run serves until ctx is cancelled, then drains in-flight requests.
func (a *API) Run(ctx context.Context) error {
	host := a.cfg.AppHost
	if host == "0.0.0.0" {
		host = "localhost"
	}
	base := "http://" + host + ":" + a.cfg.HTTPPort
	a.log.Info("http server listening",
		zap.String("addr", a.httpSrv.Addr),
		zap.String("swagger", base+router.PathSwagger),
		zap.String("health", base+router.PathHealth),
		zap.String("metrics", base+router.PathMetrics),
		zap.String("api", base+router.PathAPIV1),
		zap.Bool("kafka", a.svc.Producer.Enabled()),
		zap.Bool("mail_api", a.cfg.Mail.APIURL != ""),
	)

	errCh := make(chan error, 1)
	go func() {
		if err := a.httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			_ = a.svc.Close()
			return fmt.Errorf("http: %w", err)
		}
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := a.httpSrv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http shutdown: %w", err)
	}
	a.log.Info("http server stopped")
	return a.svc.Close()
}
