package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/TaniaLee11/opsflow-circle-sub004/internal/api/http"
	"github.com/TaniaLee11/opsflow-circle-sub004/internal/api/http/handlers"
	"github.com/TaniaLee11/opsflow-circle-sub004/internal/config"
	"github.com/TaniaLee11/opsflow-circle-sub004/internal/notify"
	"github.com/TaniaLee11/opsflow-circle-sub004/internal/observability"
	"github.com/TaniaLee11/opsflow-circle-sub004/internal/persistence"
	"github.com/TaniaLee11/opsflow-circle-sub004/internal/repository"
	"github.com/TaniaLee11/opsflow-circle-sub004/internal/service"
	"github.com/TaniaLee11/opsflow-circle-sub004/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	if cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	metrics := observability.NewMetrics()
	dispatcher := notify.NewDispatcher(cfg.Notification, redis, logger, metrics)

	pool := pg.PoolHandle()
	escalationRepo := repository.NewEscalationRepository(pool)
	ticketRepo := repository.NewTicketRepository(pool)

	escalationService := service.NewEscalationService(service.EscalationDependencies{
		EscalationRepo: escalationRepo,
		Dispatcher:     dispatcher,
		Logger:         logger,
		Notification:   cfg.Notification,
	})
	followupService := service.NewFollowupService(service.FollowupDependencies{
		EscalationRepo: escalationRepo,
		Dispatcher:     dispatcher,
		Logger:         logger,
		Metrics:        metrics,
		Scheduler:      cfg.Scheduler,
		Notification:   cfg.Notification,
	})
	ticketService := service.NewTicketService(service.TicketDependencies{
		TicketRepo:   ticketRepo,
		Dispatcher:   dispatcher,
		Logger:       logger,
		Notification: cfg.Notification,
	})

	if cfg.Scheduler.EnableWorker {
		worker.StartFollowupWorker(ctx, followupService, cfg.Scheduler.WorkerInterval(), logger)
	}

	app := fiber.New()
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	healthHandler := handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis)
	escalationsHandler := handlers.NewEscalationsHandler(escalationService, followupService)
	ticketsHandler := handlers.NewTicketsHandler(ticketService)

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:          healthHandler,
		Escalations:     escalationsHandler,
		Tickets:         ticketsHandler,
		SchedulerSecret: cfg.Scheduler.Secret,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	cancel()
	_ = app.Shutdown()
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
