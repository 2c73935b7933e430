package commands

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/trogers1052/portfolio-tracker/internal/api"
	"github.com/trogers1052/portfolio-tracker/internal/kafka"
	"github.com/trogers1052/portfolio-tracker/internal/scheduler"
)

var (
	servePort      string
	serveMigrate   bool
	serveNoRefresh bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API, trade import consumer and quote refresh",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&servePort, "port", "", "HTTP port (overrides SERVER_PORT)")
	serveCmd.Flags().BoolVar(&serveMigrate, "migrate", false, "apply pending migrations before serving")
	serveCmd.Flags().BoolVar(&serveNoRefresh, "no-refresh", false, "disable the periodic quote refresh")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, log, err := loadConfig()
	if err != nil {
		return err
	}
	if servePort != "" {
		cfg.Server.Port = servePort
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer a.Close()

	if serveMigrate {
		if err := a.db.Migrate(cfg.Migrations); err != nil {
			return err
		}
		log.Info().Str("path", cfg.Migrations).Msg("Migrations applied")
	}

	hub := api.NewHub(a.svc, log)
	a.svc.SetNotifier(hub)

	handler := api.NewHandler(a.svc, a.db, hub, log)
	server := api.NewServer(cfg.Server.Addr(), api.SetupRoutes(handler, log), log)

	errCh := make(chan error, 2)
	go func() {
		errCh <- server.Start()
	}()

	if cfg.Kafka.Enabled() {
		consumer := kafka.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.TradesTopic, cfg.Kafka.GroupID, a.svc, log)
		go func() {
			if err := consumer.Start(ctx); err != nil {
				errCh <- fmt.Errorf("trade consumer: %w", err)
			}
		}()
	}

	if cfg.Refresh.Enabled && !serveNoRefresh {
		sched := scheduler.New(log, cfg.Refresh.Timeout)
		if err := sched.AddJob(scheduler.NewRefreshJob(a.svc, cfg.Refresh.Schedule)); err != nil {
			return err
		}
		sched.Start()
		defer sched.Stop()
	}

	select {
	case <-ctx.Done():
		log.Info().Msg("Shutdown signal received")
	case err := <-errCh:
		if err != nil {
			log.Error().Err(err).Msg("Component failed, shutting down")
		}
	}
	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return err
	}

	log.Info().Msg("Server stopped")
	return nil
}
