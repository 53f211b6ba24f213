package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/cmlabs-hris/hris-attendance-engine/internal/app"
	"github.com/cmlabs-hris/hris-attendance-engine/internal/config"
	"github.com/cmlabs-hris/hris-attendance-engine/internal/domain/reconciliation"
	appHTTP "github.com/cmlabs-hris/hris-attendance-engine/internal/handler/http"
	"github.com/cmlabs-hris/hris-attendance-engine/internal/pkg/cron"
	"github.com/cmlabs-hris/hris-attendance-engine/internal/pkg/jwt"
	"github.com/cmlabs-hris/hris-attendance-engine/internal/pkg/logger"
	"github.com/cmlabs-hris/hris-attendance-engine/internal/pkg/otel"
	"github.com/cmlabs-hris/hris-attendance-engine/internal/pkg/sse"
)

const shutdownTimeout = 15 * time.Second

func main() {
	if err := run(); err != nil {
		slog.Error("Server exited with error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("error loading config: %w", err)
	}

	log := logger.New(os.Stdout, cfg)
	slog.SetDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := otel.Setup(ctx, cfg.Telemetry)
	if err != nil {
		return err
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := shutdownTracing(ctx); err != nil {
			slog.Error("Failed to flush traces", "error", err)
		}
	}()

	storage, err := app.OpenStorage(ctx, cfg)
	if err != nil {
		return err
	}
	defer storage.Close()

	hub := sse.NewHub()
	dispatcher, err := app.NewDispatcher(cfg, storage.Directory, hub)
	if err != nil {
		return err
	}
	services := app.NewServices(storage, dispatcher, time.Now)

	JWTService := jwt.NewJWTService(cfg.JWT.Secret, cfg.JWT.AccessExpiration, cfg.JWT.AcceptableSkew)

	router := appHTTP.NewRouter(JWTService, appHTTP.Handlers{
		Attendance:     appHTTP.NewAttendanceHandler(services.Attendance),
		Correction:     appHTTP.NewCorrectionHandler(services.Correction),
		Geofence:       appHTTP.NewGeofenceHandler(services.Geofence),
		Reconciliation: appHTTP.NewReconciliationHandler(services.Reconciliation),
		Events:         appHTTP.NewEventsHandler(hub, JWTService),
	}, appHTTP.RouterOptions{
		Logger:         log,
		AllowedOrigins: cfg.CORS.AllowedOrigins,
		Ping:           storage.Ping,
	})

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return dispatcher.Run(gctx)
	})

	if cfg.Reconciliation.Enabled {
		scheduler := cron.NewScheduler()
		cron.NewReconciliationJobs(
			services.Reconciliation,
			reconciliation.Mode(cfg.Reconciliation.Mode),
			cfg.Reconciliation.Days,
			time.Now,
		).RegisterJobs(scheduler, cfg.Reconciliation.Interval)
		g.Go(func() error {
			return scheduler.Run(gctx)
		})
	}

	g.Go(func() error {
		slog.Info("Server running", "addr", server.Addr, "driver", cfg.Database.Driver)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		slog.Info("Shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
