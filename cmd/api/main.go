package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/rajeev-qa/Kartavya-PMS-sub000/config"
	"github.com/rajeev-qa/Kartavya-PMS-sub000/internal/auth"
	"github.com/rajeev-qa/Kartavya-PMS-sub000/internal/bootstrap"
	"github.com/rajeev-qa/Kartavya-PMS-sub000/internal/logging"
	"github.com/rajeev-qa/Kartavya-PMS-sub000/internal/storage/postgres"
	"github.com/rajeev-qa/Kartavya-PMS-sub000/internal/workflows/audit"
	"github.com/rajeev-qa/Kartavya-PMS-sub000/internal/workflows/repository"
)

func main() {
	// run returns instead of exiting so its deferred cleanup always happens
	if err := run(); err != nil {
		logrus.Error(err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}

	logging.Configure(cfg.App.LogLevel, cfg.App.Environment)
	log := logging.Logger()
	bootstrap.SetGinMode(cfg.App.Environment)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := bootstrap.OpenDB(ctx, &cfg.Database, bootstrap.DBOptions{})
	if err != nil {
		return fmt.Errorf("database: %w", err)
	}
	defer pool.Close()
	db := postgres.FromPool(pool)

	rdb, err := bootstrap.OpenRedis(ctx, &cfg.Redis)
	if err != nil {
		// the cache is optional, keep serving without it
		log.WithError(err).Warn("redis unavailable, workflow cache disabled")
	}
	if rdb != nil {
		defer rdb.Close()
	}

	deps := bootstrap.RouterDeps{
		Config:   cfg,
		DB:       db,
		DBPinger: pool,
		Redis:    rdb,
	}
	if cfg.App.AuthMode == config.AuthModeFirebase {
		client, err := auth.InitializeFirebase(ctx, &cfg.Firebase)
		if err != nil {
			return fmt.Errorf("firebase: %w", err)
		}
		deps.Verifier = client
	} else {
		log.Warn("AUTH_MODE=header: requests are trusted by X-User-Id")
	}

	scheduler, err := audit.NewScheduler(repository.NewWorkflowRepository(db), cfg.App.AuditSchedule)
	if err != nil {
		return fmt.Errorf("audit scheduler: %w", err)
	}
	scheduler.Start()

	srv := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: bootstrap.BuildRouter(deps),
	}

	serveErr := serve(ctx, srv, cfg.Server.ShutdownTimeout)

	stopCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	scheduler.Stop(stopCtx)

	return serveErr
}

// serve runs srv until ctx is done or the listener fails, then shuts it down.
func serve(ctx context.Context, srv *http.Server, shutdownTimeout time.Duration) error {
	log := logging.Logger()

	errCh := make(chan error, 1)
	go func() {
		log.Infof("listening on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	var serveErr error
	select {
	case <-ctx.Done():
		log.Info("shutting down")
	case err, ok := <-errCh:
		if ok {
			serveErr = fmt.Errorf("server: %w", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("graceful shutdown failed")
	}
	return serveErr
}
