package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/abhisek/fequiz/internal/api"
	"github.com/abhisek/fequiz/internal/logger"
	"github.com/abhisek/fequiz/internal/scheduler"
	"github.com/abhisek/fequiz/internal/store"
)

const shutdownTimeout = 15 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the quiz HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return fmt.Errorf("config: %w", err)
		}

		log, err := logger.New(cfg.LogMode)
		if err != nil {
			return fmt.Errorf("logger: %w", err)
		}
		defer log.Sync()

		if cfg.LogMode == "prod" || cfg.LogMode == "production" {
			gin.SetMode(gin.ReleaseMode)
		}

		d, err := openDeps(cmd.Context(), cfg, log)
		if err != nil {
			return err
		}
		defer func() {
			if err := d.Close(); err != nil {
				log.Error("close store", "error", err)
			}
		}()
		log.Info("datasets loaded",
			"questions", d.bank.Len(),
			"version", d.bank.Version(),
			"glossary", d.glossary != nil,
			"store", cfg.Store,
		)

		if pruner, ok := d.repo.(store.Pruner); ok {
			sched := scheduler.New(pruner, cfg.SnapshotKeep, cfg.PruneInterval, log.With("component", "scheduler"))
			if err := sched.Start(); err != nil {
				return fmt.Errorf("start scheduler: %w", err)
			}
			defer sched.Stop()
		}

		router := api.NewRouter(api.RouterConfig{
			Bank:        d.bank,
			Glossary:    d.glossary,
			Tracker:     d.tracker,
			Log:         log,
			CORSOrigins: cfg.CORSOrigins,
		})

		return serve(&http.Server{Addr: cfg.Addr, Handler: router}, log)
	},
}

// serve runs srv until SIGINT or SIGTERM, then drains in-flight requests.
func serve(srv *http.Server, log *logger.Logger) error {
	errCh := make(chan error, 1)
	go func() {
		log.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	shutdownChan := make(chan os.Signal, 1)
	signal.Notify(shutdownChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(shutdownChan)

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	case sig := <-shutdownChan:
		log.Info("shutting down", "signal", sig.String())
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	log.Info("server stopped")
	return nil
}
