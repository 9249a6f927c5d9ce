package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	apihttp "maintenance-cloud/internal/api/http"
	"maintenance-cloud/internal/audit"
	"maintenance-cloud/internal/cache"
)

const shutdownTimeout = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the dashboard HTTP API",
	Long: `Serve the dashboard HTTP API.

Examples:
  # Serve with defaults (data under the working directory)
  maintenance-cloud serve

  # Serve a specific data root with file watching
  DATA_ROOT=/srv/hostel WATCH_FILES=true maintenance-cloud serve --config config.yaml`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, _ []string) error {
	a, err := loadApp()
	if err != nil {
		return err
	}
	defer func() { _ = a.logger.Sync() }()

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if a.cfg.WatchFiles {
		watcher, err := cache.NewWatcher(a.cache, a.store.Store().Paths().Files(), a.logger.Named("watcher"))
		if err != nil {
			return err
		}
		defer watcher.Close()
		go watcher.Run(ctx)
	}

	routerCfg := apihttp.RouterConfig{
		Reports:             a.reports,
		Threshold:           a.cfg.RiskThreshold,
		JWTSecret:           []byte(a.cfg.Auth.JWTSecret),
		ComplaintRatePerMin: a.cfg.ComplaintRatePerMin,
		Logger:              a.logger.Named("http"),
	}
	if a.cfg.AuditEnabled() {
		routerCfg.Audit = audit.NewFileLogger(a.cfg.AuditPath)
	}
	handler := apihttp.NewRouter(routerCfg)
	if a.cfg.Auth.JWTSecret == "" {
		a.logger.Warn("AUTH_JWT_SECRET not set, API is unauthenticated")
	}

	server := &http.Server{
		Addr:              a.cfg.HTTPAddr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("http listening", zap.String("addr", a.cfg.HTTPAddr), zap.String("staging", a.cfg.StagingDir))
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	a.logger.Info("http shutting down")
	return server.Shutdown(shutdownCtx)
}
