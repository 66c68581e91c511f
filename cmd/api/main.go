package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/turboairmx/quotesync/api/controllers"
	"github.com/turboairmx/quotesync/api/routes"
	"github.com/turboairmx/quotesync/internal/bootstrap"
	"github.com/turboairmx/quotesync/internal/catalog"
	"github.com/turboairmx/quotesync/internal/notifications"
	"github.com/turboairmx/quotesync/internal/quotes"
	"github.com/turboairmx/quotesync/internal/roles"
	"github.com/turboairmx/quotesync/internal/tracking"
	"github.com/turboairmx/quotesync/pkg/config"
	"github.com/turboairmx/quotesync/pkg/env"
	"github.com/turboairmx/quotesync/pkg/logger"
)

const shutdownTimeout = 15 * time.Second

func main() {
	cfg, logg, err := bootstrap.LoadConfig("api")
	if err != nil {
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rt, err := bootstrap.Open(ctx, cfg, logg, prometheus.DefaultRegisterer)
	if err != nil {
		logg.Error(ctx, "failed to bootstrap runtime", err)
		os.Exit(1)
	}
	defer rt.Close()

	importer, err := tracking.NewImporter(tracking.ImporterParams{
		Store:  rt.Store,
		Sync:   rt.Sync,
		Config: cfg.Import,
		Logger: logg,
	})
	if err != nil {
		logg.Error(ctx, "failed to create tracking importer", err)
		os.Exit(1)
	}

	ready := map[string]controllers.Pinger{}
	if rt.Redis != nil {
		ready["redis"] = rt.Redis
	}

	handler := routes.NewRouter(cfg, logg, routes.Dependencies{
		Pricer:   quotes.NewPricer(catalog.NewAccessor(rt.Store), cfg.Pricing),
		Mailer:   newMailService(ctx, cfg, logg, rt),
		Tracking: importer,
		Roles:    newRolesService(ctx, cfg, logg, rt),
		Gatherer: prometheus.DefaultGatherer,
		Ready:    ready,
	})

	addr := ":" + env.Get("PORT", cfg.App.Port)
	ctx = logg.WithFields(ctx, map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logg.Error(ctx, "api server stopped unexpectedly", err)
			os.Exit(1)
		}
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(shutdownCtx, "api server shutdown failed", err)
		}
		logg.Info(shutdownCtx, "api server shut down gracefully")
	}
}

// newMailService returns nil when no sender is configured.
func newMailService(ctx context.Context, cfg *config.Config, logg *logger.Logger, rt *bootstrap.Runtime) *notifications.Service {
	if strings.TrimSpace(cfg.Email.Sender) == "" {
		logg.Warn(ctx, "email sender not configured; email routes disabled")
		return nil
	}
	mailer, err := notifications.NewGmailMailer(ctx, cfg.Email)
	if err != nil {
		logg.Error(ctx, "failed to create gmail mailer; email routes disabled", err)
		return nil
	}
	svc, err := notifications.NewService(notifications.ServiceParams{
		Mailer:         mailer,
		Store:          rt.Store,
		AlertRecipient: cfg.Email.AlertRecipient,
		Logger:         logg,
	})
	if err != nil {
		logg.Error(ctx, "failed to create notifications service", err)
		return nil
	}
	return svc
}

// newRolesService returns nil when Identity Toolkit credentials are unavailable.
func newRolesService(ctx context.Context, cfg *config.Config, logg *logger.Logger, rt *bootstrap.Runtime) *roles.Service {
	issuer, err := roles.NewIdentityToolkitIssuer(ctx, cfg.GCP)
	if err != nil {
		logg.Warn(logg.WithField(ctx, "error", err.Error()), "identity toolkit unavailable; claims routes disabled")
		return nil
	}
	svc, err := roles.NewService(roles.ServiceParams{
		Issuer: issuer,
		Store:  rt.Store,
		Sync:   rt.Sync,
		Config: cfg.Roles,
		Logger: logg,
	})
	if err != nil {
		logg.Error(ctx, "failed to create roles service", err)
		return nil
	}
	return svc
}
