package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/turboairmx/quotesync/internal/bootstrap"
	"github.com/turboairmx/quotesync/internal/cron"
	"github.com/turboairmx/quotesync/internal/notifications"
	"github.com/turboairmx/quotesync/internal/tracking"
	"github.com/turboairmx/quotesync/pkg/config"
	"github.com/turboairmx/quotesync/pkg/logger"
	"github.com/turboairmx/quotesync/pkg/metrics"
)

const lockName = "cron-worker:%s"

func main() {
	once := flag.Bool("once", false, "run every job a single time and exit")
	flag.Parse()

	cfg, logg, err := bootstrap.LoadConfig("cron-worker")
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

	lock, err := newLock(rt)
	if err != nil {
		logg.Error(ctx, "failed to create cron lock", err)
		os.Exit(1)
	}

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

	params := cron.TrackingImportJobParams{Logger: logg, Importer: importer}
	if alerter := newAlerter(ctx, cfg, logg); alerter != nil {
		params.Alerter = alerter
	}
	job, err := cron.NewTrackingImportJob(params)
	if err != nil {
		logg.Error(ctx, "failed to create tracking import job", err)
		os.Exit(1)
	}

	registry, err := cron.NewRegistry(job)
	if err != nil {
		logg.Error(ctx, "failed to register cron jobs", err)
		os.Exit(1)
	}

	service, err := cron.NewService(cron.ServiceParams{
		Logger:   logg,
		Registry: registry,
		Lock:     lock,
		Metrics:  metrics.NewCronJobMetrics(prometheus.DefaultRegisterer),
		Interval: cfg.Import.Interval,
	})
	if err != nil {
		logg.Error(ctx, "failed to create cron service", err)
		os.Exit(1)
	}

	ctx = logg.WithFields(ctx, map[string]any{
		"env":         cfg.App.Env,
		"serviceKind": cfg.Service.Kind,
		"interval":    cfg.Import.Interval.String(),
		"time_zone":   cfg.Import.Location().String(),
	})

	if *once {
		if err := service.RunOnce(ctx); err != nil {
			logg.Error(ctx, "cron run failed", err)
			os.Exit(1)
		}
		return
	}

	logg.Info(ctx, "starting cron worker")
	if err := service.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logg.Error(ctx, "cron worker stopped unexpectedly", err)
		os.Exit(1)
	}
	logg.Info(ctx, "cron worker shutting down gracefully")
}

func newLock(rt *bootstrap.Runtime) (cron.Lock, error) {
	if rt.Redis == nil {
		return &cron.LocalLock{}, nil
	}
	env := rt.Config.App.Env
	if env == "" {
		env = "local"
	}
	return cron.NewRedisLock(rt.Redis, rt.Redis.LockKey(fmt.Sprintf(lockName, env)), 0)
}

// newAlerter returns nil when no sender or alert recipient is configured.
func newAlerter(ctx context.Context, cfg *config.Config, logg *logger.Logger) *notifications.Service {
	if strings.TrimSpace(cfg.Email.Sender) == "" || strings.TrimSpace(cfg.Email.AlertRecipient) == "" {
		logg.Warn(ctx, "import failure alerts disabled")
		return nil
	}
	mailer, err := notifications.NewGmailMailer(ctx, cfg.Email)
	if err != nil {
		logg.Error(ctx, "failed to create gmail mailer; import failure alerts disabled", err)
		return nil
	}
	svc, err := notifications.NewService(notifications.ServiceParams{
		Mailer:         mailer,
		AlertRecipient: cfg.Email.AlertRecipient,
		Logger:         logg,
	})
	if err != nil {
		logg.Error(ctx, "failed to create notifications service", err)
		return nil
	}
	return svc
}
