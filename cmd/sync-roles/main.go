package main

import (
	"context"
	"flag"
	"os"

	"github.com/turboairmx/quotesync/internal/bootstrap"
	"github.com/turboairmx/quotesync/internal/roles"
	"github.com/turboairmx/quotesync/pkg/logger"
)

func main() {
	dryRun := flag.Bool("dry-run", false, "resolve every user's role without issuing claims")
	flag.Parse()

	cfg, logg, err := bootstrap.LoadConfig("sync-roles")
	if err != nil {
		os.Exit(1)
	}
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":     cfg.App.Env,
		"dry_run": *dryRun,
	})

	rt, err := bootstrap.Open(ctx, cfg, logg, nil)
	requireResource(ctx, logg, "runtime", err)
	defer rt.Close()

	issuer, err := roles.NewIdentityToolkitIssuer(ctx, cfg.GCP)
	requireResource(ctx, logg, "identity toolkit", err)

	svc, err := roles.NewService(roles.ServiceParams{
		Issuer: issuer,
		Store:  rt.Store,
		Sync:   rt.Sync,
		Config: cfg.Roles,
		Logger: logg,
	})
	requireResource(ctx, logg, "roles service", err)

	report, err := svc.SyncUserRoles(ctx, roles.SystemCaller(), *dryRun)
	if err != nil {
		logg.Error(ctx, "role sync failed", err)
		os.Exit(1)
	}
	if err := bootstrap.WriteReport(os.Stdout, report); err != nil {
		logg.Error(ctx, "failed to write report", err)
		os.Exit(1)
	}
	if report.ErrorCount > 0 {
		os.Exit(1)
	}
}

func requireResource(ctx context.Context, logg *logger.Logger, name string, err error) {
	if err == nil {
		return
	}
	logg.Error(logg.WithField(ctx, "resource", name), "failed to initialize "+name, err)
	os.Exit(1)
}
