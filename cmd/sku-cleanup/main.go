package main

import (
	"context"
	"flag"
	"os"

	"github.com/turboairmx/quotesync/internal/bootstrap"
	"github.com/turboairmx/quotesync/internal/catalog"
	"github.com/turboairmx/quotesync/internal/inventory"
)

func main() {
	dryRun := flag.Bool("dry-run", true, "report the changes without writing; pass -dry-run=false to apply")
	flag.Parse()

	cfg, logg, err := bootstrap.LoadConfig("sku-cleanup")
	if err != nil {
		os.Exit(1)
	}
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":     cfg.App.Env,
		"dry_run": *dryRun,
	})

	rt, err := bootstrap.Open(ctx, cfg, logg, nil)
	if err != nil {
		logg.Error(ctx, "failed to bootstrap runtime", err)
		os.Exit(1)
	}
	defer rt.Close()

	svc, err := inventory.NewService(inventory.ServiceParams{
		Store:   rt.Store,
		Catalog: catalog.NewAccessor(rt.Store),
		Sync:    rt.Sync,
		Logger:  logg,
	})
	if err != nil {
		logg.Error(ctx, "failed to create inventory service", err)
		os.Exit(1)
	}

	report, err := svc.CleanSKUs(ctx, *dryRun)
	if err != nil {
		logg.Error(ctx, "sku cleanup failed", err)
		os.Exit(1)
	}
	if err := bootstrap.WriteReport(os.Stdout, report); err != nil {
		logg.Error(ctx, "failed to write report", err)
		os.Exit(1)
	}
}
