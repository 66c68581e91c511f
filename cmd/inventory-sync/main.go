package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/turboairmx/quotesync/internal/bootstrap"
	"github.com/turboairmx/quotesync/internal/catalog"
	"github.com/turboairmx/quotesync/internal/inventory"
	"github.com/turboairmx/quotesync/pkg/logger"
)

func main() {
	input := flag.String("input", "", "stock JSON file, or - for stdin")
	dryRun := flag.Bool("dry-run", false, "plan the writes without committing")
	reserved := flag.String("reserved-warehouse", "", "warehouse excluded from available stock")
	flag.Parse()

	if *input == "" {
		fmt.Fprintln(os.Stderr, "missing -input")
		os.Exit(2)
	}

	cfg, logg, err := bootstrap.LoadConfig("inventory-sync")
	if err != nil {
		os.Exit(1)
	}
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":     cfg.App.Env,
		"input":   *input,
		"dry_run": *dryRun,
	})

	stock, err := readStock(*input)
	requireResource(ctx, logg, "stock input", err)

	rt, err := bootstrap.Open(ctx, cfg, logg, nil)
	requireResource(ctx, logg, "runtime", err)
	defer rt.Close()

	svc, err := inventory.NewService(inventory.ServiceParams{
		Store:             rt.Store,
		Catalog:           catalog.NewAccessor(rt.Store),
		Sync:              rt.Sync,
		Logger:            logg,
		ReservedWarehouse: *reserved,
	})
	requireResource(ctx, logg, "inventory service", err)

	report, err := svc.SyncStock(ctx, stock, *dryRun)
	if err != nil {
		logg.Error(ctx, "stock sync failed", err)
		os.Exit(1)
	}
	if err := bootstrap.WriteReport(os.Stdout, report); err != nil {
		logg.Error(ctx, "failed to write report", err)
		os.Exit(1)
	}
}

func readStock(path string) (inventory.StockInput, error) {
	var r io.Reader = os.Stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		r = f
	}
	return inventory.DecodeStockInput(r)
}

func requireResource(ctx context.Context, logg *logger.Logger, name string, err error) {
	if err == nil {
		return
	}
	logg.Error(logg.WithField(ctx, "resource", name), "failed to initialize "+name, err)
	os.Exit(1)
}
