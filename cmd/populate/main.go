package main

import (
	"context"
	"flag"
	"os"

	"github.com/turboairmx/quotesync/internal/bootstrap"
	"github.com/turboairmx/quotesync/internal/populate"
	"github.com/turboairmx/quotesync/internal/quotes"
	"github.com/turboairmx/quotesync/pkg/logger"
)

func main() {
	dryRun := flag.Bool("dry-run", false, "generate and plan the batch without writing")
	skipCatalog := flag.Bool("skip-catalog", false, "leave /products untouched")
	seedPath := flag.String("seed", "", "path to a seed JSON file (defaults to the embedded seed)")
	flag.Parse()

	cfg, logg, err := bootstrap.LoadConfig("populate")
	if err != nil {
		os.Exit(1)
	}
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":     cfg.App.Env,
		"dry_run": *dryRun,
	})

	seed, err := loadSeed(*seedPath)
	requireResource(ctx, logg, "seed", err)

	rt, err := bootstrap.Open(ctx, cfg, logg, nil)
	requireResource(ctx, logg, "runtime", err)
	defer rt.Close()

	numbers, err := rt.NumberGenerator()
	requireResource(ctx, logg, "quote numbering", err)
	builder, err := quotes.NewBuilder(quotes.BuilderParams{Pricing: cfg.Pricing, Numbers: numbers})
	requireResource(ctx, logg, "quote builder", err)

	populator, err := populate.New(populate.Params{
		Seed:                seed,
		Builder:             builder,
		Sync:                rt.Sync,
		Logger:              logg,
		LargeOrderThreshold: cfg.Pricing.LargeOrderThreshold,
		Currency:            cfg.Pricing.Currency,
	})
	requireResource(ctx, logg, "populator", err)

	report, err := populator.Run(ctx, populate.Options{DryRun: *dryRun, SkipCatalog: *skipCatalog})
	if err != nil {
		logg.Error(ctx, "population failed", err)
		os.Exit(1)
	}
	if err := bootstrap.WriteReport(os.Stdout, report); err != nil {
		logg.Error(ctx, "failed to write report", err)
		os.Exit(1)
	}
}

func loadSeed(path string) (*populate.Seed, error) {
	if path == "" {
		return populate.DefaultSeed()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return populate.ParseSeed(data)
}

func requireResource(ctx context.Context, logg *logger.Logger, name string, err error) {
	if err == nil {
		return
	}
	logg.Error(logg.WithField(ctx, "resource", name), "failed to initialize "+name, err)
	os.Exit(1)
}
