package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/qualitypulse/tracker/internal/app"
	"github.com/qualitypulse/tracker/internal/config"
	"github.com/qualitypulse/tracker/internal/infra/logger"
)

// Re-derives every stored batch entry from its raw fields and, optionally,
// fills missing media from the planning sheet.

var (
	configPath = flag.String("config", "config/example.yaml", "path to the YAML config")
	dryRun     = flag.Bool("dry-run", true, "report how many rows would change without writing")
	backfill   = flag.Bool("backfill", false, "also fill missing print media and lamination from planning")
)

func main() {
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		panic(err)
	}
	log := logger.New(cfg.App.Env)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error("recompute failed", "err", err)
		stop()
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Config, log *slog.Logger) error {
	a, err := app.Build(ctx, cfg, log, nil)
	if err != nil {
		return err
	}
	defer a.Close()

	scanned, changed, err := a.Dashboard.RecomputeAll(ctx, *dryRun)
	if err != nil {
		return err
	}
	log.Info("recompute finished", "scanned", scanned, "changed", changed, "dry_run", *dryRun)

	if !*backfill {
		return nil
	}
	if *dryRun {
		log.Info("backfill skipped in dry-run")
		return nil
	}
	n, err := a.Dashboard.BackfillMedia(ctx)
	if err != nil {
		return err
	}
	log.Info("backfill finished", "updated", n)
	return nil
}
