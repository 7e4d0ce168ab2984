// Package app assembles the dashboard from configuration. Both binaries use it.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/qualitypulse/tracker/internal/config"
	"github.com/qualitypulse/tracker/internal/dashboard"
	"github.com/qualitypulse/tracker/internal/dialog"
	"github.com/qualitypulse/tracker/internal/domain/entries"
	"github.com/qualitypulse/tracker/internal/domain/masters"
	"github.com/qualitypulse/tracker/internal/domain/pending"
	"github.com/qualitypulse/tracker/internal/domain/planning"
	"github.com/qualitypulse/tracker/internal/domain/projects"
	"github.com/qualitypulse/tracker/internal/infra/db"
	"github.com/qualitypulse/tracker/internal/infra/mail"
	"github.com/qualitypulse/tracker/internal/infra/metrics"
)

type App struct {
	Pool      *pgxpool.Pool
	Dashboard *dashboard.Dashboard
	States    *dialog.Repo
}

func (a *App) Close() {
	if a.Pool != nil {
		a.Pool.Close()
	}
}

// PlanningSource picks the configured planning backend.
func PlanningSource(ctx context.Context, cfg config.Config, log *slog.Logger) (planning.Source, error) {
	switch cfg.Planning.Source {
	case config.PlanningXLSX:
		return planning.NewWorkbookSource(cfg.Planning.WorkbookPath, cfg.Planning.Sheet), nil
	case config.PlanningSheets:
		src, err := planning.NewSheetsSource(ctx, planning.SheetsConfig{
			SpreadsheetID:   cfg.Planning.SpreadsheetID,
			Range:           cfg.Planning.Range,
			CredentialsFile: cfg.Planning.CredentialsFile,
		}, log)
		if err != nil {
			return nil, err
		}
		return src, nil
	}
	return nil, fmt.Errorf("unknown planning source %q", cfg.Planning.Source)
}

// Build migrates the schema, connects to Postgres and wires the dashboard.
// reg may be nil when metrics are not exported.
func Build(ctx context.Context, cfg config.Config, log *slog.Logger, reg prometheus.Registerer) (*App, error) {
	if err := db.Migrate(cfg.Postgres.DSN); err != nil {
		return nil, fmt.Errorf("migrations: %w", err)
	}
	log.Info("migrations applied")

	pool, err := db.Connect(ctx, cfg.Postgres.DSN)
	if err != nil {
		return nil, fmt.Errorf("db connect: %w", err)
	}
	log.Info("db connected")

	src, err := PlanningSource(ctx, cfg, log)
	if err != nil {
		pool.Close()
		return nil, err
	}

	loc, err := time.LoadLocation(cfg.App.Timezone)
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("timezone %q: %w", cfg.App.Timezone, err)
	}

	deps := dashboard.Deps{
		Entries:  entries.NewRepo(pool),
		Planning: src,
		Archive:  pending.NewArchiveRepo(pool),
		Masters:  masters.NewRepo(pool),
		Log:      log,
	}
	if reg != nil {
		deps.Metrics = metrics.New(reg)
	}
	if cfg.Report.SendgridAPIKey != "" {
		deps.Mailer = mail.NewSendGridClient(cfg.Report.SendgridAPIKey, cfg.Report.From, log)
	}

	dash := dashboard.New(deps, dashboard.Options{
		Quality: projects.Config{
			TargetRate: cfg.Quality.TargetRate,
			Verticals:  cfg.Quality.Verticals,
		},
		Location: loc,
		ReportTo: cfg.Report.To,
	})
	return &App{Pool: pool, Dashboard: dash, States: dialog.NewRepo(pool)}, nil
}
