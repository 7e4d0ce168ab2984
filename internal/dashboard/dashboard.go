// Package dashboard wires the entry store, the planning source and the archive
// set to the aggregation engine. Every read takes a fresh snapshot of its inputs.
package dashboard

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/qualitypulse/tracker/internal/domain/entries"
	"github.com/qualitypulse/tracker/internal/domain/masters"
	"github.com/qualitypulse/tracker/internal/domain/pending"
	"github.com/qualitypulse/tracker/internal/domain/planning"
	"github.com/qualitypulse/tracker/internal/domain/projects"
	"github.com/qualitypulse/tracker/internal/export"
	"github.com/qualitypulse/tracker/internal/infra/metrics"
)

var (
	ErrInvalidEntry  = errors.New("invalid entry")
	ErrMailDisabled  = errors.New("report mail is not configured")
	ErrNoMasterStore = errors.New("master lists are not configured")
)

type EntryStore interface {
	List(ctx context.Context, f entries.Filter) ([]entries.Entry, error)
	Get(ctx context.Context, id int64) (*entries.Entry, error)
	Create(ctx context.Context, raw entries.Raw) (*entries.Entry, error)
	Update(ctx context.Context, id int64, raw entries.Raw) (*entries.Entry, error)
	Delete(ctx context.Context, id int64) error
	RecomputeAll(ctx context.Context, dryRun bool) (int, int, error)
}

type ArchiveStore interface {
	Snapshot(ctx context.Context) (pending.ArchiveSet, error)
	Archive(ctx context.Context, client, project string) error
	Unarchive(ctx context.Context, client, project string) error
}

type MasterStore interface {
	Options(ctx context.Context) (masters.Options, error)
	Add(ctx context.Context, category, name string) (*masters.Master, error)
}

type Mailer interface {
	Send(ctx context.Context, to, subject, body string) error
}

type Deps struct {
	Entries  EntryStore
	Planning planning.Source
	Archive  ArchiveStore
	Masters  MasterStore
	Mailer   Mailer
	Metrics  *metrics.Metrics
	Log      *slog.Logger
}

type Options struct {
	Quality  projects.Config
	Location *time.Location
	ReportTo string
	Now      func() time.Time
}

type Dashboard struct {
	entries  EntryStore
	planning planning.Source
	archive  ArchiveStore
	masters  MasterStore
	mailer   Mailer
	metrics  *metrics.Metrics
	log      *slog.Logger

	quality  projects.Config
	loc      *time.Location
	reportTo string
	now      func() time.Time
}

func New(d Deps, o Options) *Dashboard {
	if o.Location == nil {
		o.Location = time.UTC
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	if o.Quality.Verticals == nil && o.Quality.TargetRate == 0 {
		o.Quality = projects.DefaultConfig()
	}
	if d.Log == nil {
		d.Log = slog.Default()
	}
	return &Dashboard{
		entries:  d.Entries,
		planning: d.Planning,
		archive:  d.Archive,
		masters:  d.Masters,
		mailer:   d.Mailer,
		metrics:  d.Metrics,
		log:      d.Log,
		quality:  o.Quality,
		loc:      o.Location,
		reportTo: o.ReportTo,
		now:      o.Now,
	}
}

// Today is the current calendar date in the configured zone, as UTC midnight.
// Stored entry dates use the same representation.
func (d *Dashboard) Today() time.Time {
	y, m, day := d.now().In(d.loc).Date()
	return time.Date(y, m, day, 0, 0, 0, 0, time.UTC)
}

func (d *Dashboard) Quality() projects.Config { return d.quality }

/* Reads */

func (d *Dashboard) Entries(ctx context.Context, q Query) ([]entries.Entry, error) {
	rows, err := d.entries.List(ctx, q.filter(d.Today()))
	if err != nil {
		return nil, fmt.Errorf("list entries: %w", err)
	}
	return rows, nil
}

// Projects consolidates the entries selected by q.
func (d *Dashboard) Projects(ctx context.Context, q Query) ([]projects.Aggregate, error) {
	rows, err := d.Entries(ctx, q)
	if err != nil {
		return nil, err
	}
	return projects.Consolidate(rows), nil
}

// Overview is the consolidated view of a period with its metrics.
type Overview struct {
	Label    string               `json:"label"`
	Metrics  projects.Metrics     `json:"metrics"`
	Projects []projects.Aggregate `json:"projects"`
}

func (d *Dashboard) Overview(ctx context.Context, q Query) (Overview, error) {
	aggs, err := d.Projects(ctx, q)
	if err != nil {
		return Overview{}, err
	}
	m := projects.ComputeMetrics(aggs, d.quality)
	if q.Client == "" && q.Project == "" && q.Vertical == "" {
		d.metrics.SetRejectionRate(string(q.Period.Mode), m.OverallRate)
	}
	return Overview{Label: q.Period.Label(d.Today()), Metrics: m, Projects: aggs}, nil
}

func (d *Dashboard) PlannedItems(ctx context.Context) ([]planning.LineItem, error) {
	items, err := d.planning.ListPlannedItems(ctx)
	if err != nil {
		d.metrics.PlanningFetchFailed()
		d.log.Warn("planning fetch failed", "err", err)
		return nil, fmt.Errorf("planning: %w", err)
	}
	return items, nil
}

// PendingView is the reconciled work queue with its per-status counts.
type PendingView struct {
	Items  []pending.Item `json:"items"`
	Counts pending.Counts `json:"counts"`
}

func (d *Dashboard) Pending(ctx context.Context) (PendingView, error) {
	planned, err := d.PlannedItems(ctx)
	if err != nil {
		return PendingView{}, err
	}
	logged, err := d.entries.List(ctx, entries.Filter{})
	if err != nil {
		return PendingView{}, fmt.Errorf("list entries: %w", err)
	}
	archived, err := d.archive.Snapshot(ctx)
	if err != nil {
		return PendingView{}, fmt.Errorf("archive snapshot: %w", err)
	}

	start := time.Now()
	items := pending.Reconcile(planned, logged, archived, d.Today())
	d.metrics.ObserveReconcile(time.Since(start))

	counts := pending.Summarize(items)
	d.metrics.SetPending(map[string]int{
		string(pending.StatusOverdue):  counts.Overdue,
		string(pending.StatusPartial):  counts.Partial,
		string(pending.StatusPending):  counts.Pending,
		string(pending.StatusArchived): counts.Archived,
	})
	return PendingView{Items: items, Counts: counts}, nil
}

func (d *Dashboard) Archive(ctx context.Context, client, project string) error {
	if strings.TrimSpace(client) == "" || strings.TrimSpace(project) == "" {
		return fmt.Errorf("%w: client and project are required", ErrInvalidEntry)
	}
	if err := d.archive.Archive(ctx, client, project); err != nil {
		return fmt.Errorf("archive: %w", err)
	}
	d.log.Info("project archived", "client", client, "project", project)
	return nil
}

func (d *Dashboard) Unarchive(ctx context.Context, client, project string) error {
	if err := d.archive.Unarchive(ctx, client, project); err != nil {
		return fmt.Errorf("unarchive: %w", err)
	}
	d.log.Info("project unarchived", "client", client, "project", project)
	return nil
}

func (d *Dashboard) MasterOptions(ctx context.Context) (masters.Options, error) {
	if d.masters == nil {
		return masters.Options{}, nil
	}
	return d.masters.Options(ctx)
}

func (d *Dashboard) AddMaster(ctx context.Context, category, name string) (*masters.Master, error) {
	if d.masters == nil {
		return nil, ErrNoMasterStore
	}
	if strings.TrimSpace(name) == "" {
		return nil, fmt.Errorf("%w: empty master name", ErrInvalidEntry)
	}
	return d.masters.Add(ctx, category, name)
}

/* Writes */

func (d *Dashboard) validate(raw entries.Raw) (entries.Raw, error) {
	raw.ClientName = strings.TrimSpace(raw.ClientName)
	raw.ProjectName = strings.TrimSpace(raw.ProjectName)
	raw.Product = strings.TrimSpace(raw.Product)
	if raw.ClientName == "" || raw.ProjectName == "" {
		return raw, fmt.Errorf("%w: client and project are required", ErrInvalidEntry)
	}
	if raw.Product == "" {
		return raw, fmt.Errorf("%w: product is required", ErrInvalidEntry)
	}
	if raw.Date.IsZero() {
		raw.Date = d.Today()
	}
	return raw, nil
}

func (d *Dashboard) LogEntry(ctx context.Context, raw entries.Raw) (*entries.Entry, error) {
	raw, err := d.validate(raw)
	if err != nil {
		return nil, err
	}
	e, err := d.entries.Create(ctx, raw)
	if err != nil {
		return nil, fmt.Errorf("create entry: %w", err)
	}
	d.metrics.EntryWritten("create")
	d.log.Info("entry logged", "id", e.ID, "client", e.ClientName, "project", e.ProjectName, "rejected", e.QtyRejected)
	return e, nil
}

func (d *Dashboard) Entry(ctx context.Context, id int64) (*entries.Entry, error) {
	return d.entries.Get(ctx, id)
}

func (d *Dashboard) EditEntry(ctx context.Context, id int64, raw entries.Raw) (*entries.Entry, error) {
	raw, err := d.validate(raw)
	if err != nil {
		return nil, err
	}
	e, err := d.entries.Update(ctx, id, raw)
	if err != nil {
		return nil, fmt.Errorf("update entry %d: %w", id, err)
	}
	d.metrics.EntryWritten("update")
	d.log.Info("entry updated", "id", id)
	return e, nil
}

func (d *Dashboard) DeleteEntry(ctx context.Context, id int64) error {
	if err := d.entries.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete entry %d: %w", id, err)
	}
	d.metrics.EntryWritten("delete")
	d.log.Info("entry deleted", "id", id)
	return nil
}

// RecomputeAll re-derives every stored entry and returns how many rows were
// scanned and how many changed (or would change, in dry-run).
func (d *Dashboard) RecomputeAll(ctx context.Context, dryRun bool) (int, int, error) {
	scanned, changed, err := d.entries.RecomputeAll(ctx, dryRun)
	if err != nil {
		return 0, 0, fmt.Errorf("recompute: %w", err)
	}
	if !dryRun {
		d.metrics.AddEntriesWritten("recompute", changed)
	}
	d.log.Info("entries recomputed", "scanned", scanned, "changed", changed, "dry_run", dryRun)
	return scanned, changed, nil
}

// BackfillMedia fills empty print media and lamination on stored entries from
// the matching planning line item. Fields that already hold a value are kept.
func (d *Dashboard) BackfillMedia(ctx context.Context) (int, error) {
	planned, err := d.PlannedItems(ctx)
	if err != nil {
		return 0, err
	}
	rows, err := d.entries.List(ctx, entries.Filter{})
	if err != nil {
		return 0, fmt.Errorf("list entries: %w", err)
	}

	updated := 0
	for _, e := range rows {
		if strings.TrimSpace(e.PrintMedia) != "" && strings.TrimSpace(e.Lamination) != "" {
			continue
		}
		li, ok := planning.Find(planned, e.ClientName, e.ProjectName, e.Product)
		if !ok {
			continue
		}
		raw := e.Raw
		changed := false
		if strings.TrimSpace(raw.PrintMedia) == "" && li.PrintMedia != "" {
			raw.PrintMedia = li.PrintMedia
			changed = true
		}
		if strings.TrimSpace(raw.Lamination) == "" && li.Lamination != "" {
			raw.Lamination = li.Lamination
			changed = true
		}
		if !changed {
			continue
		}
		if _, err := d.entries.Update(ctx, e.ID, raw); err != nil {
			return updated, fmt.Errorf("backfill entry %d: %w", e.ID, err)
		}
		d.metrics.EntryWritten("backfill")
		updated++
	}
	d.log.Info("media backfill done", "updated", updated, "scanned", len(rows))
	return updated, nil
}

/* Reports */

func (d *Dashboard) MonthlyReport(ctx context.Context, month time.Time) (projects.Report, error) {
	from, to := projects.MonthRange(month)
	rows, err := d.entries.List(ctx, entries.Filter{From: from, To: to})
	if err != nil {
		return projects.Report{}, fmt.Errorf("list entries: %w", err)
	}
	return projects.BuildMonthlyReport(rows, month, d.quality)
}

func (d *Dashboard) SendMonthlyReport(ctx context.Context, month time.Time) (projects.Report, error) {
	if d.mailer == nil || d.reportTo == "" {
		return projects.Report{}, ErrMailDisabled
	}
	r, err := d.MonthlyReport(ctx, month)
	if err != nil {
		return r, err
	}
	subject := "Quality report: " + r.Label
	if err := d.mailer.Send(ctx, d.reportTo, subject, r.Text()); err != nil {
		return r, fmt.Errorf("send report: %w", err)
	}
	return r, nil
}

// Export renders the aggregates of q as an .xlsx workbook and returns it with
// its file name.
func (d *Dashboard) Export(ctx context.Context, q Query) ([]byte, string, error) {
	aggs, err := d.Projects(ctx, q)
	if err != nil {
		return nil, "", err
	}
	data, err := export.Workbook(aggs)
	if err != nil {
		return nil, "", fmt.Errorf("export: %w", err)
	}
	return data, export.Filename(q.Client, "projects", d.Today()), nil
}
