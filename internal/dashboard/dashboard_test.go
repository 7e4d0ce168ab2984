package dashboard

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/qualitypulse/tracker/internal/domain/entries"
	"github.com/qualitypulse/tracker/internal/domain/pending"
	"github.com/qualitypulse/tracker/internal/domain/planning"
	"github.com/qualitypulse/tracker/internal/domain/projects"
	"github.com/qualitypulse/tracker/internal/infra/metrics"
)

type fakePlanning struct {
	items []planning.LineItem
	err   error
}

func (f *fakePlanning) ListPlannedItems(context.Context) ([]planning.LineItem, error) {
	return f.items, f.err
}

type fakeMailer struct {
	to, subject, body string
}

func (f *fakeMailer) Send(_ context.Context, to, subject, body string) error {
	f.to, f.subject, f.body = to, subject, body
	return nil
}

func date(y int, m time.Month, d int) time.Time { return time.Date(y, m, d, 0, 0, 0, 0, time.UTC) }

type fixture struct {
	d       *Dashboard
	store   *entries.MemoryRepo
	plan    *fakePlanning
	archive *pending.MemoryArchive
	mailer  *fakeMailer
	metrics *metrics.Metrics
}

// The clock reads 2026-10-18 20:30 UTC, which is already 2026-10-19 in Kolkata.
func newFixture(t *testing.T) fixture {
	t.Helper()
	loc, err := time.LoadLocation("Asia/Kolkata")
	require.NoError(t, err)

	f := fixture{
		store:   entries.NewMemoryRepo(),
		plan:    &fakePlanning{},
		archive: pending.NewMemoryArchive(),
		mailer:  &fakeMailer{},
		metrics: metrics.New(prometheus.NewRegistry()),
	}
	f.d = New(Deps{
		Entries:  f.store,
		Planning: f.plan,
		Archive:  f.archive,
		Mailer:   f.mailer,
		Metrics:  f.metrics,
		Log:      slog.New(slog.NewTextHandler(io.Discard, nil)),
	}, Options{
		Quality:  projects.DefaultConfig(),
		Location: loc,
		ReportTo: "ops@example.com",
		Now:      func() time.Time { return time.Date(2026, 10, 18, 20, 30, 0, 0, time.UTC) },
	})
	return f
}

func (f fixture) log(t *testing.T, raw entries.Raw) *entries.Entry {
	t.Helper()
	e, err := f.d.LogEntry(context.Background(), raw)
	require.NoError(t, err)
	return e
}

func TestDashboard_TodayUsesLocation(t *testing.T) {
	f := newFixture(t)
	assert.Equal(t, date(2026, 10, 19), f.d.Today())
}

func TestDashboard_LogEntry(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	e := f.log(t, entries.Raw{ClientName: " Acme ", ProjectName: "Banner Run", Product: "A", MasterQty: 100, BatchQty: 100,
		Rejections: entries.Stages{Print: 3}})
	assert.Equal(t, date(2026, 10, 19), e.Date)
	assert.Equal(t, "Acme", e.ClientName)
	assert.Equal(t, 97.0, e.QtyDelivered)
	assert.Equal(t, 3.0, e.RejectionPercent)
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.EntriesWritten.WithLabelValues("create")))

	_, err := f.d.LogEntry(ctx, entries.Raw{ProjectName: "x", Product: "A"})
	assert.ErrorIs(t, err, ErrInvalidEntry)
	_, err = f.d.LogEntry(ctx, entries.Raw{ClientName: "c", ProjectName: "x"})
	assert.ErrorIs(t, err, ErrInvalidEntry)

	edited, err := f.d.EditEntry(ctx, e.ID, entries.Raw{ClientName: "Acme", ProjectName: "Banner Run", Product: "A",
		Date: date(2026, 10, 1), MasterQty: 100, BatchQty: 50})
	require.NoError(t, err)
	assert.Equal(t, 50.0, edited.QtyDelivered)
	assert.Equal(t, 0.0, edited.RejectionPercent)

	_, err = f.d.EditEntry(ctx, 999, entries.Raw{ClientName: "a", ProjectName: "b", Product: "c"})
	assert.ErrorIs(t, err, entries.ErrNotFound)

	require.NoError(t, f.d.DeleteEntry(ctx, e.ID))
	assert.ErrorIs(t, f.d.DeleteEntry(ctx, e.ID), entries.ErrNotFound)
}

func TestDashboard_OverviewModes(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.log(t, entries.Raw{Date: date(2026, 10, 19), ClientName: "Acme", ProjectName: "Run", Product: "A", MasterQty: 100, BatchQty: 50,
		Rejections: entries.Stages{Cut: 5}})
	f.log(t, entries.Raw{Date: date(2026, 10, 2), ClientName: "Acme", ProjectName: "Run", Product: "A", MasterQty: 100, BatchQty: 50,
		Rejections: entries.Stages{Cut: 5}})
	f.log(t, entries.Raw{Date: date(2026, 9, 30), ClientName: "Globex", ProjectName: "Wrap", Product: "W", MasterQty: 10, BatchQty: 10,
		Rejections: entries.Stages{Print: 1}})

	today, err := f.d.Overview(ctx, Query{Period: Period{Mode: ModeToday}})
	require.NoError(t, err)
	require.Len(t, today.Projects, 1)
	assert.Equal(t, 5.0, today.Metrics.OverallRate)

	month, err := f.d.Overview(ctx, Query{Period: Period{Mode: ModeMonth}})
	require.NoError(t, err)
	require.Len(t, month.Projects, 1)
	assert.Equal(t, 100.0, month.Projects[0].MasterQty)
	assert.Equal(t, 10.0, month.Metrics.OverallRate)
	assert.Equal(t, "October 2026", month.Label)
	assert.Equal(t, 10.0, testutil.ToFloat64(f.metrics.RejectionRate.WithLabelValues("month")))

	all, err := f.d.Overview(ctx, Query{Period: Period{Mode: ModeAll}})
	require.NoError(t, err)
	assert.Len(t, all.Projects, 2)
	assert.Equal(t, 10.0, all.Metrics.OverallRate)

	ranged, err := f.d.Projects(ctx, Query{Period: Period{Mode: ModeRange, From: date(2026, 9, 1), To: date(2026, 9, 30)}})
	require.NoError(t, err)
	require.Len(t, ranged, 1)
	assert.Equal(t, "Globex", ranged[0].ClientName)

	byClient, err := f.d.Projects(ctx, Query{Period: Period{Mode: ModeAll}, Client: "Globex"})
	require.NoError(t, err)
	assert.Len(t, byClient, 1)
}

func TestDashboard_Pending(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	yesterday := date(2026, 10, 18)
	f.plan.items = []planning.LineItem{
		{Client: "Acme", Project: "Banner Run", Product: "A", MasterQty: 100, DeliveryDate: &yesterday},
		{Client: "Acme", Project: "Banner Run", Product: "B", MasterQty: 50, DeliveryDate: &yesterday},
		{Client: "Globex", Project: "Wrap", Product: "W", MasterQty: 10},
	}
	f.log(t, entries.Raw{ClientName: "Acme", ProjectName: "Banner Run", Product: "A", MasterQty: 100, BatchQty: 40})
	require.NoError(t, f.d.Archive(ctx, "Globex", "Wrap"))

	view, err := f.d.Pending(ctx)
	require.NoError(t, err)
	require.Len(t, view.Items, 2)
	assert.Equal(t, pending.StatusOverdue, view.Items[0].Status)
	assert.Equal(t, 110.0, view.Items[0].PendingQty)
	assert.Equal(t, 1, view.Items[0].OverdueDays)
	assert.Equal(t, pending.StatusArchived, view.Items[1].Status)
	assert.Equal(t, pending.Counts{Overdue: 1, Archived: 1, PendingQty: 110}, view.Counts)
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.PendingItems.WithLabelValues("overdue")))

	require.NoError(t, f.d.Unarchive(ctx, "Globex", "Wrap"))
	view, err = f.d.Pending(ctx)
	require.NoError(t, err)
	assert.Equal(t, pending.StatusPending, view.Items[1].Status)

	assert.ErrorIs(t, f.d.Archive(ctx, " ", "Wrap"), ErrInvalidEntry)
}

func TestDashboard_PendingPlanningFailure(t *testing.T) {
	f := newFixture(t)
	f.plan.err = errors.New("quota exceeded")

	_, err := f.d.Pending(context.Background())
	assert.ErrorContains(t, err, "quota exceeded")
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.PlanningFetchFailures))
}

func TestDashboard_BackfillMedia(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.plan.items = []planning.LineItem{
		{Client: "Acme", Project: "Run", Product: "A", PrintMedia: "Vinyl", Lamination: "Matte"},
		{Client: "Acme", Project: "Run", Product: "B", PrintMedia: "Canvas"},
	}
	missing := f.log(t, entries.Raw{ClientName: "Acme", ProjectName: "Run", Product: "A", BatchQty: 10, Rejections: entries.Stages{Print: 1}})
	partial := f.log(t, entries.Raw{ClientName: "Acme", ProjectName: "Run", Product: "B", PrintMedia: "Paper", BatchQty: 5})
	f.log(t, entries.Raw{ClientName: "Other", ProjectName: "Run", Product: "A", BatchQty: 5})

	n, err := f.d.BackfillMedia(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	got, err := f.d.Entry(ctx, missing.ID)
	require.NoError(t, err)
	assert.Equal(t, "Vinyl", got.PrintMedia)
	assert.Equal(t, "Matte", got.Lamination)
	assert.Equal(t, 9.0, got.QtyDelivered)

	got, err = f.d.Entry(ctx, partial.ID)
	require.NoError(t, err)
	assert.Equal(t, "Paper", got.PrintMedia)
	assert.Empty(t, got.Lamination)
}

func TestDashboard_RecomputeAll(t *testing.T) {
	f := newFixture(t)
	stale := entries.New(entries.Raw{Date: date(2026, 10, 1), ClientName: "Acme", ProjectName: "Run", Product: "A", MasterQty: 10, BatchQty: 10})
	stale.ID = 7
	stale.QtyDelivered = 0
	f.store.Put(stale)

	scanned, changed, err := f.d.RecomputeAll(context.Background(), true)
	require.NoError(t, err)
	assert.Equal(t, 1, scanned)
	assert.Equal(t, 1, changed)

	_, changed, err = f.d.RecomputeAll(context.Background(), false)
	require.NoError(t, err)
	assert.Equal(t, 1, changed)
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.EntriesWritten.WithLabelValues("recompute")))
}

func TestDashboard_MonthlyReport(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.log(t, entries.Raw{Date: date(2026, 9, 3), ClientName: "Acme", ProjectName: "Run", Product: "A", MasterQty: 100, BatchQty: 100,
		Rejections: entries.Stages{Lamination: 4}})

	_, err := f.d.MonthlyReport(ctx, date(2026, 8, 1))
	assert.ErrorIs(t, err, projects.ErrNoData)

	r, err := f.d.SendMonthlyReport(ctx, date(2026, 9, 15))
	require.NoError(t, err)
	assert.Equal(t, "September 2026", r.Label)
	assert.Equal(t, "ops@example.com", f.mailer.to)
	assert.Equal(t, "Quality report: September 2026", f.mailer.subject)
	assert.Contains(t, f.mailer.body, "4%")

	f.d.mailer = nil
	_, err = f.d.SendMonthlyReport(ctx, date(2026, 9, 15))
	assert.ErrorIs(t, err, ErrMailDisabled)
}

func TestDashboard_Export(t *testing.T) {
	f := newFixture(t)
	f.log(t, entries.Raw{ClientName: "Acme", ProjectName: "Run", Product: "A", MasterQty: 10, BatchQty: 10})

	data, name, err := f.d.Export(context.Background(), Query{Period: Period{Mode: ModeAll}, Client: "Acme"})
	require.NoError(t, err)
	assert.Equal(t, "projects_Acme_2026-10-19.xlsx", name)

	wb, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer func() { _ = wb.Close() }()
	rows, err := wb.GetRows("Projects")
	require.NoError(t, err)
	assert.Len(t, rows, 2)
}
