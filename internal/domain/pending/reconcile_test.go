package pending

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qualitypulse/tracker/internal/domain/entries"
	"github.com/qualitypulse/tracker/internal/domain/planning"
)

var today = time.Date(2026, 10, 18, 15, 30, 0, 0, time.UTC)

func date(y int, m time.Month, d int) *time.Time {
	t := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return &t
}

func line(client, project, product string, master float64, due *time.Time) planning.LineItem {
	return planning.LineItem{Client: client, Project: project, Product: product, MasterQty: master, DeliveryDate: due}
}

func delivered(client, project, product string, batch float64) entries.Entry {
	return entries.New(entries.Raw{ClientName: client, ProjectName: project, Product: product, MasterQty: 100, BatchQty: batch})
}

func TestReconcile_EndToEndOverdue(t *testing.T) {
	yesterday := date(2026, 10, 17)
	planned := []planning.LineItem{
		line("Acme", "Banner Run", "A", 100, yesterday),
		line("Acme", "Banner Run", "B", 50, yesterday),
	}
	logged := []entries.Entry{delivered("Acme", "Banner Run", "A", 40)}

	items := Reconcile(planned, logged, nil, today)
	require.Len(t, items, 1)
	it := items[0]
	assert.Equal(t, 150.0, it.MasterQty)
	assert.Equal(t, 40.0, it.Delivered)
	assert.Equal(t, 110.0, it.PendingQty)
	assert.Equal(t, StatusOverdue, it.Status)
	assert.GreaterOrEqual(t, it.OverdueDays, 1)
	assert.Equal(t, 1, it.OverdueDays)
	assert.Equal(t, 2, it.LineItems)
	assert.Equal(t, 1, it.Entries)
}

func TestReconcile_StatusPriority(t *testing.T) {
	future := date(2026, 11, 1)
	past := date(2026, 10, 1)

	tests := []struct {
		name     string
		planned  []planning.LineItem
		logged   []entries.Entry
		archived ArchiveSet
		want     Status
		included bool
	}{
		{
			name:     "overdue outranks partial",
			planned:  []planning.LineItem{line("C", "P", "A", 100, past)},
			logged:   []entries.Entry{delivered("C", "P", "A", 10)},
			want:     StatusOverdue,
			included: true,
		},
		{
			name:     "archived outranks overdue",
			planned:  []planning.LineItem{line("C", "P", "A", 100, past)},
			archived: NewArchiveSet(entries.KeyOf("C", "P")),
			want:     StatusArchived,
			included: true,
		},
		{
			name:     "archived completed still surfaces",
			planned:  []planning.LineItem{line("C", "P", "A", 10, future)},
			logged:   []entries.Entry{delivered("C", "P", "A", 10)},
			archived: NewArchiveSet(entries.KeyOf(" C ", "P")),
			want:     StatusArchived,
			included: true,
		},
		{
			name:     "partial when some production logged",
			planned:  []planning.LineItem{line("C", "P", "A", 100, future)},
			logged:   []entries.Entry{delivered("C", "P", "A", 10)},
			want:     StatusPartial,
			included: true,
		},
		{
			name:     "pending when nothing logged",
			planned:  []planning.LineItem{line("C", "P", "A", 100, nil)},
			want:     StatusPending,
			included: true,
		},
		{
			name:    "completed is dropped",
			planned: []planning.LineItem{line("C", "P", "A", 10, future)},
			logged:  []entries.Entry{delivered("C", "P", "A", 10)},
		},
		{
			name:     "due today is not overdue",
			planned:  []planning.LineItem{line("C", "P", "A", 100, date(2026, 10, 18))},
			want:     StatusPending,
			included: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var checker ArchiveChecker
			if tt.archived != nil {
				checker = tt.archived
			}
			items := Reconcile(tt.planned, tt.logged, checker, today)
			if !tt.included {
				assert.Empty(t, items)
				return
			}
			require.Len(t, items, 1)
			assert.Equal(t, tt.want, items[0].Status)
		})
	}
}

func TestReconcile_PendingNeverNegative(t *testing.T) {
	planned := []planning.LineItem{line("C", "P", "A", 10, nil)}
	logged := []entries.Entry{delivered("C", "P", "A", 25)}
	items := Reconcile(planned, logged, NewArchiveSet(entries.KeyOf("C", "P")), today)
	require.Len(t, items, 1)
	assert.Equal(t, 0.0, items[0].PendingQty)
	assert.Equal(t, 25.0, items[0].Delivered)
}

func TestReconcile_TrimmedMatchingAndEarliestDates(t *testing.T) {
	planned := []planning.LineItem{
		{Client: "Acme ", Project: "Run", Product: "A", MasterQty: 10, DeliveryDate: date(2026, 12, 5), ApprovalDate: date(2026, 9, 3)},
		{Client: "Acme", Project: " Run", Product: "B", MasterQty: 10, DeliveryDate: date(2026, 11, 20)},
		{Client: "Acme", Project: "Run", Product: "C", MasterQty: 10, ApprovalDate: date(2026, 9, 1)},
	}
	logged := []entries.Entry{
		delivered(" Acme", "Run ", "A", 5),
		delivered("acme", "Run", "A", 5),
	}

	items := Reconcile(planned, logged, nil, today)
	require.Len(t, items, 1)
	it := items[0]
	assert.Equal(t, "Acme", it.Client)
	assert.Equal(t, "Run", it.Project)
	assert.Equal(t, 30.0, it.MasterQty)
	assert.Equal(t, 5.0, it.Delivered)
	assert.Equal(t, 1, it.Entries)
	assert.Equal(t, *date(2026, 11, 20), *it.DeliveryDate)
	assert.Equal(t, *date(2026, 9, 1), *it.ApprovalDate)
	assert.Equal(t, StatusPartial, it.Status)
}

func TestReconcile_Ordering(t *testing.T) {
	planned := []planning.LineItem{
		line("NoDate", "P", "A", 10, nil),
		line("Later", "P", "A", 10, date(2026, 12, 1)),
		line("Sooner", "P", "A", 10, date(2026, 11, 1)),
		line("Partial", "P", "A", 10, date(2026, 12, 24)),
		line("Late2", "P", "A", 10, date(2026, 10, 10)),
		line("Late1", "P", "A", 10, date(2026, 10, 1)),
		line("Shelved", "P", "A", 10, date(2026, 10, 1)),
	}
	logged := []entries.Entry{delivered("Partial", "P", "A", 1)}
	archived := NewArchiveSet(entries.KeyOf("Shelved", "P"))

	items := Reconcile(planned, logged, archived, today)
	var clients []string
	for _, it := range items {
		clients = append(clients, it.Client)
	}
	assert.Equal(t, []string{"Late1", "Late2", "Partial", "Sooner", "Later", "NoDate", "Shelved"}, clients)
	assert.Equal(t, 17, items[0].OverdueDays)

	c := Summarize(items)
	assert.Equal(t, Counts{Overdue: 2, Partial: 1, Pending: 3, Archived: 1, PendingQty: 59}, c)
}
