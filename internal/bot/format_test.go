package bot

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qualitypulse/tracker/internal/dashboard"
	"github.com/qualitypulse/tracker/internal/domain/entries"
	"github.com/qualitypulse/tracker/internal/domain/pending"
	"github.com/qualitypulse/tracker/internal/domain/projects"
)

func TestParsePair(t *testing.T) {
	c, p, err := parsePair(" Acme | Banner Run ")
	require.NoError(t, err)
	assert.Equal(t, "Acme", c)
	assert.Equal(t, "Banner Run", p)

	for _, bad := range []string{"", "Acme", "Acme |", "| Run"} {
		_, _, err := parsePair(bad)
		assert.ErrorIs(t, err, errNeedPair, bad)
	}
}

func TestParseQty(t *testing.T) {
	v, err := parseQty("12,5")
	require.NoError(t, err)
	assert.Equal(t, 12.5, v)

	for _, bad := range []string{"0", "-3", "abc", "NaN", "Inf"} {
		_, err := parseQty(bad)
		assert.ErrorIs(t, err, errBadQty, bad)
	}
}

func TestParseRejections(t *testing.T) {
	tests := []struct {
		in      string
		want    entries.Stages
		wantErr error
	}{
		{in: "0", want: entries.Stages{}},
		{in: "1 2 3 4 5 6", want: entries.Stages{Design: 1, Print: 2, Lamination: 3, Cut: 4, Packaging: 5, Media: 6}},
		{in: "0,2,0;1 0 0.5", want: entries.Stages{Print: 2, Cut: 1, Media: 0.5}},
		{in: "1 2 3", wantErr: errBadRejections},
		{in: "1 2 3 4 5 x", wantErr: errBadRejections},
		{in: "1 2 3 4 5 -1", wantErr: errNegativeReject},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := parseRejections(tt.in)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseMonth(t *testing.T) {
	today := time.Date(2026, 1, 14, 0, 0, 0, 0, time.UTC)
	m, err := parseMonth("", today)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 12, 1, 0, 0, 0, 0, time.UTC), m)

	m, err = parseMonth("2026-09", today)
	require.NoError(t, err)
	assert.Equal(t, time.September, m.Month())

	_, err = parseMonth("09/2026", today)
	assert.ErrorIs(t, err, errBadMonth)
}

func TestFormatDraft(t *testing.T) {
	text := formatDraft(entries.Raw{
		ClientName: "Acme", ProjectName: "Run", Product: "A", PrintMedia: "Vinyl",
		MasterQty: 100, BatchQty: 110, Rejections: entries.Stages{Print: 2, Cut: 1},
	})
	assert.Contains(t, text, "Acme | Run")
	assert.Contains(t, text, "Media: Vinyl, lamination: -")
	assert.Contains(t, text, "Rejected 3, delivered 107, rate 3%, to stock 7")
}

func TestFormatOverviewAndProjects(t *testing.T) {
	ov := dashboard.Overview{
		Label: "October 2026",
		Metrics: projects.Metrics{
			OverallRate: 4.56, TargetRate: 3, AboveTarget: true, Projects: 1, Entries: 2,
			TotalRejected: 10, TotalMaster: 219.3, TotalDelivered: 200,
			Verticals: []projects.VerticalRate{{Name: "Subumi", Rate: 4.56}},
			Stages:    []projects.StageRate{{Stage: entries.StagePrint, Rate: 4.56, Rejected: 10}},
		},
		Projects: []projects.Aggregate{{ClientName: "Acme", ProjectName: "Run", MasterQty: 219.3, QtyRejected: 10,
			QtyDelivered: 200, RejectionPercent: 4.56}},
	}
	text := formatOverview(ov)
	assert.Contains(t, text, "⚠️ Rejection rate 4.56% (target 3%)")
	assert.Contains(t, text, "• Subumi: 4.56%")
	assert.Contains(t, text, "• print: 4.56% (10)")

	list := formatProjects(ov.Projects)
	assert.Contains(t, list, "Acme\n• Run: 10 rejected of 219.3 (4.56%), delivered 200, left 19.3")
	assert.Equal(t, "No entries in this period.", formatProjects(nil))
}

func TestFormatPending(t *testing.T) {
	due := time.Date(2026, 10, 17, 0, 0, 0, 0, time.UTC)
	text := formatPending(dashboard.PendingView{
		Items: []pending.Item{{Client: "Acme", Project: "Banner Run", MasterQty: 150, PendingQty: 110,
			Status: pending.StatusOverdue, OverdueDays: 1, DeliveryDate: &due}},
		Counts: pending.Counts{Overdue: 1, PendingQty: 110},
	})
	assert.Contains(t, text, "Pending production: 110 units")
	assert.Contains(t, text, "🔴 Acme | Banner Run: 110 of 150 left, due 2026-10-17 (1d late)")
}
