package projects

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qualitypulse/tracker/internal/domain/entries"
)

func withVertical(e entries.Entry, v string) entries.Entry {
	e.Vertical = v
	return e
}

func TestComputeMetrics(t *testing.T) {
	rows := []entries.Entry{
		withVertical(entry("Acme", "P1", "A", 100, 100, entries.Stages{Design: 3, Print: 1}), "IDE Autoworks"),
		withVertical(entry("Acme", "P1", "A", 100, 50, entries.Stages{Design: 1}), "IDE Autoworks"),
		withVertical(entry("Globex", "P2", "B", 100, 100, entries.Stages{Cut: 5}), "Subumi"),
		withVertical(entry("Initech", "P3", "C", 200, 100, entries.Stages{Media: 2}), "Other"),
	}
	cfg := Config{TargetRate: 3, Verticals: []string{"IDE Autoworks", "IDE Commercial", "Subumi"}}

	m := ComputeMetrics(Consolidate(rows), cfg)

	assert.Equal(t, 12.0, m.TotalRejected)
	assert.Equal(t, 400.0, m.TotalMaster)
	assert.Equal(t, 3.0, m.OverallRate)
	assert.False(t, m.AboveTarget)
	assert.Equal(t, 3, m.Projects)
	assert.Equal(t, 4, m.Entries)

	auto, ok := m.Vertical("IDE Autoworks")
	require.True(t, ok)
	assert.Equal(t, 5.0, auto.Rejected)
	assert.Equal(t, 100.0, auto.Master)
	assert.Equal(t, 5.0, auto.Rate)

	comm, ok := m.Vertical("IDE Commercial")
	require.True(t, ok)
	assert.Equal(t, 0.0, comm.Rate)

	_, ok = m.Vertical("Other")
	assert.False(t, ok)

	assert.Equal(t, 1.0, m.Stage(entries.StageDesign).Rate)
	assert.Equal(t, 4.0, m.Stage(entries.StageDesign).Rejected)
	assert.Equal(t, 1.25, m.Stage(entries.StageCut).Rate)
	assert.Equal(t, 0.25, m.Stage(entries.StagePrint).Rate)
	assert.Len(t, m.Stages, len(entries.AllStages))
}

func TestComputeMetrics_EmptyAndCustomTaxonomy(t *testing.T) {
	m := ComputeMetrics(nil, Config{TargetRate: 1, Verticals: []string{"Signage"}})
	assert.Equal(t, 0.0, m.OverallRate)
	require.Len(t, m.Verticals, 1)
	assert.Equal(t, "Signage", m.Verticals[0].Name)

	rows := []entries.Entry{withVertical(entry("Acme", "P", "A", 10, 10, entries.Stages{Print: 2}), "Signage")}
	m = ComputeMetrics(Consolidate(rows), Config{TargetRate: 1, Verticals: []string{"Signage"}})
	assert.True(t, m.AboveTarget)
	assert.Equal(t, 20.0, m.Verticals[0].Rate)
}

func TestBuildMonthlyReport(t *testing.T) {
	oct := func(d int) time.Time { return time.Date(2026, 10, d, 0, 0, 0, 0, time.UTC) }
	mk := func(client string, d int, master, batch float64, rej entries.Stages) entries.Entry {
		e := entry(client, "Run", "A", master, batch, rej)
		e.Date = oct(d)
		return e
	}
	rows := []entries.Entry{
		mk("A", 1, 100, 100, entries.Stages{Print: 9}),
		mk("B", 2, 100, 100, entries.Stages{Cut: 4, Design: 1}),
		mk("C", 3, 100, 100, entries.Stages{Media: 2}),
		mk("D", 4, 100, 100, entries.Stages{Packaging: 1}),
		mk("E", 5, 100, 100, entries.Stages{Lamination: 3}),
		mk("F", 6, 100, 100, entries.Stages{}),
	}
	september := mk("Z", 1, 100, 100, entries.Stages{Print: 50})
	september.Date = time.Date(2026, 9, 30, 0, 0, 0, 0, time.UTC)
	rows = append(rows, september)

	r, err := BuildMonthlyReport(rows, oct(18), DefaultConfig())
	require.NoError(t, err)
	assert.Equal(t, "October 2026", r.Label)
	assert.Equal(t, oct(1), r.From)
	assert.Equal(t, oct(31), r.To)
	assert.Equal(t, 20.0, r.Metrics.TotalRejected)
	assert.Equal(t, 600.0, r.Metrics.TotalMaster)

	require.Len(t, r.TopStages, 3)
	assert.Equal(t, entries.StagePrint, r.TopStages[0].Stage)
	assert.Equal(t, entries.StageCut, r.TopStages[1].Stage)
	assert.Equal(t, entries.StageLamination, r.TopStages[2].Stage)

	require.Len(t, r.TopProjects, 5)
	assert.Equal(t, "A", r.TopProjects[0].ClientName)
	assert.Equal(t, 9.0, r.TopProjects[0].Rate)
	assert.Equal(t, "B", r.TopProjects[1].ClientName)

	body := r.Text()
	assert.Contains(t, body, "Quality report for October 2026")
	assert.Contains(t, body, "Overall rejection rate: 3.33%")
	assert.Contains(t, body, "1. A - Run: 9 rejected (9%)")

	_, err = BuildMonthlyReport(rows, time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC), DefaultConfig())
	assert.True(t, errors.Is(err, ErrNoData))
}
