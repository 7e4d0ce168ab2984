package projects

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/qualitypulse/tracker/internal/domain/entries"
	"github.com/qualitypulse/tracker/internal/domain/rates"
)

var ErrNoData = errors.New("no entries in period")

const (
	topStagesN   = 3
	topProjectsN = 5
)

type ProjectRate struct {
	ClientName  string  `json:"client_name"`
	ProjectName string  `json:"project_name"`
	Rejected    float64 `json:"rejected"`
	Rate        float64 `json:"rate"`
}

// Report is the monthly quality summary.
type Report struct {
	Label       string        `json:"label"`
	From        time.Time     `json:"from"`
	To          time.Time     `json:"to"`
	Metrics     Metrics       `json:"metrics"`
	Stages      []StageRate   `json:"stages"`
	TopStages   []StageRate   `json:"top_stages"`
	TopProjects []ProjectRate `json:"top_projects"`
}

// MonthRange returns the first and last day of the month containing t.
func MonthRange(t time.Time) (time.Time, time.Time) {
	from := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
	return from, from.AddDate(0, 1, -1)
}

// BuildMonthlyReport summarises the rows dated inside month's calendar month.
func BuildMonthlyReport(rows []entries.Entry, month time.Time, cfg Config) (Report, error) {
	from, to := MonthRange(month)
	f := entries.Filter{From: from, To: to}

	inMonth := make([]entries.Entry, 0, len(rows))
	for _, e := range rows {
		if f.Match(e) {
			inMonth = append(inMonth, e)
		}
	}
	if len(inMonth) == 0 {
		return Report{}, fmt.Errorf("%s: %w", month.Format("January 2006"), ErrNoData)
	}

	aggs := Consolidate(inMonth)
	r := Report{
		Label:   from.Format("January 2006"),
		From:    from,
		To:      to,
		Metrics: ComputeMetrics(aggs, cfg),
	}

	r.Stages = append([]StageRate(nil), r.Metrics.Stages...)
	sort.SliceStable(r.Stages, func(i, j int) bool { return r.Stages[i].Rejected > r.Stages[j].Rejected })
	r.TopStages = r.Stages[:min(topStagesN, len(r.Stages))]

	projects := make([]ProjectRate, 0, len(aggs))
	for _, a := range aggs {
		projects = append(projects, ProjectRate{
			ClientName:  a.ClientName,
			ProjectName: a.ProjectName,
			Rejected:    a.QtyRejected,
			Rate:        a.RejectionPercent,
		})
	}
	sort.SliceStable(projects, func(i, j int) bool { return projects[i].Rejected > projects[j].Rejected })
	r.TopProjects = projects[:min(topProjectsN, len(projects))]
	return r, nil
}

// Text renders the report as a plain-text email body.
func (r Report) Text() string {
	var sb strings.Builder
	m := r.Metrics
	fmt.Fprintf(&sb, "Quality report for %s (%s to %s)\n\n", r.Label, r.From.Format("2006-01-02"), r.To.Format("2006-01-02"))
	fmt.Fprintf(&sb, "Overall rejection rate: %s (target %s)\n", rates.FormatPercent(m.OverallRate), rates.FormatPercent(m.TargetRate))
	fmt.Fprintf(&sb, "Rejected: %s of %s ordered across %d projects, %d entries\n\n",
		rates.Format(m.TotalRejected), rates.Format(m.TotalMaster), m.Projects, m.Entries)

	sb.WriteString("Verticals:\n")
	for _, v := range m.Verticals {
		fmt.Fprintf(&sb, "  %s: %s (%s rejected)\n", v.Name, rates.FormatPercent(v.Rate), rates.Format(v.Rejected))
	}

	sb.WriteString("\nStages:\n")
	for _, s := range r.Stages {
		fmt.Fprintf(&sb, "  %s: %s (%s rejected)\n", s.Stage, rates.FormatPercent(s.Rate), rates.Format(s.Rejected))
	}

	sb.WriteString("\nTop rejection areas:\n")
	for i, s := range r.TopStages {
		fmt.Fprintf(&sb, "  %d. %s: %s\n", i+1, s.Stage, rates.Format(s.Rejected))
	}

	sb.WriteString("\nHigh impact projects:\n")
	for i, p := range r.TopProjects {
		fmt.Fprintf(&sb, "  %d. %s - %s: %s rejected (%s)\n", i+1, p.ClientName, p.ProjectName,
			rates.Format(p.Rejected), rates.FormatPercent(p.Rate))
	}
	return sb.String()
}
