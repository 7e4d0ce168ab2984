package bot

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/qualitypulse/tracker/internal/dashboard"
	"github.com/qualitypulse/tracker/internal/domain/entries"
	"github.com/qualitypulse/tracker/internal/domain/pending"
	"github.com/qualitypulse/tracker/internal/domain/projects"
	"github.com/qualitypulse/tracker/internal/domain/rates"
)

const (
	maxProjectLines = 20
	maxPendingLines = 25
	maxEntryLines   = 15
)

var (
	errNeedPair       = errors.New("expected <client> | <project>")
	errBadRejections  = errors.New("send six numbers: design print lam cut pack media")
	errBadQty         = errors.New("send a positive number")
	errBadMonth       = errors.New("month must look like 2026-09")
	errNegativeReject = errors.New("rejections cannot be negative")
)

// parsePair splits "client | project".
func parsePair(s string) (string, string, error) {
	client, project, ok := strings.Cut(s, "|")
	client, project = strings.TrimSpace(client), strings.TrimSpace(project)
	if !ok || client == "" || project == "" {
		return "", "", errNeedPair
	}
	return client, project, nil
}

// parseQty reads a strictly positive quantity. Commas are accepted as decimal
// separators.
func parseQty(s string) (float64, error) {
	v, err := strconv.ParseFloat(strings.ReplaceAll(strings.TrimSpace(s), ",", "."), 64)
	if err != nil || rates.Sanitize(v) == 0 {
		return 0, errBadQty
	}
	return v, nil
}

// parseRejections reads the six stage counts in display order. A single "0"
// means no rejections at all.
func parseRejections(s string) (entries.Stages, error) {
	fields := strings.FieldsFunc(s, func(r rune) bool { return r == ' ' || r == ',' || r == ';' || r == '\n' })
	if len(fields) == 1 && fields[0] == "0" {
		return entries.Stages{}, nil
	}
	if len(fields) != len(entries.AllStages) {
		return entries.Stages{}, errBadRejections
	}
	vals := make([]float64, len(fields))
	for i, f := range fields {
		v, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return entries.Stages{}, errBadRejections
		}
		if v < 0 {
			return entries.Stages{}, errNegativeReject
		}
		vals[i] = v
	}
	return entries.Stages{
		Design:     vals[0],
		Print:      vals[1],
		Lamination: vals[2],
		Cut:        vals[3],
		Packaging:  vals[4],
		Media:      vals[5],
	}, nil
}

// parseMonth reads "YYYY-MM"; an empty string means the previous month.
func parseMonth(s string, today time.Time) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		first := time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, today.Location())
		return first.AddDate(0, -1, 0), nil
	}
	t, err := time.Parse("2006-01", s)
	if err != nil {
		return time.Time{}, errBadMonth
	}
	return t, nil
}

func formatStages(s entries.Stages) string {
	return fmt.Sprintf("design %s, print %s, lam %s, cut %s, pack %s, media %s",
		rates.Format(s.Design), rates.Format(s.Print), rates.Format(s.Lamination),
		rates.Format(s.Cut), rates.Format(s.Packaging), rates.Format(s.Media))
}

func formatOverview(ov dashboard.Overview) string {
	var sb strings.Builder
	m := ov.Metrics
	mark := "✅"
	if m.AboveTarget {
		mark = "⚠️"
	}
	fmt.Fprintf(&sb, "%s\n%s Rejection rate %s (target %s)\n", ov.Label, mark,
		rates.FormatPercent(m.OverallRate), rates.FormatPercent(m.TargetRate))
	fmt.Fprintf(&sb, "Rejected %s of %s ordered, delivered %s\n%d projects, %d entries\n",
		rates.Format(m.TotalRejected), rates.Format(m.TotalMaster), rates.Format(m.TotalDelivered), m.Projects, m.Entries)
	if m.Projects == 0 {
		return sb.String()
	}

	sb.WriteString("\nVerticals:\n")
	for _, v := range m.Verticals {
		fmt.Fprintf(&sb, "• %s: %s\n", v.Name, rates.FormatPercent(v.Rate))
	}
	sb.WriteString("\nStages:\n")
	for _, s := range m.Stages {
		fmt.Fprintf(&sb, "• %s: %s (%s)\n", s.Stage, rates.FormatPercent(s.Rate), rates.Format(s.Rejected))
	}
	return sb.String()
}

func formatProjects(aggs []projects.Aggregate) string {
	if len(aggs) == 0 {
		return "No entries in this period."
	}
	var sb strings.Builder
	client := ""
	for i, a := range aggs {
		if i == maxProjectLines {
			fmt.Fprintf(&sb, "\n… and %d more, use /export for the full list", len(aggs)-i)
			break
		}
		if a.ClientName != client {
			client = a.ClientName
			fmt.Fprintf(&sb, "\n%s\n", client)
		}
		fmt.Fprintf(&sb, "• %s: %s rejected of %s (%s), delivered %s, left %s",
			a.ProjectName, rates.Format(a.QtyRejected), rates.Format(a.MasterQty),
			rates.FormatPercent(a.RejectionPercent), rates.Format(a.QtyDelivered), rates.Format(a.Remaining()))
		if a.InStock > 0 {
			fmt.Fprintf(&sb, ", stock %s", rates.Format(a.InStock))
		}
		sb.WriteString("\n")
	}
	return strings.TrimLeft(sb.String(), "\n")
}

func statusBadge(s pending.Status) string {
	switch s {
	case pending.StatusOverdue:
		return "🔴"
	case pending.StatusPartial:
		return "🟡"
	case pending.StatusArchived:
		return "🗄"
	}
	return "⚪️"
}

func formatPending(v dashboard.PendingView) string {
	c := v.Counts
	var sb strings.Builder
	fmt.Fprintf(&sb, "Pending production: %s units\nOverdue %d, partial %d, not started %d, archived %d\n",
		rates.Format(c.PendingQty), c.Overdue, c.Partial, c.Pending, c.Archived)
	for i, it := range v.Items {
		if i == maxPendingLines {
			fmt.Fprintf(&sb, "… and %d more\n", len(v.Items)-i)
			break
		}
		fmt.Fprintf(&sb, "\n%s %s | %s: %s of %s left", statusBadge(it.Status), it.Client, it.Project,
			rates.Format(it.PendingQty), rates.Format(it.MasterQty))
		if it.DeliveryDate != nil {
			fmt.Fprintf(&sb, ", due %s", it.DeliveryDate.Format("2006-01-02"))
		}
		if it.OverdueDays > 0 {
			fmt.Fprintf(&sb, " (%dd late)", it.OverdueDays)
		}
	}
	return sb.String()
}

func formatEntries(rows []entries.Entry) string {
	if len(rows) == 0 {
		return "No entries."
	}
	var sb strings.Builder
	for i, e := range rows {
		if i == maxEntryLines {
			fmt.Fprintf(&sb, "… and %d more\n", len(rows)-i)
			break
		}
		fmt.Fprintf(&sb, "#%d %s %s: batch %s, rejected %s (%s), delivered %s\n",
			e.ID, e.Date.Format("2006-01-02"), e.Product, rates.Format(e.BatchQty),
			rates.Format(e.QtyRejected), rates.FormatPercent(e.RejectionPercent), rates.Format(e.QtyDelivered))
	}
	return sb.String()
}

// formatDraft previews an entry with its derived figures before saving.
func formatDraft(raw entries.Raw) string {
	d := entries.Derive(raw)
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s | %s\nProduct: %s\n", raw.ClientName, raw.ProjectName, raw.Product)
	if raw.PrintMedia != "" || raw.Lamination != "" {
		fmt.Fprintf(&sb, "Media: %s, lamination: %s\n", orDash(raw.PrintMedia), orDash(raw.Lamination))
	}
	fmt.Fprintf(&sb, "Order qty: %s, batch: %s\n", rates.Format(raw.MasterQty), rates.Format(raw.BatchQty))
	fmt.Fprintf(&sb, "Rejections: %s\n", formatStages(raw.Rejections))
	if raw.Reason != "" {
		fmt.Fprintf(&sb, "Reason: %s\n", raw.Reason)
	}
	fmt.Fprintf(&sb, "\nRejected %s, delivered %s, rate %s",
		rates.Format(d.QtyRejected), rates.Format(d.QtyDelivered), rates.FormatPercent(d.RejectionPercent))
	if d.InStock > 0 {
		fmt.Fprintf(&sb, ", to stock %s", rates.Format(d.InStock))
	}
	return sb.String()
}

func formatReport(r projects.Report) string {
	return r.Text()
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
