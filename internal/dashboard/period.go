package dashboard

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/qualitypulse/tracker/internal/domain/entries"
)

type Mode string

const (
	ModeToday Mode = "today"
	ModeMonth Mode = "month"
	ModeAll   Mode = "all"
	ModeRange Mode = "range"
)

var ErrBadPeriod = errors.New("bad period")

// Period selects entries by date. From and To are only read for ModeRange.
type Period struct {
	Mode Mode
	From time.Time
	To   time.Time
}

// ParsePeriod reads a mode name and optional YYYY-MM-DD bounds. An empty mode
// means ModeAll; bounds alone imply ModeRange.
func ParsePeriod(mode, from, to string) (Period, error) {
	p := Period{Mode: Mode(strings.ToLower(strings.TrimSpace(mode)))}
	var err error
	if from != "" {
		if p.From, err = time.Parse("2006-01-02", from); err != nil {
			return p, fmt.Errorf("%w: from %q", ErrBadPeriod, from)
		}
	}
	if to != "" {
		if p.To, err = time.Parse("2006-01-02", to); err != nil {
			return p, fmt.Errorf("%w: to %q", ErrBadPeriod, to)
		}
	}
	if p.Mode == "" {
		p.Mode = ModeAll
		if from != "" || to != "" {
			p.Mode = ModeRange
		}
	}
	switch p.Mode {
	case ModeToday, ModeMonth, ModeAll:
	case ModeRange:
		if !p.From.IsZero() && !p.To.IsZero() && p.To.Before(p.From) {
			return p, fmt.Errorf("%w: to before from", ErrBadPeriod)
		}
	default:
		return p, fmt.Errorf("%w: unknown mode %q", ErrBadPeriod, mode)
	}
	return p, nil
}

// bounds resolves the period against today's calendar date.
func (p Period) bounds(today time.Time) (time.Time, time.Time) {
	switch p.Mode {
	case ModeToday:
		return today, today
	case ModeMonth:
		return time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, today.Location()), today
	case ModeRange:
		return p.From, p.To
	}
	return time.Time{}, time.Time{}
}

// Label is a short human description used in bot replies and file names.
func (p Period) Label(today time.Time) string {
	from, to := p.bounds(today)
	switch p.Mode {
	case ModeToday:
		return "Today " + today.Format("2006-01-02")
	case ModeMonth:
		return today.Format("January 2006")
	case ModeRange:
		return fmt.Sprintf("%s .. %s", dateOrDots(from), dateOrDots(to))
	}
	return "All time"
}

func dateOrDots(t time.Time) string {
	if t.IsZero() {
		return "…"
	}
	return t.Format("2006-01-02")
}

// Query is a period plus optional equality constraints on client, project and vertical.
type Query struct {
	Period   Period
	Client   string
	Project  string
	Vertical string
}

func (q Query) filter(today time.Time) entries.Filter {
	from, to := q.Period.bounds(today)
	return entries.Filter{
		ClientName:  strings.TrimSpace(q.Client),
		ProjectName: strings.TrimSpace(q.Project),
		Vertical:    strings.TrimSpace(q.Vertical),
		From:        from,
		To:          to,
	}
}
