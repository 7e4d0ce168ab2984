// Package pending reconciles planned order quantities with logged deliveries to
// build the pending-production work queue.
package pending

import (
	"sort"
	"time"

	"github.com/qualitypulse/tracker/internal/domain/entries"
	"github.com/qualitypulse/tracker/internal/domain/planning"
	"github.com/qualitypulse/tracker/internal/domain/rates"
)

type Status string

const (
	StatusOverdue   Status = "overdue"
	StatusPartial   Status = "partial"
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
	StatusArchived  Status = "archived"
)

// Rank orders statuses for display, most urgent first.
func (s Status) Rank() int {
	switch s {
	case StatusOverdue:
		return 0
	case StatusPartial:
		return 1
	case StatusPending:
		return 2
	case StatusCompleted:
		return 3
	case StatusArchived:
		return 4
	}
	return 5
}

type Item struct {
	Client       string     `json:"client"`
	Project      string     `json:"project"`
	Vertical     string     `json:"vertical"`
	MasterQty    float64    `json:"master_qty"`
	Delivered    float64    `json:"delivered"`
	PendingQty   float64    `json:"pending_qty"`
	DeliveryDate *time.Time `json:"delivery_date,omitempty"`
	ApprovalDate *time.Time `json:"approval_date,omitempty"`
	Status       Status     `json:"status"`
	OverdueDays  int        `json:"overdue_days"`
	LineItems    int        `json:"line_items"`
	Entries      int        `json:"entries"`
}

func (it Item) Key() entries.ProjectKey { return entries.KeyOf(it.Client, it.Project) }

// ArchiveChecker tells whether the user archived a (client, project) pair.
type ArchiveChecker interface {
	IsArchived(client, project string) bool
}

// ArchiveSet is an in-memory snapshot of archived pairs.
type ArchiveSet map[entries.ProjectKey]struct{}

func NewArchiveSet(keys ...entries.ProjectKey) ArchiveSet {
	s := make(ArchiveSet, len(keys))
	for _, k := range keys {
		s[entries.KeyOf(k.Client, k.Project)] = struct{}{}
	}
	return s
}

func (s ArchiveSet) IsArchived(client, project string) bool {
	_, ok := s[entries.KeyOf(client, project)]
	return ok
}

type group struct {
	item  Item
	order int
}

// Reconcile builds one item per planned (client, project) pair that still has
// quantity to produce, plus every archived pair. today is compared at day
// granularity in its own location.
//
// Both inputs are treated as snapshots; nothing is cached between calls.
func Reconcile(planned []planning.LineItem, logged []entries.Entry, archived ArchiveChecker, today time.Time) []Item {
	groups := map[entries.ProjectKey]*group{}
	for _, li := range planned {
		k := li.Key()
		g, ok := groups[k]
		if !ok {
			g = &group{order: len(groups), item: Item{Client: k.Client, Project: k.Project, Vertical: li.Vertical}}
			groups[k] = g
		}
		g.item.MasterQty += rates.Sanitize(li.MasterQty)
		g.item.LineItems++
		g.item.DeliveryDate = earliest(g.item.DeliveryDate, li.DeliveryDate)
		g.item.ApprovalDate = earliest(g.item.ApprovalDate, li.ApprovalDate)
	}

	delivered := map[entries.ProjectKey]float64{}
	counts := map[entries.ProjectKey]int{}
	for _, e := range logged {
		k := e.Key()
		if _, ok := groups[k]; !ok {
			continue
		}
		delivered[k] += rates.Finite(e.QtyDelivered)
		counts[k]++
	}

	todayUTC := dateUTC(today)
	out := make([]Item, 0, len(groups))
	order := make(map[entries.ProjectKey]int, len(groups))
	for k, g := range groups {
		it := g.item
		it.MasterQty = rates.Qty(it.MasterQty)
		it.Delivered = rates.Qty(delivered[k])
		it.Entries = counts[k]
		it.PendingQty = rates.Remaining(it.MasterQty, it.Delivered)

		switch {
		case archived != nil && archived.IsArchived(k.Client, k.Project):
			it.Status = StatusArchived
		case it.DeliveryDate != nil && dateUTC(*it.DeliveryDate).Before(todayUTC):
			it.Status = StatusOverdue
			it.OverdueDays = int(todayUTC.Sub(dateUTC(*it.DeliveryDate)).Hours() / 24)
		case it.Entries > 0 && it.PendingQty > 0:
			it.Status = StatusPartial
		case it.PendingQty == 0:
			it.Status = StatusCompleted
		default:
			it.Status = StatusPending
		}

		if it.PendingQty > 0 || it.Status == StatusArchived {
			out = append(out, it)
			order[k] = g.order
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Status.Rank() != b.Status.Rank() {
			return a.Status.Rank() < b.Status.Rank()
		}
		switch {
		case a.DeliveryDate != nil && b.DeliveryDate != nil && !a.DeliveryDate.Equal(*b.DeliveryDate):
			return a.DeliveryDate.Before(*b.DeliveryDate)
		case a.DeliveryDate != nil && b.DeliveryDate == nil:
			return true
		case a.DeliveryDate == nil && b.DeliveryDate != nil:
			return false
		}
		return order[a.Key()] < order[b.Key()]
	})
	return out
}

// Counts tallies items per status.
type Counts struct {
	Overdue    int     `json:"overdue"`
	Partial    int     `json:"partial"`
	Pending    int     `json:"pending"`
	Archived   int     `json:"archived"`
	PendingQty float64 `json:"pending_qty"`
}

func Summarize(items []Item) Counts {
	var c Counts
	for _, it := range items {
		switch it.Status {
		case StatusOverdue:
			c.Overdue++
		case StatusPartial:
			c.Partial++
		case StatusPending:
			c.Pending++
		case StatusArchived:
			c.Archived++
			continue
		}
		c.PendingQty += it.PendingQty
	}
	c.PendingQty = rates.Qty(c.PendingQty)
	return c
}

func earliest(cur, next *time.Time) *time.Time {
	if next == nil {
		return cur
	}
	if cur == nil || next.Before(*cur) {
		d := *next
		return &d
	}
	return cur
}

func dateUTC(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
