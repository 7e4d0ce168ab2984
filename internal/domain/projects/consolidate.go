// Package projects rolls batch entries up into per-project aggregates and the
// rejection-rate metrics built on top of them.
package projects

import (
	"math"
	"sort"

	"github.com/qualitypulse/tracker/internal/domain/entries"
	"github.com/qualitypulse/tracker/internal/domain/rates"
)

// Aggregate is every entry of one (client, project) pair summed together.
// MasterQty counts each distinct product once; the other totals sum every batch.
type Aggregate struct {
	ClientName   string          `json:"client_name"`
	ProjectName  string          `json:"project_name"`
	Vertical     string          `json:"vertical"`
	MasterQty    float64         `json:"master_qty"`
	QtyRejected  float64         `json:"qty_rejected"`
	QtyDelivered float64         `json:"qty_delivered"`
	Rejections   entries.Stages  `json:"rejections"`
	Entries      int             `json:"entries"`
	Rows         []entries.Entry `json:"rows"`

	RejectionPercent float64 `json:"rejection_percent"`
	InStock          float64 `json:"in_stock"`
}

func (a Aggregate) Key() entries.ProjectKey {
	return entries.ProjectKey{Client: a.ClientName, Project: a.ProjectName}
}

// Remaining is the order quantity not yet covered by deliveries.
func (a Aggregate) Remaining() float64 {
	return rates.Remaining(a.MasterQty, a.QtyDelivered)
}

// Consolidate groups rows by trimmed (client, project).
//
// When several batches of the same product disagree on the order quantity the
// first one in input order wins.
func Consolidate(rows []entries.Entry) []Aggregate {
	groups := map[entries.ProjectKey]*Aggregate{}
	seenProduct := map[entries.ProductKey]struct{}{}

	for _, e := range rows {
		k := e.Key()
		g, ok := groups[k]
		if !ok {
			g = &Aggregate{ClientName: k.Client, ProjectName: k.Project, Vertical: e.Vertical}
			groups[k] = g
		}

		if pk := e.ProductKey(); !hasKey(seenProduct, pk) {
			seenProduct[pk] = struct{}{}
			g.MasterQty += rates.Sanitize(e.MasterQty)
		}

		g.QtyRejected += rates.Sanitize(e.QtyRejected)
		g.QtyDelivered += rates.Finite(e.QtyDelivered)
		g.Rejections = g.Rejections.Add(e.Raw.Normalize().Rejections)
		g.Entries++
		g.Rows = append(g.Rows, e)
	}

	out := make([]Aggregate, 0, len(groups))
	for _, g := range groups {
		g.MasterQty = rates.Qty(g.MasterQty)
		g.QtyRejected = rates.Qty(g.QtyRejected)
		g.QtyDelivered = rates.Qty(g.QtyDelivered)
		g.RejectionPercent = rates.RejectionRate(g.QtyRejected, g.MasterQty)
		g.InStock = rates.Qty(math.Max(0, g.QtyDelivered-g.MasterQty))
		out = append(out, *g)
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].ClientName != out[j].ClientName {
			return out[i].ClientName < out[j].ClientName
		}
		return out[i].ProjectName < out[j].ProjectName
	})
	return out
}

func hasKey(m map[entries.ProductKey]struct{}, k entries.ProductKey) bool {
	_, ok := m[k]
	return ok
}
