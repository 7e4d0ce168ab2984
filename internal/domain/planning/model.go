// Package planning reads the order-planning spreadsheet: one line item per product
// of a client's project, with the quantity ordered and the due date.
package planning

import (
	"context"
	"strings"
	"time"

	"github.com/qualitypulse/tracker/internal/domain/entries"
)

type LineItem struct {
	Client       string     `json:"client"`
	Project      string     `json:"project"`
	Vertical     string     `json:"vertical"`
	Product      string     `json:"product"`
	MasterQty    float64    `json:"master_qty"`
	DeliveryDate *time.Time `json:"delivery_date,omitempty"`
	ApprovalDate *time.Time `json:"approval_date,omitempty"`
	PrintMedia   string     `json:"print_media"`
	Lamination   string     `json:"lamination"`
	Size         string     `json:"size"`
	PrinterModel string     `json:"printer_model"`
}

func (li LineItem) Key() entries.ProjectKey { return entries.KeyOf(li.Client, li.Project) }

// Source lists every planned line item. Implementations are read-only.
type Source interface {
	ListPlannedItems(ctx context.Context) ([]LineItem, error)
}

// Clients returns distinct trimmed client names in first-seen order.
// Names differing only by case are kept apart.
func Clients(items []LineItem) []string {
	seen := map[string]bool{}
	var out []string
	for _, li := range items {
		c := strings.TrimSpace(li.Client)
		if c == "" || seen[c] {
			continue
		}
		seen[c] = true
		out = append(out, c)
	}
	return out
}

// ProjectsFor returns distinct trimmed project names of client in first-seen order.
func ProjectsFor(items []LineItem, client string) []string {
	client = strings.TrimSpace(client)
	seen := map[string]bool{}
	var out []string
	for _, li := range items {
		k := li.Key()
		if k.Client != client || k.Project == "" || seen[k.Project] {
			continue
		}
		seen[k.Project] = true
		out = append(out, k.Project)
	}
	return out
}

// ProductsFor returns the line items of one project in sheet order.
func ProductsFor(items []LineItem, client, project string) []LineItem {
	want := entries.KeyOf(client, project)
	var out []LineItem
	for _, li := range items {
		if li.Key() == want {
			out = append(out, li)
		}
	}
	return out
}

// Find returns the first line item matching trimmed client, project and product.
func Find(items []LineItem, client, project, product string) (LineItem, bool) {
	product = strings.TrimSpace(product)
	for _, li := range ProductsFor(items, client, project) {
		if strings.TrimSpace(li.Product) == product {
			return li, true
		}
	}
	return LineItem{}, false
}
