package planning

import (
	"strings"
	"time"

	"github.com/qualitypulse/tracker/internal/domain/rates"
)

// Column aliases seen across versions of the planning sheet.
var (
	colClient       = []string{"Client Name", "Client"}
	colProject      = []string{"Project Name", "Project"}
	colVertical     = []string{"Vertical"}
	colProduct      = []string{"Product Name", "Product / Panel", "Product", "Panel"}
	colMasterQty    = []string{"Master Qty", "Quantity", "Qty"}
	colDeliveryDate = []string{"Delivery Date", "Due Date"}
	colApprovalDate = []string{"Approval Date"}
	colPrintMedia   = []string{"Print Media", "Media"}
	colLamination   = []string{"Lamination", "Lamination Media", "Lam Media"}
	colSize         = []string{"Size"}
	colPrinter      = []string{"Printer Model", "Printer"}
)

var dateLayouts = []string{
	"2006-01-02",
	"1/2/2006",
	"01-02-2006",
	"Jan 2, 2006",
	"2 Jan 2006",
	time.RFC3339,
}

// ParseRows turns sheet rows into line items. The first row is the header; rows
// without a client or a project are dropped.
func ParseRows(rows [][]string) []LineItem {
	if len(rows) == 0 {
		return nil
	}

	index := map[string]int{}
	for i, h := range rows[0] {
		h = strings.TrimSpace(h)
		if _, dup := index[h]; h != "" && !dup {
			index[h] = i
		}
	}
	get := func(row []string, aliases []string) string {
		for _, a := range aliases {
			if i, ok := index[a]; ok {
				if i < len(row) {
					return row[i]
				}
				return ""
			}
		}
		return ""
	}

	var out []LineItem
	for _, row := range rows[1:] {
		li := LineItem{
			Client:       strings.TrimSpace(get(row, colClient)),
			Project:      strings.TrimSpace(get(row, colProject)),
			Vertical:     strings.TrimSpace(get(row, colVertical)),
			Product:      strings.TrimSpace(get(row, colProduct)),
			MasterQty:    rates.ParseQty(get(row, colMasterQty)),
			DeliveryDate: ParseDate(get(row, colDeliveryDate)),
			ApprovalDate: ParseDate(get(row, colApprovalDate)),
			PrintMedia:   strings.TrimSpace(get(row, colPrintMedia)),
			Lamination:   strings.TrimSpace(get(row, colLamination)),
			Size:         strings.TrimSpace(get(row, colSize)),
			PrinterModel: strings.TrimSpace(get(row, colPrinter)),
		}
		if li.Client == "" || li.Project == "" {
			continue
		}
		out = append(out, li)
	}
	return out
}

// ParseDate accepts the date spellings found in the sheet. Blank or unknown
// spellings give nil.
func ParseDate(s string) *time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			d := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
			return &d
		}
	}
	return nil
}
