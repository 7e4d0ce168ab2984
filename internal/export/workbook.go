// Package export renders project aggregates as an .xlsx workbook.
package export

import (
	"bytes"
	"fmt"
	"strings"
	"time"
	"unicode"

	"github.com/xuri/excelize/v2"

	"github.com/qualitypulse/tracker/internal/domain/projects"
)

const (
	SheetProjects = "Projects"
	SheetEntries  = "Entries"
)

var projectHeader = []interface{}{
	"client", "project", "vertical", "entries",
	"master_qty", "qty_rejected", "qty_delivered", "remaining", "in_stock", "rejection_percent",
	"design_rej", "print_rej", "lam_rej", "cut_rej", "pack_rej", "media_rej",
}

var entryHeader = []interface{}{
	"id", "date", "client", "project", "vertical", "product",
	"print_media", "lamination", "printer_model", "size",
	"master_qty", "batch_qty",
	"design_rej", "print_rej", "lam_rej", "cut_rej", "pack_rej", "media_rej",
	"qty_rejected", "qty_delivered", "rejection_percent", "in_stock", "reason",
}

// Workbook writes one row per aggregate on the Projects sheet and one row per
// constituent entry on the Entries sheet.
func Workbook(aggs []projects.Aggregate) ([]byte, error) {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName(f.GetSheetName(0), SheetProjects); err != nil {
		return nil, err
	}
	if _, err := f.NewSheet(SheetEntries); err != nil {
		return nil, err
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, err
	}
	if err := writeHeader(f, SheetProjects, projectHeader, bold); err != nil {
		return nil, err
	}
	if err := writeHeader(f, SheetEntries, entryHeader, bold); err != nil {
		return nil, err
	}

	pRow, eRow := 2, 2
	for _, a := range aggs {
		r := a.Rejections
		row := []interface{}{
			a.ClientName, a.ProjectName, a.Vertical, a.Entries,
			a.MasterQty, a.QtyRejected, a.QtyDelivered, a.Remaining(), a.InStock, a.RejectionPercent,
			r.Design, r.Print, r.Lamination, r.Cut, r.Packaging, r.Media,
		}
		if err := setRow(f, SheetProjects, pRow, row); err != nil {
			return nil, err
		}
		pRow++

		for _, e := range a.Rows {
			s := e.Rejections
			row := []interface{}{
				e.ID, e.Date.Format("2006-01-02"), e.ClientName, e.ProjectName, e.Vertical, e.Product,
				e.PrintMedia, e.Lamination, e.PrinterModel, e.Size,
				e.MasterQty, e.BatchQty,
				s.Design, s.Print, s.Lamination, s.Cut, s.Packaging, s.Media,
				e.QtyRejected, e.QtyDelivered, e.RejectionPercent, e.InStock, e.Reason,
			}
			if err := setRow(f, SheetEntries, eRow, row); err != nil {
				return nil, err
			}
			eRow++
		}
	}

	f.SetActiveSheet(0)
	buf := &bytes.Buffer{}
	if err := f.Write(buf); err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func writeHeader(f *excelize.File, sheet string, header []interface{}, style int) error {
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return err
	}
	last, err := excelize.CoordinatesToCellName(len(header), 1)
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(sheet, "A1", last, style); err != nil {
		return err
	}
	return f.SetPanes(sheet, &excelize.Panes{Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft"})
}

func setRow(f *excelize.File, sheet string, row int, values []interface{}) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	return f.SetSheetRow(sheet, cell, &values)
}

// Filename builds "<kind>_<client>_<YYYY-MM-DD>.xlsx". Characters outside
// [A-Za-z0-9] in client become "_"; an empty client becomes "All".
func Filename(client, kind string, date time.Time) string {
	client = strings.TrimSpace(client)
	if client == "" {
		client = "All"
	} else {
		client = strings.Map(func(r rune) rune {
			if r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)) {
				return r
			}
			return '_'
		}, client)
	}
	return fmt.Sprintf("%s_%s_%s.xlsx", kind, client, date.Format("2006-01-02"))
}
