package planning

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/xuri/excelize/v2"
)

// WorkbookSource reads line items from a local .xlsx export of the planning sheet.
// The file is re-read on every call so edits show up without a restart.
type WorkbookSource struct {
	path  string
	sheet string
}

// NewWorkbookSource reads sheet of the workbook at path; an empty sheet means
// the active one.
func NewWorkbookSource(path, sheet string) *WorkbookSource {
	return &WorkbookSource{path: path, sheet: sheet}
}

func (w *WorkbookSource) ListPlannedItems(_ context.Context) ([]LineItem, error) {
	f, err := os.Open(w.path)
	if err != nil {
		return nil, fmt.Errorf("planning: open workbook: %w", err)
	}
	defer func() { _ = f.Close() }()
	return ReadWorkbook(f, w.sheet)
}

// ReadWorkbook parses an .xlsx stream.
func ReadWorkbook(r io.Reader, sheet string) ([]LineItem, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("planning: read workbook: %w", err)
	}
	defer func() { _ = f.Close() }()

	if sheet == "" {
		sheet = f.GetSheetName(f.GetActiveSheetIndex())
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("planning: read sheet %q: %w", sheet, err)
	}
	return ParseRows(rows), nil
}
