package planning

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/sony/gobreaker"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

const DefaultRange = "Project_WorkOrder!A:Z"

type SheetsConfig struct {
	SpreadsheetID   string
	Range           string
	CredentialsFile string
}

// SheetsSource reads line items from a Google Sheets range. Calls go through a
// circuit breaker so a failing API is not hammered on every dashboard refresh.
type SheetsSource struct {
	svc           *sheets.Service
	spreadsheetID string
	rng           string
	cb            *gobreaker.CircuitBreaker
}

// NewSheetsSource builds the API client. An empty CredentialsFile falls back to
// application default credentials. Extra options are appended last.
func NewSheetsSource(ctx context.Context, cfg SheetsConfig, log *slog.Logger, opts ...option.ClientOption) (*SheetsSource, error) {
	if cfg.SpreadsheetID == "" {
		return nil, fmt.Errorf("planning: spreadsheet id is empty")
	}
	if cfg.Range == "" {
		cfg.Range = DefaultRange
	}

	clientOpts := []option.ClientOption{option.WithScopes(sheets.SpreadsheetsReadonlyScope)}
	if cfg.CredentialsFile != "" {
		clientOpts = append(clientOpts, option.WithCredentialsFile(cfg.CredentialsFile))
	}
	clientOpts = append(clientOpts, opts...)

	svc, err := sheets.NewService(ctx, clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("planning: create sheets client: %w", err)
	}

	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "planning-sheets",
		MaxRequests: 1,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 3
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn("circuit breaker state changed", "name", name, "from", from.String(), "to", to.String())
		},
	})

	return &SheetsSource{svc: svc, spreadsheetID: cfg.SpreadsheetID, rng: cfg.Range, cb: cb}, nil
}

func (s *SheetsSource) ListPlannedItems(ctx context.Context) ([]LineItem, error) {
	res, err := s.cb.Execute(func() (interface{}, error) {
		return s.svc.Spreadsheets.Values.Get(s.spreadsheetID, s.rng).Context(ctx).Do()
	})
	if err != nil {
		return nil, fmt.Errorf("planning: read %s: %w", s.rng, err)
	}
	vr := res.(*sheets.ValueRange)
	return ParseRows(toStrings(vr.Values)), nil
}

func toStrings(values [][]interface{}) [][]string {
	out := make([][]string, len(values))
	for i, row := range values {
		out[i] = make([]string, len(row))
		for j, v := range row {
			if v == nil {
				continue
			}
			out[i][j] = fmt.Sprint(v)
		}
	}
	return out
}
