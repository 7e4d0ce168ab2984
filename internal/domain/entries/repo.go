package entries

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const columns = `id, date, client_name, project_name, vertical, product, print_media, lamination,
	printer_model, size, reason, master_qty, batch_qty,
	design_rej, print_rej, lam_rej, cut_rej, pack_rej, media_rej,
	qty_rejected, qty_delivered, rejection_percent, in_stock, created_at, updated_at`

// Repo stores entries in the rejection_log table. Derived columns are always
// recomputed here, callers only hand in raw fields.
type Repo struct{ pool *pgxpool.Pool }

func NewRepo(pool *pgxpool.Pool) *Repo { return &Repo{pool: pool} }

func (r *Repo) List(ctx context.Context, f Filter) ([]Entry, error) {
	var (
		where []string
		args  []any
	)
	add := func(cond string, v any) {
		args = append(args, v)
		where = append(where, fmt.Sprintf(cond, len(args)))
	}
	if f.ClientName != "" {
		add("client_name = $%d", f.ClientName)
	}
	if f.ProjectName != "" {
		add("project_name = $%d", f.ProjectName)
	}
	if f.Vertical != "" {
		add("vertical = $%d", f.Vertical)
	}
	if !f.From.IsZero() {
		add("date >= $%d", Day(f.From))
	}
	if !f.To.IsZero() {
		add("date <= $%d", Day(f.To))
	}

	q := `SELECT ` + columns + ` FROM rejection_log`
	if len(where) > 0 {
		q += ` WHERE ` + strings.Join(where, " AND ")
	}
	q += ` ORDER BY date DESC, id DESC`

	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("list entries: %w", err)
	}
	defer rows.Close()

	out := []Entry{}
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("scan entry: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (r *Repo) Get(ctx context.Context, id int64) (*Entry, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+columns+` FROM rejection_log WHERE id = $1`, id)
	e, err := scanEntry(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get entry %d: %w", id, err)
	}
	return &e, nil
}

func (r *Repo) Create(ctx context.Context, raw Raw) (*Entry, error) {
	e := New(raw)
	row := r.pool.QueryRow(ctx, `
		INSERT INTO rejection_log
		(date, client_name, project_name, vertical, product, print_media, lamination,
		 printer_model, size, reason, master_qty, batch_qty,
		 design_rej, print_rej, lam_rej, cut_rej, pack_rej, media_rej,
		 qty_rejected, qty_delivered, rejection_percent, in_stock)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20,$21,$22)
		RETURNING `+columns, e.writeArgs()...)
	saved, err := scanEntry(row)
	if err != nil {
		return nil, fmt.Errorf("create entry: %w", err)
	}
	return &saved, nil
}

func (r *Repo) Update(ctx context.Context, id int64, raw Raw) (*Entry, error) {
	e := New(raw)
	args := append(e.writeArgs(), id)
	row := r.pool.QueryRow(ctx, `
		UPDATE rejection_log SET
		  date=$1, client_name=$2, project_name=$3, vertical=$4, product=$5, print_media=$6,
		  lamination=$7, printer_model=$8, size=$9, reason=$10, master_qty=$11, batch_qty=$12,
		  design_rej=$13, print_rej=$14, lam_rej=$15, cut_rej=$16, pack_rej=$17, media_rej=$18,
		  qty_rejected=$19, qty_delivered=$20, rejection_percent=$21, in_stock=$22,
		  updated_at=NOW()
		WHERE id=$23
		RETURNING `+columns, args...)
	saved, err := scanEntry(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("update entry %d: %w", id, err)
	}
	return &saved, nil
}

func (r *Repo) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM rejection_log WHERE id=$1`, id)
	if err != nil {
		return fmt.Errorf("delete entry %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// RecomputeAll re-derives every stored row and writes back the ones whose derived
// columns drifted. With dryRun nothing is written. Returns scanned and changed counts.
func (r *Repo) RecomputeAll(ctx context.Context, dryRun bool) (int, int, error) {
	all, err := r.List(ctx, Filter{})
	if err != nil {
		return 0, 0, err
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return 0, 0, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	changed := 0
	for i := range all {
		e := &all[i]
		if !e.Recompute() {
			continue
		}
		changed++
		if dryRun {
			continue
		}
		if _, err := tx.Exec(ctx, `
			UPDATE rejection_log
			SET qty_rejected=$1, qty_delivered=$2, rejection_percent=$3, in_stock=$4, updated_at=NOW()
			WHERE id=$5
		`, e.QtyRejected, e.QtyDelivered, e.RejectionPercent, e.InStock, e.ID); err != nil {
			return len(all), changed, fmt.Errorf("recompute entry %d: %w", e.ID, err)
		}
	}
	if dryRun {
		return len(all), changed, nil
	}
	return len(all), changed, tx.Commit(ctx)
}

func (e Entry) writeArgs() []any {
	return []any{
		Day(e.Date), e.ClientName, e.ProjectName, e.Vertical, e.Product, e.PrintMedia, e.Lamination,
		e.PrinterModel, e.Size, e.Reason, e.MasterQty, e.BatchQty,
		e.Rejections.Design, e.Rejections.Print, e.Rejections.Lamination,
		e.Rejections.Cut, e.Rejections.Packaging, e.Rejections.Media,
		e.QtyRejected, e.QtyDelivered, e.RejectionPercent, e.InStock,
	}
}

func scanEntry(row pgx.Row) (Entry, error) {
	var e Entry
	err := row.Scan(
		&e.ID, &e.Date, &e.ClientName, &e.ProjectName, &e.Vertical, &e.Product, &e.PrintMedia,
		&e.Lamination, &e.PrinterModel, &e.Size, &e.Reason, &e.MasterQty, &e.BatchQty,
		&e.Rejections.Design, &e.Rejections.Print, &e.Rejections.Lamination,
		&e.Rejections.Cut, &e.Rejections.Packaging, &e.Rejections.Media,
		&e.QtyRejected, &e.QtyDelivered, &e.RejectionPercent, &e.InStock,
		&e.CreatedAt, &e.UpdatedAt,
	)
	return e, err
}
