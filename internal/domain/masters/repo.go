package masters

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrUnknownCategory = errors.New("unknown master category")

type Repo struct{ pool *pgxpool.Pool }

func NewRepo(pool *pgxpool.Pool) *Repo { return &Repo{pool: pool} }

func (r *Repo) List(ctx context.Context) ([]Master, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, category, name FROM masters ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Master
	for rows.Next() {
		var m Master
		if err := rows.Scan(&m.ID, &m.Category, &m.Name); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (r *Repo) Options(ctx context.Context) (Options, error) {
	rows, err := r.List(ctx)
	if err != nil {
		return Options{}, fmt.Errorf("list masters: %w", err)
	}
	return Group(rows), nil
}

// Add stores name under the canonical category for label. Adding an existing
// pair returns the stored row.
func (r *Repo) Add(ctx context.Context, label, name string) (*Master, error) {
	cat, ok := CategoryOf(label)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownCategory, label)
	}
	name = strings.TrimSpace(name)
	row := r.pool.QueryRow(ctx, `
		INSERT INTO masters (category, name) VALUES ($1,$2)
		ON CONFLICT (category, name) DO NOTHING
		RETURNING id, category, name
	`, string(cat), name)
	var m Master
	err := row.Scan(&m.ID, &m.Category, &m.Name)
	if errors.Is(err, pgx.ErrNoRows) {
		row = r.pool.QueryRow(ctx,
			`SELECT id, category, name FROM masters WHERE category=$1 AND name=$2`, string(cat), name)
		err = row.Scan(&m.ID, &m.Category, &m.Name)
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *Repo) Remove(ctx context.Context, id int64) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM masters WHERE id=$1`, id)
	return err
}
