package pending

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/qualitypulse/tracker/internal/domain/entries"
)

// ArchiveRepo persists the archived (client, project) pairs.
type ArchiveRepo struct{ pool *pgxpool.Pool }

func NewArchiveRepo(pool *pgxpool.Pool) *ArchiveRepo { return &ArchiveRepo{pool: pool} }

// Snapshot loads the whole archived set once, for a single reconciliation pass.
func (r *ArchiveRepo) Snapshot(ctx context.Context) (ArchiveSet, error) {
	rows, err := r.pool.Query(ctx, `SELECT client_name, project_name FROM archived_projects`)
	if err != nil {
		return nil, fmt.Errorf("load archived projects: %w", err)
	}
	defer rows.Close()

	set := ArchiveSet{}
	for rows.Next() {
		var k entries.ProjectKey
		if err := rows.Scan(&k.Client, &k.Project); err != nil {
			return nil, err
		}
		set[k] = struct{}{}
	}
	return set, rows.Err()
}

func (r *ArchiveRepo) Archive(ctx context.Context, client, project string) error {
	k := entries.KeyOf(client, project)
	_, err := r.pool.Exec(ctx, `
		INSERT INTO archived_projects (client_name, project_name)
		VALUES ($1,$2)
		ON CONFLICT (client_name, project_name) DO NOTHING
	`, k.Client, k.Project)
	return err
}

func (r *ArchiveRepo) Unarchive(ctx context.Context, client, project string) error {
	k := entries.KeyOf(client, project)
	_, err := r.pool.Exec(ctx,
		`DELETE FROM archived_projects WHERE client_name=$1 AND project_name=$2`, k.Client, k.Project)
	return err
}
