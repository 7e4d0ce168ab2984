package masters

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qualitypulse/tracker/internal/infra/db/dbtest"
)

func TestRepo_Postgres(t *testing.T) {
	repo := NewRepo(dbtest.NewPool(t))
	ctx := context.Background()

	vinyl, err := repo.Add(ctx, "Media", "Vinyl")
	require.NoError(t, err)
	again, err := repo.Add(ctx, "print media", " Vinyl ")
	require.NoError(t, err)
	assert.Equal(t, vinyl.ID, again.ID)

	_, err = repo.Add(ctx, "lam", "Gloss")
	require.NoError(t, err)
	_, err = repo.Add(ctx, "ink", "Cyan")
	assert.ErrorIs(t, err, ErrUnknownCategory)

	opts, err := repo.Options(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Vinyl"}, opts.PrintMedia)
	assert.Equal(t, []string{"Gloss"}, opts.Lamination)

	require.NoError(t, repo.Remove(ctx, vinyl.ID))
	opts, err = repo.Options(ctx)
	require.NoError(t, err)
	assert.Empty(t, opts.PrintMedia)
}
