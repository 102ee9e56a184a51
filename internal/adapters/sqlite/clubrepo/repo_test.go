package clubrepo

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Overland-East-Bay/club-registry/internal/domain"
)

func TestRepo_PersistsAcrossReopen(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "clubs.db")
	ctx := context.Background()

	repo, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, repo.Insert(ctx, "rotary", []domain.AccountID{"b", "a"}))
	require.NoError(t, repo.Close())

	// Reopening must not re-run migrations destructively.
	repo, err = Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = repo.Close() })

	got, err := repo.Get(ctx, "rotary")
	require.NoError(t, err)
	assert.Equal(t, []domain.AccountID{"b", "a"}, got)
}

func TestOpen_RequiresPath(t *testing.T) {
	t.Parallel()

	_, err := Open("  ")
	require.Error(t, err)
}
