package clubrepo

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Overland-East-Bay/club-registry/internal/domain"
	"github.com/Overland-East-Bay/club-registry/internal/ports/out/clubrepo"
)

func TestRepo_GetReturnsCopy(t *testing.T) {
	t.Parallel()

	r := NewRepo()
	ctx := context.Background()
	require.NoError(t, r.Insert(ctx, "rotary", []domain.AccountID{"a", "b"}))

	got, err := r.Get(ctx, "rotary")
	require.NoError(t, err)
	got[0] = "mutated"

	again, err := r.Get(ctx, "rotary")
	require.NoError(t, err)
	assert.Equal(t, []domain.AccountID{"a", "b"}, again)
}

func TestRepo_InsertDoesNotAliasCaller(t *testing.T) {
	t.Parallel()

	r := NewRepo()
	ctx := context.Background()
	in := []domain.AccountID{"a"}
	require.NoError(t, r.Insert(ctx, "rotary", in))
	in[0] = "z"

	got, err := r.Get(ctx, "rotary")
	require.NoError(t, err)
	assert.Equal(t, []domain.AccountID{"a"}, got)
}

func TestRepo_MutateAbortLeavesStateUnchanged(t *testing.T) {
	t.Parallel()

	r := NewRepo()
	ctx := context.Background()
	require.NoError(t, r.Insert(ctx, "rotary", []domain.AccountID{"a"}))

	boom := errors.New("boom")
	err := r.Mutate(ctx, "rotary", func(ms []domain.AccountID) ([]domain.AccountID, error) {
		ms[0] = "scribbled"
		return nil, boom
	})
	require.ErrorIs(t, err, boom)

	got, err := r.Get(ctx, "rotary")
	require.NoError(t, err)
	assert.Equal(t, []domain.AccountID{"a"}, got)
}

func TestRepo_ConcurrentMutatesAreSerialized(t *testing.T) {
	t.Parallel()

	r := NewRepo()
	ctx := context.Background()
	require.NoError(t, r.Insert(ctx, "rotary", nil))

	const n = 50
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			id := domain.AccountID(fmt.Sprintf("m-%d", i))
			_ = r.Mutate(ctx, "rotary", func(ms []domain.AccountID) ([]domain.AccountID, error) {
				return append(ms, id), nil
			})
		}(i)
	}
	wg.Wait()

	got, err := r.Get(ctx, "rotary")
	require.NoError(t, err)
	assert.Len(t, got, n)
}

func TestRepo_MutateMissingClub(t *testing.T) {
	t.Parallel()

	r := NewRepo()
	called := false
	err := r.Mutate(context.Background(), "golf", func(ms []domain.AccountID) ([]domain.AccountID, error) {
		called = true
		return ms, nil
	})
	require.ErrorIs(t, err, clubrepo.ErrNotFound)
	assert.False(t, called)

	ids, err := r.ListClubs(context.Background())
	require.NoError(t, err)
	assert.Empty(t, ids)
}
