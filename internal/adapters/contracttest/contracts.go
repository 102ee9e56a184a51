package contracttest

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Overland-East-Bay/club-registry/internal/domain"
	clubrepoport "github.com/Overland-East-Bay/club-registry/internal/ports/out/clubrepo"
	idempotencyport "github.com/Overland-East-Bay/club-registry/internal/ports/out/idempotency"
)

type CleanupFunc = func()

type ClubRepoFactory func(t *testing.T) (clubrepoport.Repository, CleanupFunc)
type IdemStoreFactory func(t *testing.T) (idempotencyport.Store, CleanupFunc)

func RunIdempotencyStore(t *testing.T, newStore IdemStoreFactory) {
	t.Helper()
	ctx := context.Background()

	store, cleanup := newStore(t)
	if cleanup != nil {
		t.Cleanup(cleanup)
	}

	fp := idempotencyport.Fingerprint{
		Key:     idempotencyport.Key("k-" + uuid.NewString()),
		Subject: domain.SubjectID("root"),
		Method:  "POST",
		Route:   "/clubs/rotary/members",
	}
	_, ok, err := store.Get(ctx, fp)
	require.NoError(t, err)
	require.False(t, ok, "unexpected record before Put")

	rec := idempotencyport.Record{
		BodyHash:    "hash-abc",
		StatusCode:  201,
		ContentType: "application/json",
		Body:        []byte(`{"event":{}}`),
		CreatedAt:   time.Unix(123, 0).UTC(),
	}
	require.NoError(t, store.Put(ctx, fp, rec))

	got, ok, err := store.Get(ctx, fp)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "hash-abc", got.BodyHash)
	assert.Equal(t, 201, got.StatusCode)
	assert.Equal(t, "application/json", got.ContentType)
	assert.Equal(t, `{"event":{}}`, string(got.Body))

	// Overwrite semantics.
	rec2 := rec
	rec2.Body = []byte(`{"event":{"id":"2"}}`)
	require.NoError(t, store.Put(ctx, fp, rec2))
	got, ok, err = store.Get(ctx, fp)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, `{"event":{"id":"2"}}`, string(got.Body))

	// Different route under the same key is a different fingerprint.
	other := fp
	other.Route = "/clubs/tennis/members"
	_, ok, err = store.Get(ctx, other)
	require.NoError(t, err)
	assert.False(t, ok)
}

// RunClubRepo exercises the store contract the registry relies on.
//
// Stores may be shared between runs (Postgres, Redis), so every club key is
// unique to the run and list assertions only look at those keys.
func RunClubRepo(t *testing.T, newRepo ClubRepoFactory) {
	t.Helper()
	ctx := context.Background()

	repo, cleanup := newRepo(t)
	if cleanup != nil {
		t.Cleanup(cleanup)
	}

	prefix := uuid.NewString() + "/"
	rotary := domain.ClubID(prefix + "rotary")
	tennis := domain.ClubID(prefix + "tennis")
	binary := domain.ClubIDFromBytes(append([]byte(prefix), 0x00, 0xff, 0x10))

	// Absent key.
	_, err := repo.Get(ctx, rotary)
	require.ErrorIs(t, err, clubrepoport.ErrNotFound)

	// Empty club is distinct from absent club.
	require.NoError(t, repo.Insert(ctx, rotary, nil))
	ms, err := repo.Get(ctx, rotary)
	require.NoError(t, err)
	assert.NotNil(t, ms)
	assert.Empty(t, ms)

	// Order round-trips.
	require.NoError(t, repo.Insert(ctx, tennis, []domain.AccountID{"c", "a", "b"}))
	ms, err = repo.Get(ctx, tennis)
	require.NoError(t, err)
	assert.Equal(t, []domain.AccountID{"c", "a", "b"}, ms)

	// Arbitrary bytes are valid keys.
	require.NoError(t, repo.Insert(ctx, binary, []domain.AccountID{"x"}))
	ms, err = repo.Get(ctx, binary)
	require.NoError(t, err)
	assert.Equal(t, []domain.AccountID{"x"}, ms)

	// Insert replaces.
	require.NoError(t, repo.Insert(ctx, binary, []domain.AccountID{"y", "z"}))
	ms, err = repo.Get(ctx, binary)
	require.NoError(t, err)
	assert.Equal(t, []domain.AccountID{"y", "z"}, ms)

	// Mutate appends and removes in place.
	require.NoError(t, repo.Mutate(ctx, rotary, func(cur []domain.AccountID) ([]domain.AccountID, error) {
		return append(cur, "m1", "m2", "m3"), nil
	}))
	require.NoError(t, repo.Mutate(ctx, rotary, func(cur []domain.AccountID) ([]domain.AccountID, error) {
		require.Equal(t, []domain.AccountID{"m1", "m2", "m3"}, cur)
		return append(cur[:1], cur[2:]...), nil
	}))
	ms, err = repo.Get(ctx, rotary)
	require.NoError(t, err)
	assert.Equal(t, []domain.AccountID{"m1", "m3"}, ms)

	// Mutate to empty keeps the club.
	require.NoError(t, repo.Mutate(ctx, rotary, func(cur []domain.AccountID) ([]domain.AccountID, error) {
		return cur[:0], nil
	}))
	ms, err = repo.Get(ctx, rotary)
	require.NoError(t, err)
	assert.Empty(t, ms)

	// An aborted mutation writes nothing.
	abort := errors.New("abort")
	err = repo.Mutate(ctx, tennis, func(cur []domain.AccountID) ([]domain.AccountID, error) {
		return nil, abort
	})
	require.ErrorIs(t, err, abort)
	ms, err = repo.Get(ctx, tennis)
	require.NoError(t, err)
	assert.Equal(t, []domain.AccountID{"c", "a", "b"}, ms)

	// Mutate on a missing club never creates it.
	golf := domain.ClubID(prefix + "golf")
	err = repo.Mutate(ctx, golf, func(cur []domain.AccountID) ([]domain.AccountID, error) {
		t.Fatalf("mutate fn called for missing club")
		return cur, nil
	})
	require.ErrorIs(t, err, clubrepoport.ErrNotFound)
	_, err = repo.Get(ctx, golf)
	require.ErrorIs(t, err, clubrepoport.ErrNotFound)

	// ListClubs is ordered by key bytes.
	ids, err := repo.ListClubs(ctx)
	require.NoError(t, err)
	var mine []domain.ClubID
	for _, id := range ids {
		if len(id) >= len(prefix) && string(id[:len(prefix)]) == prefix {
			mine = append(mine, id)
		}
	}
	assert.Equal(t, []domain.ClubID{binary, rotary, tennis}, mine)
}
