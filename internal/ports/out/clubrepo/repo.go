package clubrepo

import (
	"context"

	"github.com/Overland-East-Bay/club-registry/internal/domain"
)

// MutateFunc receives the current members of a club and returns the replacement list.
//
// The slice passed in is owned by the callee and may be modified or appended to.
// Returning a non-nil error aborts the mutation: nothing is written and Mutate
// returns that error unchanged. Optimistic stores may call it more than once, so it
// must be free of side effects.
type MutateFunc func(members []domain.AccountID) ([]domain.AccountID, error)

// Repository is the key-value store holding the club registry.
//
// Member order is significant and must be preserved exactly as written.
// A club that exists with zero members is distinct from a club that does not exist.
type Repository interface {
	// Get returns the members of club, or ErrNotFound.
	Get(ctx context.Context, club domain.ClubID) ([]domain.AccountID, error)

	// Insert creates club with the given members, replacing any existing entry.
	// It is used for bootstrap data only.
	Insert(ctx context.Context, club domain.ClubID, members []domain.AccountID) error

	// Mutate applies fn to the current members of club and stores the result.
	// The read, fn, and write happen against one consistent snapshot of the entry.
	// Returns ErrNotFound (without calling fn) if the club does not exist.
	Mutate(ctx context.Context, club domain.ClubID, fn MutateFunc) error

	// ListClubs returns every club key ordered by key bytes ascending.
	ListClubs(ctx context.Context) ([]domain.ClubID, error)
}
