package clubrepo

import (
	"context"
	"sort"
	"sync"

	"github.com/Overland-East-Bay/club-registry/internal/domain"
	"github.com/Overland-East-Bay/club-registry/internal/ports/out/clubrepo"
)

// Repo is an in-memory implementation of clubrepo.Repository.
// It is safe for concurrent use.
type Repo struct {
	mu sync.RWMutex

	byClub map[domain.ClubID][]domain.AccountID
}

func NewRepo() *Repo {
	return &Repo{
		byClub: make(map[domain.ClubID][]domain.AccountID),
	}
}

func (r *Repo) Get(ctx context.Context, club domain.ClubID) ([]domain.AccountID, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()
	ms, ok := r.byClub[club]
	if !ok {
		return nil, clubrepo.ErrNotFound
	}
	return domain.CloneMembers(ms), nil
}

func (r *Repo) Insert(ctx context.Context, club domain.ClubID, members []domain.AccountID) error {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byClub[club] = domain.CloneMembers(members)
	return nil
}

func (r *Repo) Mutate(ctx context.Context, club domain.ClubID, fn clubrepo.MutateFunc) error {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()

	cur, ok := r.byClub[club]
	if !ok {
		return clubrepo.ErrNotFound
	}
	next, err := fn(domain.CloneMembers(cur))
	if err != nil {
		return err
	}
	r.byClub[club] = domain.CloneMembers(next)
	return nil
}

func (r *Repo) ListClubs(ctx context.Context) ([]domain.ClubID, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]domain.ClubID, 0, len(r.byClub))
	for id := range r.byClub {
		out = append(out, id)
	}
	// Go string comparison is bytewise.
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out, nil
}
