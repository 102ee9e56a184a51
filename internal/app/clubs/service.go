package clubs

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/Overland-East-Bay/club-registry/internal/domain"
	clockport "github.com/Overland-East-Bay/club-registry/internal/ports/out/clock"
	"github.com/Overland-East-Bay/club-registry/internal/ports/out/clubrepo"
	"github.com/Overland-East-Bay/club-registry/internal/ports/out/eventsink"
)

// Service is the membership registry: a club -> members mapping mutable only by
// the root authority.
//
// The host serializes access to the store; Service adds no locking of its own
// beyond what clubrepo.Repository.Mutate guarantees for a single entry.
type Service struct {
	repo clubrepo.Repository
	sink eventsink.Sink
	clk  clockport.Clock

	newEventID func() string
}

func NewService(repo clubrepo.Repository, sink eventsink.Sink, clk clockport.Clock) *Service {
	return &Service{
		repo: repo,
		sink: sink,
		clk:  clk,
		newEventID: func() string {
			return uuid.NewString()
		},
	}
}

// AddMember appends member to club.
//
// Checks, in order: root origin, club exists, member not already present.
// On any failure the registry is untouched and no event is emitted.
func (s *Service) AddMember(ctx context.Context, origin domain.Origin, club domain.ClubID, member domain.AccountID) (domain.Event, error) {
	if err := EnsureRoot(origin); err != nil {
		return domain.Event{}, err
	}

	err := s.repo.Mutate(ctx, club, func(members []domain.AccountID) ([]domain.AccountID, error) {
		if domain.ContainsMember(members, member) {
			return nil, errMemberAlreadyExists(string(club), string(member))
		}
		return append(members, member), nil
	})
	if err != nil {
		return domain.Event{}, s.mapRepoErr(err, club)
	}

	return s.emit(ctx, domain.EventMemberAdded, club, member)
}

// RemoveMember removes the single occurrence of member from club, keeping the
// relative order of the remaining members.
//
// Checks, in order: root origin, club exists, member present.
func (s *Service) RemoveMember(ctx context.Context, origin domain.Origin, club domain.ClubID, member domain.AccountID) (domain.Event, error) {
	if err := EnsureRoot(origin); err != nil {
		return domain.Event{}, err
	}

	err := s.repo.Mutate(ctx, club, func(members []domain.AccountID) ([]domain.AccountID, error) {
		idx := domain.IndexOfMember(members, member)
		if idx < 0 {
			return nil, errMemberDoesNotExist(string(club), string(member))
		}
		return append(members[:idx], members[idx+1:]...), nil
	})
	if err != nil {
		return domain.Event{}, s.mapRepoErr(err, club)
	}

	return s.emit(ctx, domain.EventMemberRemoved, club, member)
}

// GetMembers returns the members of club; ok is false when the club does not exist.
func (s *Service) GetMembers(ctx context.Context, club domain.ClubID) (members []domain.AccountID, ok bool, err error) {
	ms, err := s.repo.Get(ctx, club)
	if err != nil {
		if errors.Is(err, clubrepo.ErrNotFound) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return domain.CloneMembers(ms), true, nil
}

// ListClubs returns every club with its members, ordered by club key bytes.
func (s *Service) ListClubs(ctx context.Context) ([]domain.Club, error) {
	ids, err := s.repo.ListClubs(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]domain.Club, 0, len(ids))
	for _, id := range ids {
		ms, err := s.repo.Get(ctx, id)
		if err != nil {
			// Clubs are never deleted, so a vanished key is a store fault.
			return nil, fmt.Errorf("read club %q: %w", id, err)
		}
		out = append(out, domain.Club{ID: id, Members: domain.CloneMembers(ms)})
	}
	return out, nil
}

// Bootstrap writes the initial club mapping. It only applies to an empty store,
// so restarting against a persistent backend keeps existing state; applied reports
// whether anything was written.
func (s *Service) Bootstrap(ctx context.Context, g domain.Genesis) (applied bool, err error) {
	existing, err := s.repo.ListClubs(ctx)
	if err != nil {
		return false, err
	}
	if len(existing) > 0 {
		return false, nil
	}
	for _, c := range g.Clubs {
		if err := validateGenesisClub(c); err != nil {
			return false, err
		}
	}
	for _, c := range g.Clubs {
		if err := s.repo.Insert(ctx, c.Club, domain.CloneMembers(c.Members)); err != nil {
			return false, fmt.Errorf("bootstrap club %q: %w", c.Club, err)
		}
	}
	return len(g.Clubs) > 0, nil
}

func validateGenesisClub(c domain.GenesisClub) error {
	seen := make(map[domain.AccountID]struct{}, len(c.Members))
	for _, m := range c.Members {
		if _, dup := seen[m]; dup {
			return fmt.Errorf("bootstrap club %q: duplicate member %q", c.Club, m)
		}
		seen[m] = struct{}{}
	}
	return nil
}

func (s *Service) emit(ctx context.Context, kind domain.EventKind, club domain.ClubID, member domain.AccountID) (domain.Event, error) {
	ev := domain.Event{
		ID:         s.newEventID(),
		Kind:       kind,
		Club:       club,
		Member:     member,
		OccurredAt: s.clk.Now(),
	}
	if s.sink == nil {
		return ev, nil
	}
	if err := s.sink.Publish(ctx, ev); err != nil {
		return ev, fmt.Errorf("%w: %s: %w", ErrNotificationFailed, kind, err)
	}
	return ev, nil
}

func (s *Service) mapRepoErr(err error, club domain.ClubID) error {
	if errors.Is(err, clubrepo.ErrNotFound) {
		return errClubDoesNotExist(string(club))
	}
	return err
}

// EnsureRoot returns the UNAUTHORIZED *Error unless origin is the root authority.
func EnsureRoot(origin domain.Origin) error {
	if !origin.IsRoot() {
		return errUnauthorized()
	}
	return nil
}
