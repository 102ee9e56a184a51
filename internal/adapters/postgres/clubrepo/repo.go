package clubrepo

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Overland-East-Bay/club-registry/internal/domain"
	"github.com/Overland-East-Bay/club-registry/internal/ports/out/clubrepo"
)

// Repo is a Postgres implementation of clubrepo.Repository.
//
// Each club is one row; members are a TEXT[] so order is stored as written.
type Repo struct {
	pool *pgxpool.Pool
}

func NewRepo(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

func (r *Repo) Get(ctx context.Context, club domain.ClubID) ([]domain.AccountID, error) {
	if r.pool == nil {
		return nil, errors.New("nil postgres pool")
	}
	var members []string
	err := r.pool.QueryRow(ctx, `SELECT members FROM clubs WHERE club_key = $1`, club.Bytes()).Scan(&members)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, clubrepo.ErrNotFound
		}
		return nil, err
	}
	return toAccountIDs(members), nil
}

func (r *Repo) Insert(ctx context.Context, club domain.ClubID, members []domain.AccountID) error {
	if r.pool == nil {
		return errors.New("nil postgres pool")
	}
	_, err := r.pool.Exec(ctx, `
		INSERT INTO clubs (club_key, members)
		VALUES ($1, $2)
		ON CONFLICT (club_key)
		DO UPDATE SET members = EXCLUDED.members, updated_at = now()
	`, club.Bytes(), fromAccountIDs(members))
	return err
}

func (r *Repo) Mutate(ctx context.Context, club domain.ClubID, fn clubrepo.MutateFunc) error {
	if r.pool == nil {
		return errors.New("nil postgres pool")
	}
	key := club.Bytes()

	return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		var members []string
		err := tx.QueryRow(ctx, `SELECT members FROM clubs WHERE club_key = $1 FOR UPDATE`, key).Scan(&members)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return clubrepo.ErrNotFound
			}
			return err
		}

		next, err := fn(toAccountIDs(members))
		if err != nil {
			return err
		}

		ct, err := tx.Exec(ctx, `
			UPDATE clubs
			SET members = $2, updated_at = now()
			WHERE club_key = $1
		`, key, fromAccountIDs(next))
		if err != nil {
			return fmt.Errorf("update club members: %w", err)
		}
		if ct.RowsAffected() == 0 {
			return clubrepo.ErrNotFound
		}
		return nil
	})
}

func (r *Repo) ListClubs(ctx context.Context) ([]domain.ClubID, error) {
	if r.pool == nil {
		return nil, errors.New("nil postgres pool")
	}
	// bytea compares bytewise, matching the ordering of the other stores.
	rows, err := r.pool.Query(ctx, `SELECT club_key FROM clubs ORDER BY club_key ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]domain.ClubID, 0)
	for rows.Next() {
		var key []byte
		if err := rows.Scan(&key); err != nil {
			return nil, err
		}
		out = append(out, domain.ClubIDFromBytes(key))
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func toAccountIDs(ss []string) []domain.AccountID {
	out := make([]domain.AccountID, len(ss))
	for i, s := range ss {
		out[i] = domain.AccountID(s)
	}
	return out
}

func fromAccountIDs(ms []domain.AccountID) []string {
	out := make([]string, len(ms))
	for i, m := range ms {
		out[i] = string(m)
	}
	return out
}
