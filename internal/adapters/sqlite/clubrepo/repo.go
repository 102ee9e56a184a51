// Package clubrepo provides a SQLite-backed club registry store.
package clubrepo

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	sqliteadapter "github.com/Overland-East-Bay/club-registry/internal/adapters/sqlite"
	"github.com/Overland-East-Bay/club-registry/internal/domain"
	"github.com/Overland-East-Bay/club-registry/internal/ports/out/clubrepo"
)

// Repo persists the registry in SQLite. Members are stored as a JSON array so
// their order is kept exactly.
type Repo struct {
	db *sql.DB
}

// Open opens (or creates) the database at path.
func Open(path string) (*Repo, error) {
	db, err := sqliteadapter.Open(path)
	if err != nil {
		return nil, err
	}
	return &Repo{db: db}, nil
}

// Close closes the SQLite handle.
func (r *Repo) Close() error {
	if r == nil || r.db == nil {
		return nil
	}
	return r.db.Close()
}

func (r *Repo) Get(ctx context.Context, club domain.ClubID) ([]domain.AccountID, error) {
	if r == nil || r.db == nil {
		return nil, fmt.Errorf("storage is not configured")
	}
	var raw string
	err := r.db.QueryRowContext(ctx, `SELECT members_json FROM clubs WHERE club_key = ?`, club.Bytes()).Scan(&raw)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, clubrepo.ErrNotFound
		}
		return nil, err
	}
	return decodeMembers(raw)
}

func (r *Repo) Insert(ctx context.Context, club domain.ClubID, members []domain.AccountID) error {
	if r == nil || r.db == nil {
		return fmt.Errorf("storage is not configured")
	}
	raw, err := encodeMembers(members)
	if err != nil {
		return err
	}
	now := time.Now().UTC().UnixMilli()
	_, err = r.db.ExecContext(ctx, `
		INSERT INTO clubs (club_key, members_json, created_at, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (club_key) DO UPDATE SET
			members_json = excluded.members_json,
			updated_at = excluded.updated_at
	`, club.Bytes(), raw, now, now)
	return err
}

func (r *Repo) Mutate(ctx context.Context, club domain.ClubID, fn clubrepo.MutateFunc) error {
	if r == nil || r.db == nil {
		return fmt.Errorf("storage is not configured")
	}
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin mutate: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	key := club.Bytes()
	var raw string
	if err := tx.QueryRowContext(ctx, `SELECT members_json FROM clubs WHERE club_key = ?`, key).Scan(&raw); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return clubrepo.ErrNotFound
		}
		return err
	}
	cur, err := decodeMembers(raw)
	if err != nil {
		return err
	}

	next, err := fn(cur)
	if err != nil {
		return err
	}
	encoded, err := encodeMembers(next)
	if err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx,
		`UPDATE clubs SET members_json = ?, updated_at = ? WHERE club_key = ?`,
		encoded, time.Now().UTC().UnixMilli(), key,
	); err != nil {
		return fmt.Errorf("update club members: %w", err)
	}
	return tx.Commit()
}

func (r *Repo) ListClubs(ctx context.Context) ([]domain.ClubID, error) {
	if r == nil || r.db == nil {
		return nil, fmt.Errorf("storage is not configured")
	}
	// BLOB ordering is memcmp, i.e. bytewise.
	rows, err := r.db.QueryContext(ctx, `SELECT club_key FROM clubs ORDER BY club_key ASC`)
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
	return out, rows.Err()
}

func encodeMembers(ms []domain.AccountID) (string, error) {
	if ms == nil {
		ms = []domain.AccountID{}
	}
	b, err := json.Marshal(ms)
	if err != nil {
		return "", fmt.Errorf("encode members: %w", err)
	}
	return string(b), nil
}

func decodeMembers(raw string) ([]domain.AccountID, error) {
	out := []domain.AccountID{}
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return nil, fmt.Errorf("decode members: %w", err)
	}
	return out, nil
}
