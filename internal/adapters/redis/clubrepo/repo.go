// Package clubrepo provides a Redis-backed club registry store.
package clubrepo

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/redis/go-redis/v9"

	"github.com/Overland-East-Bay/club-registry/internal/domain"
	"github.com/Overland-East-Bay/club-registry/internal/ports/out/clubrepo"
)

const maxMutateAttempts = 16

// Repo stores each club as a JSON array under "<ns>:club:<hex key>" and keeps
// the set of hex keys under "<ns>:index".
//
// Mutate uses WATCH/MULTI: a concurrent write to the same club aborts the
// transaction and the read-modify-write is retried from a fresh read.
type Repo struct {
	client *redis.Client
	ns     string
}

func NewRepo(client *redis.Client, namespace string) *Repo {
	if namespace == "" {
		namespace = "clubs"
	}
	return &Repo{client: client, ns: namespace}
}

func (r *Repo) clubKey(club domain.ClubID) string {
	return r.ns + ":club:" + hex.EncodeToString(club.Bytes())
}

func (r *Repo) indexKey() string { return r.ns + ":index" }

func (r *Repo) Get(ctx context.Context, club domain.ClubID) ([]domain.AccountID, error) {
	raw, err := r.client.Get(ctx, r.clubKey(club)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, clubrepo.ErrNotFound
		}
		return nil, err
	}
	return decodeMembers(raw)
}

func (r *Repo) Insert(ctx context.Context, club domain.ClubID, members []domain.AccountID) error {
	raw, err := encodeMembers(members)
	if err != nil {
		return err
	}
	_, err = r.client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.Set(ctx, r.clubKey(club), raw, 0)
		p.SAdd(ctx, r.indexKey(), hex.EncodeToString(club.Bytes()))
		return nil
	})
	return err
}

func (r *Repo) Mutate(ctx context.Context, club domain.ClubID, fn clubrepo.MutateFunc) error {
	key := r.clubKey(club)

	txf := func(tx *redis.Tx) error {
		raw, err := tx.Get(ctx, key).Result()
		if err != nil {
			if errors.Is(err, redis.Nil) {
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
		_, err = tx.TxPipelined(ctx, func(p redis.Pipeliner) error {
			p.Set(ctx, key, encoded, 0)
			return nil
		})
		return err
	}

	for i := 0; i < maxMutateAttempts; i++ {
		err := r.client.Watch(ctx, txf, key)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		return err
	}
	return fmt.Errorf("mutate club: %w", redis.TxFailedErr)
}

func (r *Repo) ListClubs(ctx context.Context) ([]domain.ClubID, error) {
	hexKeys, err := r.client.SMembers(ctx, r.indexKey()).Result()
	if err != nil {
		return nil, err
	}
	out := make([]domain.ClubID, 0, len(hexKeys))
	for _, h := range hexKeys {
		b, err := hex.DecodeString(h)
		if err != nil {
			return nil, fmt.Errorf("decode club index entry %q: %w", h, err)
		}
		out = append(out, domain.ClubIDFromBytes(b))
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out, nil
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
