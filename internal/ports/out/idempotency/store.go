package idempotency

import (
	"context"
	"time"

	"github.com/Overland-East-Bay/club-registry/internal/domain"
)

// Key is the caller-provided idempotency key (Idempotency-Key header).
type Key string

// Fingerprint identifies a mutation request for replay purposes.
//
// Route is the HTTP method plus the concrete path (e.g. "POST /clubs/rotary/members"),
// so the same key reused against a different club never replays.
type Fingerprint struct {
	Key     Key
	Subject domain.SubjectID
	Method  string
	Route   string
}

// Record is the stored response replayed for a duplicate request.
// BodyHash is the hash of the original request body; a retry whose body hashes
// differently is a key reuse, not a replay.
type Record struct {
	BodyHash    string
	StatusCode  int
	ContentType string
	Body        []byte
	CreatedAt   time.Time
}

// Store persists idempotency records for replaying registry mutation responses.
type Store interface {
	Get(ctx context.Context, fp Fingerprint) (Record, bool, error)
	Put(ctx context.Context, fp Fingerprint, rec Record) error
}
