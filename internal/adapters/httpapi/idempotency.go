package httpapi

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/Overland-East-Bay/club-registry/internal/domain"
	"github.com/Overland-East-Bay/club-registry/internal/ports/out/idempotency"
)

const idempotencyHeader = "Idempotency-Key"

// fingerprint returns the replay identity of a mutation; ok is false when the caller
// sent no Idempotency-Key.
func fingerprint(r *http.Request, sub string) (idempotency.Fingerprint, bool) {
	key := strings.TrimSpace(r.Header.Get(idempotencyHeader))
	if key == "" {
		return idempotency.Fingerprint{}, false
	}
	return idempotency.Fingerprint{
		Key:     idempotency.Key(key),
		Subject: domain.SubjectID(sub),
		Method:  r.Method,
		Route:   r.URL.Path,
	}, true
}

func hashRequest(parts ...string) string {
	h := sha256.New()
	for _, p := range parts {
		// Length-prefix each part so ("ab","c") and ("a","bc") differ.
		_, _ = h.Write([]byte{byte(len(p) >> 24), byte(len(p) >> 16), byte(len(p) >> 8), byte(len(p))})
		_, _ = h.Write([]byte(p))
	}
	return hex.EncodeToString(h.Sum(nil))
}

// replay writes the stored response for fp, or a 409 when the key was used for a
// different request. It returns true when a response has been written.
func (s *Server) replay(w http.ResponseWriter, r *http.Request, fp idempotency.Fingerprint, bodyHash string) bool {
	if s.Idem == nil {
		return false
	}
	rec, ok, err := s.Idem.Get(r.Context(), fp)
	if err != nil {
		s.Log.WithError(err).Error("idempotency lookup")
		writeError(w, r, http.StatusInternalServerError, "INTERNAL", "internal error", nil)
		return true
	}
	if !ok {
		return false
	}
	if rec.BodyHash != bodyHash {
		writeError(w, r, http.StatusConflict, "IDEMPOTENCY_KEY_REUSED", "idempotency key reuse with different payload", nil)
		return true
	}
	w.Header().Set("Content-Type", rec.ContentType)
	w.Header().Set("Idempotent-Replayed", "true")
	w.WriteHeader(rec.StatusCode)
	_, _ = w.Write(rec.Body)
	return true
}

// respond writes a successful mutation response and, when the request carried an
// Idempotency-Key, stores it for replay. A failed store write only costs the replay.
func (s *Server) respond(w http.ResponseWriter, r *http.Request, fp idempotency.Fingerprint, replayable bool, bodyHash string, status int, v any) {
	b, err := json.Marshal(v)
	if err != nil {
		writeError(w, r, http.StatusInternalServerError, "INTERNAL", "internal error", nil)
		return
	}
	b = append(b, '\n')

	if replayable && s.Idem != nil {
		err := s.Idem.Put(r.Context(), fp, idempotency.Record{
			BodyHash:    bodyHash,
			StatusCode:  status,
			ContentType: "application/json",
			Body:        b,
			CreatedAt:   time.Now().UTC(),
		})
		if err != nil {
			s.Log.WithError(err).Warn("idempotency record not stored")
		}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(b)
}
