package httpapi

import (
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/oapi-codegen/runtime"
	"github.com/sirupsen/logrus"

	"github.com/Overland-East-Bay/club-registry/internal/app/clubs"
	"github.com/Overland-East-Bay/club-registry/internal/domain"
	"github.com/Overland-East-Bay/club-registry/internal/ports/out/idempotency"
)

// hexClubPrefix marks a {club} path segment carrying raw key bytes as hex.
const hexClubPrefix = "hex:"

// Server is the HTTP adapter over the club registry.
type Server struct {
	Clubs *clubs.Service
	Idem  idempotency.Store

	// RootSubject is the authenticated subject that acts as the root authority.
	RootSubject domain.SubjectID
	Log         logrus.FieldLogger
}

func NewServer(svc *clubs.Service, idem idempotency.Store, rootSubject domain.SubjectID, log logrus.FieldLogger) *Server {
	if log == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		log = l
	}
	return &Server{
		Clubs:       svc,
		Idem:        idem,
		RootSubject: rootSubject,
		Log:         log,
	}
}

type ClubSummary struct {
	Club        string `json:"club"`
	ClubHex     string `json:"clubHex"`
	MemberCount int    `json:"memberCount"`
}

type ListClubsResponse struct {
	Clubs []ClubSummary `json:"clubs"`
}

type ClubMembersResponse struct {
	Club    string   `json:"club"`
	ClubHex string   `json:"clubHex"`
	Members []string `json:"members"`
}

type AddMemberRequest struct {
	Member string `json:"member"`
}

type Event struct {
	ID         string    `json:"id"`
	Kind       string    `json:"kind"`
	Club       string    `json:"club"`
	ClubHex    string    `json:"clubHex"`
	Member     string    `json:"member"`
	OccurredAt time.Time `json:"occurredAt"`
}

type EventResponse struct {
	Event Event `json:"event"`
}

func (s *Server) ListClubs(w http.ResponseWriter, r *http.Request) {
	if _, ok := SubjectFromContext(r.Context()); !ok {
		writeError(w, r, http.StatusUnauthorized, "UNAUTHENTICATED", "missing subject", nil)
		return
	}

	cs, err := s.Clubs.ListClubs(r.Context())
	if err != nil {
		s.Log.WithError(err).Error("list clubs")
		writeAppError(w, r, err)
		return
	}
	out := ListClubsResponse{Clubs: make([]ClubSummary, 0, len(cs))}
	for _, c := range cs {
		out.Clubs = append(out.Clubs, ClubSummary{
			Club:        string(c.ID),
			ClubHex:     hex.EncodeToString(c.ID.Bytes()),
			MemberCount: len(c.Members),
		})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) GetMembers(w http.ResponseWriter, r *http.Request) {
	if _, ok := SubjectFromContext(r.Context()); !ok {
		writeError(w, r, http.StatusUnauthorized, "UNAUTHENTICATED", "missing subject", nil)
		return
	}
	club, err := clubParam(r)
	if err != nil {
		writeError(w, r, http.StatusUnprocessableEntity, "VALIDATION_ERROR", err.Error(), map[string]any{"param": "club"})
		return
	}

	ms, ok, err := s.Clubs.GetMembers(r.Context(), club)
	if err != nil {
		s.Log.WithError(err).Error("get members")
		writeAppError(w, r, err)
		return
	}
	if !ok {
		writeError(w, r, http.StatusNotFound, "CLUB_DOES_NOT_EXIST", "club does not exist", map[string]any{"club": string(club)})
		return
	}
	out := ClubMembersResponse{
		Club:    string(club),
		ClubHex: hex.EncodeToString(club.Bytes()),
		Members: make([]string, 0, len(ms)),
	}
	for _, m := range ms {
		out.Members = append(out.Members, string(m))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) AddMember(w http.ResponseWriter, r *http.Request) {
	sub, ok := SubjectFromContext(r.Context())
	if !ok {
		writeError(w, r, http.StatusUnauthorized, "UNAUTHENTICATED", "missing subject", nil)
		return
	}
	origin := originFor(sub, s.RootSubject)
	if err := clubs.EnsureRoot(origin); err != nil {
		writeAppError(w, r, err)
		return
	}
	club, err := clubParam(r)
	if err != nil {
		writeError(w, r, http.StatusUnprocessableEntity, "VALIDATION_ERROR", err.Error(), map[string]any{"param": "club"})
		return
	}
	var body AddMemberRequest
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&body); err != nil {
		writeError(w, r, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "invalid request body", nil)
		return
	}
	member := body.Member
	if member == "" {
		writeError(w, r, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "member is required", map[string]any{"field": "member"})
		return
	}

	fp, replayable := fingerprint(r, sub)
	bodyHash := hashRequest(r.Method, string(club), member)
	if replayable {
		if done := s.replay(w, r, fp, bodyHash); done {
			return
		}
	}

	ev, err := s.Clubs.AddMember(r.Context(), origin, club, domain.AccountID(member))
	if !s.committed(w, r, ev, err) {
		return
	}
	s.respond(w, r, fp, replayable, bodyHash, http.StatusCreated, EventResponse{Event: eventFromDomain(ev)})
}

func (s *Server) RemoveMember(w http.ResponseWriter, r *http.Request) {
	sub, ok := SubjectFromContext(r.Context())
	if !ok {
		writeError(w, r, http.StatusUnauthorized, "UNAUTHENTICATED", "missing subject", nil)
		return
	}
	origin := originFor(sub, s.RootSubject)
	if err := clubs.EnsureRoot(origin); err != nil {
		writeAppError(w, r, err)
		return
	}
	club, err := clubParam(r)
	if err != nil {
		writeError(w, r, http.StatusUnprocessableEntity, "VALIDATION_ERROR", err.Error(), map[string]any{"param": "club"})
		return
	}
	var member string
	if err := runtime.BindStyledParameterWithLocation("simple", false, "member", runtime.ParamLocationPath, chi.URLParam(r, "member"), &member); err != nil || member == "" {
		writeError(w, r, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "invalid member", map[string]any{"param": "member"})
		return
	}

	fp, replayable := fingerprint(r, sub)
	bodyHash := hashRequest(r.Method, string(club), member)
	if replayable {
		if done := s.replay(w, r, fp, bodyHash); done {
			return
		}
	}

	ev, err := s.Clubs.RemoveMember(r.Context(), origin, club, domain.AccountID(member))
	if !s.committed(w, r, ev, err) {
		return
	}
	s.respond(w, r, fp, replayable, bodyHash, http.StatusOK, EventResponse{Event: eventFromDomain(ev)})
}

// committed reports whether the mutation was applied. A notification failure still
// counts: the registry changed, so the caller gets the event and the failure is logged.
func (s *Server) committed(w http.ResponseWriter, r *http.Request, ev domain.Event, err error) bool {
	if err == nil {
		return true
	}
	if errors.Is(err, clubs.ErrNotificationFailed) {
		s.Log.WithError(err).WithField("event_id", ev.ID).Warn("membership event not delivered")
		return true
	}
	if ae := (*clubs.Error)(nil); !errors.As(err, &ae) {
		s.Log.WithError(err).Error("registry mutation")
	}
	writeAppError(w, r, err)
	return false
}

// clubParam reads {club}. The segment is the UTF-8 club key, or "hex:" followed by
// the key bytes in hex for keys that are not valid path text. Path parameters reach
// the binder still escaped (see escapedRoutePath), so they are unescaped exactly once.
func clubParam(r *http.Request) (domain.ClubID, error) {
	var raw string
	if err := runtime.BindStyledParameterWithLocation("simple", false, "club", runtime.ParamLocationPath, chi.URLParam(r, "club"), &raw); err != nil {
		return "", fmt.Errorf("invalid club: %w", err)
	}
	if rest, ok := strings.CutPrefix(raw, hexClubPrefix); ok {
		b, err := hex.DecodeString(rest)
		if err != nil {
			return "", fmt.Errorf("invalid hex club key: %w", err)
		}
		return domain.ClubIDFromBytes(b), nil
	}
	return domain.ClubID(raw), nil
}

func eventFromDomain(ev domain.Event) Event {
	return Event{
		ID:         ev.ID,
		Kind:       string(ev.Kind),
		Club:       string(ev.Club),
		ClubHex:    hex.EncodeToString(ev.Club.Bytes()),
		Member:     string(ev.Member),
		OccurredAt: ev.OccurredAt,
	}
}
