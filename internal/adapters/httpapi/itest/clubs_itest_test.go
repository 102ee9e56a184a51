package itest

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type membersBody struct {
	Club    string   `json:"club"`
	Members []string `json:"members"`
}

type eventBody struct {
	Event struct {
		ID     string `json:"id"`
		Kind   string `json:"kind"`
		Club   string `json:"club"`
		Member string `json:"member"`
	} `json:"event"`
}

func TestClubs_ITest(t *testing.T) {
	for _, b := range backendsFromEnv(t) {
		t.Run(string(b), func(t *testing.T) {
			srv := newTestServer(t, b)
			rotary := srv.club("rotary")
			tennis := srv.club("tennis")
			membersOf := func(club string) []string {
				t.Helper()
				status, body, _ := srv.doJSON(t, http.MethodGet, "/clubs/"+club+"/members", "itest|reader", nil)
				require.Equal(t, http.StatusOK, status, string(body))
				return mustUnmarshal[membersBody](t, body).Members
			}

			// Missing subject => 401
			{
				status, body, _ := srv.doJSON(t, http.MethodGet, "/clubs", "", nil)
				requireErrorCode(t, status, body, http.StatusUnauthorized, "UNAUTHENTICATED")
			}

			// Root adds m1 to rotary.
			{
				status, body, _ := srv.doJSON(t, http.MethodPost, "/clubs/"+rotary+"/members", rootSubject, map[string]any{"member": "m1"})
				require.Equal(t, http.StatusCreated, status, string(body))
				ev := mustUnmarshal[eventBody](t, body)
				assert.Equal(t, "MemberAdded", ev.Event.Kind)
				assert.Equal(t, rotary, ev.Event.Club)
				assert.Equal(t, "m1", ev.Event.Member)
				assert.Equal(t, []string{"m1"}, membersOf(rotary))
				assert.Empty(t, membersOf(tennis))
			}

			// Duplicate add => 409, state unchanged.
			{
				status, body, _ := srv.doJSON(t, http.MethodPost, "/clubs/"+rotary+"/members", rootSubject, map[string]any{"member": "m1"})
				requireErrorCode(t, status, body, http.StatusConflict, "MEMBER_ALREADY_EXISTS_IN_CLUB")
				assert.Equal(t, []string{"m1"}, membersOf(rotary))
			}

			// Non-root caller is rejected before anything else.
			{
				status, body, _ := srv.doJSON(t, http.MethodPost, "/clubs/"+srv.club("golf")+"/members", "itest|alice", map[string]any{"member": "m2"})
				requireErrorCode(t, status, body, http.StatusForbidden, "UNAUTHORIZED")
			}

			// Unknown club => 404.
			{
				status, body, _ := srv.doJSON(t, http.MethodPost, "/clubs/"+srv.club("golf")+"/members", rootSubject, map[string]any{"member": "m1"})
				requireErrorCode(t, status, body, http.StatusNotFound, "CLUB_DOES_NOT_EXIST")
			}

			// Removing a non-member => 404.
			{
				status, body, _ := srv.doJSON(t, http.MethodDelete, "/clubs/"+tennis+"/members/m2", rootSubject, nil)
				requireErrorCode(t, status, body, http.StatusNotFound, "MEMBER_DOES_NOT_EXIST_IN_CLUB")
			}

			// Idempotent remove: retry replays, state stays removed.
			{
				status, body, _ := srv.doJSON(t, http.MethodDelete, "/clubs/"+rotary+"/members/m1", rootSubject, nil, "Idempotency-Key", "rm-1")
				require.Equal(t, http.StatusOK, status, string(body))
				assert.Equal(t, "MemberRemoved", mustUnmarshal[eventBody](t, body).Event.Kind)

				status2, body2, hdr := srv.doJSON(t, http.MethodDelete, "/clubs/"+rotary+"/members/m1", rootSubject, nil, "Idempotency-Key", "rm-1")
				require.Equal(t, http.StatusOK, status2, string(body2))
				requireHeaderPresent(t, hdr, "Idempotent-Replayed")
				assert.JSONEq(t, string(body), string(body2))
				assert.Empty(t, membersOf(rotary))
			}

			assert.Len(t, srv.events.Events(), 2)
		})
	}
}
