package webserver

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/ballot-labs/dappvotes/src/api/ledger"
)

// testServer wires the handlers behind a stub identity middleware so each
// request can pick its caller address via the X-Test-Addr header.
func testServer(lg *ledger.Ledger) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set("addr", c.GetHeader("X-Test-Addr"))
		c.Next()
	})

	pollH := NewPolls(lg)
	contH := NewContestants(lg)
	voteH := NewVotes(lg)
	voterH := NewVoters(lg)

	v1 := r.Group("/v1")
	v1.GET("/polls", pollH.List)
	v1.GET("/polls/count", pollH.Count)
	v1.GET("/polls/:id", pollH.Get)
	v1.GET("/polls/:id/status", pollH.Status)
	v1.GET("/polls/:id/contestants", contH.List)
	v1.GET("/polls/:id/contestants/:cid", contH.Get)
	v1.GET("/polls/:id/voted/:addr", voteH.HasVoted)
	v1.POST("/polls", pollH.Create)
	v1.PUT("/polls/:id", pollH.Update)
	v1.DELETE("/polls/:id", pollH.Delete)
	v1.POST("/polls/:id/contestants", contH.Register)
	v1.POST("/polls/:id/votes", voteH.Cast)
	v1.POST("/voters", voterH.Register)
	return r
}

func do(t *testing.T, r *gin.Engine, method, path, addr string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Test-Addr", addr)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func newServer() (*gin.Engine, *time.Time) {
	now := time.Unix(1700000000, 0)
	lg := ledger.New(ledger.Config{
		LockUpdateAfterVotes: true,
		EnforceVoteWindow:    true,
		Now:                  func() time.Time { return now },
	})
	return testServer(lg), &now
}

func pollBody(now time.Time) map[string]any {
	return map[string]any{
		"image":       "https://example.com/image.jpg",
		"title":       "Test Poll",
		"description": "This is a test poll",
		"startsAt":    now.Unix() + 3600,
		"endsAt":      now.Unix() + 3600 + 86400,
	}
}

func TestCreateAndListPolls(t *testing.T) {
	r, now := newServer()

	w := do(t, r, http.MethodPost, "/v1/polls", "alice", pollBody(*now))
	require.Equal(t, http.StatusCreated, w.Code)
	require.JSONEq(t, `{"id":1}`, w.Body.String())

	w = do(t, r, http.MethodGet, "/v1/polls", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var polls []map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &polls))
	require.Len(t, polls, 1)
	require.Equal(t, "Test Poll", polls[0]["title"])
	require.Equal(t, "alice", polls[0]["director"])

	w = do(t, r, http.MethodGet, "/v1/polls/count", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.JSONEq(t, `{"count":1}`, w.Body.String())
}

func TestCreatePollRejectsBadTimeRange(t *testing.T) {
	r, now := newServer()

	body := pollBody(*now)
	body["startsAt"] = now.Unix() - 3600
	w := do(t, r, http.MethodPost, "/v1/polls", "alice", body)
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Contains(t, w.Body.String(), "start time must be in the future")
}

func TestCreatePollRejectsMissingFields(t *testing.T) {
	r, now := newServer()

	body := pollBody(*now)
	delete(body, "title")
	w := do(t, r, http.MethodPost, "/v1/polls", "alice", body)
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestTitleIsSanitized(t *testing.T) {
	r, now := newServer()

	body := pollBody(*now)
	body["title"] = `Fair Election<script>alert(1)</script>`
	w := do(t, r, http.MethodPost, "/v1/polls", "alice", body)
	require.Equal(t, http.StatusCreated, w.Code)

	w = do(t, r, http.MethodGet, "/v1/polls/1", "", nil)
	var poll map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &poll))
	require.Equal(t, "Fair Election", poll["title"])
}

func TestUpdateFromNonDirector(t *testing.T) {
	r, now := newServer()
	do(t, r, http.MethodPost, "/v1/polls", "alice", pollBody(*now))

	w := do(t, r, http.MethodPut, "/v1/polls/1", "bob", pollBody(*now))
	require.Equal(t, http.StatusForbidden, w.Code)
}

func TestDeleteExcludesFromListing(t *testing.T) {
	r, now := newServer()
	do(t, r, http.MethodPost, "/v1/polls", "alice", pollBody(*now))

	w := do(t, r, http.MethodDelete, "/v1/polls/1", "alice", nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = do(t, r, http.MethodGet, "/v1/polls", "", nil)
	require.JSONEq(t, `[]`, w.Body.String())

	// Direct read still serves the tombstone.
	w = do(t, r, http.MethodGet, "/v1/polls/1", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), `"deleted":true`)
}

func TestContestAndVoteFlow(t *testing.T) {
	r, now := newServer()
	do(t, r, http.MethodPost, "/v1/polls", "alice", pollBody(*now))

	w := do(t, r, http.MethodPost, "/v1/polls/1/contestants", "bob",
		map[string]any{"name": "Contestant 1", "image": "https://example.com/c1.jpg"})
	require.Equal(t, http.StatusCreated, w.Code)
	require.JSONEq(t, `{"id":1}`, w.Body.String())

	// Same address cannot contest twice.
	w = do(t, r, http.MethodPost, "/v1/polls/1/contestants", "bob",
		map[string]any{"name": "Contestant 1"})
	require.Equal(t, http.StatusConflict, w.Code)

	*now = now.Add(2 * time.Hour) // into the voting window

	w = do(t, r, http.MethodPost, "/v1/polls/1/votes", "carol",
		map[string]any{"contestantId": 1})
	require.Equal(t, http.StatusCreated, w.Code)

	w = do(t, r, http.MethodPost, "/v1/polls/1/votes", "carol",
		map[string]any{"contestantId": 1})
	require.Equal(t, http.StatusConflict, w.Code)

	w = do(t, r, http.MethodPost, "/v1/polls/1/votes", "dave",
		map[string]any{"contestantId": 99})
	require.Equal(t, http.StatusNotFound, w.Code)

	w = do(t, r, http.MethodGet, "/v1/polls/1/voted/carol", "", nil)
	require.JSONEq(t, `{"voted":true}`, w.Body.String())

	w = do(t, r, http.MethodGet, "/v1/polls/1/contestants/1", "", nil)
	var contestant map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &contestant))
	require.Equal(t, float64(1), contestant["votes"])

	// Delete now conflicts because votes exist.
	w = do(t, r, http.MethodDelete, "/v1/polls/1", "alice", nil)
	require.Equal(t, http.StatusConflict, w.Code)
}

func TestPollStatusEndpoint(t *testing.T) {
	r, now := newServer()
	do(t, r, http.MethodPost, "/v1/polls", "alice", pollBody(*now))

	w := do(t, r, http.MethodGet, "/v1/polls/1/status", "", nil)
	require.JSONEq(t, `{"status":"upcoming"}`, w.Body.String())

	*now = now.Add(2 * time.Hour)
	w = do(t, r, http.MethodGet, "/v1/polls/1/status", "", nil)
	require.JSONEq(t, `{"status":"active"}`, w.Body.String())

	*now = now.Add(48 * time.Hour)
	w = do(t, r, http.MethodGet, "/v1/polls/1/status", "", nil)
	require.JSONEq(t, `{"status":"ended"}`, w.Body.String())

	w = do(t, r, http.MethodGet, "/v1/polls/9/status", "", nil)
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestVoterEnrollment(t *testing.T) {
	r, _ := newServer()

	w := do(t, r, http.MethodPost, "/v1/voters", "alice",
		map[string]any{"name": "Alice", "fingerprint": "template-1"})
	require.Equal(t, http.StatusCreated, w.Code)
	require.Contains(t, w.Body.String(), `"address":"alice"`)

	// Same template from another address hashes to the same digest.
	w = do(t, r, http.MethodPost, "/v1/voters", "bob",
		map[string]any{"name": "Bob", "fingerprint": "template-1"})
	require.Equal(t, http.StatusConflict, w.Code)
	require.Contains(t, w.Body.String(), "fingerprint already registered")
}

func TestUnknownPollIs404(t *testing.T) {
	r, _ := newServer()
	for _, path := range []string{"/v1/polls/5", "/v1/polls/5/contestants", "/v1/polls/abc"} {
		w := do(t, r, http.MethodGet, path, "", nil)
		require.Equal(t, http.StatusNotFound, w.Code, fmt.Sprintf("path %s", path))
	}
}
