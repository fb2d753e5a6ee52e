package reddit

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourgamermom/japari-librarian/pkg/logging"
)

// newTestClient builds a client over an httptest server with a session that
// already holds a valid token and a healthy budget.
func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	s, clock := newTestSession("", srv.Client())
	s.token = "tok"
	s.expires = clock.t.Add(time.Hour)
	s.remain = 100

	return NewClient(s, logging.NewNopLogger(), &ClientOptions{
		BaseURL:    srv.URL,
		HTTPClient: srv.Client(),
	})
}

func TestGetUnread_Paginates(t *testing.T) {
	var afters []string
	pages := []string{
		`{"data":{"children":[
			{"data":{"name":"t4_a","author":"alice","body":"hello"}},
			{"data":{"name":"t4_b","author":"bob","subreddit":"KemonoFriends","body":"/u/bot \"serval\""}}
		]}}`,
		`{"data":{"children":[]}}`,
	}

	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/message/unread/.json", r.URL.Path)
		assert.Equal(t, "japari_librarian/0.1.0", r.Header.Get("User-Agent"))
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		assert.Equal(t, "100", r.URL.Query().Get("limit"))

		afters = append(afters, r.URL.Query().Get("after"))
		w.Write([]byte(pages[len(afters)-1]))
	}))

	messages, err := c.GetUnread(context.Background(), 0)
	require.NoError(t, err)

	require.Len(t, messages, 2)
	assert.Equal(t, "t4_a", messages[0].Name)
	assert.Equal(t, "alice", messages[0].Author)
	assert.Equal(t, "", messages[0].Subreddit)
	assert.Equal(t, "t4_b", messages[1].Name)
	assert.Equal(t, "KemonoFriends", messages[1].Subreddit)

	// Second page is cursored on the fullname of the last message.
	assert.Equal(t, []string{"", "t4_b"}, afters)
}

func TestGetUnread_Limit(t *testing.T) {
	requests := 0
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		assert.Equal(t, "1", r.URL.Query().Get("limit"))
		w.Write([]byte(`{"data":{"children":[{"data":{"name":"t4_a"}}]}}`))
	}))

	messages, err := c.GetUnread(context.Background(), 1)
	require.NoError(t, err)

	assert.Len(t, messages, 1)
	assert.Equal(t, 1, requests)
}

func TestGetUnread_StatusError(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))

	_, err := c.GetUnread(context.Background(), 0)
	code, ok := IsStatusError(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusServiceUnavailable, code)
}

func TestGetUnread_UpdatesBudget(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("x-ratelimit-remaining", "37.0")
		w.Header().Set("x-ratelimit-reset", "120")
		w.Write([]byte(`{"data":{"children":[]}}`))
	}))

	_, err := c.GetUnread(context.Background(), 0)
	require.NoError(t, err)

	assert.Equal(t, 37, c.Session().Remaining())
}

func TestMarkRead(t *testing.T) {
	var gotIDs string
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/read_message", r.URL.Path)
		require.Equal(t, http.MethodPost, r.Method)
		require.NoError(t, r.ParseForm())
		gotIDs = r.PostForm.Get("id")
	}))

	err := c.MarkRead(context.Background(), []Message{
		{Name: "t4_a"}, {Name: "t4_b"}, {Name: "t4_c"},
	})
	require.NoError(t, err)

	assert.Equal(t, "t4_a,t4_b,t4_c", gotIDs)
}

func TestMarkRead_EmptyIsNoop(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("no request expected for an empty list")
	}))

	require.NoError(t, c.MarkRead(context.Background(), nil))
}

func TestReply(t *testing.T) {
	type posted struct{ parent, text string }
	var got []posted

	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/comment", r.URL.Path)
		require.NoError(t, r.ParseForm())
		got = append(got, posted{r.PostForm.Get("parent"), r.PostForm.Get("text")})
	}))

	err := c.Reply(context.Background(), []Reply{
		{Parent: "t4_a", Text: "[Serval](https://example.com/Serval)"},
		{Parent: "t4_b", Text: "[Tanuki](https://example.com/Tanuki)"},
	})
	require.NoError(t, err)

	require.Len(t, got, 2)
	assert.Equal(t, posted{"t4_a", "[Serval](https://example.com/Serval)"}, got[0])
	assert.Equal(t, posted{"t4_b", "[Tanuki](https://example.com/Tanuki)"}, got[1])
}

func TestReply_StopsOnFailure(t *testing.T) {
	requests := 0
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		if requests > 1 {
			w.WriteHeader(http.StatusInternalServerError)
		}
	}))

	err := c.Reply(context.Background(), []Reply{
		{Parent: "t4_a", Text: "one"},
		{Parent: "t4_b", Text: "two"},
		{Parent: "t4_c", Text: "three"},
	})

	code, ok := IsStatusError(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusInternalServerError, code)
	assert.Equal(t, 2, requests, "third reply not attempted")
}
