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

var testCreds = Credentials{
	ClientID:     "client-id",
	ClientSecret: "client-secret",
	Username:     "japari_librarian",
	Password:     "hunter2",
}

// fakeClock provides a controllable now/sleep pair for session tests.
type fakeClock struct {
	t     time.Time
	slept []time.Duration
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) now() time.Time { return c.t }

func (c *fakeClock) sleep(d time.Duration) {
	c.slept = append(c.slept, d)
	c.t = c.t.Add(d)
}

func newTestSession(tokenURL string, httpClient *http.Client) (*Session, *fakeClock) {
	s := NewSession(testCreds, logging.NewNopLogger(), &SessionOptions{
		TokenURL:   tokenURL,
		HTTPClient: httpClient,
	})
	clock := newFakeClock()
	s.now = clock.now
	s.sleep = clock.sleep
	return s, clock
}

func TestSession_DefaultUserAgent(t *testing.T) {
	s := NewSession(testCreds, nil, nil)
	assert.Equal(t, "japari_librarian/0.1.0", s.UserAgent())
}

func TestPrepare_BlocksUntilReset(t *testing.T) {
	s, clock := newTestSession("", nil)
	s.remain = 1
	s.reset = clock.t.Add(30 * time.Second)

	s.Prepare()

	require.Len(t, clock.slept, 1)
	assert.Equal(t, 30*time.Second, clock.slept[0])
}

func TestPrepare_NoWaitWithBudget(t *testing.T) {
	s, clock := newTestSession("", nil)
	s.remain = 50
	s.reset = clock.t.Add(30 * time.Second)

	s.Prepare()

	assert.Empty(t, clock.slept)
}

func TestPrepare_NoWaitPastReset(t *testing.T) {
	s, clock := newTestSession("", nil)
	s.remain = 0
	s.reset = clock.t.Add(-time.Second)

	s.Prepare()

	assert.Empty(t, clock.slept)
}

func TestUpdate(t *testing.T) {
	tests := []struct {
		name       string
		remaining  string
		reset      string
		wantOK     bool
		wantRemain int
	}{
		{name: "both present", remaining: "598.0", reset: "550", wantOK: true, wantRemain: 598},
		{name: "fractional remaining truncates", remaining: "12.9", reset: "10", wantOK: true, wantRemain: 12},
		{name: "integer remaining", remaining: "42", reset: "1", wantOK: true, wantRemain: 42},
		{name: "missing remaining", reset: "550", wantOK: false},
		{name: "missing reset", remaining: "598.0", wantOK: false},
		{name: "unparsable remaining", remaining: "lots", reset: "550", wantOK: false},
		{name: "unparsable reset", remaining: "598.0", reset: "soon", wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, clock := newTestSession("", nil)
			s.remain = 7
			before := s.reset

			h := http.Header{}
			if tt.remaining != "" {
				h.Set("x-ratelimit-remaining", tt.remaining)
			}
			if tt.reset != "" {
				h.Set("x-ratelimit-reset", tt.reset)
			}

			ok := s.Update(h)
			assert.Equal(t, tt.wantOK, ok)

			if tt.wantOK {
				assert.Equal(t, tt.wantRemain, s.remain)
				assert.True(t, s.reset.After(clock.t))
			} else {
				// Failed updates leave the budget untouched.
				assert.Equal(t, 7, s.remain)
				assert.Equal(t, before, s.reset)
			}
		})
	}
}

func TestBearer_Login(t *testing.T) {
	var gotGrant, gotUser, gotPass string
	var gotBasicID, gotBasicSecret string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		gotGrant = r.PostForm.Get("grant_type")
		gotUser = r.PostForm.Get("username")
		gotPass = r.PostForm.Get("password")
		gotBasicID, gotBasicSecret, _ = r.BasicAuth()

		w.Header().Set("x-ratelimit-remaining", "599.0")
		w.Header().Set("x-ratelimit-reset", "600")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"access_token":"tok-1","expires_in":3600}`))
	}))
	defer srv.Close()

	s, clock := newTestSession(srv.URL, srv.Client())

	token, err := s.Bearer(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "tok-1", token)

	assert.Equal(t, "password", gotGrant)
	assert.Equal(t, testCreds.Username, gotUser)
	assert.Equal(t, testCreds.Password, gotPass)
	assert.Equal(t, testCreds.ClientID, gotBasicID)
	assert.Equal(t, testCreds.ClientSecret, gotBasicSecret)

	// Login responses update the rate budget too.
	assert.Equal(t, 599, s.Remaining())
	assert.Equal(t, clock.t.Add(time.Hour), s.expires)
}

func TestBearer_CachesTokenUntilLeeway(t *testing.T) {
	logins := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logins++
		w.Write([]byte(`{"access_token":"tok","expires_in":3600}`))
	}))
	defer srv.Close()

	s, clock := newTestSession(srv.URL, srv.Client())

	_, err := s.Bearer(context.Background())
	require.NoError(t, err)
	_, err = s.Bearer(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, logins, "valid token should be reused")

	// Within 90 seconds of expiry a fresh token is acquired.
	clock.t = clock.t.Add(time.Hour - time.Minute)
	_, err = s.Bearer(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, logins)
}

func TestBearer_Unauthorized(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	s, _ := newTestSession(srv.URL, srv.Client())

	_, err := s.Bearer(context.Background())
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestBearer_BadCredentials(t *testing.T) {
	// Reddit answers a bad password with a 200 whose body is not a usable
	// login response.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"error":"invalid_grant"}`))
	}))
	defer srv.Close()

	s, _ := newTestSession(srv.URL, srv.Client())

	_, err := s.Bearer(context.Background())
	assert.ErrorIs(t, err, ErrBadCredentials)
}

func TestBearer_OtherStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	s, _ := newTestSession(srv.URL, srv.Client())

	_, err := s.Bearer(context.Background())
	code, ok := IsStatusError(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusBadGateway, code)
}

func TestBearer_TransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // Shut down before the request is made.

	s, _ := newTestSession(srv.URL, http.DefaultClient)

	_, err := s.Bearer(context.Background())
	var reqErr *RequestError
	assert.ErrorAs(t, err, &reqErr)
}
