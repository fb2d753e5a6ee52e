package reddit

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/yourgamermom/japari-librarian/pkg/logging"
)

// Default session settings.
const (
	DefaultTokenURL = "https://www.reddit.com/api/v1/access_token"

	// tokenRefreshLeeway forces a refresh when the token would expire this
	// soon, so a token never goes stale mid-request.
	tokenRefreshLeeway = 90 * time.Second

	// budgetReserve is the minimum budget needed before issuing a request:
	// one slot for the request itself and one for a possible forced
	// re-authentication.
	budgetReserve = 2
)

// Rate-limit response headers. Reddit reports the remaining count as a
// decimal string and the reset as an integer seconds offset.
const (
	headerRatelimitRemaining = "x-ratelimit-remaining"
	headerRatelimitReset     = "x-ratelimit-reset"
)

// Credentials holds the reddit script-app credentials. They are immutable
// for the lifetime of the process.
type Credentials struct {
	ClientID     string
	ClientSecret string
	Username     string
	Password     string
}

// SessionOptions configures a Session.
type SessionOptions struct {
	// TokenURL is the password-grant token endpoint.
	TokenURL string

	// UserAgent is sent on every request. Defaults to "<username>/<version>".
	UserAgent string

	// HTTPClient is the client used for token acquisition.
	HTTPClient *http.Client
}

// Session owns the OAuth bearer token and the rate-limit budget for the
// bot's reddit account. It gates every outbound call and transparently
// refreshes the token when it is missing or about to expire.
//
// A Session is owned by the cycle driver and threaded through every
// network-issuing component; it is not safe for concurrent use and does not
// need to be, since one cycle runs at a time.
type Session struct {
	creds     Credentials
	tokenURL  string
	userAgent string
	http      *http.Client
	logger    logging.Logger

	token   string
	expires time.Time

	remain int
	reset  time.Time

	// Injectable clock for tests.
	now   func() time.Time
	sleep func(time.Duration)
}

// NewSession creates a Session with no token and an exhausted budget; the
// first Bearer call performs the initial login.
func NewSession(creds Credentials, logger logging.Logger, opts *SessionOptions) *Session {
	if opts == nil {
		opts = &SessionOptions{}
	}

	tokenURL := opts.TokenURL
	if tokenURL == "" {
		tokenURL = DefaultTokenURL
	}

	userAgent := opts.UserAgent
	if userAgent == "" {
		userAgent = creds.Username + "/0.1.0"
	}

	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	if logger == nil {
		logger = logging.NewNopLogger()
	}

	return &Session{
		creds:     creds,
		tokenURL:  tokenURL,
		userAgent: userAgent,
		http:      httpClient,
		logger:    logger.With(logging.F("component", "session")),
		now:       time.Now,
		sleep:     time.Sleep,
	}
}

// UserAgent returns the fixed user-agent string sent on every request.
func (s *Session) UserAgent() string {
	return s.userAgent
}

// Remaining returns the most recently reported rate-limit budget.
func (s *Session) Remaining() int {
	return s.remain
}

// Prepare blocks until the rate budget allows another request. It must be
// called before every outbound call.
func (s *Session) Prepare() {
	if s.remain >= budgetReserve {
		return
	}

	now := s.now()
	if now.Before(s.reset) {
		wait := s.reset.Sub(now)
		s.logger.Warn("rate budget exhausted, waiting for reset",
			logging.F("wait", wait))
		s.sleep(wait)
	}
}

// Bearer returns the current bearer token, acquiring a fresh one first if
// there is no token, the token has expired, or it expires within the
// refresh leeway.
func (s *Session) Bearer(ctx context.Context) (string, error) {
	if s.tokenExpired() {
		if err := s.login(ctx); err != nil {
			return "", err
		}
	}
	return s.token, nil
}

// login performs the password-grant token acquisition.
func (s *Session) login(ctx context.Context) error {
	form := url.Values{}
	form.Set("grant_type", "password")
	form.Set("username", s.creds.Username)
	form.Set("password", s.creds.Password)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.tokenURL,
		strings.NewReader(form.Encode()))
	if err != nil {
		return &RequestError{Op: "login", Err: err}
	}
	req.Header.Set("User-Agent", s.userAgent)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.SetBasicAuth(s.creds.ClientID, s.creds.ClientSecret)

	resp, err := s.http.Do(req)
	if err != nil {
		return &RequestError{Op: "login", Err: err}
	}
	defer resp.Body.Close()

	s.Update(resp.Header)

	switch resp.StatusCode {
	case http.StatusOK:
		var login loginResponse
		if err := json.NewDecoder(resp.Body).Decode(&login); err != nil || login.AccessToken == "" {
			// A 200 that does not parse into a usable token means reddit
			// rejected the account credentials.
			return ErrBadCredentials
		}
		s.token = login.AccessToken
		s.expires = s.now().Add(time.Duration(login.ExpiresIn) * time.Second)
		s.logger.Debug("acquired access token",
			logging.F("expires_in_s", login.ExpiresIn))
		return nil
	case http.StatusUnauthorized:
		return ErrUnauthorized
	default:
		return &StatusError{Code: resp.StatusCode}
	}
}

// Update refreshes the rate budget from the response headers. It is
// best-effort: when either header is absent or unparsable the budget is left
// unchanged and Update reports false. Callers do not treat that as an error.
func (s *Session) Update(h http.Header) bool {
	remainRaw := h.Get(headerRatelimitRemaining)
	if remainRaw == "" {
		return false
	}
	// Reddit reports the remaining count as a decimal string; truncate
	// rather than round so the budget is never overstated.
	remainF, err := strconv.ParseFloat(remainRaw, 64)
	if err != nil {
		return false
	}

	resetRaw := h.Get(headerRatelimitReset)
	if resetRaw == "" {
		return false
	}
	resetS, err := strconv.Atoi(resetRaw)
	if err != nil {
		return false
	}

	s.remain = int(remainF)
	s.reset = s.now().Add(time.Duration(resetS) * time.Second)

	return true
}

// tokenExpired reports whether a fresh token is needed: there is no token,
// the token has expired, or it expires within the refresh leeway.
func (s *Session) tokenExpired() bool {
	if s.token == "" {
		return true
	}
	now := s.now()
	return !now.Before(s.expires) || s.expires.Sub(now) < tokenRefreshLeeway
}

// loginResponse is the password-grant token response body.
type loginResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int64  `json:"expires_in"`
}
