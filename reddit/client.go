package reddit

import (
	"context"
	"net/http"

	"github.com/yourgamermom/japari-librarian/pkg/logging"
)

// Default client settings.
const (
	DefaultBaseURL = "https://oauth.reddit.com"

	// maxPageSize is the maximum messages per request reddit will return.
	maxPageSize = 100
)

// ClientOptions configures a Client.
type ClientOptions struct {
	// BaseURL is the authenticated API root.
	BaseURL string

	// HTTPClient is the client used for API requests.
	HTTPClient *http.Client
}

// Client issues authenticated requests against the reddit API on behalf of
// one Session.
type Client struct {
	session *Session
	baseURL string
	http    *http.Client
	logger  logging.Logger
}

// NewClient creates a Client around an existing session.
func NewClient(session *Session, logger logging.Logger, opts *ClientOptions) *Client {
	if opts == nil {
		opts = &ClientOptions{}
	}

	baseURL := opts.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	if logger == nil {
		logger = logging.NewNopLogger()
	}

	return &Client{
		session: session,
		baseURL: baseURL,
		http:    httpClient,
		logger:  logger.With(logging.F("component", "reddit")),
	}
}

// Session returns the session this client issues requests on.
func (c *Client) Session() *Session {
	return c.session
}

// do runs one request under the session protocol: Prepare, attach the bearer
// token and user agent, issue, then Update the budget from the response
// headers whatever the status. The caller owns the response body.
func (c *Client) do(ctx context.Context, req *http.Request) (*http.Response, error) {
	c.session.Prepare()

	token, err := c.session.Bearer(ctx)
	if err != nil {
		return nil, err
	}

	req.Header.Set("User-Agent", c.session.UserAgent())
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &RequestError{Op: req.URL.Path, Err: err}
	}

	c.session.Update(resp.Header)

	return resp, nil
}
