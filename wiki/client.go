// Package wiki resolves friend titles against the Japari Library MediaWiki
// API. Resolution runs in two phases: a metadata lookup that yields page
// titles, URLs, aliases and a chosen image title per page, and an image
// lookup that turns those image titles into direct URLs.
package wiki

import (
	"context"
	"io"
	"net/http"
	"net/url"

	"github.com/yourgamermom/japari-librarian/pkg/logging"
)

// Default client settings.
const (
	DefaultEndpoint = "https://www.japari-library.com/w/api.php"

	DefaultUserAgent = "japari-librarian/0.1.0"

	// MaxTitles is the number of titles sent per request. The server accepts
	// 50; staying a little under keeps window arithmetic forgiving.
	MaxTitles = 45
)

// ClientOptions configures a Client.
type ClientOptions struct {
	// Endpoint is the MediaWiki api.php URL.
	Endpoint string

	// UserAgent is sent on every request.
	UserAgent string

	// HTTPClient is the client used for requests.
	HTTPClient *http.Client
}

// Client issues read-only queries against one MediaWiki endpoint.
type Client struct {
	endpoint  string
	userAgent string
	http      *http.Client
	logger    logging.Logger
}

// NewClient creates a wiki Client.
func NewClient(logger logging.Logger, opts *ClientOptions) *Client {
	if opts == nil {
		opts = &ClientOptions{}
	}

	endpoint := opts.Endpoint
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}

	userAgent := opts.UserAgent
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}

	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	if logger == nil {
		logger = logging.NewNopLogger()
	}

	return &Client{
		endpoint:  endpoint,
		userAgent: userAgent,
		http:      httpClient,
		logger:    logger.With(logging.F("component", "wiki")),
	}
}

// get issues one API query and returns the response body on a 200.
func (c *Client) get(ctx context.Context, op string, params url.Values) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return nil, &RequestError{Op: op, Err: err}
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &RequestError{Op: op, Err: err}
	}

	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, &StatusError{Code: resp.StatusCode}
	}

	return resp.Body, nil
}

// batch walks items in fixed windows of size and concatenates the per-window
// results. The final partial window is always issued, even when empty, so
// every call sequence ends the same way and a zero-length input still makes
// exactly one request.
func batch[T, R any](items []T, size int, request func([]T) ([]R, error)) ([]R, error) {
	var results []R

	index := 0
	for len(items)-index > size {
		window, err := request(items[index : index+size])
		if err != nil {
			return nil, err
		}
		results = append(results, window...)
		index += size
	}

	window, err := request(items[index:])
	if err != nil {
		return nil, err
	}
	results = append(results, window...)

	return results, nil
}
