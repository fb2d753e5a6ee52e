package reddit

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/yourgamermom/japari-librarian/pkg/logging"
)

// Reply is one comment to post in response to a message.
type Reply struct {
	// Parent is the fullname of the message being answered.
	Parent string

	// Text is the markdown reply body.
	Text string
}

// Reply posts the given replies sequentially, one Prepare/Update cycle per
// reply. The first failure aborts; already-posted replies stay posted.
func (c *Client) Reply(ctx context.Context, replies []Reply) error {
	for _, reply := range replies {
		form := url.Values{}
		form.Set("parent", reply.Parent)
		form.Set("text", reply.Text)

		req, err := http.NewRequestWithContext(ctx, http.MethodPost,
			c.baseURL+"/api/comment", strings.NewReader(form.Encode()))
		if err != nil {
			return &RequestError{Op: "reply", Err: err}
		}
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

		resp, err := c.do(ctx, req)
		if err != nil {
			return err
		}
		resp.Body.Close()

		switch resp.StatusCode {
		case http.StatusOK:
			c.logger.Debug("posted reply", logging.F("parent", reply.Parent))
		case http.StatusUnauthorized:
			return ErrUnauthorized
		default:
			return &StatusError{Code: resp.StatusCode}
		}
	}

	return nil
}
