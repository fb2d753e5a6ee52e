package reddit

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/yourgamermom/japari-librarian/pkg/logging"
)

// Message is one reddit inbox message.
type Message struct {
	// Name is the fullname of the message. It serves both as the mark-read
	// identifier and as the reply target.
	Name string `json:"name"`

	// Author is the sender. Kept for logging purposes.
	Author string `json:"author"`

	// Subreddit is the subreddit a comment or comment reply was posted in,
	// empty for direct messages.
	Subreddit string `json:"subreddit"`

	// Body is the message text, scanned for mentions.
	Body string `json:"body"`
}

// GetUnread fetches unread inbox messages. Pages of up to 100 messages are
// fetched and concatenated, cursored on the fullname of the last message,
// until an empty page is returned or limit messages have been collected.
// A limit <= 0 means all.
func (c *Client) GetUnread(ctx context.Context, limit int) ([]Message, error) {
	var messages []Message

	for {
		pageSize := maxPageSize
		if limit > 0 {
			left := limit - len(messages)
			if left <= 0 {
				break
			}
			if left < pageSize {
				pageSize = left
			}
		}

		after := ""
		if len(messages) > 0 {
			after = messages[len(messages)-1].Name
		}

		page, err := c.getUnreadPage(ctx, after, pageSize)
		if err != nil {
			return nil, err
		}
		if len(page) == 0 {
			break
		}

		messages = append(messages, page...)
	}

	c.logger.Debug("fetched unread messages", logging.F("count", len(messages)))

	return messages, nil
}

// getUnreadPage fetches one page of unread messages.
func (c *Client) getUnreadPage(ctx context.Context, after string, limit int) ([]Message, error) {
	params := url.Values{}
	params.Set("limit", strconv.Itoa(limit))
	if after != "" {
		params.Set("after", after)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.baseURL+"/message/unread/.json?"+params.Encode(), nil)
	if err != nil {
		return nil, &RequestError{Op: "get unread", Err: err}
	}

	resp, err := c.do(ctx, req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		var body messageResponse
		if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
			return nil, &RequestError{Op: "decode unread response", Err: err}
		}
		messages := make([]Message, 0, len(body.Data.Children))
		for _, child := range body.Data.Children {
			messages = append(messages, child.Data)
		}
		return messages, nil
	case http.StatusUnauthorized:
		return nil, ErrUnauthorized
	default:
		return nil, &StatusError{Code: resp.StatusCode}
	}
}

// MarkRead marks the given messages as read. It is a no-op for an empty
// list. Marking happens immediately after fetch, before any reply is
// attempted: a later failure leaves messages read but unanswered, which is
// the accepted trade-off (the next cycle never re-reads them).
func (c *Client) MarkRead(ctx context.Context, messages []Message) error {
	if len(messages) == 0 {
		return nil
	}

	names := make([]string, len(messages))
	for i, msg := range messages {
		names[i] = msg.Name
	}

	// The id list is comma-separated with no trailing comma; the endpoint
	// accepts either form.
	form := url.Values{}
	form.Set("id", strings.Join(names, ","))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/api/read_message", strings.NewReader(form.Encode()))
	if err != nil {
		return &RequestError{Op: "mark read", Err: err}
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.do(ctx, req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		return nil
	case http.StatusUnauthorized:
		return ErrUnauthorized
	default:
		return &StatusError{Code: resp.StatusCode}
	}
}

// Response envelope for the unread listing.
type messageResponse struct {
	Data messageList `json:"data"`
}

type messageList struct {
	Children []messageContainer `json:"children"`
}

type messageContainer struct {
	Data Message `json:"data"`
}
