package wiki

import (
	"context"
	"encoding/json"
	"net/url"
	"strings"

	"github.com/yourgamermom/japari-librarian/pkg/logging"
)

// ImageURL is one resolved image: its wiki title and a direct URL.
type ImageURL struct {
	Title string
	URL   string
}

// ImageURLs resolves the partials' image titles into direct URLs, batching
// MaxTitles titles per request. Partials without an image title contribute
// nothing. Records the wiki flags missing or invalid, or that carry no
// image info, are dropped silently.
func (c *Client) ImageURLs(ctx context.Context, partials []PartialPage) ([]ImageURL, error) {
	titles := make([]string, 0, len(partials))
	for _, partial := range partials {
		if partial.ImageTitle != "" {
			titles = append(titles, partial.ImageTitle)
		}
	}

	images, err := batch(titles, MaxTitles, func(window []string) ([]ImageURL, error) {
		return c.imageURLs(ctx, window)
	})
	if err != nil {
		return nil, err
	}

	c.logger.Debug("resolved image urls",
		logging.F("requested", len(titles)),
		logging.F("resolved", len(images)))

	return images, nil
}

func (c *Client) imageURLs(ctx context.Context, titles []string) ([]ImageURL, error) {
	params := url.Values{}
	params.Set("action", "query")
	params.Set("format", "json")
	params.Set("prop", "imageinfo")
	params.Set("iiprop", "url")
	params.Set("titles", imageTitles(titles))

	body, err := c.get(ctx, "image urls", params)
	if err != nil {
		return nil, err
	}
	defer body.Close()

	var resp imageResponse
	if err := json.NewDecoder(body).Decode(&resp); err != nil {
		return nil, &RequestError{Op: "decode image urls", Err: err}
	}

	images := make([]ImageURL, 0, len(resp.Query.Pages))
	for _, page := range resp.Query.Pages {
		if page.Missing != nil || page.Invalid != nil {
			continue
		}
		if page.Title == "" || len(page.ImageInfo) == 0 {
			continue
		}
		images = append(images, ImageURL{
			Title: page.Title,
			URL:   page.ImageInfo[0].URL,
		})
	}

	return images, nil
}

// imageTitles joins the titles pipe-separated. The leading separator
// guarantees a non-empty titles parameter; without one the wiki omits the
// query element from its response entirely.
func imageTitles(titles []string) string {
	var b strings.Builder
	b.WriteByte('|')
	for _, title := range titles {
		b.WriteString(title)
		b.WriteByte('|')
	}
	return b.String()
}

// Response shapes for the image query.
type imageResponse struct {
	Query imageQueryBody `json:"query"`
}

type imageQueryBody struct {
	Pages map[string]imagePageJSON `json:"pages"`
}

type imagePageJSON struct {
	Title     string          `json:"title"`
	ImageInfo []imageInfoJSON `json:"imageinfo"`
	Missing   *string         `json:"missing"`
	Invalid   *string         `json:"invalid"`
}

type imageInfoJSON struct {
	URL string `json:"url"`
}
