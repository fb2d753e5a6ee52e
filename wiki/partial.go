package wiki

import (
	"context"
	"encoding/json"
	"net/url"
	"strings"

	"github.com/yourgamermom/japari-librarian/friend"
	"github.com/yourgamermom/japari-librarian/pkg/logging"
)

// imageExtensions are the suffixes accepted when picking a page's image.
var imageExtensions = []string{"jpg", "png", "jpeg", "gif", "bmp", "tiff"}

// PartialPage is the metadata half of a wiki page: everything the first
// lookup phase provides. The image title still needs a second lookup to
// become a direct URL.
type PartialPage struct {
	// Title is the canonical page title.
	Title string

	// Aliases are the requested titles the wiki normalized to Title.
	Aliases []string

	// URL is the full page URL.
	URL string

	// ImageTitle is the selected image's wiki title, empty when the page has
	// no usable image.
	ImageTitle string
}

// PartialPages resolves the friends' titles into page metadata, batching
// MaxTitles titles per request. Pages the wiki flags missing or invalid are
// dropped silently.
func (c *Client) PartialPages(ctx context.Context, friends []friend.Friend) ([]PartialPage, error) {
	partials, err := batch(friends, MaxTitles, func(window []friend.Friend) ([]PartialPage, error) {
		return c.partialPage(ctx, window)
	})
	if err != nil {
		return nil, err
	}

	c.logger.Debug("resolved page metadata",
		logging.F("requested", len(friends)),
		logging.F("resolved", len(partials)))

	return partials, nil
}

func (c *Client) partialPage(ctx context.Context, friends []friend.Friend) ([]PartialPage, error) {
	params := url.Values{}
	params.Set("action", "query")
	params.Set("format", "json")
	params.Set("prop", "images|info")
	params.Set("inprop", "url")
	params.Set("imlimit", "500")
	params.Set("titles", friendTitles(friends))

	body, err := c.get(ctx, "page metadata", params)
	if err != nil {
		return nil, err
	}
	defer body.Close()

	var resp queryResponse
	if err := json.NewDecoder(body).Decode(&resp); err != nil {
		return nil, &RequestError{Op: "decode page metadata", Err: err}
	}

	partials := make([]PartialPage, 0, len(resp.Query.Pages))
	for _, page := range resp.Query.Pages {
		if partial, ok := parsePage(page, resp.Query.Normalized); ok {
			partials = append(partials, partial)
		}
	}

	return partials, nil
}

// friendTitles joins the friends' titles pipe-separated. Asking for weird
// pages like "Main Page" can make the wiki answer with a list instead of a
// map; always requesting at least one regular page avoids that, so the
// string is seeded with "Serval".
func friendTitles(friends []friend.Friend) string {
	var b strings.Builder
	b.WriteString("Serval|")
	for _, f := range friends {
		b.WriteString(f.Title)
		b.WriteByte('|')
	}
	return b.String()
}

// parsePage turns one raw page record into a PartialPage. Records flagged
// missing or invalid, or lacking a title or URL, yield nothing.
func parsePage(page pageJSON, normalized []normalizedJSON) (PartialPage, bool) {
	if page.Missing != nil || page.Invalid != nil {
		return PartialPage{}, false
	}
	if page.Title == "" || page.FullURL == "" {
		return PartialPage{}, false
	}

	return PartialPage{
		Title:      page.Title,
		Aliases:    pageAliases(page.Title, normalized),
		URL:        page.FullURL,
		ImageTitle: selectImage(page.Title, page.Images),
	}, true
}

// pageAliases collects the normalization sources that resolved to title.
func pageAliases(title string, normalized []normalizedJSON) []string {
	var aliases []string
	for _, n := range normalized {
		if n.To == title {
			aliases = append(aliases, n.From)
		}
	}
	return aliases
}

// selectImage picks one of the page's attached images. Candidates are
// filtered to common raster extensions; the first candidate seeds the
// selection, and a candidate containing "original" wins outright. A candidate
// containing the page title is taken only when nothing was selected before
// it.
func selectImage(title string, images []imageRefJSON) string {
	selected := ""
	haveSelected := false
	titleLower := strings.ToLower(title)

	for _, image := range images {
		lower := strings.ToLower(image.Title)
		if !hasImageExtension(lower) {
			continue
		}

		if !haveSelected {
			selected = image.Title
			haveSelected = true
		}

		if strings.Contains(lower, "original") {
			selected = image.Title
			break
		}

		if strings.Contains(lower, titleLower) && !haveSelected {
			selected = image.Title
		}
	}

	return selected
}

func hasImageExtension(lower string) bool {
	for _, ext := range imageExtensions {
		if strings.HasSuffix(lower, ext) {
			return true
		}
	}
	return false
}

// Response shapes for the metadata query. Missing and invalid are flags
// whose presence matters, not their value.
type queryResponse struct {
	Query queryBody `json:"query"`
}

type queryBody struct {
	Normalized []normalizedJSON    `json:"normalized"`
	Pages      map[string]pageJSON `json:"pages"`
}

type normalizedJSON struct {
	From string `json:"from"`
	To   string `json:"to"`
}

type pageJSON struct {
	Title   string         `json:"title"`
	Images  []imageRefJSON `json:"images"`
	FullURL string         `json:"fullurl"`
	Missing *string        `json:"missing"`
	Invalid *string        `json:"invalid"`
}

type imageRefJSON struct {
	Title string `json:"title"`
}
