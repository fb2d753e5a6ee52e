// Package page joins resolved wiki metadata, image URLs and parsed friends
// into complete pages ready for reply formatting.
package page

import (
	"github.com/google/uuid"

	"github.com/yourgamermom/japari-librarian/friend"
	"github.com/yourgamermom/japari-librarian/wiki"
)

// Page is one fully resolved wiki page.
type Page struct {
	// Friends are the ids of the parsed friends this page answers. Several
	// friends can land on the same page when different spellings alias to
	// one canonical title. A page matched by no friend keeps an empty list;
	// it is harmless and simply never appears in a reply.
	Friends []uuid.UUID

	// Title is the canonical page title.
	Title string

	// URL is the full page URL.
	URL string

	// Image is the page's image URL, empty when none was resolved.
	Image string
}

// Make builds one Page per partial, in the partials' order, attaching the
// resolved image URL and the ids of every friend whose title matches the
// page's canonical title or one of its aliases.
func Make(partials []wiki.PartialPage, images []wiki.ImageURL, friends []friend.Friend) []Page {
	pages := make([]Page, 0, len(partials))

	for _, partial := range partials {
		pages = append(pages, Page{
			Friends: findFriends(partial.Title, partial.Aliases, friends),
			Title:   partial.Title,
			URL:     partial.URL,
			Image:   findImage(partial.ImageTitle, images),
		})
	}

	return pages
}

// findFriends collects the ids of friends whose title equals the canonical
// title or one of its aliases. The match is exact and case-sensitive; the
// wiki already did the normalizing.
func findFriends(title string, aliases []string, friends []friend.Friend) []uuid.UUID {
	var ids []uuid.UUID

	for _, f := range friends {
		if f.Title == title {
			ids = append(ids, f.ID)
			continue
		}
		for _, alias := range aliases {
			if f.Title == alias {
				ids = append(ids, f.ID)
				break
			}
		}
	}

	return ids
}

// findImage looks the image title up among the resolved image URLs.
func findImage(imageTitle string, images []wiki.ImageURL) string {
	if imageTitle == "" {
		return ""
	}
	for _, image := range images {
		if image.Title == imageTitle {
			return image.URL
		}
	}
	return ""
}
