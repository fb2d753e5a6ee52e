// Package friend parses friend mentions out of message bodies.
//
// A friend is one quoted name following a /u/<bot> mention, normalized into
// the wiki title it should resolve to. The parsed friend and the wiki page it
// resolves to are linked by a UUID, so page records can refer back to the
// mentions that produced them without re-parsing.
package friend

import (
	"strings"
	"unicode"

	"github.com/google/uuid"
)

// Friend is one parsed name from a message to the bot.
type Friend struct {
	// Name is the formatted friend name. Formatting capitalizes the first
	// letter of every word.
	Name string

	// Media is the media the friend appears in. Some friends don't appear in
	// some medias; if so, there will be no wiki page for this friend.
	Media Media

	// Title is the wiki title for this friend. The wiki formats titles as
	// <name>/<media>.
	Title string

	// ID links messages and pages back to this friend while still allowing
	// its fields to change. It is only stable within one poll cycle.
	ID uuid.UUID
}

// escapeMarker suppresses all normalization when it leads a quoted name.
const escapeMarker = '\\'

// New parses a raw quoted string into a Friend.
//
// The text before the first '/' is the name, the text after it is the media.
// A leading backslash short-circuits: the rest of the string becomes both
// name and title verbatim, with no media.
func New(source string) Friend {
	if len(source) > 0 && source[0] == escapeMarker {
		name := source[1:]
		return Friend{
			Name:  name,
			Media: MediaNone,
			Title: name,
			ID:    uuid.New(),
		}
	}

	rawName, rawMedia, _ := strings.Cut(source, "/")

	name := fmtName(strings.TrimSpace(rawName))
	media := ParseMedia(rawMedia)

	return Friend{
		Name:  name,
		Media: media,
		Title: name + media.WikiSuffix(),
		ID:    uuid.New(),
	}
}

// fmtName capitalizes the first letter of every word and lower-cases the
// rest. Words are split on any non-letter character except the apostrophe,
// which is copied through without starting a new word ("rothschild's
// giraffe" formats to "Rothschild's Giraffe").
func fmtName(name string) string {
	var fmt strings.Builder
	fmt.Grow(len(name))

	startOfWord := true
	for _, c := range name {
		switch {
		case unicode.IsLetter(c):
			if startOfWord {
				fmt.WriteRune(unicode.ToUpper(c))
				startOfWord = false
			} else {
				fmt.WriteRune(unicode.ToLower(c))
			}
		case c == '\'':
			fmt.WriteRune(c)
		default:
			startOfWord = true
			fmt.WriteRune(c)
		}
	}

	return fmt.String()
}

// isUsernameRune reports whether c is allowed in a reddit username.
func isUsernameRune(c rune) bool {
	return (c >= 'a' && c <= 'z') ||
		(c >= 'A' && c <= 'Z') ||
		(c >= '0' && c <= '9') ||
		c == '_' || c == '-'
}

// Find searches source for a mention of targetUser and parses out the quoted
// friends that follow it.
//
// Only the first matching mention is honored. The scanner walks the text for
// the literal "/u/" marker, collects the handle, and on a handle match
// collects each double-quoted run (skipping whitespace between them) until
// the first other character. Find returns (nil, false) when no matching
// mention exists, and a possibly empty slice with true once one is found.
//
// targetUser must consist only of username characters; Find panics
// otherwise, since that is a configuration bug rather than bad input.
func Find(source, targetUser string) ([]Friend, bool) {
	for _, c := range targetUser {
		if !isUsernameRune(c) {
			panic("friend: target username contains characters that are not allowed in reddit usernames")
		}
	}

	rs := []rune(source)
	i := 0
	next := func() (rune, bool) {
		if i >= len(rs) {
			return 0, false
		}
		c := rs[i]
		i++
		return c, true
	}

	for {
		c, ok := next()
		if !ok {
			return nil, false
		}
		if c != '/' {
			continue
		}
		if c, ok = next(); !ok {
			return nil, false
		} else if c != 'u' {
			continue
		}
		if c, ok = next(); !ok {
			return nil, false
		} else if c != '/' {
			continue
		}

		var handle strings.Builder
		for {
			c, ok = next()
			if !ok {
				break
			}
			if !isUsernameRune(c) {
				// The scan stops one character past the handle, losing that
				// character. That is fine here: mentions cannot directly
				// follow each other in valid input.
				break
			}
			handle.WriteRune(c)
		}

		if handle.String() != targetUser {
			continue
		}

		friends := []Friend{}
		for {
			c, ok = next()
			if !ok {
				break
			}
			if c == '"' {
				var quoted strings.Builder
				for {
					c, ok = next()
					if !ok || c == '"' {
						break
					}
					quoted.WriteRune(c)
				}
				friends = append(friends, New(quoted.String()))
			} else if !unicode.IsSpace(c) {
				break
			}
		}

		return friends, true
	}
}
