package librarian

import (
	"strings"

	"github.com/google/uuid"

	"github.com/yourgamermom/japari-librarian/friend"
	"github.com/yourgamermom/japari-librarian/page"
	"github.com/yourgamermom/japari-librarian/reddit"
)

// replyFooter closes every reply.
const replyFooter = "---\n\n" +
	"^^I'm ^^a ^^bot ^^friend! ^^Message ^^\\/u/YourGamerMom " +
	"^^if ^^you ^^have ^^questions ^^or ^^concerns. ^^Check ^^out ^^my " +
	"^^[code](https://github.com/yourgamermom/japari-librarian), ^^and ^^my " +
	"^^[subreddit](https://www.reddit.com/r/japari_librarian)"

// MessagePair ties a message to the ids of the friends parsed from it.
type MessagePair struct {
	Message reddit.Message
	Friends []uuid.UUID
}

// FindFriends scans the messages for mentions of the bot and collects the
// quoted friends. Messages without a mention, and messages whose mention
// carried no quoted names, are dropped. The second return value is the flat
// list of all parsed friends, ready for wiki resolution.
func FindFriends(messages []reddit.Message, user string) ([]MessagePair, []friend.Friend) {
	var pairs []MessagePair
	var friends []friend.Friend

	for _, message := range messages {
		found, ok := friend.Find(message.Body, user)
		if !ok || len(found) == 0 {
			continue
		}

		ids := make([]uuid.UUID, len(found))
		for i, f := range found {
			ids[i] = f.ID
		}

		pairs = append(pairs, MessagePair{Message: message, Friends: ids})
		friends = append(friends, found...)
	}

	return pairs, friends
}

// MakeReplies formats one reply per message pair. Each page whose friend set
// intersects the message's parsed ids contributes one line, in page order:
// a markdown link to the page plus an optional image link, blank-line
// separated, with the fixed footer appended.
func MakeReplies(pairs []MessagePair, pages []page.Page) []reddit.Reply {
	replies := make([]reddit.Reply, 0, len(pairs))

	for _, pair := range pairs {
		var b strings.Builder

		for _, p := range pages {
			if !intersects(p.Friends, pair.Friends) {
				continue
			}

			b.WriteString("[" + EscapeMarkdown(p.Title) + "](" + p.URL + ")")
			if p.Image != "" {
				b.WriteString(" ([pic](" + p.Image + "))")
			}
			// Two newlines for one visible break.
			b.WriteString("\n\n")
		}

		b.WriteString(replyFooter)

		replies = append(replies, reddit.Reply{
			Parent: pair.Message.Name,
			Text:   b.String(),
		})
	}

	return replies
}

func intersects(a, b []uuid.UUID) bool {
	for _, x := range a {
		for _, y := range b {
			if x == y {
				return true
			}
		}
	}
	return false
}

// EscapeMarkdown backslash-escapes the markdown characters that could let a
// page title break out of its link text.
func EscapeMarkdown(source string) string {
	var b strings.Builder
	b.Grow(len(source))

	for _, c := range source {
		switch c {
		case '\\', '`', '*', '_', '#':
			b.WriteByte('\\')
		}
		b.WriteRune(c)
	}

	return b.String()
}

// FilterMessages keeps the messages posted in one of the allowed subreddits.
// Messages without a subreddit (direct messages) always pass. An empty
// allow-list admits everything.
func FilterMessages(messages []reddit.Message, allowed []string) []reddit.Message {
	if len(allowed) == 0 {
		return messages
	}

	kept := make([]reddit.Message, 0, len(messages))
	for _, message := range messages {
		if message.Subreddit == "" || contains(allowed, message.Subreddit) {
			kept = append(kept, message)
		}
	}

	return kept
}

func contains(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}
