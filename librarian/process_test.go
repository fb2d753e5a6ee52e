package librarian

import (
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourgamermom/japari-librarian/friend"
	"github.com/yourgamermom/japari-librarian/page"
	"github.com/yourgamermom/japari-librarian/reddit"
)

func TestFindFriends(t *testing.T) {
	messages := []reddit.Message{
		{Name: "t4_a", Body: `/u/bot "serval" "tanuki"`},
		{Name: "t4_b", Body: "no mention here"},
		{Name: "t4_c", Body: "/u/bot and nothing quoted"},
		{Name: "t4_d", Body: `/u/bot "fennec"`},
	}

	pairs, friends := FindFriends(messages, "bot")

	// Mentionless messages and empty mentions are both dropped.
	require.Len(t, pairs, 2)
	assert.Equal(t, "t4_a", pairs[0].Message.Name)
	assert.Equal(t, "t4_d", pairs[1].Message.Name)

	require.Len(t, friends, 3)
	assert.Equal(t, "Serval", friends[0].Title)
	assert.Equal(t, "Tanuki", friends[1].Title)
	assert.Equal(t, "Fennec", friends[2].Title)

	// The pair ids are the parsed friends' ids, in order.
	assert.Equal(t, []uuid.UUID{friends[0].ID, friends[1].ID}, pairs[0].Friends)
	assert.Equal(t, []uuid.UUID{friends[2].ID}, pairs[1].Friends)
}

func TestMakeReplies(t *testing.T) {
	serval := friend.New("serval")
	tanuki := friend.New("tanuki")

	pairs := []MessagePair{
		{Message: reddit.Message{Name: "t4_a"}, Friends: []uuid.UUID{serval.ID, tanuki.ID}},
		{Message: reddit.Message{Name: "t4_b"}, Friends: []uuid.UUID{tanuki.ID}},
	}

	pages := []page.Page{
		{
			Friends: []uuid.UUID{serval.ID},
			Title:   "Serval",
			URL:     "https://wiki/Serval",
			Image:   "https://img/serval.jpg",
		},
		{
			Friends: []uuid.UUID{tanuki.ID},
			Title:   "Tanuki",
			URL:     "https://wiki/Tanuki",
		},
		{
			Friends: nil,
			Title:   "Orphan",
			URL:     "https://wiki/Orphan",
		},
	}

	replies := MakeReplies(pairs, pages)
	require.Len(t, replies, 2)

	assert.Equal(t, "t4_a", replies[0].Parent)
	assert.Equal(t,
		"[Serval](https://wiki/Serval) ([pic](https://img/serval.jpg))\n\n"+
			"[Tanuki](https://wiki/Tanuki)\n\n"+
			replyFooter,
		replies[0].Text)

	// Orphan pages and pages for other messages' friends are left out.
	assert.Equal(t, "t4_b", replies[1].Parent)
	assert.Equal(t, "[Tanuki](https://wiki/Tanuki)\n\n"+replyFooter, replies[1].Text)
}

func TestMakeReplies_EscapesTitle(t *testing.T) {
	f := friend.New(`\Weird_Title`)

	pairs := []MessagePair{
		{Message: reddit.Message{Name: "t4_a"}, Friends: []uuid.UUID{f.ID}},
	}
	pages := []page.Page{
		{Friends: []uuid.UUID{f.ID}, Title: "Weird_Title", URL: "https://wiki/W"},
	}

	replies := MakeReplies(pairs, pages)
	require.Len(t, replies, 1)
	assert.True(t, strings.HasPrefix(replies[0].Text, `[Weird\_Title](https://wiki/W)`))
}

func TestEscapeMarkdown(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "plain", want: "plain"},
		{in: "under_score", want: `under\_score`},
		{in: "a*b`c#d", want: "a\\*b\\`c\\#d"},
		{in: `back\slash`, want: `back\\slash`},
		{in: "", want: ""},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, EscapeMarkdown(tt.in), tt.in)
	}
}

func TestFilterMessages(t *testing.T) {
	messages := []reddit.Message{
		{Name: "t4_a", Subreddit: "KemonoFriends"},
		{Name: "t4_b", Subreddit: "somewhere_else"},
		{Name: "t4_c"}, // direct message
	}

	t.Run("allow-list", func(t *testing.T) {
		kept := FilterMessages(messages, []string{"KemonoFriends"})
		require.Len(t, kept, 2)
		assert.Equal(t, "t4_a", kept[0].Name)
		assert.Equal(t, "t4_c", kept[1].Name, "direct messages always pass")
	})

	t.Run("empty list admits everything", func(t *testing.T) {
		assert.Len(t, FilterMessages(messages, nil), 3)
	})
}
