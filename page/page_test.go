package page

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourgamermom/japari-librarian/friend"
	"github.com/yourgamermom/japari-librarian/wiki"
)

func TestMake_AliasJoin(t *testing.T) {
	a := friend.New("\\A")
	b := friend.New("\\B")
	c := friend.New("\\C")

	partials := []wiki.PartialPage{
		{Title: "B", Aliases: []string{"A"}, URL: "https://wiki/B"},
	}

	pages := Make(partials, nil, []friend.Friend{a, b, c})
	require.Len(t, pages, 1)

	// Canonical title and alias both link; nothing else does.
	require.Len(t, pages[0].Friends, 2)
	assert.Equal(t, a.ID, pages[0].Friends[0])
	assert.Equal(t, b.ID, pages[0].Friends[1])
	assert.NotContains(t, pages[0].Friends, c.ID)
}

func TestMake_CaseSensitiveJoin(t *testing.T) {
	serval := friend.New("\\serval")

	partials := []wiki.PartialPage{
		{Title: "Serval", URL: "https://wiki/Serval"},
	}

	pages := Make(partials, nil, []friend.Friend{serval})
	require.Len(t, pages, 1)
	assert.Empty(t, pages[0].Friends)
}

func TestMake_OrphanPagesKept(t *testing.T) {
	partials := []wiki.PartialPage{
		{Title: "Serval", URL: "https://wiki/Serval"},
		{Title: "Tanuki", URL: "https://wiki/Tanuki"},
	}

	serval := friend.New("serval")
	pages := Make(partials, nil, []friend.Friend{serval})

	require.Len(t, pages, 2)
	assert.Equal(t, "Serval", pages[0].Title)
	assert.Len(t, pages[0].Friends, 1)
	assert.Equal(t, "Tanuki", pages[1].Title)
	assert.Empty(t, pages[1].Friends)
}

func TestMake_ImageLookup(t *testing.T) {
	partials := []wiki.PartialPage{
		{Title: "Serval", URL: "https://wiki/Serval", ImageTitle: "File:Serval.jpg"},
		{Title: "Tanuki", URL: "https://wiki/Tanuki"},
		{Title: "Fennec", URL: "https://wiki/Fennec", ImageTitle: "File:Missing.jpg"},
	}
	images := []wiki.ImageURL{
		{Title: "File:Serval.jpg", URL: "https://img/serval.jpg"},
	}

	pages := Make(partials, images, nil)
	require.Len(t, pages, 3)

	assert.Equal(t, "https://img/serval.jpg", pages[0].Image)
	assert.Equal(t, "", pages[1].Image, "no image title resolves to no image")
	assert.Equal(t, "", pages[2].Image, "unresolved image title resolves to no image")
}

func TestMake_SharedPage(t *testing.T) {
	first := friend.New("serval")
	second := friend.New("Serval")

	partials := []wiki.PartialPage{
		{Title: "Serval", URL: "https://wiki/Serval"},
	}

	pages := Make(partials, nil, []friend.Friend{first, second})
	require.Len(t, pages, 1)

	// Both parses land on the same page with distinct ids.
	require.Len(t, pages[0].Friends, 2)
	assert.Equal(t, first.ID, pages[0].Friends[0])
	assert.Equal(t, second.ID, pages[0].Friends[1])
	assert.NotEqual(t, first.ID, second.ID)
}
