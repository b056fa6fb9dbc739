package fileutil

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMarkdownBuilder(t *testing.T) {
	rating := 0
	doc := NewMarkdownBuilder().
		AddTitle(`The "Quoted" Book`).
		AddType("book").
		AddField("author", "Frank Herbert").
		AddField("cover", "").
		AddField("rating", &rating).
		AddField("pages", 412).
		AddField("finished", true).
		AddTags("book", "read_level/moderate").
		AddHeading(1, "Dune").
		AddImage("https://example.com/image.jpg").
		AddParagraph("This is a test paragraph.").
		AddCallout("quote", "Notes", "line one\nline two").
		AddListItem("first").
		AddListItem("second").
		EndList().
		Build()

	assert.True(t, strings.HasPrefix(doc, "---\n"))
	assert.Contains(t, doc, "---\n\n# Dune\n\n")

	assert.Contains(t, doc, `title: "The \"Quoted\" Book"`)
	assert.Contains(t, doc, "type: book")
	assert.Contains(t, doc, `author: "Frank Herbert"`)
	assert.NotContains(t, doc, "cover:")
	assert.Contains(t, doc, "rating: 0")
	assert.Contains(t, doc, "pages: 412")
	assert.Contains(t, doc, "finished: true")
	assert.Contains(t, doc, "tags:\n  - book\n  - read_level/moderate\n")

	assert.Contains(t, doc, "![](https://example.com/image.jpg)")
	assert.Contains(t, doc, "This is a test paragraph.\n\n")
	assert.Contains(t, doc, ">[!quote]- Notes\n> line one\n> line two\n\n")
	assert.Contains(t, doc, "- first\n- second\n\n")
}

func TestMarkdownBuilder_NoFrontmatter(t *testing.T) {
	doc := NewMarkdownBuilder().AddHeading(2, "Reading log").AddParagraph("Nothing yet.").Build()
	assert.Equal(t, "## Reading log\n\nNothing yet.\n\n", doc)
}

func TestMarkdownBuilder_SkipsEmpty(t *testing.T) {
	doc := NewMarkdownBuilder().AddImage("").AddParagraph("").AddCallout("note", "x", "").AddTags().Build()
	assert.Empty(t, doc)
}

func TestAddHeading_ClampsLevel(t *testing.T) {
	assert.Equal(t, "# A\n\n", NewMarkdownBuilder().AddHeading(0, "A").Build())
	assert.Equal(t, "###### A\n\n", NewMarkdownBuilder().AddHeading(9, "A").Build())
}

func TestRatingStars(t *testing.T) {
	assert.Equal(t, "☆☆☆☆☆", RatingStars(0))
	assert.Equal(t, "★★★☆☆", RatingStars(3))
	assert.Equal(t, "★★★★★", RatingStars(7))
}
