package fileutil

import (
	"fmt"
	"strings"
)

// MarkdownBuilder helps construct markdown documents with frontmatter
type MarkdownBuilder struct {
	frontmatter strings.Builder
	content     strings.Builder
}

// NewMarkdownBuilder creates a new markdown builder
func NewMarkdownBuilder() *MarkdownBuilder {
	return &MarkdownBuilder{}
}

// AddTitle adds a title field to the frontmatter
func (mb *MarkdownBuilder) AddTitle(title string) *MarkdownBuilder {
	fmt.Fprintf(&mb.frontmatter, "title: %q\n", title)
	return mb
}

// AddType adds a type field to the frontmatter
func (mb *MarkdownBuilder) AddType(kind string) *MarkdownBuilder {
	fmt.Fprintf(&mb.frontmatter, "type: %s\n", kind)
	return mb
}

// AddField adds a simple key-value field to the frontmatter.
// Empty strings are skipped; zero numbers are kept since a 0 rating is meaningful.
func (mb *MarkdownBuilder) AddField(key string, value any) *MarkdownBuilder {
	switch v := value.(type) {
	case string:
		if v != "" {
			fmt.Fprintf(&mb.frontmatter, "%s: %q\n", key, v)
		}
	case int:
		fmt.Fprintf(&mb.frontmatter, "%s: %d\n", key, v)
	case *int:
		if v != nil {
			fmt.Fprintf(&mb.frontmatter, "%s: %d\n", key, *v)
		}
	case bool:
		fmt.Fprintf(&mb.frontmatter, "%s: %t\n", key, v)
	}
	return mb
}

// AddTags adds a list of tags to the frontmatter
func (mb *MarkdownBuilder) AddTags(tags ...string) *MarkdownBuilder {
	if len(tags) == 0 {
		return mb
	}

	mb.frontmatter.WriteString("tags:\n")
	for _, tag := range tags {
		if tag != "" {
			fmt.Fprintf(&mb.frontmatter, "  - %s\n", tag)
		}
	}
	return mb
}

// AddHeading adds a heading of the given level to the content
func (mb *MarkdownBuilder) AddHeading(level int, text string) *MarkdownBuilder {
	level = max(1, min(level, 6))
	fmt.Fprintf(&mb.content, "%s %s\n\n", strings.Repeat("#", level), text)
	return mb
}

// AddParagraph adds a paragraph of text to the content
func (mb *MarkdownBuilder) AddParagraph(text string) *MarkdownBuilder {
	if text == "" {
		return mb
	}

	mb.content.WriteString(text)
	mb.content.WriteString("\n\n")
	return mb
}

// AddListItem adds a single bullet to the content. Call EndList after the last item.
func (mb *MarkdownBuilder) AddListItem(text string) *MarkdownBuilder {
	fmt.Fprintf(&mb.content, "- %s\n", text)
	return mb
}

// EndList closes a bullet list started with AddListItem
func (mb *MarkdownBuilder) EndList() *MarkdownBuilder {
	mb.content.WriteString("\n")
	return mb
}

// AddImage adds an image to the content
func (mb *MarkdownBuilder) AddImage(imageURL string) *MarkdownBuilder {
	if imageURL == "" {
		return mb
	}

	fmt.Fprintf(&mb.content, "![](%s)\n\n", imageURL)
	return mb
}

// AddCallout adds a callout section to the content
func (mb *MarkdownBuilder) AddCallout(calloutType, title, content string) *MarkdownBuilder {
	if content == "" {
		return mb
	}

	if title != "" {
		fmt.Fprintf(&mb.content, ">[!%s]- %s\n", calloutType, title)
	} else {
		fmt.Fprintf(&mb.content, ">[!%s]\n", calloutType)
	}

	for line := range strings.SplitSeq(content, "\n") {
		fmt.Fprintf(&mb.content, "> %s\n", line)
	}

	mb.content.WriteString("\n")
	return mb
}

// Build returns the complete markdown document as a string.
// Frontmatter is emitted only when at least one field was added.
func (mb *MarkdownBuilder) Build() string {
	if mb.frontmatter.Len() == 0 {
		return mb.content.String()
	}

	var doc strings.Builder
	doc.WriteString("---\n")
	doc.WriteString(mb.frontmatter.String())
	doc.WriteString("---\n\n")
	doc.WriteString(mb.content.String())

	return doc.String()
}

// RatingStars renders a 0-5 rating as filled and empty stars
func RatingStars(rating int) string {
	rating = max(0, min(rating, 5))
	return strings.Repeat("★", rating) + strings.Repeat("☆", 5-rating)
}
