// Package journal holds the reading journal's book records and the in-memory
// collection store that every mutation goes through.
package journal

import (
	"fmt"
	"strings"

	"github.com/lepinkainen/bookjournal/internal/errors"
)

// ReadLevel is how demanding a book is to read.
type ReadLevel string

const (
	ReadLevelEasy     ReadLevel = "easy"
	ReadLevelModerate ReadLevel = "moderate"
	ReadLevelAcademic ReadLevel = "academic"
)

// Valid reports whether l is one of the known read levels.
func (l ReadLevel) Valid() bool {
	switch l {
	case ReadLevelEasy, ReadLevelModerate, ReadLevelAcademic:
		return true
	}
	return false
}

// UnmarshalText rejects unknown read levels so a bad payload fails decoding.
func (l *ReadLevel) UnmarshalText(text []byte) error {
	v := ReadLevel(text)
	if !v.Valid() {
		return fmt.Errorf("unknown read level %q", string(text))
	}
	*l = v
	return nil
}

// Status is the lifecycle state of a book. Exactly one is always set.
type Status string

const (
	StatusToBeRead Status = "tbr"
	StatusFinished Status = "finished"
)

// Valid reports whether s is one of the two lifecycle states.
func (s Status) Valid() bool {
	return s == StatusToBeRead || s == StatusFinished
}

// UnmarshalText rejects unknown or empty statuses.
func (s *Status) UnmarshalText(text []byte) error {
	v := Status(text)
	if !v.Valid() {
		return fmt.Errorf("unknown status %q", string(text))
	}
	*s = v
	return nil
}

// ParseStatus converts user input ("tbr", "to-be-read", "finished") to a Status.
func ParseStatus(s string) (Status, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "tbr", "to-be-read", "to_be_read":
		return StatusToBeRead, nil
	case "finished", "done", "read":
		return StatusFinished, nil
	}
	return "", errors.NewValidationError("status", fmt.Sprintf("unknown status %q", s))
}

// Book is a single journal entry.
// Rating and Notes are non-nil exactly when Status is finished.
type Book struct {
	ID        string    `json:"id" yaml:"id"`
	Title     string    `json:"title" yaml:"title"`
	Author    string    `json:"author" yaml:"author"`
	ReadLevel ReadLevel `json:"readLevel" yaml:"read_level"`
	Status    Status    `json:"status" yaml:"status"`
	CoverURL  string    `json:"coverUrl,omitempty" yaml:"cover_url,omitempty"`
	Rating    *int      `json:"rating,omitempty" yaml:"rating,omitempty"`
	Notes     *string   `json:"notes,omitempty" yaml:"notes,omitempty"`
}

// HasCover reports whether a cover has been resolved for the book.
func (b Book) HasCover() bool {
	return b.CoverURL != ""
}

// CoverRequest describes the cover lookup for b.
func (b Book) CoverRequest() CoverRequest {
	return CoverRequest{ID: b.ID, Title: b.Title, Author: b.Author}
}

// Clone returns a copy that shares no pointers with b.
func (b Book) Clone() Book {
	c := b
	if b.Rating != nil {
		r := *b.Rating
		c.Rating = &r
	}
	if b.Notes != nil {
		n := *b.Notes
		c.Notes = &n
	}
	return c
}

func (b *Book) markFinished() {
	rating := 0
	notes := ""
	b.Status = StatusFinished
	b.Rating = &rating
	b.Notes = &notes
}

func (b *Book) markToBeRead() {
	b.Status = StatusToBeRead
	b.Rating = nil
	b.Notes = nil
}

// Collection is the full ordered set of books, persisted as one unit.
type Collection []Book

// Clone deep-copies the collection. A nil collection clones to an empty one.
func (c Collection) Clone() Collection {
	out := make(Collection, len(c))
	for i, b := range c {
		out[i] = b.Clone()
	}
	return out
}

// Normalize repairs journal fields so that rating and notes exist only on finished books.
func (c Collection) Normalize() {
	for i := range c {
		b := &c[i]
		switch b.Status {
		case StatusFinished:
			if b.Rating == nil {
				rating := 0
				b.Rating = &rating
			}
			if b.Notes == nil {
				notes := ""
				b.Notes = &notes
			}
		default:
			b.markToBeRead()
		}
	}
}

// Validate checks identifier presence and uniqueness.
func (c Collection) Validate() error {
	seen := make(map[string]struct{}, len(c))
	for i, b := range c {
		if b.ID == "" {
			return fmt.Errorf("book at index %d has no id", i)
		}
		if _, dup := seen[b.ID]; dup {
			return fmt.Errorf("duplicate book id %q", b.ID)
		}
		seen[b.ID] = struct{}{}
	}
	return nil
}

// Draft is the user input for a new book.
type Draft struct {
	Title     string
	Author    string
	ReadLevel ReadLevel
}

// DetailsPatch is a partial update of a book's descriptive fields. Nil fields are left alone.
type DetailsPatch struct {
	Title     *string
	Author    *string
	ReadLevel *ReadLevel
}

// FinishedPatch is a partial update of a finished book's journal fields.
type FinishedPatch struct {
	Rating *int
	Notes  *string
}

// CoverRequest identifies a book whose cover should be looked up.
type CoverRequest struct {
	ID     string
	Title  string
	Author string
}

const (
	MinRating = 0
	MaxRating = 5
)

func validateDraft(d Draft) (Draft, error) {
	d.Title = strings.TrimSpace(d.Title)
	d.Author = strings.TrimSpace(d.Author)
	if d.Title == "" {
		return d, errors.NewValidationError("title", "must not be empty")
	}
	if d.Author == "" {
		return d, errors.NewValidationError("author", "must not be empty")
	}
	if !d.ReadLevel.Valid() {
		return d, errors.NewValidationError("readLevel", fmt.Sprintf("unknown read level %q", d.ReadLevel))
	}
	return d, nil
}

func validateDetails(p DetailsPatch) (DetailsPatch, error) {
	if p.Title != nil {
		title := strings.TrimSpace(*p.Title)
		if title == "" {
			return p, errors.NewValidationError("title", "must not be empty")
		}
		p.Title = &title
	}
	if p.Author != nil {
		author := strings.TrimSpace(*p.Author)
		if author == "" {
			return p, errors.NewValidationError("author", "must not be empty")
		}
		p.Author = &author
	}
	if p.ReadLevel != nil && !p.ReadLevel.Valid() {
		return p, errors.NewValidationError("readLevel", fmt.Sprintf("unknown read level %q", *p.ReadLevel))
	}
	return p, nil
}

func validateFinished(p FinishedPatch) error {
	if p.Rating != nil && (*p.Rating < MinRating || *p.Rating > MaxRating) {
		return errors.NewValidationError("rating", fmt.Sprintf("must be between %d and %d", MinRating, MaxRating))
	}
	return nil
}
