package journal

import (
	stdErrors "errors"
	"iter"
	"sync"

	"github.com/google/uuid"
	"github.com/lepinkainen/bookjournal/internal/errors"
)

// ErrNotFinished is returned in strict mode when finished-only fields are
// updated on a to-be-read book.
var ErrNotFinished = stdErrors.New("book is not finished")

// ChangeHook receives the collection after every applied mutation.
// It runs while the store's write lock is held and must not call back into the store.
type ChangeHook func(Collection)

// Option configures a Store
type Option func(*Store)

// WithIDGenerator overrides the identifier generator (UUIDv7 by default).
// Identifiers the store has already seen, including those of removed books,
// are skipped and the generator is asked again.
func WithIDGenerator(gen func() string) Option {
	return func(s *Store) {
		s.newID = gen
	}
}

// WithStrict switches unknown identifiers from silent no-ops to NotFoundError,
// and rejects finished-field updates on to-be-read books.
func WithStrict(strict bool) Option {
	return func(s *Store) {
		s.strict = strict
	}
}

// WithChangeHook installs a callback invoked after each applied mutation.
func WithChangeHook(hook ChangeHook) Option {
	return func(s *Store) {
		s.onChange = hook
	}
}

// Store is the in-memory ordered book collection.
type Store struct {
	mu       sync.RWMutex
	books    Collection
	used     map[string]struct{}
	newID    func() string
	strict   bool
	onChange ChangeHook
}

// New creates a Store seeded with a normalized copy of initial.
func New(initial Collection, opts ...Option) *Store {
	books := initial.Clone()
	books.Normalize()

	s := &Store{
		books: books,
		used:  make(map[string]struct{}, len(books)),
		newID: newUUID,
	}
	for _, b := range books {
		s.used[b.ID] = struct{}{}
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func newUUID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

// Strict reports whether unknown identifiers are reported as errors.
func (s *Store) Strict() bool {
	return s.strict
}

// Add appends a new to-be-read book without a cover.
func (s *Store) Add(d Draft) (Book, error) {
	d, err := validateDraft(d)
	if err != nil {
		return Book{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.newID()
	for s.takenLocked(id) {
		id = s.newID()
	}
	s.used[id] = struct{}{}

	b := Book{
		ID:        id,
		Title:     d.Title,
		Author:    d.Author,
		ReadLevel: d.ReadLevel,
		Status:    StatusToBeRead,
	}
	s.books = append(s.books, b)
	s.changedLocked()
	return b.Clone(), nil
}

// EditDetails applies a partial update and always clears the cover,
// since a title or author change invalidates the previous match.
func (s *Store) EditDetails(id string, p DetailsPatch) error {
	p, err := validateDetails(p)
	if err != nil {
		return err
	}
	return s.update(id, func(b *Book) error {
		if p.Title != nil {
			b.Title = *p.Title
		}
		if p.Author != nil {
			b.Author = *p.Author
		}
		if p.ReadLevel != nil {
			b.ReadLevel = *p.ReadLevel
		}
		b.CoverURL = ""
		return nil
	})
}

// MarkFinished moves a book to finished with rating 0 and empty notes.
func (s *Store) MarkFinished(id string) error {
	return s.update(id, func(b *Book) error {
		b.markFinished()
		return nil
	})
}

// MarkToBeRead moves a book back to to-be-read, dropping rating and notes.
func (s *Store) MarkToBeRead(id string) error {
	return s.update(id, func(b *Book) error {
		b.markToBeRead()
		return nil
	})
}

// UpdateFinishedFields sets rating and/or notes. In lenient mode it does not
// check the book's status.
func (s *Store) UpdateFinishedFields(id string, p FinishedPatch) error {
	if err := validateFinished(p); err != nil {
		return err
	}
	return s.update(id, func(b *Book) error {
		if s.strict && b.Status != StatusFinished {
			return ErrNotFinished
		}
		if p.Rating != nil {
			r := *p.Rating
			b.Rating = &r
		}
		if p.Notes != nil {
			n := *p.Notes
			b.Notes = &n
		}
		return nil
	})
}

// Remove deletes a book by identifier.
func (s *Store) Remove(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexLocked(id)
	if i < 0 {
		return s.missing(id)
	}
	s.books = append(s.books[:i], s.books[i+1:]...)
	s.changedLocked()
	return nil
}

// SetCover merges a resolved cover into the book the request was made for.
// It returns false when the book is gone or its title or author changed since
// the request was taken; the cover is then discarded.
func (s *Store) SetCover(req CoverRequest, url string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexLocked(req.ID)
	if i < 0 {
		return false
	}
	if b := s.books[i]; b.Title != req.Title || b.Author != req.Author {
		return false
	}
	s.books[i].CoverURL = url
	s.changedLocked()
	return true
}

// Get returns a copy of the book with the given identifier.
func (s *Store) Get(id string) (Book, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i := s.indexLocked(id)
	if i < 0 {
		return Book{}, false
	}
	return s.books[i].Clone(), true
}

// Len returns the number of books.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.books)
}

// Snapshot returns a deep copy of the whole collection.
func (s *Store) Snapshot() Collection {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.books.Clone()
}

// MissingCovers lists the books that have no cover yet, in collection order.
func (s *Store) MissingCovers() []CoverRequest {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []CoverRequest
	for _, b := range s.books {
		if !b.HasCover() {
			out = append(out, b.CoverRequest())
		}
	}
	return out
}

// ViewByStatus lazily yields the books with the given status in collection order.
// Each step reads the live collection, so mutations made while iterating are visible.
// The position is tracked by the last visited identifier, so removing books
// during iteration does not skip the ones after them.
func (s *Store) ViewByStatus(status Status) iter.Seq[Book] {
	return func(yield func(Book) bool) {
		var lastID string
		pos := 0
		for {
			b, i, ok := s.after(lastID, pos)
			if !ok {
				return
			}
			lastID, pos = b.ID, i
			if b.Status != status {
				continue
			}
			if !yield(b) {
				return
			}
		}
	}
}

// after returns the book following lastID. When lastID is empty or no longer
// present, the book now sitting at pos is returned instead.
func (s *Store) after(lastID string, pos int) (Book, int, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i := pos
	if lastID != "" {
		if j := s.indexLocked(lastID); j >= 0 {
			i = j + 1
		}
	}
	if i >= len(s.books) {
		return Book{}, i, false
	}
	return s.books[i].Clone(), i, true
}

func (s *Store) update(id string, fn func(*Book) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexLocked(id)
	if i < 0 {
		return s.missing(id)
	}

	// Work on a copy so a rejected update leaves the record untouched.
	b := s.books[i].Clone()
	if err := fn(&b); err != nil {
		return err
	}
	s.books[i] = b
	s.changedLocked()
	return nil
}

func (s *Store) missing(id string) error {
	if s.strict {
		return errors.NewNotFoundError(id)
	}
	return nil
}

func (s *Store) takenLocked(id string) bool {
	_, ok := s.used[id]
	return ok || id == ""
}

func (s *Store) indexLocked(id string) int {
	for i := range s.books {
		if s.books[i].ID == id {
			return i
		}
	}
	return -1
}

func (s *Store) changedLocked() {
	if s.onChange != nil {
		s.onChange(s.books.Clone())
	}
}
