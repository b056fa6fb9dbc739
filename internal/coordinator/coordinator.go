// Package coordinator owns the journal lifecycle: it loads the collection,
// writes every change back through the gateway and fills in missing covers.
package coordinator

import (
	"context"
	stdErrors "errors"
	"log/slog"
	"slices"
	"sync"
	"sync/atomic"

	"github.com/lepinkainen/bookjournal/internal/datastore"
	"github.com/lepinkainen/bookjournal/internal/journal"
)

var (
	// ErrNotReady is returned by reads and mutations before the collection has loaded.
	ErrNotReady = stdErrors.New("journal is still loading")
	// ErrAlreadyStarted is returned by a second call to Start.
	ErrAlreadyStarted = stdErrors.New("coordinator already started")
)

// Phase is the coordinator lifecycle state.
type Phase int32

const (
	PhaseLoading Phase = iota
	PhaseReady
)

func (p Phase) String() string {
	switch p {
	case PhaseLoading:
		return "loading"
	case PhaseReady:
		return "ready"
	default:
		return "unknown"
	}
}

// Gateway persists the collection.
type Gateway interface {
	Load(ctx context.Context) (journal.Collection, datastore.Source)
	CacheLocal(books journal.Collection)
	PushRemote(ctx context.Context, books journal.Collection) error
}

// Resolver finds a cover URL for a book. "" means none was found.
type Resolver interface {
	Resolve(ctx context.Context, title, author string) string
}

// Compile-time check that the concrete gateway satisfies Gateway.
var _ Gateway = (*datastore.Gateway)(nil)

// Option configures a Coordinator
type Option func(*Coordinator)

// WithoutEnrichment skips the background cover pass after Start.
func WithoutEnrichment() Option {
	return func(c *Coordinator) {
		c.enrichOnStart = false
	}
}

// WithStoreOptions passes options to the journal store built by Start.
func WithStoreOptions(opts ...journal.Option) Option {
	return func(c *Coordinator) {
		c.storeOpts = append(c.storeOpts, opts...)
	}
}

// Coordinator ties the journal store to persistence and cover lookups.
type Coordinator struct {
	gateway  Gateway
	resolver Resolver

	enrichOnStart bool
	storeOpts     []journal.Option

	phase   atomic.Int32
	started atomic.Bool
	store   atomic.Pointer[journal.Store]
	source  datastore.Source

	// bg outlives the caller's context: in-flight lookups and writes are never cancelled
	bg context.Context
	wg sync.WaitGroup
}

// New creates a Coordinator in the loading phase.
func New(gateway Gateway, resolver Resolver, opts ...Option) *Coordinator {
	c := &Coordinator{
		gateway:       gateway,
		resolver:      resolver,
		enrichOnStart: true,
		bg:            context.Background(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Start loads the collection and enters the ready phase. Unless disabled,
// it schedules one background enrichment pass.
func (c *Coordinator) Start(ctx context.Context) error {
	if !c.started.CompareAndSwap(false, true) {
		return ErrAlreadyStarted
	}
	c.bg = context.WithoutCancel(ctx)

	books, source := c.gateway.Load(ctx)
	c.source = source

	opts := append(slices.Clone(c.storeOpts), journal.WithChangeHook(c.writeBack))
	c.store.Store(journal.New(books, opts...))
	c.phase.Store(int32(PhaseReady))

	slog.Info("Journal ready", "source", source, "books", len(books))

	if c.enrichOnStart {
		c.wg.Go(func() {
			c.enrich(c.bg)
		})
	}
	return nil
}

// Phase returns the current lifecycle phase.
func (c *Coordinator) Phase() Phase {
	return Phase(c.phase.Load())
}

// Source reports where Start loaded the collection from.
func (c *Coordinator) Source() datastore.Source {
	if c.Phase() != PhaseReady {
		return ""
	}
	return c.source
}

// Store returns the loaded journal store.
func (c *Coordinator) Store() (*journal.Store, error) {
	s := c.store.Load()
	if s == nil || c.Phase() != PhaseReady {
		return nil, ErrNotReady
	}
	return s, nil
}

// Wait blocks until all background lookups and remote writes have finished.
func (c *Coordinator) Wait() {
	c.wg.Wait()
}

// Enrich runs one cover pass synchronously.
func (c *Coordinator) Enrich(ctx context.Context) error {
	if _, err := c.Store(); err != nil {
		return err
	}
	c.enrich(ctx)
	return nil
}

// Add inserts a new book and starts a cover lookup for it.
func (c *Coordinator) Add(d journal.Draft) (journal.Book, error) {
	s, err := c.Store()
	if err != nil {
		return journal.Book{}, err
	}

	b, err := s.Add(d)
	if err != nil {
		return journal.Book{}, err
	}

	req := b.CoverRequest()
	c.wg.Go(func() {
		c.resolveOne(c.bg, req)
	})
	return b, nil
}

// EditDetails updates title, author or read level and clears the cover.
func (c *Coordinator) EditDetails(id string, p journal.DetailsPatch) error {
	s, err := c.Store()
	if err != nil {
		return err
	}
	return s.EditDetails(id, p)
}

// MarkFinished moves a book to finished.
func (c *Coordinator) MarkFinished(id string) error {
	s, err := c.Store()
	if err != nil {
		return err
	}
	return s.MarkFinished(id)
}

// MarkToBeRead moves a book back to the to-be-read list.
func (c *Coordinator) MarkToBeRead(id string) error {
	s, err := c.Store()
	if err != nil {
		return err
	}
	return s.MarkToBeRead(id)
}

// UpdateFinishedFields sets rating and notes.
func (c *Coordinator) UpdateFinishedFields(id string, p journal.FinishedPatch) error {
	s, err := c.Store()
	if err != nil {
		return err
	}
	return s.UpdateFinishedFields(id, p)
}

// Remove deletes a book.
func (c *Coordinator) Remove(id string) error {
	s, err := c.Store()
	if err != nil {
		return err
	}
	return s.Remove(id)
}

// enrich resolves covers one book at a time for the books missing one when
// the pass starts. Each book is re-read right before its lookup, so edits
// made while earlier books resolve are honored. Each result is merged as
// soon as it arrives.
func (c *Coordinator) enrich(ctx context.Context) {
	s := c.store.Load()
	if s == nil {
		return
	}

	pending := s.MissingCovers()
	if len(pending) == 0 {
		slog.Debug("No books missing covers")
		return
	}

	slog.Info("Looking up missing covers", "books", len(pending))
	found := 0
	for _, start := range pending {
		b, ok := s.Get(start.ID)
		if !ok || b.HasCover() {
			slog.Debug("Book removed or covered since the pass started", "id", start.ID)
			continue
		}
		if c.resolveOne(ctx, b.CoverRequest()) {
			found++
		}
	}
	slog.Info("Cover lookup finished", "found", found, "missing", len(pending)-found)
}

// resolveOne looks up a single cover and merges it if the book still has the
// title and author the lookup was made for.
func (c *Coordinator) resolveOne(ctx context.Context, req journal.CoverRequest) bool {
	url := c.resolver.Resolve(ctx, req.Title, req.Author)
	if url == "" {
		return false
	}

	s := c.store.Load()
	if !s.SetCover(req, url) {
		slog.Debug("Discarding cover for removed or edited book", "id", req.ID, "title", req.Title)
		return false
	}
	return true
}

// writeBack runs under the store's write lock after every applied mutation:
// the local snapshot is written in mutation order, the remote write goes out
// in the background without sequencing.
func (c *Coordinator) writeBack(books journal.Collection) {
	c.gateway.CacheLocal(books)
	c.wg.Go(func() {
		_ = c.gateway.PushRemote(c.bg, books)
	})
}
