package datastore

import (
	"context"
	"log/slog"

	"github.com/lepinkainen/bookjournal/internal/journal"
)

// Gateway is the single entry point for persisting the collection.
// The local cache is the durability backstop; the remote is best-effort.
type Gateway struct {
	remote Remote
	local  Local
}

// NewGateway creates a Gateway. A nil remote makes the gateway local-only.
func NewGateway(remote Remote, local Local) *Gateway {
	return &Gateway{remote: remote, local: local}
}

// Load fetches the remote collection, falling back to the local snapshot
// and then to an empty collection. It never fails.
func (g *Gateway) Load(ctx context.Context) (journal.Collection, Source) {
	if g.remote != nil {
		books, err := g.remote.Fetch(ctx)
		if err == nil {
			slog.Debug("Loaded collection from remote", "books", len(books))
			return books, SourceRemote
		}
		slog.Warn("Remote load failed, falling back to local cache", "error", err)
	}

	books, ok, err := g.local.Load()
	if err != nil {
		slog.Warn("Failed to read local cache", "error", err)
	}
	if err == nil && ok {
		slog.Debug("Loaded collection from local cache", "books", len(books))
		return books, SourceLocal
	}

	slog.Debug("No stored collection, starting empty")
	return journal.Collection{}, SourceEmpty
}

// Save writes the local snapshot and then attempts one remote write.
// Failures are logged and swallowed.
func (g *Gateway) Save(ctx context.Context, books journal.Collection) {
	g.CacheLocal(books)
	_ = g.PushRemote(ctx, books)
}

// CacheLocal writes the local snapshot synchronously. Failures are logged only.
func (g *Gateway) CacheLocal(books journal.Collection) {
	if err := g.local.Save(books); err != nil {
		slog.Warn("Failed to write local cache", "error", err)
	}
}

// PushRemote makes a single remote write attempt. The error is logged and
// returned for callers that want it; a local-only gateway returns nil.
func (g *Gateway) PushRemote(ctx context.Context, books journal.Collection) error {
	if g.remote == nil {
		return nil
	}
	if err := g.remote.Push(ctx, books); err != nil {
		slog.Warn("Remote save failed, local cache still holds the collection", "error", err)
		return err
	}
	slog.Debug("Saved collection to remote", "books", len(books))
	return nil
}
