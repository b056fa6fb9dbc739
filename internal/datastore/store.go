// Package datastore persists the book collection: a remote single-slot
// key-value endpoint with a local SQLite snapshot as the fallback cache.
package datastore

import (
	"context"

	"github.com/lepinkainen/bookjournal/internal/journal"
)

// Remote is the remote key-value store holding the whole collection under one name.
type Remote interface {
	// Fetch returns the stored collection, or an empty one if it was never set
	Fetch(ctx context.Context) (journal.Collection, error)

	// Push replaces the stored collection
	Push(ctx context.Context, books journal.Collection) error
}

// Local is the local fallback cache holding the last saved collection.
type Local interface {
	// Load returns the cached collection and whether one was ever saved
	Load() (journal.Collection, bool, error)

	// Save overwrites the cached collection
	Save(books journal.Collection) error
}

// Source tells where a loaded collection came from.
type Source string

const (
	SourceRemote Source = "remote"
	SourceLocal  Source = "local"
	SourceEmpty  Source = "empty"
)
