// Package covers finds cover image URLs for books by title and author.
package covers

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/lepinkainen/bookjournal/internal/cache"
)

const (
	// DefaultHitTTL keeps found cover URLs for 30 days
	DefaultHitTTL = 30 * 24 * time.Hour
	// DefaultMissTTL keeps "no cover" answers for 7 days
	DefaultMissTTL = 7 * 24 * time.Hour
)

// Provider is a single cover lookup service.
// Lookup returns "" with a nil error when the service has no cover.
type Provider interface {
	Name() string
	Lookup(ctx context.Context, title, author string) (string, error)
}

// Resolver tries providers in order and returns the first cover found.
type Resolver struct {
	providers []Provider
	cache     *cache.CacheDB
	hitTTL    time.Duration
	missTTL   time.Duration
}

// Option configures a Resolver
type Option func(*Resolver)

// WithCache stores lookup results in db. Errors are never cached.
func WithCache(db *cache.CacheDB, hitTTL, missTTL time.Duration) Option {
	return func(r *Resolver) {
		r.cache = db
		r.hitTTL = hitTTL
		r.missTTL = missTTL
	}
}

// New creates a Resolver over providers.
func New(providers []Provider, opts ...Option) *Resolver {
	r := &Resolver{
		providers: providers,
		hitTTL:    DefaultHitTTL,
		missTTL:   DefaultMissTTL,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve returns a cover URL for the book, or "" when no provider has one.
// It never fails: provider errors are logged and treated as no cover.
func (r *Resolver) Resolve(ctx context.Context, title, author string) string {
	if strings.TrimSpace(title) == "" {
		return ""
	}

	for _, p := range r.providers {
		url, err := r.lookup(ctx, p, title, author)
		if err != nil {
			slog.Debug("Cover lookup failed", "provider", p.Name(), "title", title, "error", err)
			continue
		}
		if url != "" {
			slog.Debug("Found cover", "provider", p.Name(), "title", title, "url", url)
			return url
		}
	}

	return ""
}

func (r *Resolver) lookup(ctx context.Context, p Provider, title, author string) (string, error) {
	url, _, err := cache.GetOrFetchWithTTL(r.cache, cache.CoverCacheTable, cacheKey(p.Name(), title, author),
		func() (string, error) {
			return p.Lookup(ctx, title, author)
		},
		cache.SelectNegativeCacheTTL(r.hitTTL, r.missTTL, func(u string) bool { return u == "" }),
	)
	return url, err
}

func cacheKey(provider, title, author string) string {
	return provider + "|" + normalize(title) + "|" + normalize(author)
}

func normalize(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}
