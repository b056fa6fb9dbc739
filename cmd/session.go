package cmd

import (
	"context"
	stdErrors "errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/lepinkainen/bookjournal/internal/cache"
	"github.com/lepinkainen/bookjournal/internal/config"
	"github.com/lepinkainen/bookjournal/internal/coordinator"
	"github.com/lepinkainen/bookjournal/internal/covers"
	"github.com/lepinkainen/bookjournal/internal/datastore"
	"github.com/lepinkainen/bookjournal/internal/journal"
)

// loadConfig is swapped in tests
var loadConfig = config.Load

// session is one loaded journal plus the resources backing it
type session struct {
	coord   *coordinator.Coordinator
	closers []func() error
}

// openSession wires storage, cover lookups and the coordinator from config
// and loads the journal. Callers must Close the session.
func openSession(ctx context.Context, opts ...coordinator.Option) (*session, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	s := &session{}

	snapshots := datastore.NewSnapshotStore(cfg.Storage.LocalDB)
	if err := snapshots.Connect(); err != nil {
		return nil, fmt.Errorf("opening local cache: %w", err)
	}
	s.closers = append(s.closers, snapshots.Close)

	remote, err := newRemote(cfg)
	if err != nil {
		return nil, stdErrors.Join(err, s.closeResources())
	}
	gateway := datastore.NewGateway(remote, datastore.NewLocalCache(snapshots, cfg.Storage.SnapshotKey))

	resolver, err := s.newResolver(cfg)
	if err != nil {
		return nil, stdErrors.Join(err, s.closeResources())
	}

	opts = append([]coordinator.Option{
		coordinator.WithStoreOptions(journal.WithStrict(cfg.Strict)),
	}, opts...)
	s.coord = coordinator.New(gateway, resolver, opts...)

	if err := s.coord.Start(ctx); err != nil {
		return nil, stdErrors.Join(err, s.closeResources())
	}
	return s, nil
}

// newRemote returns nil when no remote is configured
func newRemote(cfg *config.Config) (datastore.Remote, error) {
	if cfg.Remote.URL == "" {
		slog.Debug("No remote configured, running local-only")
		return nil, nil
	}

	client, err := datastore.NewRemoteClient(cfg.Remote.URL, cfg.Remote.Resource,
		datastore.WithHTTPClient(&http.Client{Timeout: cfg.HTTPTimeout}),
		datastore.WithAPIToken(cfg.Remote.Token),
	)
	if err != nil {
		return nil, fmt.Errorf("configuring remote: %w", err)
	}
	return client, nil
}

func (s *session) newResolver(cfg *config.Config) (*covers.Resolver, error) {
	httpClient := &http.Client{Timeout: cfg.HTTPTimeout}

	var providers []covers.Provider
	for _, name := range cfg.Covers.Providers {
		switch name {
		case config.ProviderOpenLibrary:
			providers = append(providers, covers.NewOpenLibraryProvider(
				covers.WithCoverSize(cfg.Covers.Size),
				covers.WithOpenLibraryRate(cfg.Covers.Rate),
				covers.WithOpenLibraryHTTPClient(httpClient),
			))
		case config.ProviderGoogleBooks:
			gbOpts := []covers.GoogleBooksOption{
				covers.WithGoogleBooksRate(cfg.Covers.Rate),
				covers.WithGoogleBooksHTTPClient(httpClient),
			}
			if cfg.GoogleBooks.BaseURL != "" {
				gbOpts = append(gbOpts, covers.WithGoogleBooksBaseURL(cfg.GoogleBooks.BaseURL))
			}
			providers = append(providers, covers.NewGoogleBooksProvider(cfg.GoogleBooks.APIKey, gbOpts...))
		}
	}

	var opts []covers.Option
	if cfg.Covers.Cache.Enabled && len(providers) > 0 {
		db, err := cache.Open(cfg.Covers.Cache.DB)
		if err != nil {
			return nil, fmt.Errorf("opening cover cache: %w", err)
		}
		slog.Debug("Opened cover cache", "path", db.Path())
		s.closers = append(s.closers, db.Close)
		opts = append(opts, covers.WithCache(db, cfg.Covers.Cache.TTL, cfg.Covers.Cache.NegativeTTL))
	}

	return covers.New(providers, opts...), nil
}

// Close waits for background lookups and remote writes, then releases resources
func (s *session) Close() error {
	if s.coord != nil {
		s.coord.Wait()
	}
	return s.closeResources()
}

func (s *session) closeResources() error {
	var errs []error
	for i := len(s.closers) - 1; i >= 0; i-- {
		if err := s.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	s.closers = nil
	return stdErrors.Join(errs...)
}

// withSession opens a session without background enrichment, runs fn and closes it
func withSession(fn func(ctx context.Context, c *coordinator.Coordinator) error) (err error) {
	ctx := context.Background()

	s, err := openSession(ctx, coordinator.WithoutEnrichment())
	if err != nil {
		return err
	}
	defer func() {
		err = stdErrors.Join(err, s.Close())
	}()

	return fn(ctx, s.coord)
}
