package cmd

import (
	"context"
	stdErrors "errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/lepinkainen/bookjournal/internal/datastore"
)

// ServeCmd runs the remote key-value endpoint
type ServeCmd struct {
	Addr string `help:"Listen address (defaults to server.addr)"`
	DB   string `help:"SQLite database backing the endpoint (defaults to server.db)" type:"path"`
}

func (s *ServeCmd) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return s.serve(ctx)
}

func (s *ServeCmd) serve(ctx context.Context) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	addr := s.Addr
	if addr == "" {
		addr = cfg.Server.Addr
	}
	dbPath := s.DB
	if dbPath == "" {
		dbPath = cfg.Server.DB
	}

	store := datastore.NewSnapshotStore(dbPath)
	if err := store.Connect(); err != nil {
		return fmt.Errorf("opening server database: %w", err)
	}
	defer func() { _ = store.Close() }()

	if cfg.Server.Token == "" {
		slog.Warn("server.token is not set, the endpoint accepts unauthenticated writes")
	}

	srv := datastore.NewServer(addr, store, cfg.Server.Token)

	errCh := make(chan error, 1)
	go func() {
		slog.Info("Serving journal endpoint", "addr", addr, "database", dbPath)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !stdErrors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	slog.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
