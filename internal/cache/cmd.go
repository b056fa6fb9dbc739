package cache

import (
	"fmt"
	"log/slog"

	"github.com/spf13/viper"
)

// ClearCacheCmd represents the cache clear subcommand
type ClearCacheCmd struct {
	Expired bool `help:"Only remove entries whose TTL has passed"`
}

func (c *ClearCacheCmd) Run() error {
	dbPath := viper.GetString("covers.cache.db")
	if dbPath == "" {
		return fmt.Errorf("covers.cache.db is not configured")
	}

	slog.Info("Clearing cover cache", "database", dbPath, "expired_only", c.Expired)

	cacheInstance, err := Open(dbPath)
	if err != nil {
		return fmt.Errorf("failed to open cache database: %w", err)
	}
	defer func() { _ = cacheInstance.Close() }()

	var rowsDeleted int64
	if c.Expired {
		rowsDeleted, err = cacheInstance.ClearExpired(CoverCacheTable)
	} else {
		rowsDeleted, err = cacheInstance.InvalidateSource(CoverCacheTable)
	}
	if err != nil {
		return fmt.Errorf("failed to clear cache: %w", err)
	}

	slog.Info("Cover cache cleared", "rows_deleted", rowsDeleted)
	return nil
}
