package testutil

import (
	"testing"

	"github.com/lepinkainen/bookjournal/internal/config"
	"github.com/spf13/viper"
)

// ResetConfig resets viper, registers the application defaults and
// schedules another reset when the test completes.
func ResetConfig(t *testing.T) {
	t.Helper()

	viper.Reset()
	config.SetDefaults()

	t.Cleanup(viper.Reset)
}

// SetupLocalStorage points every database at the test environment and
// disables the remote and network cover lookups. Returns the snapshot database path.
func SetupLocalStorage(t *testing.T, env *TestEnv) string {
	t.Helper()

	ResetConfig(t)

	dbPath := env.Path("bookjournal.db")
	viper.Set("storage.local_db", dbPath)
	viper.Set("covers.cache.db", env.Path("cache.db"))
	viper.Set("covers.providers", []string{})
	viper.Set("remote.url", "")

	return dbPath
}
