package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func resetViper(t *testing.T) {
	t.Helper()
	viper.Reset()
	t.Cleanup(viper.Reset)
}

func TestLoad_Defaults(t *testing.T) {
	resetViper(t)
	SetDefaults()

	cfg, err := Load()
	require.NoError(t, err)

	assert.Empty(t, cfg.Remote.URL)
	assert.Equal(t, "books", cfg.Remote.Resource)
	assert.Equal(t, "./bookjournal.db", cfg.Storage.LocalDB)
	assert.Equal(t, "books", cfg.Storage.SnapshotKey)
	assert.Equal(t, []string{ProviderOpenLibrary}, cfg.Covers.Providers)
	assert.Equal(t, "M", cfg.Covers.Size)
	assert.InDelta(t, 1.0, cfg.Covers.Rate, 0.0001)
	assert.True(t, cfg.Covers.Cache.Enabled)
	assert.Equal(t, "./cache.db", cfg.Covers.Cache.DB)
	assert.Equal(t, 720*time.Hour, cfg.Covers.Cache.TTL)
	assert.Equal(t, 168*time.Hour, cfg.Covers.Cache.NegativeTTL)
	assert.Equal(t, 10*time.Second, cfg.HTTPTimeout)
	assert.False(t, cfg.Strict)
	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, "./server.db", cfg.Server.DB)
}

func TestLoad_Overrides(t *testing.T) {
	resetViper(t)
	SetDefaults()

	viper.Set("remote.url", " https://kv.example.com ")
	viper.Set("remote.token", "secret")
	viper.Set("covers.providers", []string{ProviderGoogleBooks, ProviderOpenLibrary})
	viper.Set("covers.size", "l")
	viper.Set("googlebooks.apikey", "gb-key")
	viper.Set("http.timeout", "3s")
	viper.Set("journal.strict", true)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "https://kv.example.com", cfg.Remote.URL)
	assert.Equal(t, "secret", cfg.Remote.Token)
	assert.Equal(t, []string{ProviderGoogleBooks, ProviderOpenLibrary}, cfg.Covers.Providers)
	assert.Equal(t, "L", cfg.Covers.Size)
	assert.Equal(t, "gb-key", cfg.GoogleBooks.APIKey)
	assert.Equal(t, 3*time.Second, cfg.HTTPTimeout)
	assert.True(t, cfg.Strict)
}

func TestLoad_Invalid(t *testing.T) {
	testCases := []struct {
		name  string
		key   string
		value any
	}{
		{name: "unknown provider", key: "covers.providers", value: []string{"amazon"}},
		{name: "bad size", key: "covers.size", value: "XL"},
		{name: "negative rate", key: "covers.rate", value: -1},
		{name: "zero timeout", key: "http.timeout", value: "0s"},
		{name: "empty local db", key: "storage.local_db", value: ""},
		{name: "empty snapshot key", key: "storage.snapshot_key", value: ""},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			resetViper(t)
			SetDefaults()
			viper.Set(tc.key, tc.value)

			_, err := Load()
			assert.Error(t, err)
		})
	}
}

func TestLoad_RemoteNeedsResource(t *testing.T) {
	resetViper(t)
	SetDefaults()
	viper.Set("remote.url", "https://kv.example.com")
	viper.Set("remote.resource", "")

	_, err := Load()
	assert.Error(t, err)
}
