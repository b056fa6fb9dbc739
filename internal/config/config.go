package config

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Known cover provider names
const (
	ProviderOpenLibrary = "openlibrary"
	ProviderGoogleBooks = "googlebooks"
)

// Config is the resolved application configuration.
type Config struct {
	Remote      RemoteConfig
	Storage     StorageConfig
	Covers      CoversConfig
	GoogleBooks GoogleBooksConfig
	HTTPTimeout time.Duration
	Strict      bool
	Server      ServerConfig
}

// RemoteConfig points at the remote key-value endpoint. An empty URL means local-only.
type RemoteConfig struct {
	URL      string
	Resource string
	Token    string
}

// StorageConfig locates the local snapshot cache.
type StorageConfig struct {
	LocalDB     string
	SnapshotKey string
}

// CoversConfig controls cover lookups.
type CoversConfig struct {
	Providers []string
	Size      string
	Rate      float64
	Cache     CoverCacheConfig
}

// CoverCacheConfig controls the SQLite lookup cache.
type CoverCacheConfig struct {
	Enabled     bool
	DB          string
	TTL         time.Duration
	NegativeTTL time.Duration
}

// GoogleBooksConfig holds Google Books credentials.
type GoogleBooksConfig struct {
	APIKey string
	// BaseURL overrides the public API endpoint
	BaseURL string
}

// ServerConfig configures the self-hosted remote endpoint.
type ServerConfig struct {
	Addr  string
	Token string
	DB    string
}

// SetDefaults registers the default values with viper
func SetDefaults() {
	viper.SetDefault("remote.resource", "books")
	viper.SetDefault("storage.local_db", "./bookjournal.db")
	viper.SetDefault("storage.snapshot_key", "books")
	viper.SetDefault("covers.providers", []string{ProviderOpenLibrary})
	viper.SetDefault("covers.size", "M")
	viper.SetDefault("covers.rate", 1.0)
	viper.SetDefault("covers.cache.enabled", true)
	viper.SetDefault("covers.cache.db", "./cache.db")
	viper.SetDefault("covers.cache.ttl", "720h")
	viper.SetDefault("covers.cache.negative_ttl", "168h")
	viper.SetDefault("http.timeout", "10s")
	viper.SetDefault("journal.strict", false)
	viper.SetDefault("server.addr", ":8080")
	viper.SetDefault("server.db", "./server.db")
}

// Load reads the configuration from viper and validates it.
func Load() (*Config, error) {
	cfg := &Config{
		Remote: RemoteConfig{
			URL:      strings.TrimSpace(viper.GetString("remote.url")),
			Resource: viper.GetString("remote.resource"),
			Token:    viper.GetString("remote.token"),
		},
		Storage: StorageConfig{
			LocalDB:     viper.GetString("storage.local_db"),
			SnapshotKey: viper.GetString("storage.snapshot_key"),
		},
		Covers: CoversConfig{
			Providers: viper.GetStringSlice("covers.providers"),
			Size:      strings.ToUpper(viper.GetString("covers.size")),
			Rate:      viper.GetFloat64("covers.rate"),
			Cache: CoverCacheConfig{
				Enabled:     viper.GetBool("covers.cache.enabled"),
				DB:          viper.GetString("covers.cache.db"),
				TTL:         viper.GetDuration("covers.cache.ttl"),
				NegativeTTL: viper.GetDuration("covers.cache.negative_ttl"),
			},
		},
		GoogleBooks: GoogleBooksConfig{
			APIKey:  viper.GetString("googlebooks.apikey"),
			BaseURL: strings.TrimSpace(viper.GetString("googlebooks.base_url")),
		},
		HTTPTimeout: viper.GetDuration("http.timeout"),
		Strict:      viper.GetBool("journal.strict"),
		Server: ServerConfig{
			Addr:  viper.GetString("server.addr"),
			Token: viper.GetString("server.token"),
			DB:    viper.GetString("server.db"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks values that would otherwise fail deep inside a command.
func (c *Config) Validate() error {
	if c.Remote.URL != "" && c.Remote.Resource == "" {
		return fmt.Errorf("remote.resource must be set when remote.url is set")
	}
	if c.Storage.LocalDB == "" {
		return fmt.Errorf("storage.local_db must be set")
	}
	if c.Storage.SnapshotKey == "" {
		return fmt.Errorf("storage.snapshot_key must be set")
	}
	for _, p := range c.Covers.Providers {
		if p != ProviderOpenLibrary && p != ProviderGoogleBooks {
			return fmt.Errorf("unknown cover provider %q", p)
		}
	}
	if !slices.Contains([]string{"S", "M", "L"}, c.Covers.Size) {
		return fmt.Errorf("covers.size must be S, M or L, got %q", c.Covers.Size)
	}
	if c.Covers.Rate < 0 {
		return fmt.Errorf("covers.rate must not be negative")
	}
	if c.Covers.Cache.Enabled && c.Covers.Cache.DB == "" {
		return fmt.Errorf("covers.cache.db must be set when the cover cache is enabled")
	}
	if c.HTTPTimeout <= 0 {
		return fmt.Errorf("http.timeout must be positive")
	}
	return nil
}
