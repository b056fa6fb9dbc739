package cache

// SQL schemas for cache tables
// All cache tables use "cache_key" as the primary key column for consistency

// CoverCacheSchema defines the schema for cover lookup results keyed by provider, title and author
const CoverCacheSchema = `
CREATE TABLE IF NOT EXISTS cover_cache (
	cache_key TEXT PRIMARY KEY NOT NULL,
	data TEXT NOT NULL,
	ttl_seconds INTEGER NOT NULL DEFAULT 0,
	cached_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_cover_cached_at ON cover_cache(cached_at);
`

// CoverCacheTable is the table name used for cover lookups
const CoverCacheTable = "cover_cache"

// AllCacheSchemas contains all cache table schemas for easy initialization
var AllCacheSchemas = []string{
	CoverCacheSchema,
}

// ValidCacheTableNames is the whitelist of allowed cache table names
// Used to prevent SQL injection when interpolating table names
var ValidCacheTableNames = map[string]bool{
	CoverCacheTable: true,
}
