package datastore

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/lepinkainen/bookjournal/internal/journal"
	_ "modernc.org/sqlite"
)

// SnapshotSchema defines the key-value table holding serialized collections
const SnapshotSchema = `
CREATE TABLE IF NOT EXISTS snapshots (
	snapshot_key TEXT PRIMARY KEY NOT NULL,
	data TEXT NOT NULL,
	saved_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);
`

// SnapshotStore is a SQLite-backed key-value table of JSON blobs.
// It backs both the local cache and the reference remote server.
type SnapshotStore struct {
	db     *sql.DB
	dbPath string
	mu     sync.RWMutex
}

// NewSnapshotStore creates a new SnapshotStore instance
func NewSnapshotStore(dbPath string) *SnapshotStore {
	return &SnapshotStore{
		dbPath: dbPath,
	}
}

// Connect opens the database and creates the snapshot table if needed
func (s *SnapshotStore) Connect() error {
	db, err := sql.Open("sqlite", s.dbPath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	// A single connection keeps in-memory databases shared and serializes writers
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(SnapshotSchema); err != nil {
		closeErr := db.Close()
		return errors.Join(fmt.Errorf("failed to create snapshot table: %w", err), closeErr)
	}
	s.db = db
	return nil
}

// Get returns the raw value stored under key and whether it exists
func (s *SnapshotStore) Get(key string) ([]byte, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var data string
	err := s.db.QueryRow(`SELECT data FROM snapshots WHERE snapshot_key = ?`, key).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to query snapshot: %w", err)
	}
	return []byte(data), true, nil
}

// Put replaces the value stored under key
func (s *SnapshotStore) Put(key string, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec(`
		INSERT OR REPLACE INTO snapshots (snapshot_key, data, saved_at)
		VALUES (?, ?, CURRENT_TIMESTAMP)
	`, key, string(data))
	if err != nil {
		return fmt.Errorf("failed to write snapshot: %w", err)
	}
	return nil
}

// Close closes the database connection
func (s *SnapshotStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// LocalCache stores the collection in a SnapshotStore under a fixed key.
type LocalCache struct {
	store *SnapshotStore
	key   string
}

// Compile-time check that LocalCache implements Local.
var _ Local = (*LocalCache)(nil)

// NewLocalCache creates a LocalCache using key as the single slot name
func NewLocalCache(store *SnapshotStore, key string) *LocalCache {
	return &LocalCache{store: store, key: key}
}

// Load returns the cached collection and whether one was ever saved
func (c *LocalCache) Load() (journal.Collection, bool, error) {
	data, ok, err := c.store.Get(c.key)
	if err != nil || !ok {
		return nil, false, err
	}

	var books journal.Collection
	if err := json.Unmarshal(data, &books); err != nil {
		return nil, false, fmt.Errorf("failed to decode cached collection: %w", err)
	}
	if books == nil {
		books = journal.Collection{}
	}
	return books, true, nil
}

// Save overwrites the cached collection
func (c *LocalCache) Save(books journal.Collection) error {
	if books == nil {
		books = journal.Collection{}
	}
	data, err := json.Marshal(books)
	if err != nil {
		return fmt.Errorf("failed to marshal collection: %w", err)
	}
	return c.store.Put(c.key, data)
}
