package datastore

import (
	"path/filepath"
	"testing"

	"github.com/lepinkainen/bookjournal/internal/journal"
	"github.com/lepinkainen/bookjournal/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSnapshotStore(t *testing.T) *SnapshotStore {
	t.Helper()

	env := testutil.NewTestEnv(t)
	store := NewSnapshotStore(filepath.Join(env.RootDir(), "snapshots.db"))
	require.NoError(t, store.Connect())
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func sampleCollection() journal.Collection {
	return testutil.SampleCollection()
}

func TestSnapshotStore_GetPut(t *testing.T) {
	store := newTestSnapshotStore(t)

	_, ok, err := store.Get("books")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, store.Put("books", []byte(`[1]`)))
	require.NoError(t, store.Put("books", []byte(`[2]`)))

	data, ok, err := store.Get("books")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, `[2]`, string(data))

	var rows int
	require.NoError(t, store.db.QueryRow("SELECT COUNT(*) FROM snapshots").Scan(&rows))
	assert.Equal(t, 1, rows, "a key is a single slot")
}

func TestLocalCache_RoundTrip(t *testing.T) {
	cache := NewLocalCache(newTestSnapshotStore(t), "books")

	_, ok, err := cache.Load()
	require.NoError(t, err)
	assert.False(t, ok)

	want := sampleCollection()
	require.NoError(t, cache.Save(want))

	got, ok, err := cache.Load()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, want, got)
}

func TestLocalCache_EmptyCollectionIsStored(t *testing.T) {
	cache := NewLocalCache(newTestSnapshotStore(t), "books")

	require.NoError(t, cache.Save(nil))
	got, ok, err := cache.Load()
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, journal.Collection{}, got)
}

func TestLocalCache_CorruptSnapshot(t *testing.T) {
	store := newTestSnapshotStore(t)
	require.NoError(t, store.Put("books", []byte(`{"not":"a list"}`)))

	_, ok, err := NewLocalCache(store, "books").Load()
	require.Error(t, err)
	assert.False(t, ok)
}
