package datastore

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/lepinkainen/bookjournal/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T, token string) (*httptest.Server, *SnapshotStore) {
	t.Helper()

	store := newTestSnapshotStore(t)
	e := echo.New()
	RegisterRoutes(e, store, token)

	ts := httptest.NewServer(e)
	t.Cleanup(ts.Close)
	return ts, store
}

func TestServer_RemoteClientRoundTrip(t *testing.T) {
	ts, _ := newTestServer(t, "")

	client, err := NewRemoteClient(ts.URL, "books")
	require.NoError(t, err)

	books, err := client.Fetch(context.Background())
	require.NoError(t, err)
	assert.Empty(t, books)

	want := sampleCollection()
	require.NoError(t, client.Push(context.Background(), want))

	got, err := client.Fetch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestServer_TokenRequired(t *testing.T) {
	ts, _ := newTestServer(t, "s3cret")

	anonymous, err := NewRemoteClient(ts.URL, "books")
	require.NoError(t, err)
	_, err = anonymous.Fetch(context.Background())
	require.Error(t, err)
	assert.True(t, errors.IsRemoteUnavailable(err))

	authed, err := NewRemoteClient(ts.URL, "books", WithAPIToken("s3cret"))
	require.NoError(t, err)
	require.NoError(t, authed.Push(context.Background(), sampleCollection()))

	resp, err := http.Get(ts.URL + "/healthz")
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestServer_RejectsNonArrayBodies(t *testing.T) {
	ts, store := newTestServer(t, "")

	for _, body := range []string{`{"a":1}`, `null`, `not json`} {
		resp, err := http.Post(ts.URL+"/books", "application/json", strings.NewReader(body))
		require.NoError(t, err)
		_ = resp.Body.Close()
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode, "body %s", body)
	}

	_, ok, err := store.Get("books")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestServer_RejectsBadResourceNames(t *testing.T) {
	ts, _ := newTestServer(t, "")

	resp, err := http.Get(ts.URL + "/" + strings.Repeat("x", 65))
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestNewServer(t *testing.T) {
	srv := NewServer(":0", newTestSnapshotStore(t), "")
	assert.Equal(t, ":0", srv.Addr)
	assert.NotNil(t, srv.Handler)
}
