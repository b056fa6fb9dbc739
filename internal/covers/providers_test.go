package covers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/lepinkainen/bookjournal/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestOpenLibrary(t *testing.T, handler http.HandlerFunc) *OpenLibraryProvider {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	return NewOpenLibraryProvider(
		WithOpenLibraryBaseURL(server.URL),
		WithOpenLibraryHTTPClient(server.Client()),
		WithOpenLibraryRate(0),
	)
}

func TestOpenLibraryLookup_FirstResultCover(t *testing.T) {
	var gotQuery map[string]string
	p := newTestOpenLibrary(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/search.json", r.URL.Path)
		gotQuery = map[string]string{
			"title":  r.URL.Query().Get("title"),
			"author": r.URL.Query().Get("author"),
			"limit":  r.URL.Query().Get("limit"),
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"numFound":2,"docs":[{"title":"Dune","cover_i":12345},{"title":"Dune Messiah","cover_i":999}]}`))
	})

	url, err := p.Lookup(context.Background(), "Dune", "Frank Herbert")
	require.NoError(t, err)
	assert.Equal(t, "https://covers.openlibrary.org/b/id/12345-M.jpg", url)
	assert.Equal(t, map[string]string{"title": "Dune", "author": "Frank Herbert", "limit": "1"}, gotQuery)
}

func TestOpenLibraryLookup_FirstResultWithoutCover(t *testing.T) {
	p := newTestOpenLibrary(t, func(w http.ResponseWriter, r *http.Request) {
		// Later results are never consulted
		_, _ = w.Write([]byte(`{"numFound":2,"docs":[{"title":"Dune"},{"title":"Dune","cover_i":999}]}`))
	})

	url, err := p.Lookup(context.Background(), "Dune", "Frank Herbert")
	require.NoError(t, err)
	assert.Empty(t, url)
}

func TestOpenLibraryLookup_NoResults(t *testing.T) {
	p := newTestOpenLibrary(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"numFound":0,"docs":[]}`))
	})

	url, err := p.Lookup(context.Background(), "Nonexistent", "")
	require.NoError(t, err)
	assert.Empty(t, url)
}

func TestOpenLibraryLookup_SizeAndTemplate(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"docs":[{"cover_i":7}]}`))
	}))
	defer server.Close()

	p := NewOpenLibraryProvider(
		WithOpenLibraryBaseURL(server.URL),
		WithOpenLibraryRate(0),
		WithCoverSize("L"),
		WithCoverTemplate("https://img.example/%d/%s"),
	)

	url, err := p.Lookup(context.Background(), "Dune", "")
	require.NoError(t, err)
	assert.Equal(t, "https://img.example/7/L", url)
}

func TestOpenLibraryLookup_RateLimited(t *testing.T) {
	p := newTestOpenLibrary(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Retry-After", "30")
		w.WriteHeader(http.StatusTooManyRequests)
	})

	_, err := p.Lookup(context.Background(), "Dune", "")
	require.Error(t, err)
	assert.True(t, errors.IsRateLimitError(err))
}

func TestOpenLibraryLookup_ServerError(t *testing.T) {
	p := newTestOpenLibrary(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	_, err := p.Lookup(context.Background(), "Dune", "")
	require.Error(t, err)
	assert.False(t, errors.IsRateLimitError(err))
}

func TestOpenLibraryLookup_MalformedBody(t *testing.T) {
	p := newTestOpenLibrary(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html>`))
	})

	_, err := p.Lookup(context.Background(), "Dune", "")
	require.Error(t, err)
}

func TestGoogleBooksLookup(t *testing.T) {
	var gotQuery, gotKey string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/volumes", r.URL.Path)
		gotQuery = r.URL.Query().Get("q")
		gotKey = r.URL.Query().Get("key")
		_, _ = w.Write([]byte(`{"totalItems":1,"items":[{"volumeInfo":{"title":"Dune","imageLinks":{"thumbnail":"http://books.google.com/content?id=abc"}}}]}`))
	}))
	defer server.Close()

	p := NewGoogleBooksProvider("secret", WithGoogleBooksBaseURL(server.URL), WithGoogleBooksRate(0))

	url, err := p.Lookup(context.Background(), "Dune", "Frank Herbert")
	require.NoError(t, err)
	assert.Equal(t, "https://books.google.com/content?id=abc", url)
	assert.Equal(t, "intitle:Dune inauthor:Frank Herbert", gotQuery)
	assert.Equal(t, "secret", gotKey)
}

func TestGoogleBooksLookup_NoImage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.URL.Query().Get("key"))
		_, _ = w.Write([]byte(`{"totalItems":1,"items":[{"volumeInfo":{"title":"Dune"}}]}`))
	}))
	defer server.Close()

	p := NewGoogleBooksProvider("", WithGoogleBooksBaseURL(server.URL), WithGoogleBooksHTTPClient(server.Client()), WithGoogleBooksRate(0))

	url, err := p.Lookup(context.Background(), "Dune", "")
	require.NoError(t, err)
	assert.Empty(t, url)
}

func TestGoogleBooksLookup_RateLimited(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	p := NewGoogleBooksProvider("", WithGoogleBooksBaseURL(server.URL), WithGoogleBooksHTTPClient(server.Client()), WithGoogleBooksRate(0))

	_, err := p.Lookup(context.Background(), "Dune", "")
	assert.True(t, errors.IsRateLimitError(err))
}
