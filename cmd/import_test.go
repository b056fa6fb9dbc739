package cmd

import (
	"testing"

	"github.com/lepinkainen/bookjournal/internal/journal"
	"github.com/lepinkainen/bookjournal/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const goodreadsCSV = `Book Id,Title,Author,My Rating,Exclusive Shelf,My Review
1,Dune,Frank Herbert,5,read,Spice must flow
2,Emma,Jane Austen,0,to-read,
3,Dune,Frank Herbert,4,read,duplicate row
`

func TestImportCmd_GoodreadsCSV(t *testing.T) {
	env := testutil.NewTestEnv(t)
	testutil.SetupLocalStorage(t, env)
	out := captureOutput(t)
	env.WriteFileString("goodreads.csv", goodreadsCSV)

	require.NoError(t, (&ImportCmd{Path: env.Path("goodreads.csv"), Format: "auto", Level: "easy"}).Run())
	assert.Contains(t, out.String(), "Imported 2 books, skipped 1")

	books := loadBooks(t)
	require.Len(t, books, 2)

	dune := books[0]
	assert.Equal(t, "Dune", dune.Title)
	assert.Equal(t, journal.ReadLevelEasy, dune.ReadLevel)
	assert.Equal(t, journal.StatusFinished, dune.Status)
	require.NotNil(t, dune.Rating)
	assert.Equal(t, 5, *dune.Rating)
	require.NotNil(t, dune.Notes)
	assert.Equal(t, "Spice must flow", *dune.Notes)

	emma := books[1]
	assert.Equal(t, journal.StatusToBeRead, emma.Status)
	assert.Nil(t, emma.Rating)

	// A second import of the same file adds nothing
	out.Reset()
	require.NoError(t, (&ImportCmd{Path: env.Path("goodreads.csv"), Format: "csv", Level: "easy"}).Run())
	assert.Contains(t, out.String(), "Imported 0 books, skipped 3")
	assert.Len(t, loadBooks(t), 2)
}

func TestImportCmd_InvalidRows(t *testing.T) {
	env := testutil.NewTestEnv(t)
	testutil.SetupLocalStorage(t, env)
	out := captureOutput(t)
	env.WriteFileString("books.csv", "title,author,read_level,status,rating\nDune,Frank Herbert,academic,finished,9\nEmma,Jane Austen,,tbr,\n")

	err := (&ImportCmd{Path: env.Path("books.csv"), Format: "csv", Level: "moderate"}).Run()
	assert.Error(t, err)
	assert.Empty(t, loadBooks(t))

	require.NoError(t, (&ImportCmd{Path: env.Path("books.csv"), Format: "csv", Level: "moderate", SkipInvalid: true}).Run())
	assert.Contains(t, out.String(), "Imported 1 books")

	books := loadBooks(t)
	require.Len(t, books, 1)
	assert.Equal(t, "Emma", books[0].Title)
	assert.Equal(t, journal.ReadLevelModerate, books[0].ReadLevel)
}

func TestImportCmd_NotesRoundTrip(t *testing.T) {
	env := testutil.NewTestEnv(t)
	testutil.SetupLocalStorage(t, env)
	captureOutput(t)

	sample := testutil.SampleCollection()
	_, err := writeNotes(sample, env.Path("notes"), false)
	require.NoError(t, err)
	env.WriteFileString("notes/reading-log.md", renderReadingLog(sample))

	require.NoError(t, (&ImportCmd{Path: env.Path("notes"), Format: "auto", Level: "moderate"}).Run())

	books := loadBooks(t)
	require.Len(t, books, len(sample))

	byTitle := make(map[string]journal.Book, len(books))
	for _, b := range books {
		byTitle[b.Title] = b
	}
	for _, want := range sample {
		got, ok := byTitle[want.Title]
		require.True(t, ok, "missing %q", want.Title)
		assert.Equal(t, want.Author, got.Author)
		assert.Equal(t, want.ReadLevel, got.ReadLevel)
		assert.Equal(t, want.Status, got.Status)
		assert.Equal(t, want.Rating, got.Rating)
		assert.Equal(t, want.Notes, got.Notes)
	}
}
