package testutil

import "github.com/lepinkainen/bookjournal/internal/journal"

// SampleCollection returns a small collection with one book in each state.
func SampleCollection() journal.Collection {
	rating := 4
	notes := "Spice must flow"
	return journal.Collection{
		{
			ID:        "0192f0a0-0000-7000-8000-000000000001",
			Title:     "Dune",
			Author:    "Frank Herbert",
			ReadLevel: journal.ReadLevelModerate,
			Status:    journal.StatusFinished,
			CoverURL:  "https://covers.openlibrary.org/b/id/11481354-M.jpg",
			Rating:    &rating,
			Notes:     &notes,
		},
		{
			ID:        "0192f0a0-0000-7000-8000-000000000002",
			Title:     "Gödel, Escher, Bach",
			Author:    "Douglas Hofstadter",
			ReadLevel: journal.ReadLevelAcademic,
			Status:    journal.StatusToBeRead,
		},
	}
}
