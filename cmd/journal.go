package cmd

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/lepinkainen/bookjournal/internal/coordinator"
	"github.com/lepinkainen/bookjournal/internal/journal"
)

// ListCmd prints the journal as a table
type ListCmd struct {
	Status string `short:"s" help:"Only show books with this status (tbr or finished)"`
}

// AddCmd adds a new to-be-read book
type AddCmd struct {
	Title  string `arg:"" help:"Book title"`
	Author string `arg:"" help:"Book author"`
	Level  string `short:"l" help:"Read level" enum:"easy,moderate,academic" default:"moderate"`
}

// EditCmd changes the descriptive fields of a book
type EditCmd struct {
	ID     string  `arg:"" help:"Book ID"`
	Title  *string `help:"New title"`
	Author *string `help:"New author"`
	Level  *string `short:"l" help:"New read level (easy, moderate or academic)"`
}

// FinishCmd marks a book finished
type FinishCmd struct {
	ID string `arg:"" help:"Book ID"`
}

// TBRCmd moves a book back to the to-be-read list
type TBRCmd struct {
	ID string `arg:"" help:"Book ID"`
}

// RateCmd sets rating and notes of a finished book
type RateCmd struct {
	ID     string  `arg:"" help:"Book ID"`
	Rating *int    `short:"r" help:"Rating from 0 to 5"`
	Notes  *string `short:"n" help:"Free-form notes"`
}

// RemoveCmd deletes a book
type RemoveCmd struct {
	ID string `arg:"" help:"Book ID"`
}

// EnrichCmd looks up covers for every book that lacks one
type EnrichCmd struct{}

func (l *ListCmd) Run() error {
	var status journal.Status
	if l.Status != "" {
		parsed, err := journal.ParseStatus(l.Status)
		if err != nil {
			return err
		}
		status = parsed
	}

	return withSession(func(ctx context.Context, c *coordinator.Coordinator) error {
		store, err := c.Store()
		if err != nil {
			return err
		}

		var books []journal.Book
		if status == "" {
			books = store.Snapshot()
		} else {
			for b := range store.ViewByStatus(status) {
				books = append(books, b)
			}
		}

		renderBooks(stdout, books)
		return nil
	})
}

func (a *AddCmd) Run() error {
	return withSession(func(ctx context.Context, c *coordinator.Coordinator) error {
		b, err := c.Add(journal.Draft{
			Title:     a.Title,
			Author:    a.Author,
			ReadLevel: journal.ReadLevel(a.Level),
		})
		if err != nil {
			return err
		}
		fmt.Fprintf(stdout, "Added %q (%s)\n", b.Title, b.ID)

		// Let the inline cover lookup finish so its result can be reported
		c.Wait()
		store, err := c.Store()
		if err != nil {
			return err
		}
		if got, ok := store.Get(b.ID); ok && got.HasCover() {
			fmt.Fprintf(stdout, "Cover: %s\n", got.CoverURL)
		}
		return nil
	})
}

func (e *EditCmd) Run() error {
	patch := journal.DetailsPatch{Title: e.Title, Author: e.Author}
	if e.Level != nil {
		level := journal.ReadLevel(*e.Level)
		patch.ReadLevel = &level
	}

	return mutate(e.ID, "Updated", func(c *coordinator.Coordinator) error {
		return c.EditDetails(e.ID, patch)
	})
}

func (f *FinishCmd) Run() error {
	return mutate(f.ID, "Finished", func(c *coordinator.Coordinator) error {
		return c.MarkFinished(f.ID)
	})
}

func (t *TBRCmd) Run() error {
	return mutate(t.ID, "Moved to to-be-read", func(c *coordinator.Coordinator) error {
		return c.MarkToBeRead(t.ID)
	})
}

func (r *RateCmd) Run() error {
	if r.Rating == nil && r.Notes == nil {
		return fmt.Errorf("nothing to update: pass --rating and/or --notes")
	}

	return mutate(r.ID, "Rated", func(c *coordinator.Coordinator) error {
		return c.UpdateFinishedFields(r.ID, journal.FinishedPatch{Rating: r.Rating, Notes: r.Notes})
	})
}

func (r *RemoveCmd) Run() error {
	return mutate(r.ID, "Removed", func(c *coordinator.Coordinator) error {
		return c.Remove(r.ID)
	})
}

func (e *EnrichCmd) Run() error {
	return withSession(func(ctx context.Context, c *coordinator.Coordinator) error {
		store, err := c.Store()
		if err != nil {
			return err
		}

		before := len(store.MissingCovers())
		if err := c.Enrich(ctx); err != nil {
			return err
		}
		after := len(store.MissingCovers())

		fmt.Fprintf(stdout, "Found %d of %d missing covers\n", before-after, before)
		return nil
	})
}

// mutate runs a single-book mutation. Unknown IDs are silent no-ops in the
// journal unless strict mode is on, so the command warns about them here.
func mutate(id, verb string, fn func(c *coordinator.Coordinator) error) error {
	return withSession(func(ctx context.Context, c *coordinator.Coordinator) error {
		store, err := c.Store()
		if err != nil {
			return err
		}

		b, found := store.Get(id)
		if !found && !store.Strict() {
			slog.Warn("No book with that ID, nothing changed", "id", id)
		}

		if err := fn(c); err != nil {
			return err
		}
		if found {
			fmt.Fprintf(stdout, "%s %q\n", verb, b.Title)
		}
		return nil
	})
}
