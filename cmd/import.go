package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/lepinkainen/bookjournal/internal/coordinator"
	"github.com/lepinkainen/bookjournal/internal/csvutil"
	"github.com/lepinkainen/bookjournal/internal/frontmatter"
	"github.com/lepinkainen/bookjournal/internal/journal"
)

// ImportCmd adds books from a CSV file or a directory of exported notes
type ImportCmd struct {
	Path        string `arg:"" help:"CSV file (Goodreads export works), or a directory of notes written by 'export -f notes'" type:"path"`
	Format      string `short:"f" help:"Input format" enum:"auto,csv,notes" default:"auto"`
	Level       string `short:"l" help:"Read level for entries that do not specify one" enum:"easy,moderate,academic" default:"moderate"`
	SkipInvalid bool   `help:"Skip invalid entries instead of aborting"`
}

// importEntry is one book read from an import source
type importEntry struct {
	Draft    journal.Draft
	Finished bool
	Rating   *int
	Notes    *string
}

func (i *ImportCmd) Run() error {
	entries, err := i.read()
	if err != nil {
		return err
	}

	return withSession(func(ctx context.Context, c *coordinator.Coordinator) error {
		added, skipped, err := importEntries(c, entries, i.SkipInvalid)
		if err != nil {
			return err
		}
		c.Wait()
		fmt.Fprintf(stdout, "Imported %d books, skipped %d\n", added, skipped)
		return nil
	})
}

func (i *ImportCmd) read() ([]importEntry, error) {
	format := i.Format
	if format == "auto" {
		info, err := os.Stat(i.Path)
		if err != nil {
			return nil, err
		}
		format = "csv"
		if info.IsDir() {
			format = "notes"
		}
	}

	level := journal.ReadLevel(i.Level)
	switch format {
	case "csv":
		return csvutil.ProcessCSVFile(i.Path, func(r csvutil.Record) (importEntry, error) {
			return parseCSVEntry(r, level)
		}, csvutil.ProcessorOptions{SkipInvalid: i.SkipInvalid})
	case "notes":
		return readNotes(i.Path, level, i.SkipInvalid)
	default:
		return nil, fmt.Errorf("unknown import format %q", format)
	}
}

// importEntries adds entries that are not already in the journal, matched
// by title and author. Returns the number added and skipped.
func importEntries(c *coordinator.Coordinator, entries []importEntry, skipInvalid bool) (int, int, error) {
	store, err := c.Store()
	if err != nil {
		return 0, 0, err
	}

	seen := make(map[string]bool, store.Len())
	for _, b := range store.Snapshot() {
		seen[bookKey(b.Title, b.Author)] = true
	}

	added, skipped := 0, 0
	for _, e := range entries {
		key := bookKey(e.Draft.Title, e.Draft.Author)
		if seen[key] {
			slog.Debug("Book already in journal, skipping", "title", e.Draft.Title)
			skipped++
			continue
		}

		if err := importOne(c, e); err != nil {
			if !skipInvalid {
				return added, skipped, fmt.Errorf("importing %q: %w", e.Draft.Title, err)
			}
			slog.Warn("Skipping book", "title", e.Draft.Title, "error", err)
			skipped++
			continue
		}
		seen[key] = true
		added++
	}
	return added, skipped, nil
}

func importOne(c *coordinator.Coordinator, e importEntry) error {
	b, err := c.Add(e.Draft)
	if err != nil {
		return err
	}
	if !e.Finished {
		return nil
	}
	if err := c.MarkFinished(b.ID); err != nil {
		return err
	}
	if e.Rating == nil && e.Notes == nil {
		return nil
	}
	return c.UpdateFinishedFields(b.ID, journal.FinishedPatch{Rating: e.Rating, Notes: e.Notes})
}

// parseCSVEntry understands both the journal's own columns and the Goodreads export
func parseCSVEntry(r csvutil.Record, defaultLevel journal.ReadLevel) (importEntry, error) {
	e := importEntry{
		Draft: journal.Draft{
			Title:     r.Get("title"),
			Author:    r.Get("author"),
			ReadLevel: defaultLevel,
		},
	}

	if level := r.Get("read_level", "readLevel", "level"); level != "" {
		e.Draft.ReadLevel = journal.ReadLevel(strings.ToLower(level))
	}

	switch {
	case r.Get("status") != "":
		status, err := journal.ParseStatus(r.Get("status"))
		if err != nil {
			return e, err
		}
		e.Finished = status == journal.StatusFinished
	case r.Has("exclusive shelf"):
		e.Finished = strings.EqualFold(r.Get("exclusive shelf"), "read")
	}

	if !e.Finished {
		return e, nil
	}

	if value := r.Get("rating", "my rating"); value != "" {
		rating, err := strconv.Atoi(value)
		if err != nil || !validRating(rating) {
			return e, fmt.Errorf("invalid rating %q", value)
		}
		e.Rating = &rating
	}
	if notes := r.Get("notes", "my review"); notes != "" {
		e.Notes = &notes
	}
	return e, nil
}

// noteFrontmatter matches the frontmatter written by renderBookNote
type noteFrontmatter struct {
	Title     string `yaml:"title"`
	Type      string `yaml:"type"`
	Author    string `yaml:"author"`
	ReadLevel string `yaml:"read_level"`
	Status    string `yaml:"status"`
	Rating    *int   `yaml:"rating"`
}

func readNotes(dir string, defaultLevel journal.ReadLevel, skipInvalid bool) ([]importEntry, error) {
	paths, err := filepath.Glob(filepath.Join(dir, "*.md"))
	if err != nil {
		return nil, err
	}

	var entries []importEntry
	for _, path := range paths {
		e, ok, err := readNote(path, defaultLevel)
		if err != nil {
			if !skipInvalid {
				return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
			}
			slog.Warn("Skipping note", "path", path, "error", err)
			continue
		}
		if ok {
			entries = append(entries, e)
		}
	}
	return entries, nil
}

// readNote returns false for markdown files that are not book notes
func readNote(path string, defaultLevel journal.ReadLevel) (importEntry, bool, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return importEntry{}, false, err
	}

	var fm noteFrontmatter
	body, err := frontmatter.Decode(content, &fm)
	if err != nil {
		return importEntry{}, false, err
	}
	if fm.Type != "book" {
		slog.Debug("Not a book note, skipping", "path", path, "type", fm.Type)
		return importEntry{}, false, nil
	}

	e := importEntry{
		Draft: journal.Draft{
			Title:     fm.Title,
			Author:    fm.Author,
			ReadLevel: defaultLevel,
		},
	}
	if fm.ReadLevel != "" {
		e.Draft.ReadLevel = journal.ReadLevel(fm.ReadLevel)
	}
	if fm.Status != "" {
		status, err := journal.ParseStatus(fm.Status)
		if err != nil {
			return e, false, err
		}
		e.Finished = status == journal.StatusFinished
	}
	if e.Finished {
		if fm.Rating != nil && !validRating(*fm.Rating) {
			return e, false, fmt.Errorf("invalid rating %d", *fm.Rating)
		}
		e.Rating = fm.Rating
		if notes := frontmatter.StripImages(body); notes != "" {
			e.Notes = &notes
		}
	}
	return e, true, nil
}

// validRating mirrors the journal rating bounds
func validRating(r int) bool {
	return r >= journal.MinRating && r <= journal.MaxRating
}

func bookKey(title, author string) string {
	return strings.ToLower(strings.TrimSpace(title)) + "|" + strings.ToLower(strings.TrimSpace(author))
}
