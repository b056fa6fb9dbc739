package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/lepinkainen/bookjournal/internal/coordinator"
	"github.com/lepinkainen/bookjournal/internal/fileutil"
	"github.com/lepinkainen/bookjournal/internal/journal"
)

// ExportCmd writes the journal to disk
type ExportCmd struct {
	Format    string `short:"f" help:"Output format: json, yaml, markdown (single reading log) or notes (one file per book)" enum:"json,yaml,markdown,notes" default:"json"`
	Output    string `short:"o" help:"Output file, or directory for the notes format" required:"" type:"path"`
	Overwrite bool   `help:"Overwrite existing files"`
}

func (e *ExportCmd) Run() error {
	return withSession(func(ctx context.Context, c *coordinator.Coordinator) error {
		store, err := c.Store()
		if err != nil {
			return err
		}
		books := store.Snapshot()

		written, err := e.write(books)
		if err != nil {
			return err
		}
		fmt.Fprintf(stdout, "Exported %d books to %d file(s) in %s\n", len(books), written, e.Output)
		return nil
	})
}

// write returns the number of files written
func (e *ExportCmd) write(books journal.Collection) (int, error) {
	var (
		ok  bool
		err error
	)

	switch e.Format {
	case "json":
		ok, err = fileutil.WriteJSONFile(books, e.Output, e.Overwrite)
	case "yaml":
		ok, err = fileutil.WriteYAMLFile(books, e.Output, e.Overwrite)
	case "markdown":
		ok, err = fileutil.WriteFileWithOverwrite(e.Output, []byte(renderReadingLog(books)), 0644, e.Overwrite)
	case "notes":
		return writeNotes(books, e.Output, e.Overwrite)
	default:
		return 0, fmt.Errorf("unknown export format %q", e.Format)
	}

	if err != nil {
		return 0, err
	}
	if !ok {
		slog.Info("Output file exists, skipping (use --overwrite)", "path", e.Output)
		return 0, nil
	}
	return 1, nil
}

func writeNotes(books journal.Collection, dir string, overwrite bool) (int, error) {
	written := 0
	for _, b := range books {
		path := fileutil.GetMarkdownFilePath(b.Title, dir)
		ok, err := fileutil.WriteFileWithOverwrite(path, []byte(renderBookNote(b)), 0644, overwrite)
		if err != nil {
			return written, fmt.Errorf("writing note for %q: %w", b.Title, err)
		}
		if !ok {
			slog.Debug("Note exists, skipping", "path", path)
			continue
		}
		written++
	}
	return written, nil
}

// renderReadingLog renders the whole journal as a single markdown document
func renderReadingLog(books journal.Collection) string {
	var finished, tbr []journal.Book
	for _, b := range books {
		if b.Status == journal.StatusFinished {
			finished = append(finished, b)
		} else {
			tbr = append(tbr, b)
		}
	}

	mb := fileutil.NewMarkdownBuilder().
		AddTitle("Reading journal").
		AddType("reading-log").
		AddField("books", len(books)).
		AddField("finished", len(finished)).
		AddField("tbr", len(tbr)).
		AddHeading(1, "Reading journal")

	mb.AddHeading(2, "Finished")
	if len(finished) == 0 {
		mb.AddParagraph("Nothing finished yet.")
	}
	for _, b := range finished {
		mb.AddHeading(3, b.Title).
			AddImage(b.CoverURL).
			AddParagraph(strings.Join(nonEmpty(b.Author, string(b.ReadLevel), ratingLabel(b)), " · "))
		if b.Notes != nil {
			mb.AddCallout("quote", "Notes", *b.Notes)
		}
	}

	mb.AddHeading(2, "To be read")
	if len(tbr) == 0 {
		mb.AddParagraph("The list is empty.")
	}
	for _, b := range tbr {
		mb.AddListItem(fmt.Sprintf("**%s** by %s (%s)", b.Title, b.Author, b.ReadLevel))
	}
	if len(tbr) > 0 {
		mb.EndList()
	}

	return mb.Build()
}

// renderBookNote renders a single book as a markdown note with frontmatter
func renderBookNote(b journal.Book) string {
	mb := fileutil.NewMarkdownBuilder().
		AddTitle(b.Title).
		AddType("book").
		AddField("id", b.ID).
		AddField("author", b.Author).
		AddField("read_level", string(b.ReadLevel)).
		AddField("status", string(b.Status)).
		AddField("rating", b.Rating).
		AddField("cover", b.CoverURL).
		AddTags("book", "read_level/"+string(b.ReadLevel), "status/"+string(b.Status)).
		AddImage(b.CoverURL)

	if b.Notes != nil {
		mb.AddParagraph(*b.Notes)
	}
	return mb.Build()
}

func nonEmpty(values ...string) []string {
	out := values[:0:0]
	for _, v := range values {
		if v != "" {
			out = append(out, v)
		}
	}
	return out
}
